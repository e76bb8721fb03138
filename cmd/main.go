package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"files-manager/internal/app"
	"files-manager/internal/config"
	"files-manager/internal/handler"
	"files-manager/pkg/logger"
	"files-manager/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.New(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}

	ctx, err := logger.New(context.Background(), cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	log := logger.GetLogger(ctx)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize backends", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("failed to close backends", zap.Error(err))
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := handler.NewRouter(log, handler.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter,
	}, a.AuthService(), a.FileService(), a.AppService())

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server started", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				limiter.Cleanup()
			}
		}
	})
	if cfg.RunsWorker() {
		g.Go(func() error {
			return a.RunWorker(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return
	}
	log.Info("server stopped")
}
