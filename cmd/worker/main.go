package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"files-manager/internal/app"
	"files-manager/internal/config"
	"files-manager/internal/handler/healthHandler"
	"files-manager/internal/service/appService"
	"files-manager/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const healthInterval = 10 * time.Second

func main() {
	cfg, err := config.New(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}
	if cfg.QueueBackend == config.BackendMemory {
		panic("the standalone worker needs QUEUE_BACKEND=redis")
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
	defer func() { _ = a.Close() }()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCHealthPort))
	if err != nil {
		log.Fatal("failed to listen", zap.String("port", cfg.GRPCHealthPort), zap.Error(err))
	}
	server := grpc.NewServer()
	health := healthHandler.New(map[string]appService.Pinger{
		"redis": a.RedisPinger(),
		"db":    a.DBPinger(),
	})
	health.Register(server)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("health server started", zap.String("port", cfg.GRPCHealthPort))
		return server.Serve(lis)
	})
	g.Go(func() error {
		health.Run(ctx, healthInterval)
		server.GracefulStop()
		return nil
	})
	g.Go(func() error {
		return a.RunWorker(ctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("worker stopped with error", zap.Error(err))
		return
	}
	log.Info("worker stopped")
}
