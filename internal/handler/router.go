package handler

import (
	"time"

	"files-manager/internal/handler/appHandler"
	"files-manager/internal/handler/authHandler"
	"files-manager/internal/handler/fileHandler"
	"files-manager/internal/service"
	"files-manager/internal/service/appService"
	"files-manager/internal/service/fileService"
	"files-manager/pkg/logger"
	"files-manager/pkg/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	CORSOrigins []string
	Limiter     *middleware.RateLimiter
}

func NewRouter(log *logger.Logger, cfg RouterConfig, auth *service.AuthService, files *fileService.FileService, app *appService.AppService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 || cfg.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.TokenHeader}
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Middleware())
	}

	ah := appHandler.New(app)
	uh := authHandler.New(auth)
	fh := fileHandler.NewFileHandler(files)

	r.GET("/status", ah.Status)
	r.GET("/stats", ah.Stats)

	r.POST("/users", uh.Register)
	r.GET("/connect", uh.Connect)

	// public files are readable without a session
	r.GET("/files/:id/data", middleware.OptionalSession(auth), fh.Data)

	authorized := r.Group("/")
	authorized.Use(middleware.RequireSession(auth))
	{
		authorized.GET("/disconnect", uh.Disconnect)
		authorized.GET("/users/me", uh.Me)

		authorized.POST("/files", fh.Upload)
		authorized.GET("/files", fh.Index)
		authorized.GET("/files/:id", fh.Show)
		authorized.PUT("/files/:id/publish", fh.Publish)
		authorized.PUT("/files/:id/unpublish", fh.Unpublish)
	}
	return r
}
