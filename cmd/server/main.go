package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lucasgday/receivables-sub000/internal/config"
	"github.com/lucasgday/receivables-sub000/internal/db"
	"github.com/lucasgday/receivables-sub000/internal/logger"
	"github.com/lucasgday/receivables-sub000/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	appLogger, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer appLogger.Sync()

	database, err := db.Open(cfg.DbDsn)
	if err != nil {
		appLogger.Fatal("db error", zap.Error(err))
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(appLogger))

	routes.Register(router, database, cfg, appLogger)

	appLogger.Info("server starting", zap.String("addr", cfg.Addr))
	if err := router.Run(cfg.Addr); err != nil {
		appLogger.Fatal("server error", zap.Error(err))
	}
}

func requestLogger(appLogger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		appLogger.Info("request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
