package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/clubtools/rotation-planner/internal/api/handlers"
	"github.com/clubtools/rotation-planner/internal/cache"
	"github.com/clubtools/rotation-planner/internal/config"
	"github.com/clubtools/rotation-planner/internal/store"
	"github.com/clubtools/rotation-planner/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	logger.WithService("rotation-planner").WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting rotation planner service")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	planCache, err := cache.NewPlanCache(cfg.RedisURL, 15*time.Minute, structuredLogger)
	if err != nil {
		logger.WithService("rotation-planner").WithError(err).Warn("Redis unavailable, plan caching disabled")
		planCache = nil
	}
	defer planCache.Close()

	lineupStore := store.NewLineupStore(cfg.StorePath)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	planHandler := handlers.NewPlanHandler(lineupStore, planCache, cfg, structuredLogger)
	healthHandler := handlers.NewHealthHandler(structuredLogger)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/plan", planHandler.Plan)
		apiV1.POST("/plan/validate", planHandler.Validate)
		apiV1.POST("/plan/confirm", planHandler.Confirm)
	}

	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.WithService("rotation-planner").WithField("port", cfg.Port).Info("Rotation planner service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService("rotation-planner").Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService("rotation-planner").Info("Shutting down rotation planner service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithService("rotation-planner").Fatalf("Rotation planner service forced to shutdown: %v", err)
	}

	logger.WithService("rotation-planner").Info("Rotation planner service exited")
}
