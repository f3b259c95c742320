package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ItsHariii/EmoryHacks/config"
	"github.com/ItsHariii/EmoryHacks/controllers"
	"github.com/ItsHariii/EmoryHacks/routes"
	"github.com/ItsHariii/EmoryHacks/services"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	// One HTTP client and one rate limiter are shared by every external
	// source client.
	httpClient := &http.Client{Timeout: 30 * time.Second}
	limiter := services.NewRateLimiter()

	spoonacular := services.NewSpoonacularService(cfg.SpoonacularAPIKey, httpClient, limiter, logger)
	usda := services.NewUSDAService(cfg.USDAAPIKey, httpClient, limiter, logger)

	cache := services.NewCacheService(db, logger)
	safety := services.NewSafetyService(logger)
	classifier := services.NewQueryClassifier()
	calculator := services.NewNutritionCalculator(logger)

	foods := services.NewFoodService(db, cache, safety, classifier, spoonacular, usda, logger)
	logs := services.NewLogService(db, calculator, logger)
	nutrition := services.NewNutritionService(db, logger)

	router := routes.SetupRouter(routes.Controllers{
		Health:    controllers.NewHealthController(db),
		Food:      controllers.NewFoodController(foods, cache, safety),
		Logs:      controllers.NewLogController(logs),
		Nutrition: controllers.NewNutritionController(nutrition),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
