package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ItsHariii/EmoryHacks/controllers"
)

// Controllers bundles everything the router wires up.
type Controllers struct {
	Health    *controllers.HealthController
	Food      *controllers.FoodController
	Logs      *controllers.LogController
	Nutrition *controllers.NutritionController
}

func SetupRouter(ctrl Controllers) *gin.Engine {
	r := gin.Default()

	r.GET("/health", ctrl.Health.Check)

	food := r.Group("/food")
	{
		food.GET("/search", ctrl.Food.Search)
		food.POST("", ctrl.Food.Create)
		food.GET("/:id", ctrl.Food.GetByID)
		food.POST("/safety-check", ctrl.Food.SafetyCheck)
		food.GET("/cache/stats", ctrl.Food.CacheStats)
		food.POST("/cache/invalidate", ctrl.Food.InvalidateCache)
	}

	logs := r.Group("/logs")
	{
		logs.POST("", ctrl.Logs.Create)
		logs.GET("", ctrl.Logs.List)
		logs.PATCH("/:id", ctrl.Logs.Update)
		logs.DELETE("/:id", ctrl.Logs.Delete)
	}

	nutrition := r.Group("/nutrition")
	{
		nutrition.GET("/daily", ctrl.Nutrition.Daily)
		nutrition.GET("/weekly", ctrl.Nutrition.Weekly)
		nutrition.GET("/suggestions", ctrl.Nutrition.Suggestions)
	}

	return r
}
