package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ItsHariii/EmoryHacks/models"
	"github.com/ItsHariii/EmoryHacks/services"
)

// FoodController exposes food resolution, safety checks and cache
// management.
type FoodController struct {
	foods  *services.FoodService
	cache  *services.CacheService
	safety *services.SafetyService
}

func NewFoodController(foods *services.FoodService, cache *services.CacheService, safety *services.SafetyService) *FoodController {
	return &FoodController{foods: foods, cache: cache, safety: safety}
}

// GET /food/search?q=banana&force_refresh=false
func (fc *FoodController) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}
	forceRefresh, _ := strconv.ParseBool(c.DefaultQuery("force_refresh", "false"))

	food, err := fc.foods.Resolve(c.Request.Context(), query, forceRefresh)
	if err != nil {
		if errors.Is(err, services.ErrSourcesUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve food"})
		return
	}
	if food == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no food found for query", "query": query})
		return
	}
	c.JSON(http.StatusOK, food)
}

// GET /food/:id
func (fc *FoodController) GetByID(c *gin.Context) {
	food, err := fc.foods.GetFoodByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "food not found"})
		return
	}
	c.JSON(http.StatusOK, food)
}

// POST /food  (manual entry)
func (fc *FoodController) Create(c *gin.Context) {
	var food models.Food
	if err := c.ShouldBindJSON(&food); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if food.Name == "" || food.ServingSize <= 0 || food.ServingUnit == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, serving_size and serving_unit are required"})
		return
	}

	created, err := fc.foods.CreateManualFood(&food)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create food"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// POST /food/safety-check  { "ingredients": ["tuna", "mayonnaise"] }
func (fc *FoodController) SafetyCheck(c *gin.Context) {
	var req struct {
		Ingredients []string `json:"ingredients" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	status, notes, details := fc.safety.CheckFoodSafety(req.Ingredients)
	c.JSON(http.StatusOK, gin.H{
		"safety_status": status,
		"safety_notes":  notes,
		"ingredients":   details,
		"allergens":     fc.safety.ExtractAllergens(req.Ingredients),
	})
}

// GET /food/cache/stats
func (fc *FoodController) CacheStats(c *gin.Context) {
	stats, err := fc.cache.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute cache stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// POST /food/cache/invalidate  { "food_id": "...", "source": "spoonacular", "older_than_hours": 24 }
func (fc *FoodController) InvalidateCache(c *gin.Context) {
	var req struct {
		FoodID         string `json:"food_id"`
		Source         string `json:"source"`
		OlderThanHours int    `json:"older_than_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if req.FoodID == "" && req.Source == "" && req.OlderThanHours == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one filter is required"})
		return
	}

	count, err := fc.cache.Invalidate(req.FoodID, models.FoodSource(req.Source),
		time.Duration(req.OlderThanHours)*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidated": count})
}
