package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ItsHariii/EmoryHacks/services"
)

// NutritionController exposes daily/weekly aggregates and suggestions.
type NutritionController struct {
	nutrition *services.NutritionService
}

func NewNutritionController(nutrition *services.NutritionService) *NutritionController {
	return &NutritionController{nutrition: nutrition}
}

func parseDay(c *gin.Context) (time.Time, bool) {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return time.Time{}, false
		}
		day = parsed
	}
	return day, true
}

// GET /nutrition/daily?date=2025-03-14
func (nc *NutritionController) Daily(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	day, ok := parseDay(c)
	if !ok {
		return
	}

	summary, err := nc.nutrition.DailySummary(uid, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute daily summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GET /nutrition/weekly?date=2025-03-08 (date is the first day of the window)
func (nc *NutritionController) Weekly(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	// Without an explicit start the window is the trailing week.
	start := time.Now().UTC().AddDate(0, 0, -6)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		start = parsed
	}

	days, err := nc.nutrition.WeeklySummary(uid, start)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute weekly summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

// GET /nutrition/suggestions?date=2025-03-14
func (nc *NutritionController) Suggestions(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	day, ok := parseDay(c)
	if !ok {
		return
	}

	suggestions, err := nc.nutrition.Suggestions(uid, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute suggestions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}
