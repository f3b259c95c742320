package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ItsHariii/EmoryHacks/services"
)

// userID pulls the caller identity from the X-User-ID header. Identity is
// trusted as given; authentication lives outside this service.
func userID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-User-ID")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID header is required"})
		return "", false
	}
	return id, true
}

// LogController exposes the food journal CRUD.
type LogController struct {
	logs *services.LogService
}

func NewLogController(logs *services.LogService) *LogController {
	return &LogController{logs: logs}
}

// POST /logs
func (lc *LogController) Create(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var input services.CreateLogInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	log, err := lc.logs.CreateLog(uid, input)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, log)
}

// GET /logs?date=2025-03-14
func (lc *LogController) List(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	logs, err := lc.logs.ListLogs(uid, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format("2006-01-02"), "logs": logs})
}

// PATCH /logs/:id
func (lc *LogController) Update(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var input services.UpdateLogInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	log, err := lc.logs.UpdateLog(uid, c.Param("id"), input)
	if err != nil {
		if errors.Is(err, services.ErrLogNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "log not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update log"})
		return
	}
	c.JSON(http.StatusOK, log)
}

// DELETE /logs/:id
func (lc *LogController) Delete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	if err := lc.logs.DeleteLog(uid, c.Param("id")); err != nil {
		if errors.Is(err, services.ErrLogNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "log not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
