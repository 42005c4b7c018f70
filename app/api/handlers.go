package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storelens/storelens/app/database"
	"github.com/storelens/storelens/app/insights"
	"github.com/storelens/storelens/app/scraper"
	"github.com/storelens/storelens/app/tasks"
)

// NewHandler wires the HTTP handlers. brandRepo and scheduler may be nil when
// the server runs without storage or background work.
func NewHandler(service InsightsService, brandRepo database.BrandRepositoryInterface,
	scheduler tasks.TaskSchedulerInterface, version string) *Handler {
	return &Handler{
		service:   service,
		brandRepo: brandRepo,
		scheduler: scheduler,
		version:   version,
	}
}

func (h *Handler) FetchInsights(c *gin.Context) {
	var body FetchInsightsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid request",
			"detail": err.Error(),
		})
		return
	}

	result, err := h.service.Fetch(c.Request.Context(), body.toInsights())
	if err != nil {
		switch {
		case errors.Is(err, insights.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "detail": err.Error()})
		case errors.Is(err, scraper.ErrUnreachable):
			slog.Warn("Website not reachable", "website", body.WebsiteURL, "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Website not reachable", "detail": err.Error()})
		default:
			slog.Error("Fetch insights failed", "website", body.WebsiteURL, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetBrand(c *gin.Context) {
	website := c.Query("website")
	if website == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing website parameter"})
		return
	}
	if h.brandRepo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brand not found"})
		return
	}

	origin := scraper.NormalizeOrigin(website)
	profile, err := h.brandRepo.FindByOrigin(c.Request.Context(), origin)
	if err != nil {
		slog.Error("Database error", "operation", "find_brand", "origin", origin, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brand not found"})
		return
	}

	competitors, err := h.brandRepo.ListCompetitors(c.Request.Context(), origin)
	if err != nil {
		slog.Warn("Failed to list competitors", "origin", origin, "error", err)
	}
	if competitors == nil {
		competitors = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"brand":       profile,
		"competitors": competitors,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	if h.brandRepo != nil {
		if brandCount, err := h.brandRepo.GetBrandCount(c.Request.Context()); err == nil {
			health["brands"] = brandCount
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIRefreshBrand(c *gin.Context) {
	website := c.Query("website")
	if website == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing website parameter"})
		return
	}
	if h.brandRepo == nil || h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Background refresh unavailable"})
		return
	}

	origin := scraper.NormalizeOrigin(website)
	b, err := h.brandRepo.GetBrand(c.Request.Context(), origin)
	if err != nil {
		slog.Error("Database error", "operation", "get_brand", "origin", origin, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brand not found"})
		return
	}

	task := tasks.NewRefreshBrandTask(b.Website, h.service)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing refresh task", "origin", origin, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue refresh task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Refresh task enqueued",
		"brand": gin.H{
			"website":    b.Website,
			"name":       b.Name,
			"updated_at": b.UpdatedAt,
		},
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}
