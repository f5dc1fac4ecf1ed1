package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/riskwire/riskwire/app/metrics"
	"github.com/riskwire/riskwire/app/resilience"
	"github.com/riskwire/riskwire/app/store"
)

func NewHandler(repo *store.AlertRepository, collector *metrics.Collector, registry *resilience.Registry, version string) *Handler {
	return &Handler{
		repo:      repo,
		collector: collector,
		registry:  registry,
		version:   version,
		started:   time.Now(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if h.repo == nil {
		health["persistence"] = "disabled"
	} else if count, err := h.repo.Count(c.Request.Context()); err == nil {
		health["alerts"] = count
	} else {
		health["status"] = "degraded"
		slog.Error("Database error", "operation", "count_alerts", "error", err)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metrics":  h.collector.GetSnapshot(),
		"services": h.registry.GetSnapshot(),
	})
}

func (h *Handler) APIListAlerts(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence disabled"})
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	alerts, err := h.repo.GetRecent(c.Request.Context(), c.Query("country"), limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_alerts", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(alerts),
		"alerts": alerts,
	})
}
