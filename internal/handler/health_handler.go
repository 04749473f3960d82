package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mblog/internal/pkg/response"
)

const healthCheckTimeout = 2 * time.Second

type pinger interface {
	PingContext(ctx context.Context) error
}

type cachePinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    pinger
	cache cachePinger
}

func NewHealthHandler(db pinger, cache cachePinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) Root(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"message": "Welcome to the Blog API Service!"})
}

// Healthz fails only when the database is unreachable; the service keeps
// working without its cache.
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()
	logger := logutil.GetLogger(ctx)

	if err := h.db.PingContext(ctx); err != nil {
		logger.Error("database ping failed", zap.Error(err))
		response.Success(c, http.StatusServiceUnavailable, gin.H{"status": "unavailable", "cache": "unknown"})
		return
	}
	cacheStatus := "ok"
	if h.cache == nil {
		cacheStatus = "disabled"
	} else if err := h.cache.Ping(ctx); err != nil {
		logger.Warn("cache ping failed", zap.Error(err))
		cacheStatus = "degraded"
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok", "cache": cacheStatus})
}
