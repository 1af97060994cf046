package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shortlink/internal/cache"
	"shortlink/internal/domain"
)

const serviceVersion = "1.0.0"

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports the state of the durable store and the cache
type HealthHandler struct {
	db    Pinger
	cache cache.Cache
}

// NewHealthHandler creates a health handler. c may be nil when running without a cache.
func NewHealthHandler(db Pinger, c cache.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: c}
}

// Health handles GET /health. A failing database is fatal (503); a failing
// cache only degrades the service.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK

	if h.cache == nil || h.cache.Ping(ctx) != nil {
		status = "degraded"
	}
	if h.db != nil && h.db.PingContext(ctx) != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, domain.HealthResponse{
		Status:    status,
		Service:   "shortlink",
		Version:   serviceVersion,
		Timestamp: time.Now().UTC(),
	})
}
