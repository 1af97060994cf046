package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shortlink/internal/config"
	"shortlink/internal/domain"
	"shortlink/pkg/logger"
)

// NewRouter configures the Gin router with middleware and routes
func NewRouter(urlHandler *URLHandler, healthHandler *HealthHandler, cfg *config.Config, log *logger.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg))
	router.Use(SecurityHeadersMiddleware())
	router.Use(TimeoutMiddleware(cfg.RequestTimeout))

	router.GET("/health", healthHandler.Health)

	router.POST("/shorten", urlHandler.ShortenURL)
	router.GET("/analytics", urlHandler.GetAnalytics)

	// Short URL redirection
	router.GET("/:shortUrlId", urlHandler.RedirectURL)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, domain.ErrorResponse{
			Error:   "not_found",
			Message: "endpoint not found",
			Code:    http.StatusNotFound,
		})
	})

	return router
}
