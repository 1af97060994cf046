package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shortlink/internal/domain"
	"shortlink/internal/service"
	"shortlink/pkg/logger"
)

// URLHandler handles HTTP requests for shortening, redirecting and analytics
type URLHandler struct {
	urls      service.URLService
	analytics service.AnalyticsService
	logger    *logger.Logger
}

// NewURLHandler creates a new URL handler with dependencies
func NewURLHandler(urls service.URLService, analytics service.AnalyticsService, logger *logger.Logger) *URLHandler {
	return &URLHandler{
		urls:      urls,
		analytics: analytics,
		logger:    logger,
	}
}

// ShortenURL handles POST /shorten
func (h *URLHandler) ShortenURL(c *gin.Context) {
	var req domain.CreateShortURLRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			Error:   "invalid_request",
			Message: "Request body must be JSON with a longUrl field",
			Code:    http.StatusBadRequest,
		})
		return
	}

	response, err := h.urls.CreateShortURL(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// RedirectURL handles GET /:shortUrlId with a 301 to the long URL
func (h *URLHandler) RedirectURL(c *gin.Context) {
	shortURLID := c.Param("shortUrlId")

	longURL, err := h.urls.ResolveShortURL(c.Request.Context(), shortURLID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// The service logs the failure; a missed access entry must not block the redirect
	_ = h.urls.RecordAccess(c.Request.Context(), shortURLID)

	c.Redirect(http.StatusMovedPermanently, longURL)
}

type analyticsBody struct {
	TimeFrame string `json:"timeFrame"`
}

// GetAnalytics handles GET /analytics?shortUrlId=&timeFrame=
func (h *URLHandler) GetAnalytics(c *gin.Context) {
	shortURLID := c.Query("shortUrlId")

	timeFrame, ok := c.GetQuery("timeFrame")
	if !ok && c.Request.ContentLength > 0 {
		var body analyticsBody
		if err := c.ShouldBindJSON(&body); err == nil {
			timeFrame = body.TimeFrame
		}
	}

	result, err := h.analytics.GenerateAnalytics(c.Request.Context(), shortURLID, timeFrame)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleError maps domain errors onto HTTP responses
func (h *URLHandler) handleError(c *gin.Context, err error) {
	var appErr *domain.AppError

	switch {
	case errors.As(err, &appErr) && appErr.Internal:
		// Log internal errors but don't expose details to users
		h.logger.Errorw("Internal server error", "path", c.Request.URL.Path, "error", appErr.Err)
		c.JSON(appErr.StatusCode, domain.ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
			Code:    appErr.StatusCode,
		})

	case errors.As(err, &appErr):
		c.JSON(appErr.StatusCode, domain.ErrorResponse{
			Error:   errorCode(appErr),
			Message: appErr.Message,
			Code:    appErr.StatusCode,
		})

	case errors.Is(err, domain.ErrURLNotFound):
		c.JSON(http.StatusNotFound, domain.ErrorResponse{
			Error:   "not_found",
			Message: "Short URL not found",
			Code:    http.StatusNotFound,
		})

	default:
		h.logger.Errorw("Unexpected error", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "internal_error",
			Message: "An unexpected error occurred",
			Code:    http.StatusInternalServerError,
		})
	}
}

func errorCode(err *domain.AppError) string {
	switch {
	case errors.Is(err, domain.ErrURLNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, domain.ErrInvalidShortURL):
		return "invalid_short_url"
	default:
		return "client_error"
	}
}
