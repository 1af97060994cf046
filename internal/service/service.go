package service

import (
	"context"

	"shortlink/internal/domain"
)

// URLService is the resolution pipeline: it issues short identifiers and
// resolves them back to long URLs through the cache and the URL record store
type URLService interface {
	// CreateShortURL issues a short identifier for a long URL
	CreateShortURL(ctx context.Context, req *domain.CreateShortURLRequest) (*domain.CreateShortURLResponse, error)

	// ResolveShortURL returns the long URL a short identifier redirects to
	ResolveShortURL(ctx context.Context, shortURLID string) (string, error)

	// RecordAccess appends an access log entry for a resolved identifier
	RecordAccess(ctx context.Context, shortURLID string) error
}

// AnalyticsService is the analytics pipeline over the access log
type AnalyticsService interface {
	// GenerateAnalytics counts accesses of shortURLID within timeFrame.
	// Unrecognized time frames are treated as "all".
	GenerateAnalytics(ctx context.Context, shortURLID, timeFrame string) (*domain.Analytics, error)
}
