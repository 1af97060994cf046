package service

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"

	"shortlink/internal/cache"
	"shortlink/internal/config"
	"shortlink/internal/domain"
	"shortlink/internal/repository"
	"shortlink/pkg/logger"
	"shortlink/pkg/validator"
)

type analyticsService struct {
	repo           repository.URLRepository
	accessLogs     repository.AccessLogRepository
	cache          *cacheAside
	requireKnownID bool
	logger         *logger.Logger

	now func() time.Time
}

// NewAnalyticsService creates the analytics pipeline. c may be nil.
func NewAnalyticsService(
	repo repository.URLRepository,
	accessLogs repository.AccessLogRepository,
	c cache.Cache,
	cfg *config.Config,
	logger *logger.Logger,
) AnalyticsService {
	return &analyticsService{
		repo:           repo,
		accessLogs:     accessLogs,
		cache:          &cacheAside{cache: c, ttl: cfg.CacheTTL, logger: logger},
		requireKnownID: cfg.AnalyticsRequireKnownID,
		logger:         logger,
		now:            time.Now,
	}
}

// GenerateAnalytics serves from the cache when possible. A cached result is
// returned as stored; its TimeFrame is authoritative.
func (s *analyticsService) GenerateAnalytics(ctx context.Context, shortURLID, rawTimeFrame string) (*domain.Analytics, error) {
	if !validator.IsValidShortURL(shortURLID) {
		return nil, domain.NewValidationError(domain.ErrInvalidShortURL, "Invalid short URL identifier")
	}

	timeFrame := domain.ParseTimeFrame(rawTimeFrame)
	key := cache.AnalyticsKey(shortURLID, string(timeFrame))

	if cached, found := s.cache.get(ctx, key); found {
		var result domain.Analytics
		err := json.Unmarshal([]byte(cached), &result)
		if err == nil {
			return &result, nil
		}
		s.logger.Warnw("Discarding unreadable cached analytics", "key", key, "error", err)
	}

	if s.requireKnownID {
		if err := s.ensureKnown(ctx, shortURLID); err != nil {
			return nil, err
		}
	}

	count, err := s.accessLogs.CountSince(ctx, shortURLID, timeFrame.StartTime(s.now()))
	if err != nil {
		s.logger.Errorw("Failed to count accesses", "short_url_id", shortURLID, "time_frame", timeFrame, "error", err)
		return nil, domain.NewInternalError(err)
	}

	result := &domain.Analytics{
		TimeFrame:   timeFrame,
		AccessCount: count,
	}

	if payload, err := json.Marshal(result); err == nil {
		s.cache.set(ctx, key, string(payload))
	}

	return result, nil
}

// ensureKnown returns a not-found error for identifiers that were never issued.
// A cached redirect target counts as proof of existence.
func (s *analyticsService) ensureKnown(ctx context.Context, shortURLID string) error {
	if _, found := s.cache.get(ctx, cache.ShortURLKey(shortURLID)); found {
		return nil
	}

	_, err := s.repo.FindByShortURLID(ctx, shortURLID)
	if errors.Is(err, domain.ErrURLNotFound) {
		return domain.NewNotFoundError("Short URL")
	}
	if err != nil {
		s.logger.Errorw("Failed to look up short URL", "short_url_id", shortURLID, "error", err)
		return domain.NewInternalError(err)
	}
	return nil
}
