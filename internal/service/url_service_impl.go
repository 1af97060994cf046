package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shortlink/internal/cache"
	"shortlink/internal/config"
	"shortlink/internal/domain"
	"shortlink/internal/repository"
	"shortlink/internal/shortener"
	"shortlink/pkg/logger"
	"shortlink/pkg/validator"
)

// maxCollisionRetries bounds how many fresh long URL ids are minted when a
// derived short identifier already belongs to another long URL
const maxCollisionRetries = 5

// urlService implements the URLService interface
type urlService struct {
	repo       repository.URLRepository
	accessLogs repository.AccessLogRepository
	cache      *cacheAside
	baseURL    string
	logger     *logger.Logger

	now          func() time.Time
	newLongURLID func() string
}

// NewURLService creates a new URL service with dependencies injected.
// c may be nil, in which case every lookup goes to the store.
func NewURLService(
	repo repository.URLRepository,
	accessLogs repository.AccessLogRepository,
	c cache.Cache,
	cfg *config.Config,
	logger *logger.Logger,
) URLService {
	return &urlService{
		repo:         repo,
		accessLogs:   accessLogs,
		cache:        &cacheAside{cache: c, ttl: cfg.CacheTTL, logger: logger},
		baseURL:      cfg.BaseURL,
		logger:       logger,
		now:          time.Now,
		newLongURLID: shortener.NewLongURLID,
	}
}

// CreateShortURL issues a short identifier. A long URL seen before gets a new
// entry on its existing record, derived from the record's long URL id.
func (s *urlService) CreateShortURL(ctx context.Context, req *domain.CreateShortURLRequest) (*domain.CreateShortURLResponse, error) {
	if err := validator.ValidateLongURL(req.LongURL); err != nil {
		s.logger.Warnw("Invalid URL provided", "url", req.LongURL, "error", err)
		return nil, domain.NewValidationError(domain.ErrInvalidURL, "Invalid URL format: "+err.Error())
	}

	var shortURLID string

	record, err := s.repo.FindByLongURL(ctx, req.LongURL)
	switch {
	case err == nil:
		shortURLID, err = s.appendShortURL(ctx, record)
	case errors.Is(err, domain.ErrURLNotFound):
		shortURLID, err = s.createRecord(ctx, req.LongURL)
	default:
		s.logger.Errorw("Failed to look up long URL", "url", req.LongURL, "error", err)
		return nil, domain.NewInternalError(err)
	}
	if err != nil {
		return nil, err
	}

	s.cache.set(ctx, cache.ShortURLKey(shortURLID), req.LongURL)

	s.logger.Infow("URL shortened successfully", "short_url_id", shortURLID, "long_url", req.LongURL)

	return &domain.CreateShortURLResponse{
		ShortURL:   fmt.Sprintf("%s/%s", s.baseURL, shortURLID),
		ShortURLID: shortURLID,
	}, nil
}

// createRecord mints a long URL id for a first-time long URL and persists a new record.
// If a concurrent request created the record first, the new entry goes onto that record.
func (s *urlService) createRecord(ctx context.Context, longURL string) (string, error) {
	for i := 0; i < maxCollisionRetries; i++ {
		longURLID := s.newLongURLID()
		shortURLID := shortener.ShortURLID(longURLID)

		taken, err := s.shortURLTaken(ctx, shortURLID)
		if err != nil {
			s.logger.Errorw("Failed to check short URL id", "short_url_id", shortURLID, "error", err)
			return "", domain.NewInternalError(err)
		}
		if taken {
			s.logger.Warnw("Short URL id collision detected, retrying",
				"short_url_id", shortURLID,
				"attempt", i+1,
			)
			continue
		}

		record := &domain.URLRecord{
			LongURLID: longURLID,
			LongURL:   longURL,
		}
		record.AppendShortURL(shortURLID, s.now())

		err = s.repo.Save(ctx, record)
		if errors.Is(err, domain.ErrLongURLExists) {
			s.logger.Infow("Long URL recorded concurrently, appending to existing record", "url", longURL)
			existing, err := s.repo.FindByLongURL(ctx, longURL)
			if err != nil {
				s.logger.Errorw("Failed to reload long URL", "url", longURL, "error", err)
				return "", domain.NewInternalError(err)
			}
			return s.appendShortURL(ctx, existing)
		}
		if err != nil {
			s.logger.Errorw("Failed to create URL record", "url", longURL, "error", err)
			return "", domain.NewInternalError(err)
		}

		return shortURLID, nil
	}

	err := fmt.Errorf("%w after %d attempts", domain.ErrShortURLCollision, maxCollisionRetries)
	s.logger.Errorw("Failed to issue short URL id", "url", longURL, "error", err)
	return "", domain.NewInternalError(err)
}

// appendShortURL re-derives the identifier from the record's long URL id and
// appends it. The derivation is deterministic, so this returns the same
// identifier every time for a given record.
func (s *urlService) appendShortURL(ctx context.Context, record *domain.URLRecord) (string, error) {
	shortURLID := shortener.ShortURLID(record.LongURLID)
	record.AppendShortURL(shortURLID, s.now())

	if err := s.repo.Save(ctx, record); err != nil {
		s.logger.Errorw("Failed to append short URL", "short_url_id", shortURLID, "error", err)
		return "", domain.NewInternalError(err)
	}

	return shortURLID, nil
}

func (s *urlService) shortURLTaken(ctx context.Context, shortURLID string) (bool, error) {
	_, err := s.repo.FindByShortURLID(ctx, shortURLID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrURLNotFound):
		return false, nil
	default:
		return false, err
	}
}

// ResolveShortURL follows the cache-aside path: cache, then store, then populate the cache
func (s *urlService) ResolveShortURL(ctx context.Context, shortURLID string) (string, error) {
	if !validator.IsValidShortURL(shortURLID) {
		return "", domain.NewValidationError(domain.ErrInvalidShortURL, "Invalid short URL identifier")
	}

	key := cache.ShortURLKey(shortURLID)

	if longURL, found := s.cache.get(ctx, key); found {
		return longURL, nil
	}

	record, err := s.repo.FindByShortURLID(ctx, shortURLID)
	if errors.Is(err, domain.ErrURLNotFound) {
		s.logger.Infow("Short URL not found", "short_url_id", shortURLID)
		return "", domain.NewNotFoundError("Short URL")
	}
	if err != nil {
		s.logger.Errorw("Failed to resolve short URL", "short_url_id", shortURLID, "error", err)
		return "", domain.NewInternalError(err)
	}

	s.cache.set(ctx, key, record.LongURL)

	return record.LongURL, nil
}

// RecordAccess appends an access log entry stamped with the current time
func (s *urlService) RecordAccess(ctx context.Context, shortURLID string) error {
	if err := s.accessLogs.Append(ctx, domain.NewAccessLog(shortURLID, s.now())); err != nil {
		s.logger.Errorw("Failed to record access", "short_url_id", shortURLID, "error", err)
		return domain.NewInternalError(err)
	}
	return nil
}
