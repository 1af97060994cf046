package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shortlink/internal/domain"
	"shortlink/internal/repository"
)

type accessLogRepository struct {
	db *gorm.DB
}

// NewAccessLogRepository creates a new PostgreSQL access log repository
func NewAccessLogRepository(db *gorm.DB) repository.AccessLogRepository {
	return &accessLogRepository{db: db}
}

func (r *accessLogRepository) Append(ctx context.Context, entry *domain.AccessLog) error {
	if entry.AccessTime.IsZero() {
		entry.AccessTime = time.Now()
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return domain.NewInternalError(err)
	}
	return nil
}

// CountSince uses the (short_url_id, access_time) composite index
func (r *accessLogRepository) CountSince(ctx context.Context, shortURLID string, since time.Time) (int64, error) {
	var count int64

	result := r.db.WithContext(ctx).
		Model(&domain.AccessLog{}).
		Where("short_url_id = ? AND access_time >= ?", shortURLID, since).
		Count(&count)

	if result.Error != nil {
		return 0, domain.NewInternalError(result.Error)
	}

	return count, nil
}
