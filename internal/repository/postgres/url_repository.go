package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shortlink/internal/domain"
	"shortlink/internal/repository"
)

// urlRepository implements the URLRepository interface for PostgreSQL
type urlRepository struct {
	db *gorm.DB
}

// NewURLRepository creates a new PostgreSQL URL repository
func NewURLRepository(db *gorm.DB) repository.URLRepository {
	return &urlRepository{db: db}
}

// Migrate creates or updates the tables backing both repositories
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.URLRecord{}, &domain.ShortURL{}, &domain.AccessLog{})
}

// FindByLongURL retrieves a record by its exact long URL
func (r *urlRepository) FindByLongURL(ctx context.Context, longURL string) (*domain.URLRecord, error) {
	var record domain.URLRecord

	result := r.db.WithContext(ctx).
		Preload("ShortURLs", orderedShortURLs).
		Where("long_url = ?", longURL).
		First(&record)

	if result.Error != nil {
		return nil, translateLookupError(result.Error)
	}

	return &record, nil
}

// FindByShortURLID retrieves the record owning a short identifier
func (r *urlRepository) FindByShortURLID(ctx context.Context, shortURLID string) (*domain.URLRecord, error) {
	var record domain.URLRecord

	result := r.db.WithContext(ctx).
		Joins("JOIN short_urls ON short_urls.url_record_id = url_records.id").
		Preload("ShortURLs", orderedShortURLs).
		Where("short_urls.short_url_id = ?", shortURLID).
		Order("short_urls.id").
		First(&record)

	if result.Error != nil {
		return nil, translateLookupError(result.Error)
	}

	return &record, nil
}

// Save writes the record row (when new) and every not-yet-persisted short URL
// in one transaction
func (r *urlRepository) Save(ctx context.Context, record *domain.URLRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if record.ID == 0 {
			if err := tx.Omit(clause.Associations).Create(record).Error; err != nil {
				return err
			}
		} else if err := tx.Model(&domain.URLRecord{ID: record.ID}).UpdateColumn("updated_at", time.Now()).Error; err != nil {
			return err
		}

		pending := make([]*domain.ShortURL, 0, 1)
		for i := range record.ShortURLs {
			if record.ShortURLs[i].ID == 0 {
				record.ShortURLs[i].URLRecordID = record.ID
				pending = append(pending, &record.ShortURLs[i])
			}
		}

		if len(pending) == 0 {
			return nil
		}
		return tx.Create(pending).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrLongURLExists
		}
		return domain.NewInternalError(err)
	}

	return nil
}

// orderedShortURLs preloads short URLs in insertion order
func orderedShortURLs(db *gorm.DB) *gorm.DB {
	return db.Order("short_urls.id")
}

func translateLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrURLNotFound
	}
	return domain.NewInternalError(err)
}
