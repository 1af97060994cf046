package repository

import (
	"context"
	"time"

	"shortlink/internal/domain"
)

// URLRepository is the durable store of URL records.
// Lookups return domain.ErrURLNotFound when nothing matches; other failures wrap domain.ErrStore.
type URLRepository interface {
	// FindByLongURL retrieves the record for an exact long URL
	FindByLongURL(ctx context.Context, longURL string) (*domain.URLRecord, error)

	// FindByShortURLID retrieves the record owning a short identifier.
	// If several entries carry the identifier, the earliest issued one decides.
	FindByShortURLID(ctx context.Context, shortURLID string) (*domain.URLRecord, error)

	// Save persists a new record, or the short URLs appended to an existing one, atomically.
	// Returns domain.ErrLongURLExists when a new record loses a race on the unique long URL.
	Save(ctx context.Context, record *domain.URLRecord) error
}

// AccessLogRepository is the append-only store of access events
type AccessLogRepository interface {
	// Append records one access event
	Append(ctx context.Context, entry *domain.AccessLog) error

	// CountSince counts accesses of shortURLID with AccessTime >= since
	CountSince(ctx context.Context, shortURLID string, since time.Time) (int64, error)
}
