package domain

import (
	"time"
)

// URLRecord correlates one long URL with every short identifier issued for it.
// LongURL is unique across records; re-shortening appends to ShortURLs.
type URLRecord struct {
	ID        uint       `gorm:"primaryKey" json:"-"`
	LongURLID string     `gorm:"uniqueIndex;not null;size:36" json:"longUrlId"`
	LongURL   string     `gorm:"uniqueIndex;not null;type:text" json:"longUrl"`
	ShortURLs []ShortURL `gorm:"foreignKey:URLRecordID;constraint:OnDelete:CASCADE" json:"shortUrls"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (URLRecord) TableName() string {
	return "url_records"
}

// ShortURL is one short identifier issued for a URLRecord.
// The same identifier may appear more than once on a record.
type ShortURL struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	URLRecordID uint      `gorm:"index;not null" json:"-"`
	ShortURLID  string    `gorm:"index;not null;size:7" json:"shortUrlId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName specifies the table name for GORM
func (ShortURL) TableName() string {
	return "short_urls"
}

// AppendShortURL adds a newly issued identifier to the end of the record
func (r *URLRecord) AppendShortURL(shortURLID string, now time.Time) {
	r.ShortURLs = append(r.ShortURLs, ShortURL{
		URLRecordID: r.ID,
		ShortURLID:  shortURLID,
		CreatedAt:   now,
	})
}

// FindShortURL returns the first entry, in insertion order, carrying shortURLID
func (r *URLRecord) FindShortURL(shortURLID string) (*ShortURL, bool) {
	for i := range r.ShortURLs {
		if r.ShortURLs[i].ShortURLID == shortURLID {
			return &r.ShortURLs[i], true
		}
	}
	return nil, false
}

// AccessLog is one successful resolution of a short identifier. Append-only.
type AccessLog struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	ShortURLID string    `gorm:"index:idx_access_logs_short_url_time,priority:1;not null;size:7" json:"shortUrlId"`
	AccessTime time.Time `gorm:"index:idx_access_logs_short_url_time,priority:2;not null" json:"accessTime"`
}

// TableName specifies the table name for GORM
func (AccessLog) TableName() string {
	return "access_logs"
}

// NewAccessLog creates an entry stamped with the given access time
func NewAccessLog(shortURLID string, accessTime time.Time) *AccessLog {
	return &AccessLog{
		ShortURLID: shortURLID,
		AccessTime: accessTime,
	}
}

// CreateShortURLRequest represents the request payload for creating a short URL
type CreateShortURLRequest struct {
	LongURL string `json:"longUrl" binding:"required"`
}

// CreateShortURLResponse represents the response after creating a short URL
type CreateShortURLResponse struct {
	ShortURL   string `json:"shortUrl"`
	ShortURLID string `json:"shortUrlId"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}
