package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"shortlink/internal/domain"
)

// MockURLRepository is a mock implementation of URLRepository
type MockURLRepository struct {
	mock.Mock
}

func (m *MockURLRepository) FindByLongURL(ctx context.Context, longURL string) (*domain.URLRecord, error) {
	args := m.Called(ctx, longURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLRecord), args.Error(1)
}

func (m *MockURLRepository) FindByShortURLID(ctx context.Context, shortURLID string) (*domain.URLRecord, error) {
	args := m.Called(ctx, shortURLID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLRecord), args.Error(1)
}

func (m *MockURLRepository) Save(ctx context.Context, record *domain.URLRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockAccessLogRepository is a mock implementation of AccessLogRepository
type MockAccessLogRepository struct {
	mock.Mock
}

func (m *MockAccessLogRepository) Append(ctx context.Context, entry *domain.AccessLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAccessLogRepository) CountSince(ctx context.Context, shortURLID string, since time.Time) (int64, error) {
	args := m.Called(ctx, shortURLID, since)
	return args.Get(0).(int64), args.Error(1)
}

// MockCache is a mock implementation of Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// memoryURLRepository is an in-memory URLRepository with the same
// uniqueness rule as the PostgreSQL store
type memoryURLRepository struct {
	mu           sync.Mutex
	records      []*domain.URLRecord
	nextRecordID uint
	nextShortID  uint
}

func newMemoryURLRepository() *memoryURLRepository {
	return &memoryURLRepository{}
}

func cloneRecord(r *domain.URLRecord) *domain.URLRecord {
	c := *r
	c.ShortURLs = append([]domain.ShortURL(nil), r.ShortURLs...)
	return &c
}

func (m *memoryURLRepository) FindByLongURL(_ context.Context, longURL string) (*domain.URLRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.LongURL == longURL {
			return cloneRecord(r), nil
		}
	}
	return nil, domain.ErrURLNotFound
}

func (m *memoryURLRepository) FindByShortURLID(_ context.Context, shortURLID string) (*domain.URLRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if _, ok := r.FindShortURL(shortURLID); ok {
			return cloneRecord(r), nil
		}
	}
	return nil, domain.ErrURLNotFound
}

func (m *memoryURLRepository) Save(_ context.Context, record *domain.URLRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record.ID == 0 {
		for _, r := range m.records {
			if r.LongURL == record.LongURL {
				return domain.ErrLongURLExists
			}
		}
		m.nextRecordID++
		record.ID = m.nextRecordID
	}

	for i := range record.ShortURLs {
		if record.ShortURLs[i].ID == 0 {
			m.nextShortID++
			record.ShortURLs[i].ID = m.nextShortID
			record.ShortURLs[i].URLRecordID = record.ID
		}
	}

	for i, r := range m.records {
		if r.ID == record.ID {
			m.records[i] = cloneRecord(record)
			return nil
		}
	}
	m.records = append(m.records, cloneRecord(record))
	return nil
}

// memoryAccessLogRepository is an in-memory AccessLogRepository
type memoryAccessLogRepository struct {
	mu         sync.Mutex
	entries    []domain.AccessLog
	countCalls int
}

func (m *memoryAccessLogRepository) Append(_ context.Context, entry *domain.AccessLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryAccessLogRepository) CountSince(_ context.Context, shortURLID string, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.countCalls++
	var n int64
	for _, e := range m.entries {
		if e.ShortURLID == shortURLID && !e.AccessTime.Before(since) {
			n++
		}
	}
	return n, nil
}

// memoryCache is an in-memory Cache that remembers the TTL of each write
type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		values: make(map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCache) Ping(context.Context) error { return nil }

func (m *memoryCache) Close() error { return nil }
