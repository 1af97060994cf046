package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shortlink/internal/config"
	"shortlink/internal/domain"
	"shortlink/pkg/logger"
)

type AnalyticsServiceTestSuite struct {
	repo    *MockURLRepository
	logs    *MockAccessLogRepository
	cache   *MockCache
	service *analyticsService
}

func setupAnalyticsServiceTest(t *testing.T, requireKnownID bool) *AnalyticsServiceTestSuite {
	t.Helper()

	repo := new(MockURLRepository)
	logs := new(MockAccessLogRepository)
	c := new(MockCache)
	cfg := testConfig()
	cfg.AnalyticsRequireKnownID = requireKnownID

	svc := NewAnalyticsService(repo, logs, c, cfg, logger.NewNop()).(*analyticsService)
	svc.now = func() time.Time { return fixedNow }

	return &AnalyticsServiceTestSuite{
		repo:    repo,
		logs:    logs,
		cache:   c,
		service: svc,
	}
}

func TestGenerateAnalytics_CacheHit(t *testing.T) {
	suite := setupAnalyticsServiceTest(t, true)
	ctx := context.Background()

	suite.cache.On("Get", ctx, "analytics:abc:24h").
		Return(`{"timeFrame":"24h","accessCount":5}`, true, nil)

	result, err := suite.service.GenerateAnalytics(ctx, "abc", "24h")

	require.NoError(t, err)
	assert.Equal(t, &domain.Analytics{TimeFrame: domain.TimeFrame24h, AccessCount: 5}, result)
	suite.logs.AssertNotCalled(t, "CountSince", mock.Anything, mock.Anything, mock.Anything)
	suite.repo.AssertNotCalled(t, "FindByShortURLID", mock.Anything, mock.Anything)
}

func TestGenerateAnalytics_CachedTimeFrameIsAuthoritative(t *testing.T) {
	suite := setupAnalyticsServiceTest(t, true)
	ctx := context.Background()

	suite.cache.On("Get", ctx, "analytics:abc:all").
		Return(`{"timeFrame":"all","accessCount":12}`, true, nil)

	result, err := suite.service.GenerateAnalytics(ctx, "abc", "last-month")

	require.NoError(t, err)
	assert.Equal(t, domain.TimeFrameAll, result.TimeFrame)
	assert.Equal(t, int64(12), result.AccessCount)
}

func TestGenerateAnalytics_CacheMiss(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		key       string
		since     time.Time
		timeFrame domain.TimeFrame
	}{
		{"24h", "24h", "analytics:abc:24h", fixedNow.AddDate(0, 0, -1), domain.TimeFrame24h},
		{"7d", "7d", "analytics:abc:7d", fixedNow.AddDate(0, 0, -7), domain.TimeFrame7d},
		{"all", "all", "analytics:abc:all", time.Unix(0, 0).UTC(), domain.TimeFrameAll},
		{"empty", "", "analytics:abc:all", time.Unix(0, 0).UTC(), domain.TimeFrameAll},
		{"garbage", "garbage", "analytics:abc:all", time.Unix(0, 0).UTC(), domain.TimeFrameAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suite := setupAnalyticsServiceTest(t, true)
			ctx := context.Background()

			suite.cache.On("Get", ctx, tt.key).Return("", false, nil)
			suite.cache.On("Get", ctx, "shortUrl:abc").Return("http://cloudflare.com", true, nil)
			suite.logs.On("CountSince", ctx, "abc", tt.since).Return(int64(5), nil)
			suite.cache.On("Set", ctx, tt.key, `{"timeFrame":"`+string(tt.timeFrame)+`","accessCount":5}`, time.Hour).
				Return(nil)

			result, err := suite.service.GenerateAnalytics(ctx, "abc", tt.raw)

			require.NoError(t, err)
			assert.Equal(t, tt.timeFrame, result.TimeFrame)
			assert.Equal(t, int64(5), result.AccessCount)
			suite.logs.AssertExpectations(t)
			suite.cache.AssertExpectations(t)
		})
	}
}

func TestGenerateAnalytics_UnknownID(t *testing.T) {
	t.Run("rejected when a known id is required", func(t *testing.T) {
		suite := setupAnalyticsServiceTest(t, true)
		ctx := context.Background()

		suite.cache.On("Get", ctx, "analytics:nope:all").Return("", false, nil)
		suite.cache.On("Get", ctx, "shortUrl:nope").Return("", false, nil)
		suite.repo.On("FindByShortURLID", ctx, "nope").Return(nil, domain.ErrURLNotFound)

		_, err := suite.service.GenerateAnalytics(ctx, "nope", "all")

		assert.ErrorIs(t, err, domain.ErrURLNotFound)
		assertStatus(t, err, http.StatusNotFound)
		suite.logs.AssertNotCalled(t, "CountSince", mock.Anything, mock.Anything, mock.Anything)
		suite.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("zero when not required", func(t *testing.T) {
		suite := setupAnalyticsServiceTest(t, false)
		ctx := context.Background()

		suite.cache.On("Get", ctx, "analytics:nope:7d").Return("", false, nil)
		suite.logs.On("CountSince", ctx, "nope", fixedNow.AddDate(0, 0, -7)).Return(int64(0), nil)
		suite.cache.On("Set", ctx, "analytics:nope:7d", `{"timeFrame":"7d","accessCount":0}`, time.Hour).Return(nil)

		result, err := suite.service.GenerateAnalytics(ctx, "nope", "7d")

		require.NoError(t, err)
		assert.Equal(t, int64(0), result.AccessCount)
		suite.repo.AssertNotCalled(t, "FindByShortURLID", mock.Anything, mock.Anything)
	})
}

func TestGenerateAnalytics_KnownIDFromStore(t *testing.T) {
	suite := setupAnalyticsServiceTest(t, true)
	ctx := context.Background()

	suite.cache.On("Get", ctx, "analytics:abc:all").Return("", false, nil)
	suite.cache.On("Get", ctx, "shortUrl:abc").Return("", false, nil)
	suite.repo.On("FindByShortURLID", ctx, "abc").Return(&domain.URLRecord{ID: 1}, nil)
	suite.logs.On("CountSince", ctx, "abc", time.Unix(0, 0).UTC()).Return(int64(0), nil)
	suite.cache.On("Set", ctx, "analytics:abc:all", mock.Anything, time.Hour).Return(nil)

	result, err := suite.service.GenerateAnalytics(ctx, "abc", "all")

	require.NoError(t, err)
	assert.Equal(t, int64(0), result.AccessCount)
	suite.repo.AssertExpectations(t)
}

func TestGenerateAnalytics_CorruptCacheEntryRecomputed(t *testing.T) {
	suite := setupAnalyticsServiceTest(t, false)
	ctx := context.Background()

	suite.cache.On("Get", ctx, "analytics:abc:24h").Return("not json", true, nil)
	suite.logs.On("CountSince", ctx, "abc", fixedNow.AddDate(0, 0, -1)).Return(int64(3), nil)
	suite.cache.On("Set", ctx, "analytics:abc:24h", `{"timeFrame":"24h","accessCount":3}`, time.Hour).Return(nil)

	result, err := suite.service.GenerateAnalytics(ctx, "abc", "24h")

	require.NoError(t, err)
	assert.Equal(t, int64(3), result.AccessCount)
	suite.cache.AssertExpectations(t)
}

func TestGenerateAnalytics_CacheFailuresIgnored(t *testing.T) {
	suite := setupAnalyticsServiceTest(t, false)
	ctx := context.Background()

	suite.cache.On("Get", ctx, "analytics:abc:24h").Return("", false, domain.NewCacheError("redis get", errConnRefused))
	suite.logs.On("CountSince", ctx, "abc", fixedNow.AddDate(0, 0, -1)).Return(int64(2), nil)
	suite.cache.On("Set", ctx, "analytics:abc:24h", mock.Anything, time.Hour).
		Return(domain.NewCacheError("redis set", errConnRefused))

	result, err := suite.service.GenerateAnalytics(ctx, "abc", "24h")

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.AccessCount)
}

func TestGenerateAnalytics_StoreError(t *testing.T) {
	suite := setupAnalyticsServiceTest(t, false)
	ctx := context.Background()

	suite.cache.On("Get", ctx, "analytics:abc:all").Return("", false, nil)
	suite.logs.On("CountSince", ctx, "abc", mock.Anything).Return(int64(0), domain.NewInternalError(errConnRefused))

	_, err := suite.service.GenerateAnalytics(ctx, "abc", "all")

	assert.ErrorIs(t, err, domain.ErrStore)
	assertStatus(t, err, http.StatusInternalServerError)
	suite.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateAnalytics_InvalidID(t *testing.T) {
	suite := setupAnalyticsServiceTest(t, true)

	_, err := suite.service.GenerateAnalytics(context.Background(), "bad id!", "24h")

	assert.ErrorIs(t, err, domain.ErrInvalidShortURL)
	assertStatus(t, err, http.StatusBadRequest)
	suite.cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestAnalytics_CacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryURLRepository()
	logs := &memoryAccessLogRepository{}
	c := newMemoryCache()
	cfg := testConfig()

	urls := NewURLService(repo, logs, c, cfg, logger.NewNop())
	analytics := NewAnalyticsService(repo, logs, c, cfg, logger.NewNop())

	resp, err := urls.CreateShortURL(ctx, &domain.CreateShortURLRequest{LongURL: "http://cloudflare.com"})
	require.NoError(t, err)
	other, err := urls.CreateShortURL(ctx, &domain.CreateShortURLRequest{LongURL: "https://example.com"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, urls.RecordAccess(ctx, resp.ShortURLID))
	}
	require.NoError(t, urls.RecordAccess(ctx, other.ShortURLID))
	// Outside the 24h window
	logs.entries = append(logs.entries, domain.AccessLog{ShortURLID: resp.ShortURLID, AccessTime: time.Now().AddDate(0, 0, -3)})

	first, err := analytics.GenerateAnalytics(ctx, resp.ShortURLID, "24h")
	require.NoError(t, err)
	assert.Equal(t, &domain.Analytics{TimeFrame: domain.TimeFrame24h, AccessCount: 5}, first)
	assert.Equal(t, `{"timeFrame":"24h","accessCount":5}`, c.values["analytics:"+resp.ShortURLID+":24h"])

	second, err := analytics.GenerateAnalytics(ctx, resp.ShortURLID, "24h")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, logs.countCalls)

	all, err := analytics.GenerateAnalytics(ctx, resp.ShortURLID, "whatever")
	require.NoError(t, err)
	assert.Equal(t, domain.TimeFrameAll, all.TimeFrame)
	assert.Equal(t, int64(6), all.AccessCount)
}

func TestAnalytics_UnknownIDWithDefaultConfig(t *testing.T) {
	t.Setenv("ANALYTICS_REQUIRE_KNOWN_ID", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("BASE_URL", "")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	ctx := context.Background()
	logs := &memoryAccessLogRepository{}
	analytics := NewAnalyticsService(newMemoryURLRepository(), logs, newMemoryCache(), cfg, logger.NewNop())

	result, err := analytics.GenerateAnalytics(ctx, "neverX", "24h")

	require.NoError(t, err)
	assert.Equal(t, &domain.Analytics{TimeFrame: domain.TimeFrame24h, AccessCount: 0}, result)
	assert.Equal(t, 1, logs.countCalls)
}
