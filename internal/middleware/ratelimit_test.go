package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/iliyamo/coworking-desk-booking/internal/config"
)

type RateLimitSuite struct {
	suite.Suite
	mr  *miniredis.Miniredis
	rdb *redis.Client
	e   *echo.Echo
}

func (s *RateLimitSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.e = echo.New()
}

func (s *RateLimitSuite) TearDownTest() {
	_ = s.rdb.Close()
	s.mr.Close()
}

func (s *RateLimitSuite) limiterConfig(capacity int) config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       capacity,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "deskrl",
	}
}

func (s *RateLimitSuite) request(mw echo.MiddlewareFunc, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/checkin/1/2", nil)
	req.RemoteAddr = ip + ":51234"
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.SetPath("/v1/checkin/:tenant_id/:desk_id")
	h := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})
	s.Require().NoError(h(c))
	return rec
}

func (s *RateLimitSuite) TestAllowsUpToCapacityThenBlocks() {
	mw := NewTokenBucket(s.limiterConfig(3), s.rdb)

	for i := 0; i < 3; i++ {
		rec := s.request(mw, "10.0.0.1")
		s.Equal(http.StatusCreated, rec.Code, "request %d should pass", i+1)
	}
	rec := s.request(mw, "10.0.0.1")
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.NotEmpty(rec.Header().Get("Retry-After"))
}

func (s *RateLimitSuite) TestBucketsAreKeyedByIP() {
	mw := NewTokenBucket(s.limiterConfig(1), s.rdb)

	s.Equal(http.StatusCreated, s.request(mw, "10.0.0.1").Code)
	s.Equal(http.StatusTooManyRequests, s.request(mw, "10.0.0.1").Code)
	// A different client still has a full bucket.
	s.Equal(http.StatusCreated, s.request(mw, "10.0.0.2").Code)
}

func (s *RateLimitSuite) TestRemainingHeaderCountsDown() {
	mw := NewTokenBucket(s.limiterConfig(2), s.rdb)

	first := s.request(mw, "10.0.0.1")
	s.Equal("2", first.Header().Get("X-RateLimit-Limit"))
	s.Equal("1", first.Header().Get("X-RateLimit-Remaining"))

	second := s.request(mw, "10.0.0.1")
	s.Equal("0", second.Header().Get("X-RateLimit-Remaining"))
}

func (s *RateLimitSuite) TestDisabledPassesThrough() {
	cfg := s.limiterConfig(1)
	cfg.Enabled = false
	mw := NewTokenBucket(cfg, s.rdb)

	for i := 0; i < 5; i++ {
		s.Equal(http.StatusCreated, s.request(mw, "10.0.0.1").Code)
	}
}

func (s *RateLimitSuite) TestNilClientPassesThrough() {
	mw := NewTokenBucket(s.limiterConfig(1), nil)

	for i := 0; i < 5; i++ {
		s.Equal(http.StatusCreated, s.request(mw, "10.0.0.1").Code)
	}
}

func TestRateLimitSuite(t *testing.T) {
	suite.Run(t, new(RateLimitSuite))
}

func TestBuildRateKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/receipts/abc", nil)
	req.RemoteAddr = "10.0.0.9:40000"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/receipts/:reference")
	c.Set("user_id", uint64(77))

	cases := map[string]string{
		"ip":       "deskrl:ip:10.0.0.9",
		"user":     "deskrl:user:77",
		"ip_route": "deskrl:ip:10.0.0.9:route:GET /v1/receipts/:reference",
	}
	for strategy, want := range cases {
		cfg := config.RateLimitConfig{Prefix: "deskrl", KeyStrategy: strategy}
		if got := buildRateKey(cfg, c); got != want {
			t.Fatalf("strategy %q: got %q, want %q", strategy, got, want)
		}
	}
}
