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

type CacheSuite struct {
	suite.Suite
	mr  *miniredis.Miniredis
	rdb *redis.Client
	e   *echo.Echo
}

func (s *CacheSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.e = echo.New()
}

func (s *CacheSuite) TearDownTest() {
	_ = s.rdb.Close()
	s.mr.Close()
}

func (s *CacheSuite) cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          15 * time.Second,
		KeyStrategy:  "route_query",
		Prefix:       "deskcache",
		MaxBodyBytes: 1 << 20,
	}
}

// do runs one request through the cache middleware wrapping a handler
// that counts its invocations.
func (s *CacheSuite) do(mw echo.MiddlewareFunc, method, target string, hits *int) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.SetPath("/v1/checkin/:tenant_id/:desk_id")
	h := mw(func(c echo.Context) error {
		*hits++
		return c.JSON(http.StatusOK, echo.Map{"busy": []string{}})
	})
	s.Require().NoError(h(c))
	return rec
}

func (s *CacheSuite) TestMissThenHit() {
	mw := NewRedisCache(s.cacheConfig(), s.rdb)
	hits := 0

	first := s.do(mw, http.MethodGet, "/v1/checkin/1/2", &hits)
	s.Equal("MISS", first.Header().Get("X-Cache"))
	s.Equal(1, hits)

	second := s.do(mw, http.MethodGet, "/v1/checkin/1/2", &hits)
	s.Equal("HIT", second.Header().Get("X-Cache"))
	s.Equal(1, hits, "handler must not run on a cache hit")
	s.Equal(first.Body.String(), second.Body.String())
	s.Equal(http.StatusOK, second.Code)
}

func (s *CacheSuite) TestEntryExpires() {
	mw := NewRedisCache(s.cacheConfig(), s.rdb)
	hits := 0

	s.do(mw, http.MethodGet, "/v1/checkin/1/2", &hits)
	s.mr.FastForward(16 * time.Second)

	rec := s.do(mw, http.MethodGet, "/v1/checkin/1/2", &hits)
	s.Equal("MISS", rec.Header().Get("X-Cache"))
	s.Equal(2, hits)
}

func (s *CacheSuite) TestNonCacheableMethodPassesThrough() {
	mw := NewRedisCache(s.cacheConfig(), s.rdb)
	hits := 0

	rec := s.do(mw, http.MethodPost, "/v1/checkin/1/2", &hits)
	s.Empty(rec.Header().Get("X-Cache"))
	s.Equal(1, hits)

	s.do(mw, http.MethodPost, "/v1/checkin/1/2", &hits)
	s.Equal(2, hits, "POST responses are never served from cache")
}

func (s *CacheSuite) TestDisabledConfigPassesThrough() {
	cfg := s.cacheConfig()
	cfg.Enabled = false
	mw := NewRedisCache(cfg, s.rdb)
	hits := 0

	s.do(mw, http.MethodGet, "/v1/checkin/1/2", &hits)
	s.do(mw, http.MethodGet, "/v1/checkin/1/2", &hits)
	s.Equal(2, hits)
}

func (s *CacheSuite) TestNilClientPassesThrough() {
	mw := NewRedisCache(s.cacheConfig(), nil)
	hits := 0

	s.do(mw, http.MethodGet, "/v1/checkin/1/2", &hits)
	s.do(mw, http.MethodGet, "/v1/checkin/1/2", &hits)
	s.Equal(2, hits)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func TestEncodeDecodePayload(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	body := []byte(`{"busy":[]}`)

	enc, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(enc)
	if !ok {
		t.Fatal("decode reported failure")
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if gotHdr.Get("Content-Type") != "application/json" {
		t.Fatalf("header lost: %v", gotHdr)
	}
	if string(gotBody) != string(body) {
		t.Fatalf("body = %q", gotBody)
	}

	// Truncated payloads must be rejected, not panic.
	if _, _, _, ok := decodePayload(enc[:5]); ok {
		t.Fatal("truncated payload accepted")
	}
}
