package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chefs-fridge/internal/core/session"
	"chefs-fridge/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDeduplication(t *testing.T) {
	d := NewDeduplicator(time.Minute)
	defer d.Close()

	r := gin.New()
	r.Use(d.Middleware())
	r.POST("/x", func(c *gin.Context) {
		body, _ := c.GetRawData()
		c.String(http.StatusOK, string(body))
	})

	w := perform(r, http.MethodPost, "/x", `{"a":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"a":1}`, w.Body.String(), "body is restored for the handler")

	w = perform(r, http.MethodPost, "/x", `{"a":1}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")

	w = perform(r, http.MethodPost, "/x", `{"a":2}`)
	assert.Equal(t, http.StatusOK, w.Code, "different body is a different request")
}

func TestDeduplicationExtraKeys(t *testing.T) {
	d := NewDeduplicator(time.Minute)
	defer d.Close()

	state := "a"
	r := gin.New()
	r.POST("/x", d.Middleware(func(*gin.Context) string { return state }), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name  string
		state string
		want  int
	}{
		{"first request", "a", http.StatusOK},
		{"same state rejected", "a", http.StatusTooManyRequests},
		{"changed state allowed", "b", http.StatusOK},
		{"changed state repeated rejected", "b", http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		state = tt.state
		w := perform(r, http.MethodPost, "/x", "")
		assert.Equal(t, tt.want, w.Code, tt.name)
	}
}

func TestDeduplicatorWindowExpires(t *testing.T) {
	d := NewDeduplicator(time.Second)
	defer d.Close()

	now := time.Now()
	assert.False(t, d.seen("k", now))
	assert.True(t, d.seen("k", now.Add(500*time.Millisecond)))
	assert.False(t, d.seen("k", now.Add(3*time.Second)))

	d.cleanup(now.Add(time.Hour))
	assert.Empty(t, d.requests)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Second)
	now := rl.lastTime

	assert.True(t, rl.allowAt(now))
	assert.True(t, rl.allowAt(now))
	assert.False(t, rl.allowAt(now))
	assert.True(t, rl.allowAt(now.Add(600*time.Millisecond)), "tokens refill over time")
}

func TestClientLimiter(t *testing.T) {
	l := NewClientLimiter(1, time.Minute)
	defer l.Close()

	r := gin.New()
	r.Use(l.Middleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := func(ip string) int {
		rq := httptest.NewRequest(http.MethodGet, "/x", nil)
		rq.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, rq)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, req("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, req("10.0.0.1"))
	assert.Equal(t, http.StatusOK, req("10.0.0.2"), "each client has its own bucket")
	assert.Equal(t, 2, l.Len())
}

func TestClientLimiterCleanupRemovesIdle(t *testing.T) {
	l := NewClientLimiter(1, time.Minute)
	defer l.Close()

	now := time.Now()
	l.limiterFor("idle").lastTime = now.Add(-2 * time.Minute)
	l.limiterFor("active").lastTime = now

	tests := []struct {
		name    string
		at      time.Time
		removed int
		left    int
	}{
		{"only idle bucket removed", now, 1, 1},
		{"recent bucket kept", now.Add(30 * time.Second), 0, 1},
		{"bucket removed once idle", now.Add(2 * time.Minute), 1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.removed, l.cleanup(tt.at), tt.name)
		assert.Equal(t, tt.left, l.Len(), tt.name)
	}
}

func TestBodySizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodySizeLimit(4))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodPost, "/x", "too long")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
}

func TestSessionMiddleware(t *testing.T) {
	store := session.NewStore(config.SessionConfig{TTL: time.Hour}, nil)
	st := store.Create()

	r := gin.New()
	r.GET("/s/:id", Session(store, false), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentSession(c).ID)
	})

	w := perform(r, http.MethodGet, "/s/"+st.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, st.ID, w.Body.String())

	w = perform(r, http.MethodGet, "/s/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_NOT_FOUND")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := perform(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
