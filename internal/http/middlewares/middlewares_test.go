package middlewares

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/socialhub/internal/actorctx"
	"github.com/geocoder89/socialhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver struct {
	u   user.User
	ok  bool
	err error
}

func (f fakeResolver) ResolveUser(ctx context.Context, authorization string) (user.User, bool, error) {
	return f.u, f.ok, f.err
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireUser(t *testing.T) {
	amy := user.User{ID: "u-amy", Name: "Amy"}

	tests := []struct {
		name       string
		resolver   fakeResolver
		wantStatus int
	}{
		{name: "anonymous", resolver: fakeResolver{}, wantStatus: http.StatusUnauthorized},
		{name: "store_error", resolver: fakeResolver{err: errors.New("down")}, wantStatus: http.StatusInternalServerError},
		{name: "resolved", resolver: fakeResolver{u: amy, ok: true}, wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			reached := false

			r := gin.New()
			r.POST("/x", NewAuthMiddleware(tt.resolver).RequireUser(), func(c *gin.Context) {
				reached = true
				u, ok := UserFromContext(c)
				if !ok || u.ID != amy.ID {
					t.Fatalf("user not on context: %+v", u)
				}
				if id, _ := actorctx.UserIDFrom(c.Request.Context()); id != amy.ID {
					t.Fatalf("actor id not on request context: %q", id)
				}
				c.Status(http.StatusNoContent)
			})

			w := serve(r, httptest.NewRequest(http.MethodPost, "/x", nil))
			if w.Code != tt.wantStatus {
				t.Fatalf("status %d, want %d", w.Code, tt.wantStatus)
			}
			if reached != (tt.wantStatus == http.StatusNoContent) {
				t.Fatalf("handler reached=%v", reached)
			}
		})
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.Use(RequireJSON())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := []struct {
		name        string
		body        string
		contentType string
		wantStatus  int
	}{
		{name: "json", body: `{}`, contentType: "application/json; charset=utf-8", wantStatus: http.StatusNoContent},
		{name: "form", body: `a=b`, contentType: "application/x-www-form-urlencoded", wantStatus: http.StatusUnsupportedMediaType},
		{name: "missing_type", body: `{}`, wantStatus: http.StatusUnsupportedMediaType},
		{name: "bodyless", wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString(tt.body))
		if tt.contentType != "" {
			req.Header.Set("Content-Type", tt.contentType)
		}
		if w := serve(r, req); w.Code != tt.wantStatus {
			t.Fatalf("%s: status %d, want %d", tt.name, w.Code, tt.wantStatus)
		}
	}
}

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		d, _ := l.Allow(ctx, "k")
		if !d.Allowed {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}

	d, _ := l.Allow(ctx, "k")
	if d.Allowed || d.RetryAfter != time.Minute {
		t.Fatalf("third hit should be limited for a minute, got %+v", d)
	}

	if d, _ := l.Allow(ctx, "other"); !d.Allowed {
		t.Fatalf("keys must be independent")
	}

	now = now.Add(time.Minute + time.Second)
	if d, _ := l.Allow(ctx, "k"); !d.Allowed {
		t.Fatalf("new window should reset the counter")
	}
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("redis: connection refused")
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.POST("/login", RateLimit(NewMemoryLimiter(1, time.Minute), KeyByRouteAndIP, nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.POST("/open", RateLimit(brokenLimiter{}, KeyByRouteAndIP, nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	if w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)); w.Code != http.StatusNoContent {
		t.Fatalf("first call status %d", w.Code)
	}

	w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second call status %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"code":"rate_limited"`)) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	if w := serve(r, httptest.NewRequest(http.MethodPost, "/open", nil)); w.Code != http.StatusNoContent {
		t.Fatalf("failing backend should fail open, got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		rid, _ := actorctx.RequestIDFrom(c.Request.Context())
		if rid != c.GetString(CtxRequestID) {
			t.Errorf("request context id %q, gin id %q", rid, c.GetString(CtxRequestID))
		}
		c.String(http.StatusOK, rid)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := serve(r, req)
	if w.Header().Get("X-Request-Id") != "abc-123" || w.Body.String() != "abc-123" {
		t.Fatalf("incoming id not propagated: %q %q", w.Header().Get("X-Request-Id"), w.Body.String())
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected a generated id")
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/login", ok)
	r.GET("/posts", ok)
	r.GET("/docs", ok)

	login := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	if login.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("credential route must not be cached, got %q", login.Header().Get("Cache-Control"))
	}
	if login.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("nosniff missing")
	}

	feed := serve(r, httptest.NewRequest(http.MethodGet, "/posts", nil))
	if feed.Header().Get("Cache-Control") != "" {
		t.Fatalf("feed caching is left to the handler, got %q", feed.Header().Get("Cache-Control"))
	}
	if feed.Header().Get("Content-Security-Policy") != apiCSP {
		t.Fatalf("api csp missing")
	}

	docs := serve(r, httptest.NewRequest(http.MethodGet, "/docs", nil))
	if docs.Header().Get("Content-Security-Policy") != docsCSP {
		t.Fatalf("docs csp missing")
	}
}
