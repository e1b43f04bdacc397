package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/clients/redis"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/ctxutil"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type stubAuth struct {
	userID uuid.UUID
}

func (s stubAuth) RegisterUser(context.Context, *types.User) error { return nil }
func (s stubAuth) LoginUser(context.Context, string, string) (string, error) {
	return "", nil
}
func (s stubAuth) CurrentUser(context.Context) (*types.User, error) { return nil, nil }
func (s stubAuth) GetAccessTTL() time.Duration                      { return time.Hour }
func (s stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	if token != "good" {
		return ctx, errors.New("bad token")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: token, UserID: s.userID}), nil
}

type countingLimiter struct {
	limit int
	seen  map[string]int
	err   error
}

func (l *countingLimiter) Allow(_ context.Context, key string) (redis.Decision, error) {
	if l.err != nil {
		return redis.Decision{}, l.err
	}
	l.seen[key]++
	n := l.seen[key]
	d := redis.Decision{Allowed: n <= l.limit, Limit: l.limit, Remaining: l.limit - n}
	if !d.Allowed {
		d.Remaining = 0
		d.RetryAfter = 1500 * time.Millisecond
	}
	return d, nil
}

func newEngine(auth *AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{auth.RequireAuth()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.String(http.StatusOK, rd.UserID.String())
	})
	r.POST("/api/attempts", handlers...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/attempts", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	uid := uuid.New()
	r := newEngine(NewAuthMiddleware(logger.Nop(), stubAuth{userID: uid}))

	if rec := do(r, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: %d", rec.Code)
	}
	if rec := do(r, "bad"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", rec.Code)
	}
	rec := do(r, "good")
	if rec.Code != http.StatusOK || rec.Body.String() != uid.String() {
		t.Fatalf("good token: %d %q", rec.Code, rec.Body.String())
	}

	nobody := newEngine(NewAuthMiddleware(logger.Nop(), stubAuth{}))
	if rec := do(nobody, "good"); rec.Code != http.StatusForbidden {
		t.Fatalf("nil user: %d", rec.Code)
	}
}

func TestRateLimitPerStudent(t *testing.T) {
	uid := uuid.New()
	lim := &countingLimiter{limit: 2, seen: map[string]int{}}
	r := newEngine(NewAuthMiddleware(logger.Nop(), stubAuth{userID: uid}), RateLimit(logger.Nop(), lim, nil, "attempts"))

	for i := 0; i < 2; i++ {
		if rec := do(r, "good"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, rec.Code)
		}
	}
	rec := do(r, "good")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("Retry-After: %q", got)
	}
	if lim.seen["attempts:"+uid.String()] != 3 {
		t.Fatalf("limiter key: %v", lim.seen)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	lim := &countingLimiter{err: errors.New("redis down")}
	r := newEngine(NewAuthMiddleware(logger.Nop(), stubAuth{userID: uuid.New()}), RateLimit(logger.Nop(), lim, nil, "attempts"))
	if rec := do(r, "good"); rec.Code != http.StatusOK {
		t.Fatalf("limiter error should not block: %d", rec.Code)
	}

	off := newEngine(NewAuthMiddleware(logger.Nop(), stubAuth{userID: uuid.New()}), RateLimit(logger.Nop(), nil, nil, "attempts"))
	if rec := do(off, "good"); rec.Code != http.StatusOK {
		t.Fatalf("disabled limiter: %d", rec.Code)
	}
}

func TestTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		c.String(http.StatusOK, td.RequestID)
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != "req-123" || rec.Header().Get("X-Request-Id") != "req-123" {
		t.Fatalf("request id: body=%q header=%q", rec.Body.String(), rec.Header().Get("X-Request-Id"))
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("trace id not set")
	}
}
