package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCompositeHealthChecker(t *testing.T) {
	c := NewCompositeHealthChecker("1.2.3")
	status := c.Check(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, "No health checks registered", status.Message)

	c.AddCheck("database", NewPingCheck(pingFunc(func(context.Context) error { return nil })))
	status = c.Check(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Equal(t, "OK", status.Checks["database"].Message)

	c.AddCheck("cache", NewPingCheck(pingFunc(func(context.Context) error { return errors.New("connection refused") })))
	c.AddCheck("broker", NewPingCheck(pingFunc(func(context.Context) error { return errors.New("down") })))
	status = c.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.Equal(t, "Some checks failed: broker, cache", status.Message)
	assert.Equal(t, "connection refused", status.Checks["cache"].Message)
	assert.True(t, status.Checks["database"].Healthy)
}

func TestCompositeHealthChecker_Timeout(t *testing.T) {
	c := NewCompositeHealthChecker("")
	c.SetTimeout(10 * time.Millisecond)
	c.AddCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	status := c.Check(context.Background())
	require.Contains(t, status.Checks, "slow")
	assert.False(t, status.Checks["slow"].Healthy)
}

func TestTrimTrailingSlash(t *testing.T) {
	var seen string
	h := TrimTrailingSlash(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Path
	}))

	for in, want := range map[string]string{
		"/api/v1/questions/":  "/api/v1/questions",
		"/api/v1/questions//": "/api/v1/questions",
		"/api/v1/questions":   "/api/v1/questions",
		"/":                   "/",
	} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, in, nil))
		assert.Equal(t, want, seen, in)
	}
}

func TestChainHandler_Order(t *testing.T) {
	var order []string
	mw := func(name string) MiddlewareFunc {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := ChainHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("first"), mw("second"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestRequestSizeLimitAndSecurityHeaders(t *testing.T) {
	var readErr error
	h := ChainHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		for readErr == nil {
			_, readErr = r.Body.Read(buf)
		}
	}), SecurityHeadersMiddleware, RequestSizeLimitMiddleware(8))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 32))))

	var maxErr *http.MaxBytesError
	assert.ErrorAs(t, readErr, &maxErr)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
