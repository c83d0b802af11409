package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sanosuguru/go-event-rsvp/internal/api"
	"github.com/sanosuguru/go-event-rsvp/internal/pkg/logger"
	"github.com/sanosuguru/go-event-rsvp/internal/pkg/metrics"
)

// observeLogs はパッケージロガーを観測用に差し替える
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Get()
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(prev) })
	return logs
}

func TestSetupMiddleware(t *testing.T) {
	e := echo.New()
	SetupMiddleware(e)

	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "test")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Body.String())
	// リクエストIDが付与される
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}

func TestSetupMiddleware_KeepsExistingRequestID(t *testing.T) {
	e := echo.New()
	SetupMiddleware(e)
	e.GET("/test", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(echo.HeaderXRequestID, "existing-request-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "existing-request-id", rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequestLogger(t *testing.T) {
	t.Run("完了ログにリクエストIDが含まれる", func(t *testing.T) {
		logs := observeLogs(t)
		e := echo.New()
		e.Use(RequestLogger())
		e.GET("/test", func(c echo.Context) error {
			return c.String(http.StatusOK, "success")
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(echo.HeaderXRequestID, "req-1")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		entries := logs.FilterMessage("request completed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
		assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
	})

	t.Run("ハンドラーからコンテキストのロガーを使える", func(t *testing.T) {
		logs := observeLogs(t)
		e := echo.New()
		e.Use(RequestLogger())
		e.GET("/test", func(c echo.Context) error {
			logger.FromContext(c.Request().Context()).Info("handler log")
			return c.NoContent(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(echo.HeaderXRequestID, "req-2")
		e.ServeHTTP(httptest.NewRecorder(), req)

		entries := logs.FilterMessage("handler log").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-2", entries[0].ContextMap()["request_id"])
	})

	t.Run("クライアントエラーは警告で記録される", func(t *testing.T) {
		logs := observeLogs(t)
		e := echo.New()
		e.Use(RequestLogger())
		e.GET("/error", func(c echo.Context) error {
			return api.NewProblem(http.StatusConflict, "full", false, "full", errors.New("full"))
		})

		req := httptest.NewRequest(http.MethodGet, "/error", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		entries := logs.FilterMessage("client error").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, int64(http.StatusConflict), entries[0].ContextMap()["status"])
	})

	t.Run("サーバーエラーはエラーで記録される", func(t *testing.T) {
		logs := observeLogs(t)
		e := echo.New()
		e.Use(RequestLogger())
		e.GET("/server-error", func(c echo.Context) error {
			return c.String(http.StatusInternalServerError, "internal error")
		})

		req := httptest.NewRequest(http.MethodGet, "/server-error", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, 1, logs.FilterMessage("server error").Len())
	})
}

func TestPrometheusMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	e := echo.New()
	e.Use(PrometheusMiddleware(m))
	e.GET("/events/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.POST("/events/:id/rsvp", func(c echo.Context) error {
		return api.NewProblem(http.StatusConflict, "full", false, "full", errors.New("full"))
	})

	for _, path := range []string{"/events/a", "/events/b"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		e.ServeHTTP(httptest.NewRecorder(), req)
	}
	req := httptest.NewRequest(http.MethodPost, "/events/a/rsvp", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)

	// ルートのパターンでまとめて記録される
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/events/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/events/:id/rsvp", "409")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPRequestDuration))
}
