package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-rsvp/internal/api"
	"github.com/sanosuguru/go-event-rsvp/internal/api/handler"
	"github.com/sanosuguru/go-event-rsvp/internal/api/middleware"
	"github.com/sanosuguru/go-event-rsvp/internal/application"
	"github.com/sanosuguru/go-event-rsvp/internal/config"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/attendance"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/event"
	"github.com/sanosuguru/go-event-rsvp/internal/infrastructure/memory"
	"github.com/sanosuguru/go-event-rsvp/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-event-rsvp/internal/infrastructure/redis"
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo *echo.Echo
}

// newTestServer はテスト用サーバーを作成する
// E2E_STORE_BACKEND が postgres / redis の場合は実際の接続を使い、接続できなければスキップする
func newTestServer(t *testing.T) *TestServer {
	t.Helper()

	var (
		events event.Repository
		store  attendance.Store
		index  attendance.Index
	)
	backend := os.Getenv("E2E_STORE_BACKEND")
	switch backend {
	case config.BackendPostgres, config.BackendRedis:
		cfg := config.Load()
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			t.Skipf("DB接続エラー: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		require.NoError(t, postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath))
		_, err = db.Exec("TRUNCATE TABLE events")
		require.NoError(t, err)
		events = postgres.NewEventRepository(db)

		if backend == config.BackendRedis {
			rc, err := redisinfra.NewClient(&cfg.Redis)
			if err != nil {
				t.Skipf("Redis接続エラー: %v", err)
			}
			t.Cleanup(func() { rc.Close() })
			s := redisinfra.NewAttendanceStore(rc)
			store, index = s, s
		} else {
			s := postgres.NewAttendanceStore(db)
			store, index = s, s
		}
	default:
		backend = config.BackendMemory
		s := memory.NewEventStore()
		events, store, index = s, s, s
	}

	attendanceService := application.NewAttendanceService(store, application.AttendanceOptions{Backend: backend})
	eventService := application.NewEventService(events, store, index)

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)
	handler.RegisterRoutes(e, handler.Handlers{
		Event:      handler.NewEventHandler(eventService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Health:     handler.NewHealthHandler(),
	})
	return &TestServer{Echo: e}
}

// Do はリクエストを送信してレスポンスを返す
func (s *TestServer) Do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// CreateEvent はイベントを作成してIDを返す
func (s *TestServer) CreateEvent(t *testing.T, host string, capacity int) string {
	t.Helper()
	rec := s.Do(t, http.MethodPost, "/api/v1/events", host, map[string]interface{}{
		"title":    "E2Eイベント",
		"location": "オンライン",
		"category": "tech",
		"start_at": "2030-01-01T10:00:00+09:00",
		"capacity": capacity,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp handler.EventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
