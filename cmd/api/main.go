package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

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
	"github.com/sanosuguru/go-event-rsvp/internal/pkg/logger"
	"github.com/sanosuguru/go-event-rsvp/internal/pkg/metrics"
	"github.com/sanosuguru/go-event-rsvp/internal/worker"
)

// backend はストア種別ごとに組み立てた依存関係
type backend struct {
	events   event.Repository
	store    attendance.Store
	index    attendance.Index
	profiles application.ProfileResolver
	checks   []handler.ReadinessCheck
	closers  []func() error
}

func (b *backend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logger.Warn("接続のクローズに失敗しました", zap.Error(err))
		}
	}
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.App.Env)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("設定が不正です", zap.Error(err))
	}
	m := metrics.Init()

	b, err := buildBackend(cfg, m)
	if err != nil {
		logger.Fatal("バックエンドの初期化に失敗しました", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer b.close()

	// サービス初期化
	attendanceService := application.NewAttendanceService(b.store, application.AttendanceOptions{
		Backend:      cfg.Store.Backend,
		StoreTimeout: cfg.Attendance.StoreTimeout,
		Metrics:      m,
		Profiles:     b.profiles,
	})
	eventService := application.NewEventService(b.events, b.store, b.index)

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	handler.RegisterRoutes(e, handler.Handlers{
		Event:      handler.NewEventHandler(eventService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Health:     handler.NewHealthHandler(b.checks...),
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(middleware.LoadMetricsConfig()))

	// 占有状況レポーター
	reporter := worker.NewOccupancyReporter(eventService, m, cfg.Worker.OccupancyInterval)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go reporter.Start(workerCtx)

	// サーバー起動
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	go func() {
		logger.Info("サーバーを起動します", zap.String("addr", addr), zap.String("backend", cfg.Store.Backend))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")
	reporter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
		return
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}

// buildBackend は STORE_BACKEND に応じてストアと周辺の依存を組み立てる
func buildBackend(cfg *config.Config, m *metrics.Metrics) (*backend, error) {
	if !cfg.UsesDatabase() {
		logger.Warn("メモリストアで起動します。データはプロセス内にのみ保持されます")
		store := memory.NewEventStore()
		return &backend{events: store, store: store, index: store}, nil
	}

	b := &backend{}
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, db.Close)
	b.checks = append(b.checks, handler.ReadinessCheck{
		Name: "postgres",
		Ping: func(ctx context.Context) error { return postgres.Ping(ctx, db) },
	})
	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		b.close()
		return nil, err
	}
	b.events = postgres.NewEventRepository(db)

	rc, err := redisinfra.NewClient(&cfg.Redis)
	switch {
	case err == nil:
		b.closers = append(b.closers, rc.Close)
		b.checks = append(b.checks, handler.ReadinessCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return redisinfra.Ping(ctx, rc) },
		})
	case cfg.Store.Backend == config.BackendRedis:
		b.close()
		return nil, err
	default:
		// キャッシュなしで続行する
		logger.Warn("Redisに接続できないため、プロフィールキャッシュを無効にします", zap.Error(err))
		rc = nil
	}

	if cfg.Store.Backend == config.BackendRedis {
		store := redisinfra.NewAttendanceStore(rc)
		b.store, b.index = store, store
	} else {
		store := postgres.NewAttendanceStore(db)
		b.store, b.index = store, store
	}

	b.profiles = newProfileService(postgres.NewUserDirectory(db), rc, cfg, m)
	return b, nil
}

func newProfileService(dir *postgres.UserDirectory, rc *redis.Client, cfg *config.Config, m *metrics.Metrics) *application.ProfileService {
	if rc == nil {
		return application.NewProfileService(dir, nil, cfg.Cache.ProfileTTL, m)
	}
	return application.NewProfileService(dir, redisinfra.NewProfileCache(rc), cfg.Cache.ProfileTTL, m)
}
