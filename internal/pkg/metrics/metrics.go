package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 参加登録操作の結果（operation: join/leave, result: success/not_found/already_joined/...）
	AttendanceOpsTotal *prometheus.CounterVec

	// ストアの条件付き更新・読み取りの所要時間（backend, operation）
	StoreOpDuration *prometheus.HistogramVec

	// 集計対象のイベント数・満員のイベント数・参加者総数
	EventsTracked  prometheus.Gauge
	EventsFull     prometheus.Gauge
	AttendeesTotal prometheus.Gauge

	// プロフィールキャッシュの参照結果（result: hit/miss/error）
	ProfileCacheTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		AttendanceOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attendance_operations_total",
				Help: "Total number of join/leave attempts by outcome",
			},
			[]string{"operation", "result"},
		),
		StoreOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "attendance_store_operation_duration_seconds",
				Help:    "Time spent on attendance store operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"backend", "operation"},
		),
		EventsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "events_tracked",
			Help: "Number of events included in the last occupancy collection",
		}),
		EventsFull: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "events_full",
			Help: "Number of events at capacity in the last occupancy collection",
		}),
		AttendeesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "event_attendees_total",
			Help: "Sum of attendees across tracked events",
		}),
		ProfileCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "profile_cache_lookups_total",
				Help: "Profile cache lookups by result",
			},
			[]string{"result"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AttendanceOpsTotal,
		m.StoreOpDuration,
		m.EventsTracked,
		m.EventsFull,
		m.AttendeesTotal,
		m.ProfileCacheTotal,
	)

	return m
}

// ObserveAttendance は参加登録操作の結果を記録する（nil の場合は何もしない）
func (m *Metrics) ObserveAttendance(operation, result string) {
	if m == nil {
		return
	}
	m.AttendanceOpsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveStoreOp はストア操作の所要時間を記録する
func (m *Metrics) ObserveStoreOp(backend, operation string, seconds float64) {
	if m == nil {
		return
	}
	m.StoreOpDuration.WithLabelValues(backend, operation).Observe(seconds)
}

// ObserveProfileCache はプロフィールキャッシュの参照結果を件数分記録する
func (m *Metrics) ObserveProfileCache(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ProfileCacheTotal.WithLabelValues(result).Add(float64(n))
}

// SetOccupancy は占有状況のゲージを更新する
func (m *Metrics) SetOccupancy(tracked, full, attendees int) {
	if m == nil {
		return
	}
	m.EventsTracked.Set(float64(tracked))
	m.EventsFull.Set(float64(full))
	m.AttendeesTotal.Set(float64(attendees))
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
