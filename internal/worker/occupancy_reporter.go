package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-rsvp/internal/application"
	"github.com/sanosuguru/go-event-rsvp/internal/pkg/logger"
)

// OccupancyCollector は全イベントの占有状況を集計するインターフェース
type OccupancyCollector interface {
	CollectOccupancy(ctx context.Context) (application.Occupancy, error)
}

// OccupancyPublisher は集計結果を公開するインターフェース
type OccupancyPublisher interface {
	SetOccupancy(tracked, full, attendees int)
}

// OccupancyReporter は占有状況を定期的に集計してメトリクスに反映するワーカー
// 参照のみで、参加状況は変更しない
type OccupancyReporter struct {
	collector OccupancyCollector
	publisher OccupancyPublisher
	interval  time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewOccupancyReporter は新しいレポーターを作成
func NewOccupancyReporter(c OccupancyCollector, p OccupancyPublisher, interval time.Duration) *OccupancyReporter {
	return &OccupancyReporter{
		collector: c,
		publisher: p,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start はレポーターを開始。起動直後に一度集計する
func (r *OccupancyReporter) Start(ctx context.Context) {
	logger.Info("占有状況レポーター開始", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	r.report(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("占有状況レポーター停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("占有状況レポーター停止（シグナル受信）")
			return
		case <-ticker.C:
			r.report(ctx)
		}
	}
}

// Stop はレポーターを停止し、終了を待つ
func (r *OccupancyReporter) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// report は占有状況を集計して公開する。失敗時は前回の値を残す
func (r *OccupancyReporter) report(ctx context.Context) {
	log := logger.Get()

	occ, err := r.collector.CollectOccupancy(ctx)
	if err != nil {
		log.Error("占有状況の集計失敗", zap.Error(err))
		return
	}

	r.publisher.SetOccupancy(occ.Tracked, occ.Full, occ.Attendees)
	log.Debug("占有状況を更新",
		zap.Int("tracked", occ.Tracked),
		zap.Int("full", occ.Full),
		zap.Int("attendees", occ.Attendees),
	)
}
