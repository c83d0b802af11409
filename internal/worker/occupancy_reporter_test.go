package worker

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-event-rsvp/internal/application"
	"github.com/sanosuguru/go-event-rsvp/internal/pkg/metrics"
)

// MockOccupancyCollector はOccupancyCollectorのモック
type MockOccupancyCollector struct {
	mock.Mock
}

func (m *MockOccupancyCollector) CollectOccupancy(ctx context.Context) (application.Occupancy, error) {
	args := m.Called(ctx)
	return args.Get(0).(application.Occupancy), args.Error(1)
}

func TestNewOccupancyReporter(t *testing.T) {
	collector := new(MockOccupancyCollector)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	reporter := NewOccupancyReporter(collector, m, time.Minute)

	assert.NotNil(t, reporter)
	assert.Equal(t, time.Minute, reporter.interval)
	assert.NotNil(t, reporter.stopCh)
	assert.NotNil(t, reporter.doneCh)
}

func TestOccupancyReporter_Report(t *testing.T) {
	t.Run("集計結果がゲージに反映される", func(t *testing.T) {
		collector := new(MockOccupancyCollector)
		collector.On("CollectOccupancy", mock.Anything).
			Return(application.Occupancy{Tracked: 4, Full: 1, Attendees: 12}, nil)
		m := metrics.NewWithRegistry(prometheus.NewRegistry())
		reporter := NewOccupancyReporter(collector, m, time.Minute)

		reporter.report(context.Background())

		assert.Equal(t, 4.0, testutil.ToFloat64(m.EventsTracked))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsFull))
		assert.Equal(t, 12.0, testutil.ToFloat64(m.AttendeesTotal))
		collector.AssertExpectations(t)
	})

	t.Run("エラー時は前回の値を残す", func(t *testing.T) {
		collector := new(MockOccupancyCollector)
		collector.On("CollectOccupancy", mock.Anything).
			Return(application.Occupancy{Tracked: 2}, nil).Once()
		collector.On("CollectOccupancy", mock.Anything).
			Return(application.Occupancy{}, assert.AnError).Once()
		m := metrics.NewWithRegistry(prometheus.NewRegistry())
		reporter := NewOccupancyReporter(collector, m, time.Minute)

		reporter.report(context.Background())
		reporter.report(context.Background())

		assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsTracked))
		collector.AssertExpectations(t)
	})
}

func TestOccupancyReporter_StartStop(t *testing.T) {
	t.Run("開始と停止が正常に動作する", func(t *testing.T) {
		collector := new(MockOccupancyCollector)
		collector.On("CollectOccupancy", mock.Anything).Return(application.Occupancy{}, nil)
		reporter := NewOccupancyReporter(collector, metrics.NewWithRegistry(prometheus.NewRegistry()), 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go reporter.Start(ctx)
		time.Sleep(120 * time.Millisecond)
		reporter.Stop()

		select {
		case <-reporter.doneCh:
		case <-time.After(1 * time.Second):
			t.Error("reporter did not stop in time")
		}
		// 起動直後の集計とティックごとの集計
		assert.GreaterOrEqual(t, len(collector.Calls), 2)
	})

	t.Run("コンテキストキャンセルで停止する", func(t *testing.T) {
		collector := new(MockOccupancyCollector)
		collector.On("CollectOccupancy", mock.Anything).Return(application.Occupancy{}, nil)
		reporter := NewOccupancyReporter(collector, metrics.NewWithRegistry(prometheus.NewRegistry()), 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			reporter.Start(ctx)
			close(done)
		}()

		time.Sleep(80 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(1 * time.Second):
			t.Error("reporter did not stop after context cancel")
		}
	})
}
