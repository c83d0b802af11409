package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-rsvp/internal/domain/attendance"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/user"
	"github.com/sanosuguru/go-event-rsvp/internal/pkg/logger"
	"github.com/sanosuguru/go-event-rsvp/internal/pkg/metrics"
)

const defaultStoreTimeout = 3 * time.Second

// 操作名（メトリクスのラベル）
const (
	opJoin   = "join"
	opLeave  = "leave"
	opList   = "list"
	opRoster = "roster"
)

// ProfileResolver は参加者IDを表示用プロフィールに解決する
type ProfileResolver interface {
	Resolve(ctx context.Context, ids []string) (map[string]user.Profile, error)
}

// AttendanceOptions はAttendanceServiceの設定
type AttendanceOptions struct {
	Backend      string
	StoreTimeout time.Duration
	Metrics      *metrics.Metrics
	Profiles     ProfileResolver
}

// AttendanceService はイベントへの参加登録と取り消しを扱う
//
// 定員と重複の判定はストアの条件付き更新に任せ、このサービスはロックを持たない。
// 条件不成立の場合のみ一度だけ読み取りを行い、失敗理由を分類する。
type AttendanceService struct {
	store    attendance.Store
	backend  string
	timeout  time.Duration
	metrics  *metrics.Metrics
	profiles ProfileResolver
}

func NewAttendanceService(store attendance.Store, opts AttendanceOptions) *AttendanceService {
	timeout := opts.StoreTimeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &AttendanceService{
		store:    store,
		backend:  opts.Backend,
		timeout:  timeout,
		metrics:  opts.Metrics,
		profiles: opts.Profiles,
	}
}

// Join はユーザーをイベントの参加者に追加する
func (s *AttendanceService) Join(ctx context.Context, eventID, userID string) (*attendance.Snapshot, error) {
	if eventID == "" || userID == "" {
		return nil, s.finish(ctx, opJoin, eventID, userID, attendance.ErrInvalidArgument)
	}

	rec, err := s.add(ctx, eventID, userID)
	if err == nil {
		s.finish(ctx, opJoin, eventID, userID, nil)
		return attendance.NewSnapshot(rec), nil
	}
	if !errors.Is(err, attendance.ErrNoMatch) {
		return nil, s.finish(ctx, opJoin, eventID, userID, unavailable(err))
	}

	return nil, s.finish(ctx, opJoin, eventID, userID, s.classifyJoin(ctx, eventID, userID))
}

// classifyJoin は追加が行われなかった理由を一度の読み取りで判定する
// 読み取り結果は参考情報であり、再試行の判断には使わない
func (s *AttendanceService) classifyJoin(ctx context.Context, eventID, userID string) error {
	rec, err := s.get(ctx, eventID)
	switch {
	case errors.Is(err, attendance.ErrRecordNotFound):
		return attendance.ErrNotFound
	case err != nil:
		return unavailable(err)
	case rec.HasAttendee(userID):
		return attendance.ErrAlreadyJoined
	case rec.IsAtCapacity():
		return attendance.ErrFull
	default:
		// 更新と読み取りの間に状態が変わった
		return attendance.ErrConflict
	}
}

// Leave はユーザーをイベントの参加者から外す
func (s *AttendanceService) Leave(ctx context.Context, eventID, userID string) (*attendance.Snapshot, error) {
	if eventID == "" || userID == "" {
		return nil, s.finish(ctx, opLeave, eventID, userID, attendance.ErrInvalidArgument)
	}

	rec, err := s.remove(ctx, eventID, userID)
	if err == nil {
		s.finish(ctx, opLeave, eventID, userID, nil)
		return attendance.NewSnapshot(rec), nil
	}
	if !errors.Is(err, attendance.ErrNoMatch) {
		return nil, s.finish(ctx, opLeave, eventID, userID, unavailable(err))
	}

	_, err = s.get(ctx, eventID)
	switch {
	case errors.Is(err, attendance.ErrRecordNotFound):
		err = attendance.ErrNotFound
	case err != nil:
		err = unavailable(err)
	default:
		err = attendance.ErrNotJoined
	}
	return nil, s.finish(ctx, opLeave, eventID, userID, err)
}

// ListAttendees は現在の参加状況を返す
func (s *AttendanceService) ListAttendees(ctx context.Context, eventID string) (*attendance.Snapshot, error) {
	if eventID == "" {
		return nil, s.finish(ctx, opList, eventID, "", attendance.ErrInvalidArgument)
	}
	rec, err := s.get(ctx, eventID)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return nil, s.finish(ctx, opList, eventID, "", attendance.ErrNotFound)
		}
		return nil, s.finish(ctx, opList, eventID, "", unavailable(err))
	}
	s.finish(ctx, opList, eventID, "", nil)
	return attendance.NewSnapshot(rec), nil
}

// AttendeeView は参加者の表示用情報
// プロフィールが解決できなかった場合は ID のみ
type AttendeeView struct {
	ID    string
	Name  string
	Email string
}

// Roster は参加状況と参加者のプロフィール
type Roster struct {
	Snapshot  *attendance.Snapshot
	Attendees []AttendeeView
}

// Roster は参加状況に参加者のプロフィールを付けて返す
// プロフィールの取得に失敗しても参加状況は返す
func (s *AttendanceService) Roster(ctx context.Context, eventID string) (*Roster, error) {
	snap, err := s.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, err
	}

	views := make([]AttendeeView, len(snap.AttendeeIDs))
	for i, id := range snap.AttendeeIDs {
		views[i] = AttendeeView{ID: id}
	}
	if s.profiles == nil || len(views) == 0 {
		return &Roster{Snapshot: snap, Attendees: views}, nil
	}

	profiles, err := s.profiles.Resolve(ctx, snap.AttendeeIDs)
	if err != nil {
		logger.FromContext(ctx).Warn("参加者プロフィールの取得に失敗しました",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		s.metrics.ObserveAttendance(opRoster, "degraded")
		return &Roster{Snapshot: snap, Attendees: views}, nil
	}
	for i := range views {
		if p, ok := profiles[views[i].ID]; ok {
			views[i].Name = p.Name
			views[i].Email = p.Email
		}
	}
	return &Roster{Snapshot: snap, Attendees: views}, nil
}

func (s *AttendanceService) add(ctx context.Context, eventID, userID string) (*attendance.Record, error) {
	return s.call(ctx, "add", func(ctx context.Context) (*attendance.Record, error) {
		return s.store.AddAttendee(ctx, eventID, userID)
	})
}

func (s *AttendanceService) remove(ctx context.Context, eventID, userID string) (*attendance.Record, error) {
	return s.call(ctx, "remove", func(ctx context.Context) (*attendance.Record, error) {
		return s.store.RemoveAttendee(ctx, eventID, userID)
	})
}

func (s *AttendanceService) get(ctx context.Context, eventID string) (*attendance.Record, error) {
	return s.call(ctx, "get", func(ctx context.Context) (*attendance.Record, error) {
		return s.store.Get(ctx, eventID)
	})
}

// call はストア呼び出しごとにタイムアウトを設定し、所要時間を記録する
func (s *AttendanceService) call(ctx context.Context, op string, fn func(context.Context) (*attendance.Record, error)) (*attendance.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	rec, err := fn(ctx)
	s.metrics.ObserveStoreOp(s.backend, op, time.Since(start).Seconds())
	return rec, err
}

// unavailable は結果が確定しないストアエラーを包む
func unavailable(err error) error {
	return fmt.Errorf("%w: %v", attendance.ErrStoreUnavailable, err)
}

// finish は操作結果をメトリクスとログに記録し、err をそのまま返す
func (s *AttendanceService) finish(ctx context.Context, op, eventID, userID string, err error) error {
	result := resultLabel(err)
	s.metrics.ObserveAttendance(op, result)

	log := logger.FromContext(ctx)
	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("event_id", eventID),
		zap.String("result", result),
	}
	if userID != "" {
		fields = append(fields, zap.String("user_id", userID))
	}
	if attendance.IsRetryable(err) {
		log.Warn("参加登録の結果が確定しませんでした", append(fields, zap.Error(err))...)
	} else {
		log.Debug("参加登録を処理しました", fields...)
	}
	return err
}

// resultLabel はエラーをメトリクス用のラベルに変換する
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, attendance.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, attendance.ErrNotFound):
		return "not_found"
	case errors.Is(err, attendance.ErrAlreadyJoined):
		return "already_joined"
	case errors.Is(err, attendance.ErrNotJoined):
		return "not_joined"
	case errors.Is(err, attendance.ErrFull):
		return "full"
	case errors.Is(err, attendance.ErrConflict):
		return "conflict"
	default:
		return "store_unavailable"
	}
}
