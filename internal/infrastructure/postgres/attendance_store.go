package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-rsvp/internal/domain/attendance"
)

// attendanceRow は参加状況の行
type attendanceRow struct {
	ID          string         `db:"id"`
	Capacity    int            `db:"capacity"`
	AttendeeIDs pq.StringArray `db:"attendee_ids"`
}

func (r *attendanceRow) toRecord() *attendance.Record {
	ids := []string(r.AttendeeIDs)
	if ids == nil {
		ids = []string{}
	}
	return &attendance.Record{EventID: r.ID, Capacity: r.Capacity, AttendeeIDs: ids}
}

// 条件判定と更新を1文で行う。同じ行への同時UPDATEは行ロックで待たされ、
// 待機後は最新の行に対して WHERE が再評価されるため定員を超えない
const (
	addAttendeeQuery = `
		UPDATE events
		SET attendee_ids = array_append(attendee_ids, $2::text), updated_at = NOW()
		WHERE id = $1
		  AND NOT ($2::text = ANY(attendee_ids))
		  AND cardinality(attendee_ids) < capacity
		RETURNING id, capacity, attendee_ids
	`
	removeAttendeeQuery = `
		UPDATE events
		SET attendee_ids = array_remove(attendee_ids, $2::text), updated_at = NOW()
		WHERE id = $1
		  AND $2::text = ANY(attendee_ids)
		RETURNING id, capacity, attendee_ids
	`
	getAttendanceQuery = `SELECT id, capacity, attendee_ids FROM events WHERE id = $1`
	// idx_events_attendee_ids (GIN) が効くよう包含演算子で検索する
	eventIDsOfQuery    = `SELECT id FROM events WHERE attendee_ids @> ARRAY[$1::text] ORDER BY start_at ASC`
)

// AttendanceStore は events テーブルの attendee_ids 列を使う参加者ストア
type AttendanceStore struct {
	db *sqlx.DB
}

// NewAttendanceStore はAttendanceStoreを作成する
func NewAttendanceStore(db *sqlx.DB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

// AddAttendee は条件付きUPDATEで参加者を追加する
func (s *AttendanceStore) AddAttendee(ctx context.Context, eventID, userID string) (*attendance.Record, error) {
	return s.mutate(ctx, addAttendeeQuery, eventID, userID)
}

// RemoveAttendee は条件付きUPDATEで参加者を削除する
func (s *AttendanceStore) RemoveAttendee(ctx context.Context, eventID, userID string) (*attendance.Record, error) {
	return s.mutate(ctx, removeAttendeeQuery, eventID, userID)
}

func (s *AttendanceStore) mutate(ctx context.Context, query, eventID, userID string) (*attendance.Record, error) {
	var row attendanceRow
	if err := s.db.GetContext(ctx, &row, query, eventID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, attendance.ErrNoMatch
		}
		return nil, fmt.Errorf("参加者の更新に失敗しました: %w", err)
	}
	return row.toRecord(), nil
}

// Get は現在の参加状況を取得する
func (s *AttendanceStore) Get(ctx context.Context, eventID string) (*attendance.Record, error) {
	var row attendanceRow
	if err := s.db.GetContext(ctx, &row, getAttendanceQuery, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, fmt.Errorf("参加状況の取得に失敗しました: %w", err)
	}
	return row.toRecord(), nil
}

// EventIDsOf はユーザーが参加しているイベントIDを開催日時順に返す
func (s *AttendanceStore) EventIDsOf(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, eventIDsOfQuery, userID); err != nil {
		return nil, fmt.Errorf("参加イベントの取得に失敗しました: %w", err)
	}
	return ids, nil
}

var (
	_ attendance.Store = (*AttendanceStore)(nil)
	_ attendance.Index = (*AttendanceStore)(nil)
)
