package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-rsvp/internal/domain/event"
)

// invalid_text_representation（UUID形式でないIDなど）
const pqInvalidTextRepresentation = "22P02"

// isInvalidID は不正な形式のIDによるエラーかを返す
func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidTextRepresentation
}

const eventColumns = `id, title, description, location, category, start_at, capacity, creator_id, attendee_ids, created_at, updated_at`

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description *string        `db:"description"`
	Location    string         `db:"location"`
	Category    string         `db:"category"`
	StartAt     time.Time      `db:"start_at"`
	Capacity    int            `db:"capacity"`
	CreatorID   string         `db:"creator_id"`
	AttendeeIDs pq.StringArray `db:"attendee_ids"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	var desc string
	if r.Description != nil {
		desc = *r.Description
	}
	attendees := []string(r.AttendeeIDs)
	if attendees == nil {
		attendees = []string{}
	}
	return &event.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: desc,
		Location:    r.Location,
		Category:    event.Category(r.Category),
		StartAt:     r.StartAt,
		Capacity:    r.Capacity,
		CreatorID:   r.CreatorID,
		AttendeeIDs: attendees,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toEntities(rows []eventRow) []*event.Event {
	events := make([]*event.Event, len(rows))
	for i := range rows {
		events[i] = rows[i].toEntity()
	}
	return events
}

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する（参加者集合は空で作成される）
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (title, description, location, category, start_at, capacity, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var desc *string
	if e.Description != "" {
		desc = &e.Description
	}

	err := r.db.QueryRowContext(ctx, query,
		e.Title, desc, e.Location, string(e.Category), e.StartAt, e.Capacity, e.CreatorID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	e.AttendeeIDs = []string{}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDs は複数IDのイベントを開催日時順に取得する
func (r *EventRepository) GetByIDs(ctx context.Context, ids []string) ([]*event.Event, error) {
	if len(ids) == 0 {
		return []*event.Event{}, nil
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id::text = ANY($1) ORDER BY start_at ASC`

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return toEntities(rows), nil
}

// List はイベント一覧を取得する
func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY start_at DESC LIMIT $1 OFFSET $2`

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}
	return toEntities(rows), nil
}

// ListByCreator は作成者のイベント一覧を取得する
func (r *EventRepository) ListByCreator(ctx context.Context, creatorID string) ([]*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE creator_id = $1 ORDER BY start_at DESC`

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, creatorID); err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}
	return toEntities(rows), nil
}

// Delete はイベントを削除する
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if isInvalidID(err) {
			return event.ErrEventNotFound
		}
		return fmt.Errorf("イベント削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
