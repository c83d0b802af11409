package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-event-rsvp/internal/domain/attendance"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/event"
)

// record はイベント1件分の状態。mu が参加者集合の更新を直列化する
type record struct {
	mu      sync.Mutex
	ev      *event.Event
	deleted bool
}

// EventStore はプロセス内でイベントと参加者集合を保持するストア
// 開発・テスト用。レコード単位のミューテックスで条件判定と更新を不可分にする
type EventStore struct {
	mu     sync.RWMutex
	events map[string]*record
}

// NewEventStore は空のEventStoreを作成する
func NewEventStore() *EventStore {
	return &EventStore{events: make(map[string]*record)}
}

func (s *EventStore) lookup(id string) (*record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.events[id]
	return r, ok
}

func cloneEvent(e *event.Event) *event.Event {
	c := *e
	c.AttendeeIDs = slices.Clone(e.AttendeeIDs)
	if c.AttendeeIDs == nil {
		c.AttendeeIDs = []string{}
	}
	return &c
}

func toRecord(e *event.Event) *attendance.Record {
	return (&attendance.Record{EventID: e.ID, Capacity: e.Capacity, AttendeeIDs: e.AttendeeIDs}).Clone()
}

// Create は新しいイベントを作成する
func (s *EventStore) Create(ctx context.Context, e *event.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.AttendeeIDs == nil {
		e.AttendeeIDs = []string{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = &record{ev: cloneEvent(e)}
	return nil
}

// GetByID はIDからイベントを取得する
func (s *EventStore) GetByID(ctx context.Context, id string) (*event.Event, error) {
	r, ok := s.lookup(id)
	if !ok {
		return nil, event.ErrEventNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleted {
		return nil, event.ErrEventNotFound
	}
	return cloneEvent(r.ev), nil
}

// GetByIDs は複数IDのイベントを開催日時順に取得する
func (s *EventStore) GetByIDs(ctx context.Context, ids []string) ([]*event.Event, error) {
	events := make([]*event.Event, 0, len(ids))
	for _, id := range ids {
		e, err := s.GetByID(ctx, id)
		if err != nil {
			continue
		}
		events = append(events, e)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].StartAt.Before(events[j].StartAt) })
	return events, nil
}

func (s *EventStore) all() []*event.Event {
	s.mu.RLock()
	recs := make([]*record, 0, len(s.events))
	for _, r := range s.events {
		recs = append(recs, r)
	}
	s.mu.RUnlock()

	events := make([]*event.Event, 0, len(recs))
	for _, r := range recs {
		r.mu.Lock()
		if !r.deleted {
			events = append(events, cloneEvent(r.ev))
		}
		r.mu.Unlock()
	}
	return events
}

// List はイベント一覧を開催日時の降順で取得する
func (s *EventStore) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	events := s.all()
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartAt.Equal(events[j].StartAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].StartAt.After(events[j].StartAt)
	})
	if offset >= len(events) {
		return []*event.Event{}, nil
	}
	end := min(offset+limit, len(events))
	return events[offset:end], nil
}

// ListByCreator は作成者のイベント一覧を開催日時の降順で取得する
func (s *EventStore) ListByCreator(ctx context.Context, creatorID string) ([]*event.Event, error) {
	var events []*event.Event
	for _, e := range s.all() {
		if e.CreatorID == creatorID {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartAt.After(events[j].StartAt) })
	return events, nil
}

// Delete はイベントを削除する
func (s *EventStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	r, ok := s.events[id]
	if ok {
		delete(s.events, id)
	}
	s.mu.Unlock()
	if !ok {
		return event.ErrEventNotFound
	}
	// 削除済みの印を付け、参照を保持している更新を以後失敗させる
	r.mu.Lock()
	r.deleted = true
	r.mu.Unlock()
	return nil
}

// AddAttendee は条件を満たす場合に限り参加者を追加する
func (s *EventStore) AddAttendee(ctx context.Context, eventID, userID string) (*attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, ok := s.lookup(eventID)
	if !ok {
		return nil, attendance.ErrNoMatch
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleted {
		return nil, attendance.ErrNoMatch
	}
	rec := toRecord(r.ev)
	if !rec.CanAdmit(userID) {
		return nil, attendance.ErrNoMatch
	}
	r.ev.AttendeeIDs = append(r.ev.AttendeeIDs, userID)
	r.ev.UpdatedAt = time.Now()
	return toRecord(r.ev), nil
}

// RemoveAttendee は参加者に含まれる場合に限り削除する
func (s *EventStore) RemoveAttendee(ctx context.Context, eventID, userID string) (*attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, ok := s.lookup(eventID)
	if !ok {
		return nil, attendance.ErrNoMatch
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleted {
		return nil, attendance.ErrNoMatch
	}
	idx := slices.Index(r.ev.AttendeeIDs, userID)
	if idx < 0 {
		return nil, attendance.ErrNoMatch
	}
	r.ev.AttendeeIDs = slices.Delete(r.ev.AttendeeIDs, idx, idx+1)
	r.ev.UpdatedAt = time.Now()
	return toRecord(r.ev), nil
}

// Get は現在の参加状況を返す
func (s *EventStore) Get(ctx context.Context, eventID string) (*attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, ok := s.lookup(eventID)
	if !ok {
		return nil, attendance.ErrRecordNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleted {
		return nil, attendance.ErrRecordNotFound
	}
	return toRecord(r.ev), nil
}

// EventIDsOf はユーザーが参加しているイベントIDを返す
func (s *EventStore) EventIDsOf(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	for _, e := range s.all() {
		if slices.Contains(e.AttendeeIDs, userID) {
			ids = append(ids, e.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// インターフェースを満たしているか確認
var (
	_ event.Repository = (*EventStore)(nil)
	_ attendance.Store = (*EventStore)(nil)
	_ attendance.Index = (*EventStore)(nil)
)
