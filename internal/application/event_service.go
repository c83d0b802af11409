package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-rsvp/internal/domain/attendance"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/event"
	"github.com/sanosuguru/go-event-rsvp/internal/pkg/logger"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// EventService はイベントの作成・参照・削除を扱う
//
// 参加者集合をイベントと別の場所に持つストア（Provisioner を実装するもの）の場合、
// イベントの作成・削除に合わせて参加状況を用意・破棄し、参照時は参加者をストアから補う。
type EventService struct {
	eventRepo   event.Repository
	store       attendance.Store
	index       attendance.Index
	provisioner attendance.Provisioner
}

func NewEventService(eventRepo event.Repository, store attendance.Store, index attendance.Index) *EventService {
	s := &EventService{eventRepo: eventRepo, store: store, index: index}
	if p, ok := store.(attendance.Provisioner); ok {
		s.provisioner = p
	}
	return s
}

type CreateEventInput struct {
	Title       string
	Description string
	Location    string
	Category    event.Category
	StartAt     time.Time
	Capacity    int
	CreatorID   string
}

func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	e := event.NewEvent(input.Title, input.Description, input.Location, input.Category, input.StartAt, input.Capacity, input.CreatorID)
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	if s.provisioner != nil {
		if err := s.provisioner.Provision(ctx, e.ID, e.Capacity); err != nil {
			// 参加登録できないイベントを残さない
			if delErr := s.eventRepo.Delete(ctx, e.ID); delErr != nil {
				logger.FromContext(ctx).Error("作成途中のイベント削除に失敗しました",
					zap.String("event_id", e.ID), zap.Error(delErr))
			}
			return nil, fmt.Errorf("イベント作成に失敗しました: %w", err)
		}
	}
	return e, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachAttendees(ctx, []*event.Event{e}); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	events, err := s.eventRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.withAttendees(ctx, events)
}

// DeleteEvent は作成者に限りイベントを削除する
func (s *EventService) DeleteEvent(ctx context.Context, id, requesterID string) error {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !e.IsCreatedBy(requesterID) {
		return event.ErrNotCreator
	}
	// 先に参加状況を破棄し、削除後に参加登録が成立しないようにする
	if s.provisioner != nil {
		if err := s.provisioner.Discard(ctx, id); err != nil {
			return fmt.Errorf("イベント削除に失敗しました: %w", err)
		}
	}
	return s.eventRepo.Delete(ctx, id)
}

// ListRSVPs はユーザーが参加登録しているイベントを返す
func (s *EventService) ListRSVPs(ctx context.Context, userID string) ([]*event.Event, error) {
	ids, err := s.index.EventIDsOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*event.Event{}, nil
	}
	events, err := s.eventRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.withAttendees(ctx, events)
}

// ListCreated はユーザーが作成したイベントを返す
func (s *EventService) ListCreated(ctx context.Context, userID string) ([]*event.Event, error) {
	events, err := s.eventRepo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withAttendees(ctx, events)
}

// Occupancy は全イベントの占有状況の集計
type Occupancy struct {
	Tracked   int
	Full      int
	Attendees int
}

// CollectOccupancy は全イベントを走査して占有状況を集計する
func (s *EventService) CollectOccupancy(ctx context.Context) (Occupancy, error) {
	var occ Occupancy
	for offset := 0; ; offset += maxListLimit {
		events, err := s.eventRepo.List(ctx, maxListLimit, offset)
		if err != nil {
			return Occupancy{}, err
		}
		if err := s.attachAttendees(ctx, events); err != nil {
			return Occupancy{}, err
		}
		for _, e := range events {
			snap := attendance.NewSnapshot(&attendance.Record{EventID: e.ID, Capacity: e.Capacity, AttendeeIDs: e.AttendeeIDs})
			occ.Tracked++
			occ.Attendees += len(snap.AttendeeIDs)
			if snap.IsFull {
				occ.Full++
			}
		}
		if len(events) < maxListLimit {
			return occ, nil
		}
	}
}

// attachAttendees は参加者集合を別に持つストアから最新の参加者を補う
func (s *EventService) attachAttendees(ctx context.Context, events []*event.Event) error {
	if s.provisioner == nil {
		return nil
	}
	for _, e := range events {
		rec, err := s.store.Get(ctx, e.ID)
		if errors.Is(err, attendance.ErrRecordNotFound) {
			e.AttendeeIDs = []string{}
			continue
		}
		if err != nil {
			return fmt.Errorf("参加状況の取得に失敗: %w", err)
		}
		e.AttendeeIDs = rec.AttendeeIDs
	}
	return nil
}

func (s *EventService) withAttendees(ctx context.Context, events []*event.Event) ([]*event.Event, error) {
	if err := s.attachAttendees(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}
