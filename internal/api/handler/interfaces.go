package handler

import (
	"context"

	"github.com/sanosuguru/go-event-rsvp/internal/application"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/attendance"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/event"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error)
	DeleteEvent(ctx context.Context, id, requesterID string) error
	ListRSVPs(ctx context.Context, userID string) ([]*event.Event, error)
	ListCreated(ctx context.Context, userID string) ([]*event.Event, error)
}

// AttendanceServiceInterface は参加登録サービスのインターフェース
type AttendanceServiceInterface interface {
	Join(ctx context.Context, eventID, userID string) (*attendance.Snapshot, error)
	Leave(ctx context.Context, eventID, userID string) (*attendance.Snapshot, error)
	Roster(ctx context.Context, eventID string) (*application.Roster, error)
}
