package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-event-rsvp/internal/application"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/attendance"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/event"
)

// MockEventService はEventServiceInterfaceのモック
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) events(args mock.Arguments) ([]*event.Event, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventService) CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	return m.events(m.Called(ctx, limit, offset))
}

func (m *MockEventService) DeleteEvent(ctx context.Context, id, requesterID string) error {
	args := m.Called(ctx, id, requesterID)
	return args.Error(0)
}

func (m *MockEventService) ListRSVPs(ctx context.Context, userID string) ([]*event.Event, error) {
	return m.events(m.Called(ctx, userID))
}

func (m *MockEventService) ListCreated(ctx context.Context, userID string) ([]*event.Event, error) {
	return m.events(m.Called(ctx, userID))
}

// MockAttendanceService はAttendanceServiceInterfaceのモック
type MockAttendanceService struct {
	mock.Mock
}

func (m *MockAttendanceService) Join(ctx context.Context, eventID, userID string) (*attendance.Snapshot, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Snapshot), args.Error(1)
}

func (m *MockAttendanceService) Leave(ctx context.Context, eventID, userID string) (*attendance.Snapshot, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Snapshot), args.Error(1)
}

func (m *MockAttendanceService) Roster(ctx context.Context, eventID string) (*application.Roster, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.Roster), args.Error(1)
}
