package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-event-rsvp/internal/domain/attendance"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/event"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/user"
)

// MockEventRepository はevent.Repositoryのモック
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) GetByIDs(ctx context.Context, ids []string) ([]*event.Event, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) ListByCreator(ctx context.Context, creatorID string) ([]*event.Event, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAttendanceStore はattendance.Storeのモック
type MockAttendanceStore struct {
	mock.Mock
}

func (m *MockAttendanceStore) record(args mock.Arguments) (*attendance.Record, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Record), args.Error(1)
}

func (m *MockAttendanceStore) AddAttendee(ctx context.Context, eventID, userID string) (*attendance.Record, error) {
	return m.record(m.Called(ctx, eventID, userID))
}

func (m *MockAttendanceStore) RemoveAttendee(ctx context.Context, eventID, userID string) (*attendance.Record, error) {
	return m.record(m.Called(ctx, eventID, userID))
}

func (m *MockAttendanceStore) Get(ctx context.Context, eventID string) (*attendance.Record, error) {
	return m.record(m.Called(ctx, eventID))
}

func (m *MockAttendanceStore) EventIDsOf(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockProvisioningStore は参加者集合を別に持つストアのモック
type MockProvisioningStore struct {
	MockAttendanceStore
}

func (m *MockProvisioningStore) Provision(ctx context.Context, eventID string, capacity int) error {
	args := m.Called(ctx, eventID, capacity)
	return args.Error(0)
}

func (m *MockProvisioningStore) Discard(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// MockDirectory はuser.Directoryのモック
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Resolve(ctx context.Context, ids []string) (map[string]user.Profile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]user.Profile), args.Error(1)
}

// MockProfileCache はProfileCacheのモック
type MockProfileCache struct {
	mock.Mock
}

func (m *MockProfileCache) GetMany(ctx context.Context, ids []string) (map[string]user.Profile, []string, error) {
	args := m.Called(ctx, ids)
	var found map[string]user.Profile
	if v := args.Get(0); v != nil {
		found = v.(map[string]user.Profile)
	}
	var missing []string
	if v := args.Get(1); v != nil {
		missing = v.([]string)
	}
	return found, missing, args.Error(2)
}

func (m *MockProfileCache) SetMany(ctx context.Context, profiles map[string]user.Profile, ttl time.Duration) error {
	args := m.Called(ctx, profiles, ttl)
	return args.Error(0)
}
