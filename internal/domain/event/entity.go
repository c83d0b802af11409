package event

import (
	"slices"
	"strings"
	"time"
)

// Category はイベントのカテゴリを表す
type Category string

const (
	CategoryConference Category = "conference"
	CategoryWorkshop   Category = "workshop"
	CategorySocial     Category = "social"
	CategorySports     Category = "sports"
	CategoryMusic      Category = "music"
	CategoryTech       Category = "tech"
	CategoryOther      Category = "other"
)

var categories = []Category{
	CategoryConference, CategoryWorkshop, CategorySocial,
	CategorySports, CategoryMusic, CategoryTech, CategoryOther,
}

// IsValid は定義済みのカテゴリかを返す
func (c Category) IsValid() bool {
	return slices.Contains(categories, c)
}

// Event はイベントエンティティを表す
// AttendeeIDs は参加登録（attendance）経由でのみ変更される
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	Category    Category
	StartAt     time.Time
	Capacity    int
	CreatorID   string
	AttendeeIDs []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewEvent は新しいイベントを作成する
func NewEvent(title, description, location string, category Category, startAt time.Time, capacity int, creatorID string) *Event {
	now := time.Now()
	if category == "" {
		category = CategoryOther
	}
	return &Event{
		Title:       strings.TrimSpace(title),
		Description: description,
		Location:    strings.TrimSpace(location),
		Category:    category,
		StartAt:     startAt,
		Capacity:    capacity,
		CreatorID:   creatorID,
		AttendeeIDs: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Title == "" {
		return ErrTitleRequired
	}
	if e.Location == "" {
		return ErrLocationRequired
	}
	if e.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if !e.Category.IsValid() {
		return ErrInvalidCategory
	}
	if e.CreatorID == "" {
		return ErrCreatorRequired
	}
	return nil
}

// IsCreatedBy は指定ユーザーが作成者かを返す
func (e *Event) IsCreatedBy(userID string) bool {
	return e.CreatorID == userID
}
