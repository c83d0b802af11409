package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-rsvp/internal/api/middleware"
	"github.com/sanosuguru/go-event-rsvp/internal/application"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/attendance"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/event"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type CreateEventRequest struct {
	Title       string `json:"title" validate:"required" example:"Go勉強会 #42"`
	Description string `json:"description" example:"並行処理の実践"`
	Location    string `json:"location" validate:"required" example:"渋谷"`
	Category    string `json:"category" validate:"omitempty,oneof=conference workshop social sports music tech other" example:"tech"`
	StartAt     string `json:"start_at" validate:"required" example:"2025-12-31T18:00:00+09:00"`
	Capacity    int    `json:"capacity" validate:"required,gt=0" example:"30"`
}

type EventResponse struct {
	ID             string   `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Title          string   `json:"title" example:"Go勉強会 #42"`
	Description    string   `json:"description" example:"並行処理の実践"`
	Location       string   `json:"location" example:"渋谷"`
	Category       string   `json:"category" example:"tech"`
	StartAt        string   `json:"start_at" example:"2025-12-31T18:00:00+09:00"`
	Capacity       int      `json:"capacity" example:"30"`
	CreatorID      string   `json:"creator_id" example:"user-1"`
	AttendeeIDs    []string `json:"attendee_ids" example:"user-2,user-3"`
	AvailableSpots int      `json:"available_spots" example:"28"`
	IsFull         bool     `json:"is_full" example:"false"`
	CreatedAt      string   `json:"created_at" example:"2025-12-06T10:00:00+09:00"`
	UpdatedAt      string   `json:"updated_at" example:"2025-12-06T10:00:00+09:00"`
}

func toEventResponse(e *event.Event) *EventResponse {
	snap := attendance.NewSnapshot(&attendance.Record{EventID: e.ID, Capacity: e.Capacity, AttendeeIDs: e.AttendeeIDs})
	return &EventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		Location:       e.Location,
		Category:       string(e.Category),
		StartAt:        e.StartAt.Format(time.RFC3339),
		Capacity:       e.Capacity,
		CreatorID:      e.CreatorID,
		AttendeeIDs:    snap.AttendeeIDs,
		AvailableSpots: snap.AvailableSpots,
		IsFull:         snap.IsFull,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      e.UpdatedAt.Format(time.RFC3339),
	}
}

func toEventResponses(events []*event.Event) []*EventResponse {
	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = toEventResponse(e)
	}
	return responses
}

// Create godoc
// @Summary イベントを作成
// @Description 新しいイベントを作成します。作成者はリクエストした利用者です
// @Tags events
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開始時刻の形式が不正です")
	}

	e, err := h.eventService.CreateEvent(c.Request().Context(), application.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Category:    event.Category(req.Category),
		StartAt:     startAt,
		Capacity:    req.Capacity,
		CreatorID:   middleware.UserID(c),
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByID godoc
// @Summary イベントを取得
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	e, err := h.eventService.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// List godoc
// @Summary イベント一覧を取得
// @Tags events
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	events, err := h.eventService.ListEvents(c.Request().Context(), limit, offset)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

// Delete godoc
// @Summary イベントを削除
// @Description 作成者のみ削除できます
// @Tags events
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "イベントID"
// @Success 204
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	if err := h.eventService.DeleteEvent(c.Request().Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MyRSVPs godoc
// @Summary 参加登録しているイベント一覧
// @Tags me
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Success 200 {array} EventResponse
// @Router /me/rsvps [get]
func (h *EventHandler) MyRSVPs(c echo.Context) error {
	events, err := h.eventService.ListRSVPs(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

// MyEvents godoc
// @Summary 作成したイベント一覧
// @Tags me
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Success 200 {array} EventResponse
// @Router /me/events [get]
func (h *EventHandler) MyEvents(c echo.Context) error {
	events, err := h.eventService.ListCreated(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}
