package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-rsvp/internal/api/middleware"
	"github.com/sanosuguru/go-event-rsvp/internal/application"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/attendance"
)

type AttendanceHandler struct {
	service AttendanceServiceInterface
}

func NewAttendanceHandler(s AttendanceServiceInterface) *AttendanceHandler {
	return &AttendanceHandler{service: s}
}

type AttendanceResponse struct {
	EventID        string   `json:"event_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Capacity       int      `json:"capacity" example:"30"`
	AttendeeIDs    []string `json:"attendee_ids" example:"user-1,user-2"`
	AvailableSpots int      `json:"available_spots" example:"28"`
	IsFull         bool     `json:"is_full" example:"false"`
	Membership     string   `json:"membership,omitempty" example:"member"`
}

type AttendeeResponse struct {
	ID    string `json:"id" example:"user-1"`
	Name  string `json:"name,omitempty" example:"山田太郎"`
	Email string `json:"email,omitempty" example:"taro@example.com"`
}

type RosterResponse struct {
	AttendanceResponse
	Attendees []AttendeeResponse `json:"attendees"`
}

func toAttendanceResponse(s *attendance.Snapshot) AttendanceResponse {
	return AttendanceResponse{
		EventID:        s.ID,
		Capacity:       s.Capacity,
		AttendeeIDs:    s.AttendeeIDs,
		AvailableSpots: s.AvailableSpots,
		IsFull:         s.IsFull,
	}
}

func toRosterResponse(r *application.Roster) RosterResponse {
	attendees := make([]AttendeeResponse, len(r.Attendees))
	for i, a := range r.Attendees {
		attendees[i] = AttendeeResponse{ID: a.ID, Name: a.Name, Email: a.Email}
	}
	return RosterResponse{AttendanceResponse: toAttendanceResponse(r.Snapshot), Attendees: attendees}
}

// Join godoc
// @Summary イベントに参加登録
// @Description 定員に空きがある場合に限り参加者として登録します
// @Tags attendance
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "イベントID"
// @Success 200 {object} AttendanceResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "参加済み・満員・競合"
// @Failure 503 {object} api.ErrorResponse "結果不明"
// @Router /events/{id}/rsvp [post]
func (h *AttendanceHandler) Join(c echo.Context) error {
	userID := middleware.UserID(c)
	snap, err := h.service.Join(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return toHTTPError(err)
	}
	resp := toAttendanceResponse(snap)
	resp.Membership = snap.MembershipOf(userID).String()
	return c.JSON(http.StatusOK, resp)
}

// Leave godoc
// @Summary 参加登録を取り消し
// @Tags attendance
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "イベントID"
// @Success 200 {object} AttendanceResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "未参加"
// @Failure 503 {object} api.ErrorResponse
// @Router /events/{id}/rsvp [delete]
func (h *AttendanceHandler) Leave(c echo.Context) error {
	userID := middleware.UserID(c)
	snap, err := h.service.Leave(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return toHTTPError(err)
	}
	resp := toAttendanceResponse(snap)
	resp.Membership = snap.MembershipOf(userID).String()
	return c.JSON(http.StatusOK, resp)
}

// Attendees godoc
// @Summary 参加者一覧を取得
// @Tags attendance
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} RosterResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id}/attendees [get]
func (h *AttendanceHandler) Attendees(c echo.Context) error {
	roster, err := h.service.Roster(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toRosterResponse(roster))
}
