package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-rsvp/internal/api/middleware"
)

// Handlers はルーティング対象のハンドラー一式
type Handlers struct {
	Event      *EventHandler
	Attendance *AttendanceHandler
	Health     *HealthHandler
}

// RegisterRoutes はAPIのルートを登録する
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/health", h.Health.Check)
	e.GET("/ready", h.Health.Ready)

	v1 := e.Group("/api/v1")
	v1.GET("/events", h.Event.List)
	v1.GET("/events/:id", h.Event.GetByID)
	v1.GET("/events/:id/attendees", h.Attendance.Attendees)

	// 利用者IDが必要なルート
	user := middleware.RequireUser()
	v1.POST("/events", h.Event.Create, user)
	v1.DELETE("/events/:id", h.Event.Delete, user)
	v1.POST("/events/:id/rsvp", h.Attendance.Join, user)
	v1.DELETE("/events/:id/rsvp", h.Attendance.Leave, user)
	v1.GET("/me/rsvps", h.Event.MyRSVPs, user)
	v1.GET("/me/events", h.Event.MyEvents, user)
}
