package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-rsvp/internal/pkg/logger"
)

// HeaderUserID は上流の認証層が設定する利用者IDのヘッダー
const HeaderUserID = "X-User-ID"

const userIDKey = "user_id"

// RequireUser は認証済みの利用者IDを要求するミドルウェア
// 認証そのものは上流で行われ、ここではヘッダーの有無のみを確認する
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
			}
			c.Set(userIDKey, userID)

			req := c.Request()
			log := logger.FromContext(req.Context()).With(zap.String("user_id", userID))
			c.SetRequest(req.WithContext(logger.IntoContext(req.Context(), log)))

			return next(c)
		}
	}
}

// UserID は RequireUser が設定した利用者IDを返す
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
