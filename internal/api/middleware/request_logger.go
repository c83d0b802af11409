package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-rsvp/internal/api"
	"github.com/sanosuguru/go-event-rsvp/internal/pkg/logger"
)

// RequestLogger はリクエストの構造化ログを出力するミドルウェア
// リクエストIDを付けたロガーをコンテキストに格納し、後続の処理から使えるようにする
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			res := c.Response()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = res.Header().Get(echo.HeaderXRequestID)
			}

			log := logger.Get().With(zap.String("request_id", requestID))
			c.SetRequest(req.WithContext(logger.IntoContext(req.Context(), log)))

			err := next(c)

			// エラーハンドラーより前に評価されるため、ステータスはエラーから求める
			status := res.Status
			if err != nil {
				status = api.StatusOf(err)
			}

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("query", req.URL.RawQuery),
				zap.Int("status", status),
				zap.Int64("size", res.Size),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
				zap.String("user_agent", req.UserAgent()),
			}
			if userID := UserID(c); userID != "" {
				fields = append(fields, zap.String("user_id", userID))
			}

			switch {
			case status >= 500:
				log.Error("server error", append(fields, zap.Error(err))...)
			case status >= 400:
				log.Warn("client error", append(fields, zap.Error(err))...)
			default:
				log.Info("request completed", fields...)
			}

			return err
		}
	}
}
