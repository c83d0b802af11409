package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-rsvp/internal/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck は依存先の疎通確認
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthHandler はヘルスチェックハンドラー
type HealthHandler struct {
	checks []ReadinessCheck
}

// NewHealthHandler はHealthHandlerを作成する
func NewHealthHandler(checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
}

// Check はヘルスチェックを行う
// @Summary ヘルスチェック
// @Description アプリケーションの健全性を確認する
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Ready は依存先への疎通を確認する
// @Summary レディネスチェック
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().Format(time.RFC3339),
		Components: make(map[string]string, len(h.checks)),
	}
	code := http.StatusOK
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			logger.FromContext(ctx).Warn("依存先に接続できません", zap.String("component", check.Name), zap.Error(err))
			resp.Components[check.Name] = "unavailable"
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Components[check.Name] = "ok"
	}
	return c.JSON(code, resp)
}
