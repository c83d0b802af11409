package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-rsvp/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      int    `json:"code,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Retryable bool   `json:"retryable"`
}

// Problem はドメインエラーにHTTPステータスと理由を付けたもの
// クライアントには Message のみ返し、Err はログにだけ残す
type Problem struct {
	Status    int
	Reason    string
	Retryable bool
	Message   string
	Err       error
}

// NewProblem はProblemを作成する
func NewProblem(status int, reason string, retryable bool, message string, err error) *Problem {
	return &Problem{Status: status, Reason: reason, Retryable: retryable, Message: message, Err: err}
}

func (p *Problem) Error() string {
	return p.Err.Error()
}

func (p *Problem) Unwrap() error {
	return p.Err
}

// StatusOf はエラーに対応するHTTPステータスを返す
func StatusOf(err error) int {
	var p *Problem
	if errors.As(err, &p) {
		return p.Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := ErrorResponse{
		Error: "内部サーバーエラー",
		Code:  http.StatusInternalServerError,
	}

	var p *Problem
	var he *echo.HTTPError
	switch {
	case errors.As(err, &p):
		resp.Code = p.Status
		resp.Error = p.Message
		if resp.Error == "" {
			resp.Error = http.StatusText(p.Status)
		}
		resp.Reason = p.Reason
		resp.Retryable = p.Retryable
	case errors.As(err, &he):
		resp.Code = he.Code
		if m, ok := he.Message.(string); ok {
			resp.Error = m
		} else {
			resp.Error = http.StatusText(he.Code)
		}
	}

	// エラーログを出力（5xx エラーの場合）
	if resp.Code >= 500 {
		logger.FromContext(c.Request().Context()).Error("サーバーエラー",
			zap.Int("status", resp.Code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(resp.Code)
	} else {
		err = c.JSON(resp.Code, resp)
	}
	if err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
