package handler

import (
	"errors"
	"net/http"

	"github.com/sanosuguru/go-event-rsvp/internal/api"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/attendance"
	"github.com/sanosuguru/go-event-rsvp/internal/domain/event"
)

// ドメインエラーとHTTPレスポンスの対応
var problems = []struct {
	target    error
	status    int
	reason    string
	retryable bool
}{
	{attendance.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument", false},
	{attendance.ErrNotFound, http.StatusNotFound, "not_found", false},
	{attendance.ErrAlreadyJoined, http.StatusConflict, "already_joined", false},
	{attendance.ErrNotJoined, http.StatusConflict, "not_joined", false},
	{attendance.ErrFull, http.StatusConflict, "full", false},
	{attendance.ErrConflict, http.StatusConflict, "conflict", true},
	{attendance.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable", true},
	{event.ErrEventNotFound, http.StatusNotFound, "not_found", false},
	{event.ErrNotCreator, http.StatusForbidden, "not_creator", false},
	{event.ErrTitleRequired, http.StatusBadRequest, "validation", false},
	{event.ErrLocationRequired, http.StatusBadRequest, "validation", false},
	{event.ErrInvalidCapacity, http.StatusBadRequest, "validation", false},
	{event.ErrInvalidCategory, http.StatusBadRequest, "validation", false},
	{event.ErrCreatorRequired, http.StatusBadRequest, "validation", false},
}

// toHTTPError はドメインエラーをHTTPエラーに変換する
// レスポンスの文言は対応表のエラー自身のメッセージに限り、ラップされた下位のエラーは含めない
// 対応しないエラーはそのまま返し、500として扱われる
func toHTTPError(err error) error {
	for _, p := range problems {
		if errors.Is(err, p.target) {
			return api.NewProblem(p.status, p.reason, p.retryable, p.target.Error(), err)
		}
	}
	return err
}
