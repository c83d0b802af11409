package attendance

import "errors"

// ストア実装が返すエラー
var (
	// ErrNoMatch は条件付き更新の条件が成立しなかったことを表す（更新は行われていない）
	ErrNoMatch = errors.New("条件に一致するレコードがありません")
	// ErrRecordNotFound は Get 対象のレコードが存在しないことを表す
	ErrRecordNotFound = errors.New("レコードが見つかりません")
)

// 参加登録の結果として呼び出し側に返すエラー
var (
	ErrInvalidArgument  = errors.New("イベントIDとユーザーIDは必須です")
	ErrNotFound         = errors.New("イベントが見つかりません")
	ErrAlreadyJoined    = errors.New("既にこのイベントに参加登録しています")
	ErrNotJoined        = errors.New("このイベントに参加登録していません")
	ErrFull             = errors.New("イベントは定員に達しています")
	ErrConflict         = errors.New("参加状況が更新中です。再試行してください")
	ErrStoreUnavailable = errors.New("参加状況を確定できませんでした。現在の状態を再取得してください")
)

// IsRetryable は再試行してよいエラーかを返す
// Full / AlreadyJoined / NotJoined はユーザー側で解消すべき終端状態
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrStoreUnavailable)
}
