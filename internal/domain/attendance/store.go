package attendance

import "context"

// Store は参加者集合を保持するストアのインターフェース
//
// AddAttendee / RemoveAttendee は同一レコードに対する他の全ての更新と
// 不可分でなければならない（どのプロセス・マシンから呼ばれても）。
// 条件不成立は ErrNoMatch、それ以外のエラーは結果不明を意味する。
type Store interface {
	// AddAttendee はレコードが存在し、未参加で、参加者数が定員未満の場合に限り追加する
	AddAttendee(ctx context.Context, eventID, userID string) (*Record, error)

	// RemoveAttendee は参加者に含まれる場合に限り削除する
	RemoveAttendee(ctx context.Context, eventID, userID string) (*Record, error)

	// Get は現在のレコードを返す。存在しなければ ErrRecordNotFound
	// 診断と一覧表示にのみ使い、更新の判断には使わない
	Get(ctx context.Context, eventID string) (*Record, error)
}

// Provisioner はイベント作成・削除に合わせてレコードを用意・破棄するストア
// イベントリポジトリと別の場所に参加者集合を持つ実装（Redis）が実装する
type Provisioner interface {
	Provision(ctx context.Context, eventID string, capacity int) error
	Discard(ctx context.Context, eventID string) error
}

// Index はユーザーが参加しているイベントIDの逆引き
type Index interface {
	EventIDsOf(ctx context.Context, userID string) ([]string, error)
}
