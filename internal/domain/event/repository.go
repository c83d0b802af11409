package event

import "context"

// Repository はイベントリポジトリのインターフェース
// 参加者集合の更新は attendance.Store が担い、ここでは扱わない
type Repository interface {
	// Create は新しいイベントを作成する
	Create(ctx context.Context, event *Event) error

	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id string) (*Event, error)

	// GetByIDs は複数IDのイベントを開催日時順に取得する（存在しないIDは無視）
	GetByIDs(ctx context.Context, ids []string) ([]*Event, error)

	// List はイベント一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Event, error)

	// ListByCreator は作成者のイベント一覧を取得する
	ListByCreator(ctx context.Context, creatorID string) ([]*Event, error)

	// Delete はイベントを削除する（参加者集合も破棄される）
	Delete(ctx context.Context, id string) error
}
