package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound    = errors.New("イベントが見つかりません")
	ErrTitleRequired    = errors.New("イベント名は必須です")
	ErrLocationRequired = errors.New("開催場所は必須です")
	ErrInvalidCapacity  = errors.New("定員は1以上である必要があります")
	ErrInvalidCategory  = errors.New("不明なカテゴリです")
	ErrCreatorRequired  = errors.New("作成者IDは必須です")
	ErrNotCreator       = errors.New("イベントの作成者ではありません")
)
