package user

import (
	"context"
	"errors"
)

var ErrDirectoryUnavailable = errors.New("ユーザー情報を取得できませんでした")

// Profile は表示用のユーザー情報
type Profile struct {
	ID    string
	Name  string
	Email string
}

// Directory はユーザーIDからプロフィールを解決する（読み取り専用）
// 見つからないIDは結果のマップに含まれない
type Directory interface {
	Resolve(ctx context.Context, ids []string) (map[string]Profile, error)
}
