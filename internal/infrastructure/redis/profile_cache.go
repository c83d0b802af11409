package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-event-rsvp/internal/domain/user"
)

// ProfileCache はユーザープロフィールの読み取りキャッシュ
// 表示用途のみで、参加登録の判断には使わない
type ProfileCache struct {
	client *redis.Client
}

// NewProfileCache は新しいProfileCacheインスタンスを作成する
func NewProfileCache(client *redis.Client) *ProfileCache {
	return &ProfileCache{client: client}
}

type cachedProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GetMany はキャッシュにあるプロフィールと、見つからなかったIDを返す
func (c *ProfileCache) GetMany(ctx context.Context, ids []string) (map[string]user.Profile, []string, error) {
	found := make(map[string]user.Profile, len(ids))
	if len(ids) == 0 {
		return found, nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.profileKey(id)
	}
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}

	var missing []string
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var p cachedProfile
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		found[ids[i]] = user.Profile{ID: ids[i], Name: p.Name, Email: p.Email}
	}
	return found, missing, nil
}

// SetMany はプロフィールをまとめて保存する
func (c *ProfileCache) SetMany(ctx context.Context, profiles map[string]user.Profile, ttl time.Duration) error {
	if len(profiles) == 0 {
		return nil
	}
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for id, p := range profiles {
			b, err := json.Marshal(cachedProfile{Name: p.Name, Email: p.Email})
			if err != nil {
				return err
			}
			pipe.Set(ctx, c.profileKey(id), b, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

func (c *ProfileCache) profileKey(userID string) string {
	return fmt.Sprintf("profile:%s", userID)
}
