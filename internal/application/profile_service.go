package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-rsvp/internal/domain/user"
	"github.com/sanosuguru/go-event-rsvp/internal/pkg/logger"
	"github.com/sanosuguru/go-event-rsvp/internal/pkg/metrics"
)

const defaultProfileCacheTTL = 5 * time.Minute

// ProfileCache はプロフィールの読み取りキャッシュ
type ProfileCache interface {
	GetMany(ctx context.Context, ids []string) (found map[string]user.Profile, missing []string, err error)
	SetMany(ctx context.Context, profiles map[string]user.Profile, ttl time.Duration) error
}

// ProfileService はキャッシュを介してユーザーディレクトリを引く
type ProfileService struct {
	directory user.Directory
	cache     ProfileCache
	ttl       time.Duration
	metrics   *metrics.Metrics
}

// NewProfileService は ProfileService を作成する。cache は nil でもよい
func NewProfileService(directory user.Directory, cache ProfileCache, ttl time.Duration, m *metrics.Metrics) *ProfileService {
	if ttl <= 0 {
		ttl = defaultProfileCacheTTL
	}
	return &ProfileService{directory: directory, cache: cache, ttl: ttl, metrics: m}
}

// Resolve はIDに対応するプロフィールを返す。見つからないIDは含まれない
func (s *ProfileService) Resolve(ctx context.Context, ids []string) (map[string]user.Profile, error) {
	result := make(map[string]user.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	// キャッシュから取得を試みる
	missing := ids
	if s.cache != nil {
		found, miss, err := s.cache.GetMany(ctx, ids)
		if err != nil {
			logger.FromContext(ctx).Warn("キャッシュ取得エラー", zap.Error(err))
		} else {
			for id, p := range found {
				result[id] = p
			}
			missing = miss
			s.metrics.ObserveProfileCache("hit", len(found))
		}
	}
	if len(missing) == 0 {
		return result, nil
	}
	s.metrics.ObserveProfileCache("miss", len(missing))

	// ディレクトリから取得
	fetched, err := s.directory.Resolve(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("プロフィール取得に失敗: %w", err)
	}
	for id, p := range fetched {
		result[id] = p
	}

	// キャッシュに保存
	if s.cache != nil && len(fetched) > 0 {
		if err := s.cache.SetMany(ctx, fetched, s.ttl); err != nil {
			logger.FromContext(ctx).Warn("キャッシュ保存エラー", zap.Error(err))
		}
	}
	return result, nil
}
