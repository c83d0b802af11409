package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-event-rsvp/internal/domain/attendance"
)

// キー構成
//   attendance:<event_id>          HASH  capacity
//   attendance:<event_id>:members  SET   参加ユーザーID
//   attendee:<user_id>:events      SET   参加イベントID（逆引き）
//
// スクリプトの戻り値は {1, capacity, members} または {0}（条件不成立・不存在）

// addAttendeeScript は存在・未参加・定員未満の確認と追加を1ステップで行う
// KEYS[1] = attendance hash, KEYS[2] = members set, KEYS[3] = user index
// ARGV[1] = user id, ARGV[2] = event id
var addAttendeeScript = redis.NewScript(`
local cap = redis.call("HGET", KEYS[1], "capacity")
if not cap then
    return {0}
end
cap = tonumber(cap)
if redis.call("SISMEMBER", KEYS[2], ARGV[1]) == 1 then
    return {0}
end
if redis.call("SCARD", KEYS[2]) >= cap then
    return {0}
end
redis.call("SADD", KEYS[2], ARGV[1])
redis.call("SADD", KEYS[3], ARGV[2])
return {1, cap, redis.call("SMEMBERS", KEYS[2])}
`)

// removeAttendeeScript は参加者である場合に限り削除する
var removeAttendeeScript = redis.NewScript(`
local cap = redis.call("HGET", KEYS[1], "capacity")
if not cap then
    return {0}
end
if redis.call("SREM", KEYS[2], ARGV[1]) == 0 then
    return {0}
end
redis.call("SREM", KEYS[3], ARGV[2])
return {1, tonumber(cap), redis.call("SMEMBERS", KEYS[2])}
`)

// getAttendanceScript は capacity と参加者を同一時点で読み取る
var getAttendanceScript = redis.NewScript(`
local cap = redis.call("HGET", KEYS[1], "capacity")
if not cap then
    return {0}
end
return {1, tonumber(cap), redis.call("SMEMBERS", KEYS[2])}
`)

// discardScript はイベントの参加者集合と逆引きを削除する
var discardScript = redis.NewScript(`
local members = redis.call("SMEMBERS", KEYS[2])
for _, uid in ipairs(members) do
    redis.call("SREM", ARGV[1] .. uid .. ":events", ARGV[2])
end
return redis.call("DEL", KEYS[1], KEYS[2])
`)

const userIndexPrefix = "attendee:"

// AttendanceStore はLuaスクリプトで条件付き更新を行うRedis実装
// 単一ノード前提（スクリプトが複数キーに触れるため）
type AttendanceStore struct {
	client *redis.Client
}

// NewAttendanceStore はAttendanceStoreを作成する
func NewAttendanceStore(client *redis.Client) *AttendanceStore {
	return &AttendanceStore{client: client}
}

func hashKey(eventID string) string    { return fmt.Sprintf("attendance:%s", eventID) }
func membersKey(eventID string) string { return fmt.Sprintf("attendance:%s:members", eventID) }
func userKey(userID string) string     { return userIndexPrefix + userID + ":events" }

// Provision はイベントの定員を登録する
func (s *AttendanceStore) Provision(ctx context.Context, eventID string, capacity int) error {
	if err := s.client.HSet(ctx, hashKey(eventID), "capacity", capacity).Err(); err != nil {
		return fmt.Errorf("参加状況の初期化に失敗: %w", err)
	}
	return nil
}

// Discard はイベントの参加状況を破棄する
func (s *AttendanceStore) Discard(ctx context.Context, eventID string) error {
	keys := []string{hashKey(eventID), membersKey(eventID)}
	if err := discardScript.Run(ctx, s.client, keys, userIndexPrefix, eventID).Err(); err != nil {
		return fmt.Errorf("参加状況の破棄に失敗: %w", err)
	}
	return nil
}

// AddAttendee はスクリプトで条件付きの追加を行う
func (s *AttendanceStore) AddAttendee(ctx context.Context, eventID, userID string) (*attendance.Record, error) {
	keys := []string{hashKey(eventID), membersKey(eventID), userKey(userID)}
	res, err := addAttendeeScript.Run(ctx, s.client, keys, userID, eventID).Result()
	if err != nil {
		return nil, fmt.Errorf("参加者の追加に失敗: %w", err)
	}
	return parseRecord(eventID, res, attendance.ErrNoMatch)
}

// RemoveAttendee はスクリプトで条件付きの削除を行う
func (s *AttendanceStore) RemoveAttendee(ctx context.Context, eventID, userID string) (*attendance.Record, error) {
	keys := []string{hashKey(eventID), membersKey(eventID), userKey(userID)}
	res, err := removeAttendeeScript.Run(ctx, s.client, keys, userID, eventID).Result()
	if err != nil {
		return nil, fmt.Errorf("参加者の削除に失敗: %w", err)
	}
	return parseRecord(eventID, res, attendance.ErrNoMatch)
}

// Get は現在の参加状況を返す
func (s *AttendanceStore) Get(ctx context.Context, eventID string) (*attendance.Record, error) {
	keys := []string{hashKey(eventID), membersKey(eventID)}
	res, err := getAttendanceScript.Run(ctx, s.client, keys).Result()
	if err != nil {
		return nil, fmt.Errorf("参加状況の取得に失敗: %w", err)
	}
	return parseRecord(eventID, res, attendance.ErrRecordNotFound)
}

// EventIDsOf はユーザーが参加しているイベントIDを返す
func (s *AttendanceStore) EventIDsOf(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("参加イベントの取得に失敗: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

var errInvalidScriptReply = errors.New("スクリプトの応答が不正です")

// parseRecord はスクリプトの戻り値をレコードに変換する
// 先頭要素が 0 の場合は notMatched を返す
func parseRecord(eventID string, res interface{}, notMatched error) (*attendance.Record, error) {
	values, ok := res.([]interface{})
	if !ok || len(values) == 0 {
		return nil, errInvalidScriptReply
	}
	if flag, _ := values[0].(int64); flag == 0 {
		return nil, notMatched
	}
	if len(values) != 3 {
		return nil, errInvalidScriptReply
	}
	capacity, ok := values[1].(int64)
	if !ok {
		return nil, errInvalidScriptReply
	}
	rawMembers, ok := values[2].([]interface{})
	if !ok {
		return nil, errInvalidScriptReply
	}
	members := make([]string, 0, len(rawMembers))
	for _, m := range rawMembers {
		s, ok := m.(string)
		if !ok {
			return nil, errInvalidScriptReply
		}
		members = append(members, s)
	}
	// SET は順序を持たないため、結果を安定させる
	sort.Strings(members)
	return &attendance.Record{EventID: eventID, Capacity: int(capacity), AttendeeIDs: members}, nil
}

var (
	_ attendance.Store       = (*AttendanceStore)(nil)
	_ attendance.Index       = (*AttendanceStore)(nil)
	_ attendance.Provisioner = (*AttendanceStore)(nil)
)
