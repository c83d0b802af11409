package attendance

import "slices"

// Record はストアが保持するイベントの参加状況
// Capacity と AttendeeIDs のみを持ち、残席数などの派生値は保持しない
type Record struct {
	EventID     string
	Capacity    int
	AttendeeIDs []string
}

// HasAttendee はユーザーが参加者に含まれるかを返す
func (r *Record) HasAttendee(userID string) bool {
	return slices.Contains(r.AttendeeIDs, userID)
}

// IsAtCapacity は参加者数が定員に達しているかを返す
func (r *Record) IsAtCapacity() bool {
	return len(r.AttendeeIDs) >= r.Capacity
}

// CanAdmit は AddAttendee の条件（未参加かつ空きあり）を満たすかを返す
// 各ストア実装はこの判定と更新を不可分に行う
func (r *Record) CanAdmit(userID string) bool {
	return !r.HasAttendee(userID) && !r.IsAtCapacity()
}

// Clone は呼び出し側と参加者スライスを共有しないコピーを返す
func (r *Record) Clone() *Record {
	return &Record{
		EventID:     r.EventID,
		Capacity:    r.Capacity,
		AttendeeIDs: slices.Clone(r.AttendeeIDs),
	}
}

// Snapshot は参加状況の読み取り結果
type Snapshot struct {
	ID             string
	Capacity       int
	AttendeeIDs    []string
	AvailableSpots int
	IsFull         bool
}

// NewSnapshot はレコードから派生値を計算してスナップショットを作る
func NewSnapshot(r *Record) *Snapshot {
	ids := slices.Clone(r.AttendeeIDs)
	if ids == nil {
		ids = []string{}
	}
	available := r.Capacity - len(ids)
	return &Snapshot{
		ID:             r.EventID,
		Capacity:       r.Capacity,
		AttendeeIDs:    ids,
		AvailableSpots: available,
		IsFull:         available <= 0,
	}
}

// Membership はイベントとユーザーの組に対する参加状態
type Membership int

const (
	NotMember Membership = iota
	Member
)

func (m Membership) String() string {
	if m == Member {
		return "member"
	}
	return "not_member"
}

// MembershipOf はスナップショット上のユーザーの参加状態を返す
func (s *Snapshot) MembershipOf(userID string) Membership {
	if slices.Contains(s.AttendeeIDs, userID) {
		return Member
	}
	return NotMember
}
