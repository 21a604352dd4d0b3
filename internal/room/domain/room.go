package domain

import "time"

// Room limits accepted for RoomLimit.
const (
	MinLimit = 2
	MaxLimit = 10
)

// Room is a quiz room. Limit is nil for rooms without a participant cap.
type Room struct {
	ID        string
	Name      string
	IsPrivate bool
	Limit     *int
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Full reports whether a room holding count participants can admit no one else.
func (r *Room) Full(count int) bool {
	return r.Limit != nil && count >= *r.Limit
}

// Participant is one user's membership of a room.
type Participant struct {
	ID       string
	UserID   string
	RoomID   string
	JoinedAt time.Time
}

// Code is the join code of a private room. A room has at most one code row at a time.
type Code struct {
	ID        string
	Code      string
	RoomID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code is no longer usable at now.
func (c *Code) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
