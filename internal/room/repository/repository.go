package repository

import (
	"context"
	"time"

	"quiz-arena/backend/internal/room/domain"
)

// Repository runs room admission work in transactions.
type Repository interface {
	// WithinTx runs fn in one transaction; fn's error rolls it back.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	// DeleteExpiredCodes removes codes that expired at or before now and returns how many were removed.
	DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error)
}

// Tx is the set of room operations available inside a transaction. Lookups return (nil, nil) when
// the row does not exist.
type Tx interface {
	InsertRoom(ctx context.Context, r *domain.Room) error
	// LockRoom loads the room and holds its row lock until the transaction ends.
	LockRoom(ctx context.Context, id string) (*domain.Room, error)

	// AddParticipant inserts p; it returns false when the user already belongs to the room.
	AddParticipant(ctx context.Context, p *domain.Participant) (bool, error)
	IsParticipant(ctx context.Context, roomID, userID string) (bool, error)
	CountParticipants(ctx context.Context, roomID string) (int, error)

	CodeForRoom(ctx context.Context, roomID string) (*domain.Code, error)
	FindCode(ctx context.Context, code string) (*domain.Code, error)
	// InsertCode inserts c; it returns false when another room already uses the code string.
	InsertCode(ctx context.Context, c *domain.Code) (bool, error)
	DeleteCode(ctx context.Context, id string) error
}
