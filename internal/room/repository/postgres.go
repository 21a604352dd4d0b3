package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"quiz-arena/backend/internal/db"
	"quiz-arena/backend/internal/room/domain"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a room repository backed by the given pool.
func NewPostgresRepository(pool db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

// WithinTx runs fn in a transaction.
func (r *PostgresRepository) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	return db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx})
	})
}

// DeleteExpiredCodes removes codes whose expiry is at or before now.
func (r *PostgresRepository) DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM room_codes WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, oops.Code("ROOM_CODE_SWEEP_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) InsertRoom(ctx context.Context, r *domain.Room) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO rooms (id, name, is_private, room_limit, created_by, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.Name, r.IsPrivate, r.Limit, r.CreatedBy, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return oops.Code("ROOM_CREATE_FAILED").With("room_id", r.ID).Wrap(err)
	}
	return nil
}

func (t *pgTx) LockRoom(ctx context.Context, id string) (*domain.Room, error) {
	var r domain.Room
	err := t.tx.QueryRow(ctx,
		`SELECT id, name, is_private, room_limit, created_by, created_at, updated_at FROM rooms WHERE id = $1 FOR UPDATE`, id,
	).Scan(&r.ID, &r.Name, &r.IsPrivate, &r.Limit, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, oops.Code("ROOM_GET_FAILED").With("room_id", id).Wrap(err)
	}
	return &r, nil
}

func (t *pgTx) AddParticipant(ctx context.Context, p *domain.Participant) (bool, error) {
	tag, err := t.tx.Exec(ctx,
		`INSERT INTO room_participants (id, user_id, room_id, joined_at) VALUES ($1, $2, $3, $4) ON CONFLICT (user_id, room_id) DO NOTHING`,
		p.ID, p.UserID, p.RoomID, p.JoinedAt,
	)
	if err != nil {
		return false, oops.Code("ROOM_JOIN_FAILED").With("room_id", p.RoomID).With("user_id", p.UserID).Wrap(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *pgTx) IsParticipant(ctx context.Context, roomID, userID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM room_participants WHERE room_id = $1 AND user_id = $2)`, roomID, userID,
	).Scan(&exists)
	if err != nil {
		return false, oops.Code("ROOM_PARTICIPANT_CHECK_FAILED").With("room_id", roomID).Wrap(err)
	}
	return exists, nil
}

func (t *pgTx) CountParticipants(ctx context.Context, roomID string) (int, error) {
	var n int
	if err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM room_participants WHERE room_id = $1`, roomID).Scan(&n); err != nil {
		return 0, oops.Code("ROOM_PARTICIPANT_COUNT_FAILED").With("room_id", roomID).Wrap(err)
	}
	return n, nil
}

const codeColumns = `id, code, room_id, expires_at, created_at`

func (t *pgTx) CodeForRoom(ctx context.Context, roomID string) (*domain.Code, error) {
	c, err := scanCode(t.tx.QueryRow(ctx, `SELECT `+codeColumns+` FROM room_codes WHERE room_id = $1`, roomID))
	if err != nil {
		return nil, oops.Code("ROOM_CODE_GET_FAILED").With("room_id", roomID).Wrap(err)
	}
	return c, nil
}

func (t *pgTx) FindCode(ctx context.Context, code string) (*domain.Code, error) {
	c, err := scanCode(t.tx.QueryRow(ctx, `SELECT `+codeColumns+` FROM room_codes WHERE code = $1`, code))
	if err != nil {
		return nil, oops.Code("ROOM_CODE_GET_FAILED").Wrap(err)
	}
	return c, nil
}

func (t *pgTx) InsertCode(ctx context.Context, c *domain.Code) (bool, error) {
	tag, err := t.tx.Exec(ctx,
		`INSERT INTO room_codes (`+codeColumns+`) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (code) DO NOTHING`,
		c.ID, c.Code, c.RoomID, c.ExpiresAt, c.CreatedAt,
	)
	if err != nil {
		return false, oops.Code("ROOM_CODE_CREATE_FAILED").With("room_id", c.RoomID).Wrap(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *pgTx) DeleteCode(ctx context.Context, id string) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM room_codes WHERE id = $1`, id); err != nil {
		return oops.Code("ROOM_CODE_DELETE_FAILED").Wrap(err)
	}
	return nil
}

// scanCode returns (nil, nil) for a missing row.
func scanCode(row pgx.Row) (*domain.Code, error) {
	var c domain.Code
	if err := row.Scan(&c.ID, &c.Code, &c.RoomID, &c.ExpiresAt, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
