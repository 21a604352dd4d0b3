// Package service admits users to quiz rooms: room creation, join code issuance and code-based joins.
//
// Every operation runs in one transaction. Joins and code issuance take the room row lock first, so
// the membership check, the capacity count and the insert cannot interleave with another request for
// the same room.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"

	"quiz-arena/backend/internal/metrics"
	"quiz-arena/backend/internal/platform/validation"
	"quiz-arena/backend/internal/room/domain"
	"quiz-arena/backend/internal/room/repository"
	"quiz-arena/backend/internal/security"
	"quiz-arena/backend/internal/telemetry"
)

// Sentinel errors; the HTTP layer maps them to status codes.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrNotCreator         = errors.New("only the room creator can generate a code")
	ErrInvalidCode        = errors.New("invalid or expired room code")
	ErrCodeExpired        = errors.New("room code has expired")
	ErrAlreadyParticipant = errors.New("already a participant")
	ErrRoomFull           = errors.New("participant limit reached")
	ErrCodeInUse          = errors.New("room code already in use")
)

// maxCodeAttempts bounds regeneration of a random code that collided with an existing one.
const maxCodeAttempts = 5

var errCodeCollision = errors.New("generated room code collided")

// CreateInput is the create-room request body.
type CreateInput struct {
	Name      string  `json:"name" validate:"min=3" msg:"Room name must be at least 3 characters long"`
	IsPrivate *bool   `json:"isPrivate" validate:"required" msg:"isPrivate must be a boolean"`
	RoomLimit *int    `json:"roomLimit" validate:"omitempty,min=2,max=10" msg:"Room limit must be between 2 and 10"`
	RoomCode  *string `json:"roomCode" validate:"omitempty,min=6" msg:"Room code must be at least 6 characters long"`
}

// GenerateCodeInput is the generate-code request body.
type GenerateCodeInput struct {
	RoomID    string `json:"roomId" validate:"required" msg:"Invalid room ID"`
	RoomLimit *int   `json:"roomLimit" validate:"omitempty,min=2,max=10" msg:"Room limit must be between 2 and 10"`
}

// JoinInput is the join request body.
type JoinInput struct {
	RoomCode string `json:"roomCode" validate:"min=6" msg:"Room code must be at least 6 characters long"`
}

// CreateResult is returned by Create. RoomCode and ExpiresAt are set for private rooms only.
type CreateResult struct {
	RoomID    string     `json:"roomId"`
	RoomCode  string     `json:"roomCode,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// CodeResult is returned by GenerateCode.
type CodeResult struct {
	RoomCode  string    `json:"roomCode"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// JoinResult is returned by Join.
type JoinResult struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
}

// Recorder records activity events (audit + event stream). Best-effort.
type Recorder interface {
	Record(ctx context.Context, event *telemetry.Event)
}

// Service implements room admission.
type Service struct {
	repo     repository.Repository
	codeTTL  time.Duration
	recorder Recorder
	now      func() time.Time
	newCode  func() (string, error)
}

// NewService returns a Service issuing codes valid for codeTTL. recorder may be nil.
func NewService(repo repository.Repository, codeTTL time.Duration, recorder Recorder) *Service {
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	return &Service{
		repo:     repo,
		codeTTL:  codeTTL,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
		newCode:  security.NewRoomCode,
	}
}

// Create persists a room created by userID, adds the creator as its first participant and, for a
// private room, issues its join code (the caller's own code when given).
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*CreateResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.RoomCode != nil && *in.RoomCode == "" {
		in.RoomCode = nil
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	now := s.now()
	room := &domain.Room{
		ID:        uuid.New().String(),
		Name:      in.Name,
		IsPrivate: *in.IsPrivate,
		Limit:     in.RoomLimit,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res := &CreateResult{RoomID: room.ID}
	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		if err := tx.InsertRoom(ctx, room); err != nil {
			return err
		}
		if _, err := tx.AddParticipant(ctx, &domain.Participant{ID: uuid.New().String(), UserID: userID, RoomID: room.ID, JoinedAt: now}); err != nil {
			return err
		}
		if !room.IsPrivate {
			return nil
		}
		var (
			code *domain.Code
			err  error
		)
		if in.RoomCode != nil {
			code, err = s.insertGivenCode(ctx, tx, room.ID, *in.RoomCode, now)
		} else {
			code, err = s.issueCode(ctx, tx, room.ID, now)
		}
		if err != nil {
			return err
		}
		res.RoomCode = code.Code
		res.ExpiresAt = &code.ExpiresAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("room_id", room.ID).Str("user_id", userID).Bool("private", room.IsPrivate).Msg("room: created")
	s.record(ctx, telemetry.NewEvent(telemetry.TypeRoomCreated, userID).WithRoom(room.ID))
	return res, nil
}

// GenerateCode returns the room's live code, or issues a new one when there is none or it expired.
// Only the room's creator may call it. A supplied limit is validated but never changes the room.
func (s *Service) GenerateCode(ctx context.Context, userID string, in GenerateCodeInput) (*CodeResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(in.RoomID); err != nil {
		return nil, ErrRoomNotFound
	}
	var (
		res    *CodeResult
		issued bool
	)
	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		room, err := tx.LockRoom(ctx, in.RoomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}
		if room.CreatedBy != userID {
			return ErrNotCreator
		}
		now := s.now()
		existing, err := tx.CodeForRoom(ctx, room.ID)
		if err != nil {
			return err
		}
		if existing != nil && !existing.Expired(now) {
			res = &CodeResult{RoomCode: existing.Code, ExpiresAt: existing.ExpiresAt}
			return nil
		}
		if existing != nil {
			if err := tx.DeleteCode(ctx, existing.ID); err != nil {
				return err
			}
		}
		code, err := s.issueCode(ctx, tx, room.ID, now)
		if err != nil {
			return err
		}
		res = &CodeResult{RoomCode: code.Code, ExpiresAt: code.ExpiresAt}
		issued = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if issued {
		s.record(ctx, telemetry.NewEvent(telemetry.TypeRoomCodeIssued, userID).WithRoom(in.RoomID))
	}
	return res, nil
}

// Join admits userID to the room behind code. An expired code is deleted (and that deletion committed)
// before ErrCodeExpired is returned.
func (s *Service) Join(ctx context.Context, userID string, in JoinInput) (*JoinResult, error) {
	in.RoomCode = strings.TrimSpace(in.RoomCode)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var (
		res     *JoinResult
		outcome error
		roomID  string
	)
	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		found, err := tx.FindCode(ctx, in.RoomCode)
		if err != nil {
			return err
		}
		if found == nil {
			outcome = ErrInvalidCode
			return nil
		}
		roomID = found.RoomID
		room, err := tx.LockRoom(ctx, found.RoomID)
		if err != nil {
			return err
		}
		// Re-read under the room lock: issuance for this room may have replaced the code meanwhile.
		code, err := tx.FindCode(ctx, in.RoomCode)
		if err != nil {
			return err
		}
		if room == nil || code == nil || code.RoomID != room.ID {
			outcome = ErrInvalidCode
			return nil
		}
		now := s.now()
		if code.Expired(now) {
			outcome = ErrCodeExpired
			return tx.DeleteCode(ctx, code.ID)
		}
		member, err := tx.IsParticipant(ctx, room.ID, userID)
		if err != nil {
			return err
		}
		if member {
			outcome = ErrAlreadyParticipant
			return nil
		}
		if room.Limit != nil {
			n, err := tx.CountParticipants(ctx, room.ID)
			if err != nil {
				return err
			}
			if room.Full(n) {
				outcome = ErrRoomFull
				return nil
			}
		}
		added, err := tx.AddParticipant(ctx, &domain.Participant{ID: uuid.New().String(), UserID: userID, RoomID: room.ID, JoinedAt: now})
		if err != nil {
			return err
		}
		if !added {
			outcome = ErrAlreadyParticipant
			return nil
		}
		res = &JoinResult{RoomID: room.ID, RoomName: room.Name}
		return nil
	})
	if err != nil {
		metrics.RecordRoomJoin(metrics.ResultError)
		return nil, err
	}
	if outcome != nil {
		metrics.RecordRoomJoin(metrics.ResultRejected)
		s.record(ctx, telemetry.NewEvent(telemetry.TypeRoomJoinDenied, userID).WithRoom(roomID).With("reason", outcome.Error()))
		return nil, outcome
	}
	metrics.RecordRoomJoin(metrics.ResultSuccess)
	log.Info().Str("room_id", res.RoomID).Str("user_id", userID).Msg("room: joined")
	s.record(ctx, telemetry.NewEvent(telemetry.TypeRoomJoined, userID).WithRoom(res.RoomID))
	return res, nil
}

// insertGivenCode stores a caller-chosen code; a code already used by another room is rejected.
func (s *Service) insertGivenCode(ctx context.Context, tx repository.Tx, roomID, value string, now time.Time) (*domain.Code, error) {
	c := s.newCodeRow(roomID, value, now)
	ok, err := tx.InsertCode(ctx, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCodeInUse
	}
	return c, nil
}

// issueCode inserts a random code, regenerating it when it collides with another room's code.
func (s *Service) issueCode(ctx context.Context, tx repository.Tx, roomID string, now time.Time) (*domain.Code, error) {
	var issued *domain.Code
	backoff := retry.WithMaxRetries(maxCodeAttempts-1, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		value, err := s.newCode()
		if err != nil {
			return err
		}
		c := s.newCodeRow(roomID, value, now)
		ok, err := tx.InsertCode(ctx, c)
		if err != nil {
			return err
		}
		if !ok {
			return retry.RetryableError(errCodeCollision)
		}
		issued = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

func (s *Service) newCodeRow(roomID, value string, now time.Time) *domain.Code {
	return &domain.Code{
		ID:        uuid.New().String(),
		Code:      value,
		RoomID:    roomID,
		ExpiresAt: now.Add(s.codeTTL),
		CreatedAt: now,
	}
}

func (s *Service) record(ctx context.Context, e *telemetry.Event) {
	if s.recorder != nil {
		s.recorder.Record(ctx, e)
	}
}
