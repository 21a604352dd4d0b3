// Package service implements account registration, password login, logout and profile lookup.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"quiz-arena/backend/internal/metrics"
	"quiz-arena/backend/internal/platform/validation"
	"quiz-arena/backend/internal/security"
	sessiondomain "quiz-arena/backend/internal/session/domain"
	"quiz-arena/backend/internal/telemetry"
	userdomain "quiz-arena/backend/internal/user/domain"
)

// Sentinel errors for the auth service; the HTTP layer maps them to status codes.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserNotFound           = errors.New("user not found")
)

// RegisterInput is the registration request body.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email" msg:"Invalid email address"`
	Username string `json:"username" validate:"min=3" msg:"Username must be at least 3 characters"`
	Password string `json:"password" validate:"min=6" msg:"Password must be at least 6 characters"`
	Gender   string `json:"gender" validate:"oneof=MALE FEMALE OTHER" msg:"Invalid gender"`
	Country  string `json:"country" validate:"min=2" msg:"Invalid country name"`
}

// LoginInput is the login request body.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email" msg:"Invalid email address"`
	Password string `json:"password" validate:"min=6" msg:"Password must be at least 6 characters"`
}

// LoginResult is a successful login: the raw token for the cookie, the stored session and the user.
type LoginResult struct {
	Token   string
	Session *sessiondomain.Session
	User    *userdomain.User
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// Sessions starts and ends login sessions.
type Sessions interface {
	Start(ctx context.Context, userID string) (string, *sessiondomain.Session, error)
	End(ctx context.Context, token string) error
}

// Recorder records activity events (audit + event stream). Best-effort.
type Recorder interface {
	Record(ctx context.Context, event *telemetry.Event)
}

// AuthService implements register, login, logout and me.
type AuthService struct {
	users    UserRepo
	sessions Sessions
	hasher   *security.Hasher
	recorder Recorder
}

// NewAuthService returns an AuthService. recorder may be nil.
func NewAuthService(users UserRepo, sessions Sessions, hasher *security.Hasher, recorder Recorder) *AuthService {
	return &AuthService{users: users, sessions: sessions, hasher: hasher, recorder: recorder}
}

// Register creates a USER account. The email is trimmed and lower-cased before the uniqueness check.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*userdomain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.Country = strings.TrimSpace(in.Country)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hashed,
		Gender:       userdomain.Gender(in.Gender),
		Country:      in.Country,
		Role:         userdomain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, userdomain.ErrEmailTaken) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}
	log.Info().Str("user_id", u.ID).Msg("identity: user registered")
	s.record(ctx, telemetry.NewEvent(telemetry.TypeRegister, u.ID))
	return u, nil
}

// Login verifies the password and starts a session, replacing any prior session of the user.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials and create nothing.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		metrics.RecordLogin(metrics.ResultError)
		return nil, err
	}
	if u == nil {
		s.loginFailed(ctx, "", "unknown_email")
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Verify(u.PasswordHash, in.Password); err != nil {
		if !errors.Is(err, security.ErrPasswordMismatch) {
			log.Error().Err(err).Str("user_id", u.ID).Msg("identity: stored password hash is unusable")
		}
		s.loginFailed(ctx, u.ID, "bad_password")
		return nil, ErrInvalidCredentials
	}
	token, sess, err := s.sessions.Start(ctx, u.ID)
	if err != nil {
		metrics.RecordLogin(metrics.ResultError)
		return nil, err
	}
	metrics.RecordLogin(metrics.ResultSuccess)
	s.record(ctx, telemetry.NewEvent(telemetry.TypeLogin, u.ID))
	return &LoginResult{Token: token, Session: sess, User: u}, nil
}

// Logout ends the session carried by token. userID is only used for the audit trail and may be empty.
func (s *AuthService) Logout(ctx context.Context, token, userID string) error {
	if err := s.sessions.End(ctx, token); err != nil {
		return err
	}
	s.record(ctx, telemetry.NewEvent(telemetry.TypeLogout, userID))
	return nil
}

// Me returns the user behind an authenticated session.
func (s *AuthService) Me(ctx context.Context, userID string) (*userdomain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *AuthService) loginFailed(ctx context.Context, userID, reason string) {
	metrics.RecordLogin(metrics.ResultRejected)
	s.record(ctx, telemetry.NewEvent(telemetry.TypeLoginFailed, userID).With("reason", reason))
}

func (s *AuthService) record(ctx context.Context, e *telemetry.Event) {
	if s.recorder != nil {
		s.recorder.Record(ctx, e)
	}
}
