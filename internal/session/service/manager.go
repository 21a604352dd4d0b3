// Package service resolves, creates and ends sessions over the durable store and the cache.
//
// The durable store is the source of truth. An authenticated session is always written to Postgres
// before it is cached, so a cache entry is never the only record of a login. Anonymous sessions only
// live in the cache: they carry no identity, so losing one on eviction loses nothing.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	qlog "quiz-arena/backend/internal/log"
	"quiz-arena/backend/internal/security"
	"quiz-arena/backend/internal/session/cache"
	"quiz-arena/backend/internal/session/domain"
)

// ErrNoSession is returned by End when the request carried no session token.
var ErrNoSession = errors.New("no active session")

// SessionRepo is the minimal durable session store needed by the manager.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ReplaceForUser(ctx context.Context, s *domain.Session) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// Manager implements session resolution, login session creation and logout.
type Manager struct {
	repo  SessionRepo
	cache cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewManager returns a Manager. ttl bounds both the durable session lifetime and every cache entry.
func NewManager(repo SessionRepo, c cache.Cache, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{
		repo:  repo,
		cache: c,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// TTL returns the session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Resolve maps the request's token (possibly empty) to a State. Cache failures fall through to the
// durable store; durable failures are returned.
func (m *Manager) Resolve(ctx context.Context, token string) (*State, error) {
	if token == "" {
		return &State{isNew: true}, nil
	}
	id := security.HashSessionToken(token)

	e, ok, err := m.cache.Get(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("session", qlog.TokenRef(id)).Msg("session: cache read failed, using durable store")
	}
	if err == nil && ok {
		return &State{presented: token, token: token, id: id, userID: e.UserID, resolvedUserID: e.UserID}, nil
	}

	s, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := m.now()
	if !s.Live(now) {
		// Keep the dead token so logout can still remove its row.
		return &State{presented: token, isNew: true}, nil
	}
	ttl := min(m.ttl, s.ExpiresAt.Sub(now))
	if err := m.cache.Set(ctx, id, cache.Entry{UserID: s.UserID}, ttl); err != nil {
		log.Warn().Err(err).Str("session", qlog.TokenRef(id)).Msg("session: cache repair failed")
	}
	return &State{presented: token, token: token, id: id, userID: s.UserID, resolvedUserID: s.UserID}, nil
}

// Commit persists st after the handler ran. It returns the token to set as the cookie when one was
// minted for this request, or "" when the existing cookie stays valid.
func (m *Manager) Commit(ctx context.Context, st *State) (string, error) {
	if st == nil || !st.NeedsCommit() {
		return "", nil
	}
	minted := ""
	if st.isNew || st.token == "" {
		tok, err := security.NewSessionToken()
		if err != nil {
			return "", err
		}
		st.token = tok
		st.id = security.HashSessionToken(tok)
		minted = tok
	}

	if st.userID != "" {
		if _, err := m.persist(ctx, st.id, st.userID); err != nil {
			return "", err
		}
	} else {
		if st.resolvedUserID != "" {
			if err := m.repo.Delete(ctx, st.id); err != nil {
				return "", err
			}
		}
		if err := m.cache.Set(ctx, st.id, cache.Entry{}, m.ttl); err != nil {
			return "", err
		}
	}
	st.resolvedUserID = st.userID
	st.isNew = false
	st.dirty = false
	return minted, nil
}

// Start creates a fresh authenticated session for userID, replacing any prior session of that user.
// It returns the raw token for the cookie and the stored session.
func (m *Manager) Start(ctx context.Context, userID string) (string, *domain.Session, error) {
	tok, err := security.NewSessionToken()
	if err != nil {
		return "", nil, err
	}
	s, err := m.persist(ctx, security.HashSessionToken(tok), userID)
	if err != nil {
		return "", nil, err
	}
	return tok, s, nil
}

// End deletes the session for token from both stores, whether or not it is still live. The durable row goes first; a cache failure is
// returned because a surviving cache entry would keep the token usable until its TTL.
func (m *Manager) End(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoSession
	}
	id := security.HashSessionToken(token)
	if err := m.repo.Delete(ctx, id); err != nil {
		return err
	}
	return m.cache.Delete(ctx, id)
}

// persist writes the durable row first, evicts the user's previous sessions from the cache, then caches the new one.
func (m *Manager) persist(ctx context.Context, id, userID string) (*domain.Session, error) {
	now := m.now()
	s := &domain.Session{ID: id, UserID: userID, ExpiresAt: now.Add(m.ttl), CreatedAt: now}
	previous, err := m.repo.ReplaceForUser(ctx, s)
	if err != nil {
		return nil, err
	}
	stale := make([]string, 0, len(previous))
	for _, p := range previous {
		if p != id {
			stale = append(stale, p)
		}
	}
	if err := m.cache.Delete(ctx, stale...); err != nil {
		return nil, err
	}
	if err := m.cache.Set(ctx, id, cache.Entry{UserID: userID}, m.ttl); err != nil {
		log.Warn().Err(err).Str("session", qlog.TokenRef(id)).Msg("session: cache write failed, durable row will repair it")
	}
	return s, nil
}
