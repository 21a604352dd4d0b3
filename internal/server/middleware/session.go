package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"quiz-arena/backend/internal/server/httpx"
	sessionservice "quiz-arena/backend/internal/session/service"
)

// CookieName is the session cookie.
const CookieName = "session_id"

// SessionResolver maps cookie tokens to session state and writes changes back.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*sessionservice.State, error)
	Commit(ctx context.Context, st *sessionservice.State) (string, error)
	TTL() time.Duration
}

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	Secure bool
}

// Sessions resolves the session cookie into a State before the handler runs and writes the state back
// right before the response headers go out. Login and logout change the cookie through the State
// (Establish, Destroy); anonymous visitors get a freshly minted cookie.
func Sessions(resolver SessionResolver, cfg CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(CookieName)
		st, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		SetSessionState(c, st)

		w := &commitWriter{ResponseWriter: c.Writer}
		w.commit = func() { finish(c.Request.Context(), w.ResponseWriter, resolver, cfg, st) }
		c.Writer = w
		c.Next()
		w.before()
	}
}

func finish(ctx context.Context, w http.ResponseWriter, resolver SessionResolver, cfg CookieConfig, st *sessionservice.State) {
	switch {
	case st.Destroyed():
		http.SetCookie(w, sessionCookie("", -1, cfg))
	case st.Established():
		http.SetCookie(w, sessionCookie(st.Token(), int(resolver.TTL().Seconds()), cfg))
	default:
		minted, err := resolver.Commit(ctx, st)
		if err != nil {
			log.Error().Err(err).Msg("session: commit failed")
			return
		}
		if minted != "" {
			http.SetCookie(w, sessionCookie(minted, int(resolver.TTL().Seconds()), cfg))
		}
	}
}

// sessionCookie builds the cookie. A negative maxAge clears it (Max-Age=0 on the wire).
func sessionCookie(value string, maxAge int, cfg CookieConfig) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// commitWriter runs commit once, before the first byte or status line reaches the client, so the
// session cookie can still be added to the headers.
type commitWriter struct {
	gin.ResponseWriter
	once   sync.Once
	commit func()
}

func (w *commitWriter) before() { w.once.Do(w.commit) }

func (w *commitWriter) WriteHeaderNow() {
	w.before()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.before()
	return w.ResponseWriter.Write(b)
}

func (w *commitWriter) WriteString(s string) (int, error) {
	w.before()
	return w.ResponseWriter.WriteString(s)
}

func (w *commitWriter) Flush() {
	w.before()
	w.ResponseWriter.Flush()
}

// RequireUser rejects anonymous callers with 401 and clears their cookie.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := SessionState(c)
		if !st.Authenticated() {
			st.Destroy()
			httpx.Fail(c, http.StatusUnauthorized, "Unauthorized: Invalid or expired session")
			return
		}
		c.Next()
	}
}
