package service

// State is the per-request view of the caller's session. Handlers change it only through its methods,
// which record whether anything needs to be written back once the request completes.
type State struct {
	presented string // raw cookie token as sent, live or not
	token     string
	id        string // hashed token; empty until a token exists

	userID         string
	resolvedUserID string

	isNew       bool
	dirty       bool
	established bool
	destroyed   bool
}

// Token returns the raw session token carried by the request (or minted by Establish), if any.
func (s *State) Token() string { return s.token }

// Presented returns the token the request's cookie carried, even when it no longer names a live session.
func (s *State) Presented() string { return s.presented }

// UserID returns the caller's user id; empty for anonymous callers.
func (s *State) UserID() string { return s.userID }

// Authenticated reports whether the caller resolved to a user.
func (s *State) Authenticated() bool { return s.userID != "" }

// IsNew reports whether the request carried no usable session.
func (s *State) IsNew() bool { return s.isNew }

// SetUserID changes the identity bound to the current session and marks the state dirty.
func (s *State) SetUserID(userID string) {
	if userID == s.userID {
		return
	}
	s.userID = userID
	s.dirty = true
}

// Dirty reports whether a handler changed the identity during this request.
func (s *State) Dirty() bool { return s.dirty }

// Establish adopts a session that was already persisted (durably and in the cache) by the login flow,
// so the resolver does not mint or write anything else for this request.
func (s *State) Establish(token, id, userID string) {
	s.token = token
	s.id = id
	s.userID = userID
	s.resolvedUserID = userID
	s.isNew = false
	s.dirty = false
	s.established = true
}

// Established reports whether Establish was called.
func (s *State) Established() bool { return s.established }

// Destroy marks the session as ended (logout); nothing is written back.
func (s *State) Destroy() {
	s.userID = ""
	s.dirty = false
	s.destroyed = true
}

// Destroyed reports whether Destroy was called.
func (s *State) Destroyed() bool { return s.destroyed }

// NeedsCommit reports whether the resolver has to persist anything after the handler ran.
func (s *State) NeedsCommit() bool {
	if s.destroyed || s.established {
		return false
	}
	return s.dirty || s.isNew
}
