// Package cache is the fast-path session lookup in front of the durable session store.
// Entries are keyed by the hashed session id and always carry a TTL.
package cache

import (
	"context"
	"time"
)

// Entry is the cached identity for a session. An empty UserID marks an anonymous session.
type Entry struct {
	UserID string `json:"userId"`
}

// Cache stores session entries with a TTL. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the entry for id. ok is false when the entry is missing or expired.
	Get(ctx context.Context, id string) (e Entry, ok bool, err error)
	// Set stores e under id for ttl.
	Set(ctx context.Context, id string, e Entry, ttl time.Duration) error
	// Delete removes the entries for ids; missing ids are ignored.
	Delete(ctx context.Context, ids ...string) error
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

const keyPrefix = "session:"

func key(id string) string { return keyPrefix + id }
