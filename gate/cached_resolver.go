package gate

import (
	"context"
	"sync"
	"time"
)

// CachedResolver remembers each signed-in user's profile for ttl. Office
// staff edit profiles rarely while every request is authorized, so the
// database is only asked again on expiry or after an explicit drop.
type CachedResolver[U comparable] struct {
	inner ProfileResolver[U]
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	entries map[U]resolved
}

type resolved struct {
	profile Profile
	until   time.Time
}

// holds reports whether the cached profile is the one with id. Users cached
// without a profile never match.
func (e resolved) holds(profileID uint) bool {
	return e.profile != nil && e.profile.ID() == profileID
}

func NewCachedResolver[U comparable](inner ProfileResolver[U], ttl time.Duration) *CachedResolver[U] {
	return &CachedResolver[U]{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[U]resolved),
	}
}

func (r *CachedResolver[U]) lookup(user U) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[user]
	if !ok || !r.now().Before(e.until) {
		return nil, false
	}
	return e.profile, true
}

// Resolve serves a fresh entry from memory and otherwise asks the inner
// resolver. Lookup failures are returned but not remembered.
func (r *CachedResolver[U]) Resolve(ctx context.Context, user U) (Profile, error) {
	if p, ok := r.lookup(user); ok {
		return p, nil
	}
	p, err := r.inner.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.entries[user] = resolved{profile: p, until: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return p, nil
}

// Invalidate drops one user after their profile assignment changed.
func (r *CachedResolver[U]) Invalidate(user U) {
	r.mu.Lock()
	delete(r.entries, user)
	r.mu.Unlock()
}

// InvalidateProfile drops every user currently holding profileID, so edits
// to that profile's permissions apply on their next request. It returns how
// many entries were dropped.
func (r *CachedResolver[U]) InvalidateProfile(profileID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for user, e := range r.entries {
		if e.holds(profileID) {
			delete(r.entries, user)
			n++
		}
	}
	return n
}

