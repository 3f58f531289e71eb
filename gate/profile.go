package gate

import (
	"context"
	"sync"
)

// Profile is what a user account is granted: the admin office profile, the
// customer profile, or one built by staff.
type Profile interface {
	ID() uint
	Name() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// ProfileResolver finds the profile assigned to a user. A nil profile with a
// nil error is an account nobody has assigned a profile to yet.
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, user U) (Profile, error)
}

// FixedProfile is a profile whose grants are known up front.
type FixedProfile struct {
	id     uint
	name   string
	grants []Permission
}

func NewFixedProfile(id uint, name string, grants ...Permission) *FixedProfile {
	return &FixedProfile{id: id, name: name, grants: grants}
}

func (p *FixedProfile) ID() uint                  { return p.id }
func (p *FixedProfile) Name() string              { return p.name }
func (p *FixedProfile) Permissions() []Permission { return append([]Permission(nil), p.grants...) }

func (p *FixedProfile) HasPermission(requested Permission) bool {
	return covers(p.grants, requested)
}

// covers reports whether any of granted matches requested, wildcards included.
func covers(granted []Permission, requested Permission) bool {
	for _, g := range granted {
		if g.Matches(requested) {
			return true
		}
	}
	return false
}

// Assignments is a ProfileResolver backed by a map.
type Assignments[U comparable] struct {
	mu sync.RWMutex
	by map[U]Profile
}

func NewAssignments[U comparable]() *Assignments[U] {
	return &Assignments[U]{by: make(map[U]Profile)}
}

// Assign gives user profile; a nil profile removes the assignment.
func (a *Assignments[U]) Assign(user U, profile Profile) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if profile == nil {
		delete(a.by, user)
		return
	}
	a.by[user] = profile
}

func (a *Assignments[U]) Resolve(_ context.Context, user U) (Profile, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.by[user], nil
}
