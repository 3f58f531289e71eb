// Package gate is a small authorization toolkit: profiles grant
// "resource:action" permissions, and per-resource policies add ownership rules
// on top. It knows nothing about HTTP or the domain models.
//
// The user type is generic: Gate[uint] for user IDs, Gate[*Claims] for tokens.
package gate

import (
	"context"
	"errors"
	"slices"
)

// Gate combines profile permissions with resource policies.
//
//  1. the user must be non-zero and resolve to a profile
//  2. the profile must grant resource:action
//  3. if a policy is registered for the resource and a resource is given,
//     the policy must allow it
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver, policies: make(map[string]Policy[U])}
}

// Register sets the policy for a resource type, replacing any previous one.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

func (g *Gate[U]) profile(ctx context.Context, user U) (Profile, error) {
	var zero U
	if user == zero {
		return nil, ErrUnauthorized
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if profile == nil {
		return nil, ErrNoProfile
	}
	return profile, nil
}

// Authorize returns nil when user may perform action on resource,
// ErrUnauthorized for anonymous users and ErrForbidden otherwise.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	profile, err := g.profile(ctx, user)
	if err != nil {
		if errors.Is(err, ErrNoProfile) {
			return ErrForbidden
		}
		return err
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrForbidden
	}
	if resource != nil {
		if p, ok := g.policies[resourceType]; ok && !p.Can(ctx, user, action, resource) {
			return ErrForbidden
		}
	}
	return nil
}

func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// CanProfile checks only the profile permission, before any resource is loaded.
func (g *Gate[U]) CanProfile(ctx context.Context, user U, action Action, resourceType string) bool {
	profile, err := g.profile(ctx, user)
	if err != nil {
		return false
	}
	return profile.HasPermission(NewPermission(resourceType, action))
}

// HasRole is the role capability check: allow when the user's profile name is
// one of roles.
func (g *Gate[U]) HasRole(ctx context.Context, user U, roles ...string) bool {
	profile, err := g.profile(ctx, user)
	if err != nil {
		return false
	}
	return slices.Contains(roles, profile.Name())
}
