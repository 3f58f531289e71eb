package gate

import "strings"

// Permission represents an allowed action on a resource type.
// Format: "resource:action" (e.g., "invoice:pay", "lesson:create")
type Permission string

// Wildcards for super permissions
const (
	WildcardAll                     = "*"
	PermissionSuperAdmin Permission = "*:*"
)

// NewPermission creates a permission from resource type and action.
func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Resource returns the part before the colon, or "" when malformed.
func (p Permission) Resource() string {
	res, _, ok := strings.Cut(string(p), ":")
	if !ok {
		return ""
	}
	return res
}

// Action returns the part after the colon, or "" when malformed.
func (p Permission) Action() Action {
	_, act, ok := strings.Cut(string(p), ":")
	if !ok {
		return ""
	}
	return Action(act)
}

// Matches checks if this permission grants the requested one.
// "*:*" grants everything and "invoice:*" grants every invoice action.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionSuperAdmin || p == requested {
		return true
	}
	return p.Action() == WildcardAll && p.Resource() != "" && p.Resource() == requested.Resource()
}
