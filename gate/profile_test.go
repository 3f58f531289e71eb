package gate_test

import (
	"context"
	"testing"

	"github.com/diewo77/bespoke-tuition/gate"
)

func TestFixedProfile_HasPermission(t *testing.T) {
	profile := gate.NewFixedProfile(1, "customer",
		gate.NewPermission("invoice", gate.ActionView),
		gate.NewPermission("me", gate.ActionView),
	)

	if !profile.HasPermission(gate.NewPermission("invoice", gate.ActionView)) {
		t.Error("should have invoice:view permission")
	}
	if profile.HasPermission(gate.NewPermission("invoice", gate.ActionPay)) {
		t.Error("should not have invoice:pay permission")
	}
	if got := len(profile.Permissions()); got != 2 {
		t.Errorf("expected 2 permissions, got %d", got)
	}
}

func TestAssignments(t *testing.T) {
	resolver := gate.NewAssignments[uint]()
	resolver.Assign(1, gate.NewFixedProfile(1, "admin", gate.PermissionSuperAdmin))

	resolved, err := resolver.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved == nil || resolved.Name() != "admin" {
		t.Fatalf("expected admin profile, got %v", resolved)
	}

	unknown, err := resolver.Resolve(context.Background(), 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unknown != nil {
		t.Error("expected nil for unknown user")
	}

	resolver.Assign(1, nil)
	if p, _ := resolver.Resolve(context.Background(), 1); p != nil {
		t.Errorf("expected no profile after unassigning, got %v", p.Name())
	}
}
