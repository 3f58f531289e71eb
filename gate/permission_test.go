package gate_test

import (
	"testing"

	"github.com/diewo77/bespoke-tuition/gate"
)

func TestPermission_NewPermission(t *testing.T) {
	perm := gate.NewPermission("invoice", gate.ActionPay)
	if perm != "invoice:pay" {
		t.Errorf("expected 'invoice:pay', got '%s'", perm)
	}
}

func TestPermission_Parts(t *testing.T) {
	perm := gate.Permission("accounts:generate")
	if perm.Resource() != "accounts" {
		t.Errorf("expected resource 'accounts', got '%s'", perm.Resource())
	}
	if perm.Action() != gate.ActionGenerate {
		t.Errorf("expected action 'generate', got '%s'", perm.Action())
	}

	bad := gate.Permission("invalid")
	if bad.Resource() != "" || bad.Action() != "" {
		t.Errorf("expected empty parts, got '%s' and '%s'", bad.Resource(), bad.Action())
	}
}

func TestPermission_Matches(t *testing.T) {
	tests := []struct {
		granted   gate.Permission
		requested gate.Permission
		want      bool
	}{
		{"invoice:view", "invoice:view", true},
		{"invoice:view", "invoice:pay", false},
		{"invoice:view", "lesson:view", false},
		{gate.PermissionSuperAdmin, "invoice:pay", true},
		{gate.PermissionSuperAdmin, "accounts:generate", true},
		{"invoice:*", "invoice:pay", true},
		{"invoice:*", "lesson:create", false},
		{":*", "invoice:pay", false},
	}
	for _, tt := range tests {
		if got := tt.granted.Matches(tt.requested); got != tt.want {
			t.Errorf("%s.Matches(%s) = %v, want %v", tt.granted, tt.requested, got, tt.want)
		}
	}
}
