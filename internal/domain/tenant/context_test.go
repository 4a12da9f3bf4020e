package tenant

import (
	"errors"
	"testing"
)

func TestContextValidate(t *testing.T) {
	tests := []struct {
		name    string
		ctx     Context
		wantErr error
	}{
		{"complete triple", Context{TenantID: "tnt-001", UserID: "usr-1", Role: RoleAdmin}, nil},
		{"missing user is no session", Context{TenantID: "tnt-001"}, ErrNoSession},
		{"missing tenant", Context{UserID: "usr-1", Role: RoleMember}, ErrNoTenantContext},
		{"empty context", Context{}, ErrNoSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ctx.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoleCanApprove(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleAdmin, true},
		{RoleSuperAdmin, true},
		{RoleMember, false},
		{Role("auditor"), false},
		{Role(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.CanApprove(); got != tt.want {
				t.Errorf("CanApprove() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoleIsValid(t *testing.T) {
	for _, role := range []Role{RoleMember, RoleAdmin, RoleSuperAdmin} {
		if !role.IsValid() {
			t.Errorf("IsValid() = false for known role %q", role)
		}
	}
	if Role("owner").IsValid() {
		t.Error("IsValid() = true for unknown role")
	}
}
