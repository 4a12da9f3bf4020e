package auth

import (
	"strings"
	"testing"

	"skillforge/internal/domain/tenant"
)

func TestJWTService_GenerateVerifyRoundTrip(t *testing.T) {
	service := NewJWTService("test-secret", 15, 7)

	tests := []struct {
		name     string
		userID   string
		tenantID string
		role     tenant.Role
	}{
		{"admin session", "usr-admin", "tnt-001", tenant.RoleAdmin},
		{"member session", "usr-member", "tnt-002", tenant.RoleMember},
		{"pre-onboarding session without tenant", "usr-new", "", tenant.RoleMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := service.Generate(tt.userID, tt.tenantID, tt.role)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}

			claims, err := service.Verify(token)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if claims.UserID != tt.userID {
				t.Errorf("UserID = %v, want %v", claims.UserID, tt.userID)
			}
			if claims.TenantID != tt.tenantID {
				t.Errorf("TenantID = %v, want %v", claims.TenantID, tt.tenantID)
			}
			if claims.Role != tt.role {
				t.Errorf("Role = %v, want %v", claims.Role, tt.role)
			}
			if claims.TokenType != TokenTypeAccess {
				t.Errorf("TokenType = %v, want access", claims.TokenType)
			}
		})
	}
}

func TestJWTService_VerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", 15, 7)
	verifier := NewJWTService("secret-b", 15, 7)

	token, err := issuer.Generate("usr-1", "tnt-001", tenant.RoleAdmin)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Error("Verify() accepted a token signed with a different secret")
	}
}

func TestJWTService_VerifyRejectsGarbage(t *testing.T) {
	service := NewJWTService("test-secret", 15, 7)

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"not a jwt", "not-a-token"},
		{"truncated jwt", "eyJhbGciOiJIUzI1NiJ9.eyJ1c2VyX2lkIjoi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.Verify(tt.token); err == nil {
				t.Errorf("Verify() expected error for token %q", tt.token)
			}
		})
	}
}

func TestJWTService_VerifyRejectsTamperedToken(t *testing.T) {
	service := NewJWTService("test-secret", 15, 7)

	token, err := service.Generate("usr-1", "tnt-001", tenant.RoleMember)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d parts", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := service.Verify(tampered); err == nil {
		t.Error("Verify() accepted a token with a forged signature")
	}
}
