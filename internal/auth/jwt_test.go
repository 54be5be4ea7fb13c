package auth

import (
	"strings"
	"testing"
	"time"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc, err := NewJWTService("test-secret", time.Hour, "naija-amebo-gist")
	if err != nil {
		t.Fatalf("NewJWTService failed: %v", err)
	}

	token, err := svc.GenerateToken("admin-1", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != "admin-1" {
		t.Errorf("Expected user admin-1, got %s", claims.UserID)
	}
	if !claims.IsAdmin() {
		t.Error("Expected admin claims")
	}
}

func TestJWTService_Rejects(t *testing.T) {
	svc, _ := NewJWTService("test-secret", time.Hour, "naija-amebo-gist")
	other, _ := NewJWTService("other-secret", time.Hour, "naija-amebo-gist")
	wrongIssuer, _ := NewJWTService("test-secret", time.Hour, "someone-else")

	expired, _ := NewJWTService("test-secret", time.Minute, "naija-amebo-gist")
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }

	forged, _ := other.GenerateToken("u1", RoleAdmin)
	foreign, _ := wrongIssuer.GenerateToken("u1", RoleUser)
	old, _ := expired.GenerateToken("u1", RoleUser)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", forged},
		{"wrong issuer", foreign},
		{"expired", old},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ValidateToken(tt.token); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestNewJWTService_Validation(t *testing.T) {
	if _, err := NewJWTService("", time.Hour, "x"); err == nil {
		t.Error("Expected error for empty secret")
	}
	if _, err := NewJWTService("s", 0, "x"); err == nil {
		t.Error("Expected error for zero TTL")
	}

	svc, _ := NewJWTService("s", time.Hour, "x")
	if _, err := svc.GenerateToken("", RoleUser); err == nil || !strings.Contains(err.Error(), "user id") {
		t.Errorf("Expected user id error, got %v", err)
	}

	var nilClaims *Claims
	if nilClaims.IsAdmin() {
		t.Error("nil claims must not be admin")
	}
}
