package auth

import "testing"

// TestSignAndParseAccessToken verifies sign and parse access token behavior.
func TestSignAndParseAccessToken(t *testing.T) {
	token, err := SignAccessToken("secret", 7, "Ada", "ada@test.local", RoleOrganizer)
	if err != nil {
		t.Fatalf("SignAccessToken(): %v", err)
	}

	claims, err := ParseAccessToken("secret", token)
	if err != nil {
		t.Fatalf("ParseAccessToken(): %v", err)
	}
	if claims.UserID != 7 {
		t.Fatalf("expected user id 7, got %d", claims.UserID)
	}
	if claims.Role != RoleOrganizer {
		t.Fatalf("expected role organizer, got %s", claims.Role)
	}
}

// TestParseAccessTokenWrongSecret verifies parse access token wrong secret behavior.
func TestParseAccessTokenWrongSecret(t *testing.T) {
	token, err := SignAccessToken("secret", 7, "Ada", "ada@test.local", RoleUser)
	if err != nil {
		t.Fatalf("SignAccessToken(): %v", err)
	}
	if _, err := ParseAccessToken("other", token); err == nil {
		t.Fatalf("expected parse to fail with wrong secret")
	}
}

// TestCheckPassword verifies check password behavior.
func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2secret")
	if err != nil {
		t.Fatalf("HashPassword(): %v", err)
	}
	if !CheckPassword(hash, "hunter2secret") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected mismatched password to fail")
	}
}
