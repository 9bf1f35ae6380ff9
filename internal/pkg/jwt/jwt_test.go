package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestDownloadToken_RoundTrip(t *testing.T) {
	token, expiresAt, err := GenerateDownloadToken("exp-1", 7, "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("expected future expiry, got %v", expiresAt)
	}

	claims, err := ValidateDownloadToken(token, "secret")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.ExportID != "exp-1" {
		t.Errorf("expected export id exp-1, got %s", claims.ExportID)
	}
	if claims.UserID != 7 {
		t.Errorf("expected user id 7, got %d", claims.UserID)
	}
}

func TestDownloadToken_WrongSecret(t *testing.T) {
	token, _, err := GenerateDownloadToken("exp-1", 0, "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := ValidateDownloadToken(token, "other"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestDownloadToken_Expired(t *testing.T) {
	token, _, err := GenerateDownloadToken("exp-1", 0, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := ValidateDownloadToken(token, "secret"); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}
