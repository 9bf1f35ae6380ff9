package password

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashWithCost("secret-pass", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !Verify("secret-pass", hash) {
		t.Error("expected password to verify")
	}
	if Verify("wrong-pass", hash) {
		t.Error("expected wrong password to fail")
	}
}

func TestHashToken_IsStableHex(t *testing.T) {
	a := HashToken("abc")
	b := HashToken("abc")
	if a != b {
		t.Errorf("expected stable hash, got %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a == HashToken("abd") {
		t.Error("expected different tokens to hash differently")
	}
}

func TestGenerateToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		tok, err := GenerateToken()
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if len(tok) != 43 {
			t.Errorf("expected 43 chars, got %d", len(tok))
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated: %s", tok)
		}
		seen[tok] = true
	}
}

func TestValidatePassword(t *testing.T) {
	if ValidatePassword("short") {
		t.Error("expected short password to be rejected")
	}
	if !ValidatePassword("longenough") {
		t.Error("expected 10 char password to pass")
	}
}
