package helpers

import (
	"testing"
	"time"

	"github.com/oksasatya/go-marketplace-api/internal/domain/entity"
)

func demoUser() *entity.User {
	return &entity.User{ID: 7, Username: "ossi", Email: "ossi@example.com"}
}

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", 10*time.Minute)
	tok, exp, err := tm.Generate(demoUser())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry not in the future: %v", exp)
	}

	claims, err := tm.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "ossi" || claims.Email != "ossi@example.com" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", -1*time.Second)
	tok, _, err := tm.Generate(demoUser())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if _, err := tm.Parse(tok); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewTokenManager("right-secret", time.Hour).Generate(demoUser())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if _, err := NewTokenManager("wrong-secret", time.Hour).Parse(tok); err == nil {
		t.Fatal("expected error for invalid signature, got nil")
	}
}

func TestParse_MalformedString(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenManager("k", time.Hour).Parse("not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token, got nil")
	}
}
