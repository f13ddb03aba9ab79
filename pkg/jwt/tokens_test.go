package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	signer, err := NewSigner("secret", "HS256", WithIssuer("liftsplit"))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	token, expires, err := signer.Issue("john", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("expected expiry in the future, got %s", expires)
	}
	claims, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "john" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Issuer != "liftsplit" {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer, err := NewSigner("secret", "HS256", WithClock(func() time.Time { return past }))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	token, _, err := issuer.Issue("john", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	verifier, err := NewSigner("secret", "HS256")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsForeignSignatures(t *testing.T) {
	a, _ := NewSigner("secret-a", "HS256")
	b, _ := NewSigner("secret-b", "HS256")
	token, _, err := a.Issue("john", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign key, got %v", err)
	}

	other, _ := NewSigner("secret-a", "HS512")
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for algorithm mismatch, got %v", err)
	}
}

func TestVerifyRejectsTamperedAndMalformedTokens(t *testing.T) {
	signer, _ := NewSigner("secret", "HS384")
	token, _, err := signer.Issue("john", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(token, ".")
	parts[1] = parts[1] + "x"
	for _, candidate := range []string{strings.Join(parts, "."), "not-a-token", ""} {
		if _, err := signer.Verify(candidate); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", candidate, err)
		}
	}
}

func TestVerifyRequiresIssuerWhenConfigured(t *testing.T) {
	plain, _ := NewSigner("secret", "HS256")
	strict, _ := NewSigner("secret", "HS256", WithIssuer("liftsplit"))
	token, _, err := plain.Issue("john", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := strict.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected issuer mismatch to fail, got %v", err)
	}
}

func TestNewSignerRejectsUnsupportedAlgorithms(t *testing.T) {
	for _, alg := range []string{"RS256", "none", "ES256", ""} {
		if _, err := NewSigner("secret", alg); err == nil {
			t.Fatalf("expected %q to be rejected", alg)
		}
	}
	if _, err := NewSigner("", "HS256"); err == nil {
		t.Fatal("expected empty secret to be rejected")
	}
}
