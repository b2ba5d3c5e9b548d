package auth

import (
	"testing"
	"time"
)

func TestIssueParseRoundTrip(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "social-api", TTL: time.Hour}

	tok, err := j.Issue("u-1", "a@b.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok == "" {
		t.Fatal("empty token")
	}

	c, err := j.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UID != "u-1" || c.Email != "a@b.com" {
		t.Fatalf("claims = %+v", c)
	}
	if left := time.Until(c.ExpiresAt.Time); left > time.Hour || left < 50*time.Minute {
		t.Fatalf("unexpected ttl, %v left", left)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	a := &JWTer{Secret: []byte("secret-a"), Issuer: "social-api", TTL: time.Hour}
	b := &JWTer{Secret: []byte("secret-b"), Issuer: "social-api", TTL: time.Hour}

	tok, err := a.Issue("u-1", "a@b.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.Parse(tok); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "social-api", TTL: -2 * time.Minute}
	tok, err := j.Issue("u-1", "a@b.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := j.Parse(tok); err == nil {
		t.Fatal("expected expiry error")
	}
}
