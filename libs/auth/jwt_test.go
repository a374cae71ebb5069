package auth

import (
	"testing"
	"time"
)

func TestSignAndVerifyHS256(t *testing.T) {
	claims := Claims{
		Sub:      "owner-1",
		TenantID: "tenant-1",
		Role:     "admin",
		Iat:      time.Now().Unix(),
		Exp:      time.Now().Add(time.Hour).Unix(),
	}
	token, err := SignHS256(claims, "secret")
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}

	parsed, err := ParseAndVerifyHS256(token, "secret")
	if err != nil {
		t.Fatalf("ParseAndVerifyHS256 failed: %v", err)
	}
	if parsed.TenantID != "tenant-1" || parsed.Sub != "owner-1" {
		t.Fatalf("unexpected claims: %+v", parsed)
	}

	if _, err := ParseAndVerifyHS256(token, "wrong-secret"); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	claims := Claims{
		Sub:      "owner-1",
		TenantID: "tenant-1",
		Exp:      time.Now().Add(-time.Minute).Unix(),
	}
	token, err := SignHS256(claims, "secret")
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	if _, err := ParseAndVerifyHS256(token, "secret"); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
