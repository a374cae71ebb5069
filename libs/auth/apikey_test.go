package auth

import "testing"

func TestAPIKeyRoundTrip(t *testing.T) {
	key, hash, err := NewAPIKey()
	if err != nil {
		t.Fatalf("NewAPIKey failed: %v", err)
	}
	if key == "" || hash == "" {
		t.Fatal("expected non-empty key and hash")
	}
	if err := VerifyAPIKey(hash, key); err != nil {
		t.Fatalf("VerifyAPIKey should succeed: %v", err)
	}
	if err := VerifyAPIKey(hash, "sk_not-the-key"); err == nil {
		t.Fatal("VerifyAPIKey should fail for wrong key")
	}
	if err := VerifyAPIKey(hash, ""); err == nil {
		t.Fatal("VerifyAPIKey should fail for empty key")
	}
}
