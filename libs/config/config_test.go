package config

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "750ms")
	if got := Duration("POLL_INTERVAL", 2*time.Second); got != 750*time.Millisecond {
		t.Fatalf("expected 750ms, got %s", got)
	}
	if got := Duration("POLL_INTERVAL_UNSET", 2*time.Second); got != 2*time.Second {
		t.Fatalf("expected fallback, got %s", got)
	}
	t.Setenv("POLL_INTERVAL_BAD", "soon")
	if got := Duration("POLL_INTERVAL_BAD", 2*time.Second); got != 2*time.Second {
		t.Fatalf("expected fallback on unparseable value, got %s", got)
	}
}

func TestPort(t *testing.T) {
	t.Setenv("FAKE_PORT", "70000")
	if _, err := Port("FAKE_PORT", "8080"); err == nil {
		t.Fatalf("expected error for out-of-range port")
	}
	t.Setenv("FAKE_PORT", "8084")
	p, err := Port("FAKE_PORT", "8080")
	if err != nil || p != "8084" {
		t.Fatalf("expected 8084, got %q err=%v", p, err)
	}
}
