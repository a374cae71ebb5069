package dispatch

import (
	"strings"
	"testing"
)

func TestRenderBooked(t *testing.T) {
	payload := []byte(`{
		"booking_id": "b1",
		"tenant_id": "t1",
		"service_id": "s1",
		"client_name": "Ada",
		"client_email": "ada@example.com",
		"client_phone": "+15550001111",
		"start_time": "2026-04-06T09:00:00Z",
		"end_time": "2026-04-06T09:30:00Z",
		"status": "pending"
	}`)
	msg, err := Render(TopicSlotBooked, payload)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if msg.Recipient != "ada@example.com" {
		t.Fatalf("unexpected recipient: %q", msg.Recipient)
	}
	if msg.Phone != "+15550001111" {
		t.Fatalf("unexpected phone: %q", msg.Phone)
	}
	if !strings.Contains(msg.Body, "Ada") {
		t.Fatalf("body should address the client: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "Mon, 6 Apr 2026 at 09:00 UTC") {
		t.Fatalf("body should contain the formatted start time: %q", msg.Body)
	}
}

func TestRenderStatusChanged(t *testing.T) {
	payload := []byte(`{
		"booking_id": "b1",
		"tenant_id": "t1",
		"client_email": "ada@example.com",
		"from_status": "pending",
		"to_status": "confirmed"
	}`)
	msg, err := Render(TopicStatusChanged, payload)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(msg.Body, "confirmed") {
		t.Fatalf("body should carry the new status: %q", msg.Body)
	}
}

func TestRenderCancelledWithReason(t *testing.T) {
	payload := []byte(`{
		"booking_id": "b1",
		"tenant_id": "t1",
		"client_email": "ada@example.com",
		"reason": "staff illness",
		"cancelled_at": "2026-04-05T10:00:00Z"
	}`)
	msg, err := Render(TopicCancelled, payload)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(msg.Body, "staff illness") {
		t.Fatalf("body should carry the reason: %q", msg.Body)
	}
}

func TestRenderMissingEmail(t *testing.T) {
	payload := []byte(`{"booking_id": "b1", "tenant_id": "t1"}`)
	if _, err := Render(TopicSlotBooked, payload); err == nil {
		t.Fatal("expected error for missing client email")
	}
}

func TestRenderUnknownTopic(t *testing.T) {
	if _, err := Render("billing.invoice.paid.v1", []byte(`{}`)); err == nil {
		t.Fatal("expected error for unknown topic")
	}
}
