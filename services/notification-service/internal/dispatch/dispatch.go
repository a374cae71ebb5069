package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Topic names mirror the booking-service outbox event types.
const (
	TopicSlotBooked    = "booking.slot.booked.v1"
	TopicStatusChanged = "booking.status.changed.v1"
	TopicCancelled     = "booking.cancelled.v1"
)

// Message is a fully rendered notification ready for a sender.
type Message struct {
	BookingID string
	TenantID  string
	Recipient string
	Phone     string
	Subject   string
	Body      string
	Template  map[string]any
}

var errMissingFields = errors.New("missing required event fields")

type bookedPayload struct {
	BookingID   string `json:"booking_id"`
	TenantID    string `json:"tenant_id"`
	ServiceID   string `json:"service_id"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

type statusChangedPayload struct {
	BookingID   string `json:"booking_id"`
	TenantID    string `json:"tenant_id"`
	ClientEmail string `json:"client_email"`
	FromStatus  string `json:"from_status"`
	ToStatus    string `json:"to_status"`
}

type cancelledPayload struct {
	BookingID   string `json:"booking_id"`
	TenantID    string `json:"tenant_id"`
	ClientEmail string `json:"client_email"`
	Reason      string `json:"reason"`
	CancelledAt string `json:"cancelled_at"`
}

// Render turns one booking event into a notification message. Unknown topics
// and malformed payloads return an error; the consumer logs and drops them.
func Render(topic string, value []byte) (Message, error) {
	switch topic {
	case TopicSlotBooked:
		var p bookedPayload
		if err := json.Unmarshal(value, &p); err != nil {
			return Message{}, err
		}
		if p.BookingID == "" || p.TenantID == "" || p.ClientEmail == "" {
			return Message{}, errMissingFields
		}
		name := strings.TrimSpace(p.ClientName)
		if name == "" {
			name = "there"
		}
		return Message{
			BookingID: p.BookingID,
			TenantID:  p.TenantID,
			Recipient: p.ClientEmail,
			Phone:     p.ClientPhone,
			Subject:   "Booking received",
			Body: fmt.Sprintf("Hi %s, we received your booking %s for %s. You will hear from us when it is confirmed.",
				name, p.BookingID, formatWhen(p.StartTime)),
			Template: map[string]any{
				"client_name": p.ClientName,
				"service_id":  p.ServiceID,
				"start_time":  p.StartTime,
				"end_time":    p.EndTime,
			},
		}, nil
	case TopicStatusChanged:
		var p statusChangedPayload
		if err := json.Unmarshal(value, &p); err != nil {
			return Message{}, err
		}
		if p.BookingID == "" || p.TenantID == "" || p.ClientEmail == "" || p.ToStatus == "" {
			return Message{}, errMissingFields
		}
		return Message{
			BookingID: p.BookingID,
			TenantID:  p.TenantID,
			Recipient: p.ClientEmail,
			Subject:   "Booking update",
			Body:      fmt.Sprintf("Your booking %s is now %s.", p.BookingID, p.ToStatus),
			Template: map[string]any{
				"from_status": p.FromStatus,
				"to_status":   p.ToStatus,
			},
		}, nil
	case TopicCancelled:
		var p cancelledPayload
		if err := json.Unmarshal(value, &p); err != nil {
			return Message{}, err
		}
		if p.BookingID == "" || p.TenantID == "" || p.ClientEmail == "" {
			return Message{}, errMissingFields
		}
		body := fmt.Sprintf("Your booking %s was cancelled.", p.BookingID)
		if strings.TrimSpace(p.Reason) != "" {
			body = fmt.Sprintf("%s Reason: %s.", body, strings.TrimSpace(p.Reason))
		}
		return Message{
			BookingID: p.BookingID,
			TenantID:  p.TenantID,
			Recipient: p.ClientEmail,
			Subject:   "Booking cancelled",
			Body:      body,
			Template: map[string]any{
				"reason":       p.Reason,
				"cancelled_at": p.CancelledAt,
			},
		}, nil
	}
	return Message{}, fmt.Errorf("unknown topic %q", topic)
}

func formatWhen(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.UTC().Format("Mon, 2 Jan 2006 at 15:04 UTC")
}
