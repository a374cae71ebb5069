package outbox

import (
	"encoding/json"
	"time"

	"github.com/d-okonkwo/slotly/services/booking-service/internal/model"
)

// Topic names double as event types. One event kind per topic.
const (
	TopicSlotBooked    = "booking.slot.booked.v1"
	TopicStatusChanged = "booking.status.changed.v1"
	TopicCancelled     = "booking.cancelled.v1"
)

// Event is the domain event envelope written to the outbox table inside the
// booking transaction. The Kafka topic name equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type slotBookedPayload struct {
	BookingID      string    `json:"booking_id"`
	TenantID       string    `json:"tenant_id"`
	ServiceID      string    `json:"service_id"`
	ProfessionalID string    `json:"professional_id,omitempty"`
	ClientName     string    `json:"client_name"`
	ClientEmail    string    `json:"client_email"`
	ClientPhone    string    `json:"client_phone,omitempty"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Status         string    `json:"status"`
}

type statusChangedPayload struct {
	BookingID   string `json:"booking_id"`
	TenantID    string `json:"tenant_id"`
	ServiceID   string `json:"service_id"`
	ClientEmail string `json:"client_email"`
	FromStatus  string `json:"from_status"`
	ToStatus    string `json:"to_status"`
}

type cancelledPayload struct {
	BookingID   string    `json:"booking_id"`
	TenantID    string    `json:"tenant_id"`
	ServiceID   string    `json:"service_id"`
	ClientEmail string    `json:"client_email"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelled_at"`
}

func SlotBooked(b model.Booking) Event {
	payload, _ := json.Marshal(slotBookedPayload{
		BookingID:      b.ID,
		TenantID:       b.TenantID,
		ServiceID:      b.ServiceID,
		ProfessionalID: b.ProfessionalID,
		ClientName:     b.ClientName,
		ClientEmail:    b.ClientEmail,
		ClientPhone:    b.ClientPhone,
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		Status:         string(b.Status),
	})
	return Event{
		AggregateType: "booking",
		AggregateID:   b.ID,
		EventType:     TopicSlotBooked,
		Payload:       payload,
	}
}

func StatusChanged(b model.Booking, from, to model.Status) Event {
	payload, _ := json.Marshal(statusChangedPayload{
		BookingID:   b.ID,
		TenantID:    b.TenantID,
		ServiceID:   b.ServiceID,
		ClientEmail: b.ClientEmail,
		FromStatus:  string(from),
		ToStatus:    string(to),
	})
	return Event{
		AggregateType: "booking",
		AggregateID:   b.ID,
		EventType:     TopicStatusChanged,
		Payload:       payload,
	}
}

func Cancelled(b model.Booking, reason string, cancelledAt time.Time) Event {
	payload, _ := json.Marshal(cancelledPayload{
		BookingID:   b.ID,
		TenantID:    b.TenantID,
		ServiceID:   b.ServiceID,
		ClientEmail: b.ClientEmail,
		Reason:      reason,
		CancelledAt: cancelledAt,
	})
	return Event{
		AggregateType: "booking",
		AggregateID:   b.ID,
		EventType:     TopicCancelled,
		Payload:       payload,
	}
}
