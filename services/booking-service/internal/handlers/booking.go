package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/d-okonkwo/slotly/libs/httpx"
	"github.com/d-okonkwo/slotly/services/booking-service/internal/directory"
	"github.com/d-okonkwo/slotly/services/booking-service/internal/model"
	"github.com/d-okonkwo/slotly/services/booking-service/internal/outbox"
	"github.com/d-okonkwo/slotly/services/booking-service/internal/storage"
)

type BookingHandler struct {
	repo       *storage.BookingRepository
	outboxRepo *outbox.Repository
	directory  directory.Provider
	logger     *slog.Logger
}

func NewBookingHandler(repo *storage.BookingRepository, outboxRepo *outbox.Repository, provider directory.Provider, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		directory:  provider,
		logger:     logger,
	}
}

type clientInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type createBookingRequest struct {
	TenantID       string     `json:"tenant_id"`
	ServiceID      string     `json:"service_id"`
	ProfessionalID string     `json:"professional_id"`
	Client         clientInfo `json:"client"`
	StartTime      string     `json:"start_time"`
	EndTime        string     `json:"end_time"`
}

type bookingResponse struct {
	BookingID      string `json:"booking_id"`
	TenantID       string `json:"tenant_id"`
	ServiceID      string `json:"service_id"`
	ProfessionalID string `json:"professional_id,omitempty"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Status         string `json:"status"`
	CancelledAt    string `json:"cancelled_at,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

type updateStatusRequest struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
}

// Create is the booking commit guard: one transaction holding a per
// (tenant, service) advisory lock across the overlap re-check and the
// insert. The exclusion constraint on the bookings table is the backstop
// should anything slip past the lock.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		http.Error(w, "invalid end_time", http.StatusBadRequest)
		return
	}

	booking := &model.Booking{
		TenantID:       strings.TrimSpace(req.TenantID),
		ServiceID:      strings.TrimSpace(req.ServiceID),
		ProfessionalID: strings.TrimSpace(req.ProfessionalID),
		ClientName:     strings.TrimSpace(req.Client.Name),
		ClientEmail:    strings.TrimSpace(req.Client.Email),
		ClientPhone:    strings.TrimSpace(req.Client.Phone),
		StartTime:      startTime.UTC(),
		EndTime:        endTime.UTC(),
		Status:         model.StatusPending,
	}
	if err := booking.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" {
		rec, exists, err := h.repo.LockIdempotencyKey(ctx, tx, booking.TenantID, idempotencyKey)
		if err != nil {
			http.Error(w, "failed to lock idempotency key", http.StatusInternalServerError)
			return
		}
		if exists && rec.StatusCode > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.ResponsePayload)
			return
		}
	}

	// Requests outside the service schedule never reach the insert.
	ok, err := h.validateWithinSchedule(ctx, booking)
	if err != nil {
		// Do not finalize idempotency on dependency errors; the client may
		// retry later with the same key.
		http.Error(w, "directory service unavailable", http.StatusServiceUnavailable)
		return
	}
	if !ok {
		if idempotencyKey != "" {
			if h.finalizeIdempotencyError(ctx, tx, booking.TenantID, idempotencyKey, http.StatusUnprocessableEntity, "requested time is outside the service schedule") {
				_ = tx.Commit(ctx)
				return
			}
		}
		http.Error(w, "requested time is outside the service schedule", http.StatusUnprocessableEntity)
		return
	}

	if err := h.repo.AcquireSlotLock(ctx, tx, booking.TenantID, booking.ServiceID); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	overlapping, err := h.repo.CountOverlapping(ctx, tx, booking.TenantID, booking.ServiceID, booking.ProfessionalID, booking.StartTime, booking.EndTime)
	if err != nil {
		http.Error(w, "failed to check for conflicts", http.StatusInternalServerError)
		return
	}
	if overlapping > 0 {
		http.Error(w, "time slot already booked", http.StatusConflict)
		return
	}

	id, err := h.repo.Create(ctx, tx, booking)
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create booking", http.StatusInternalServerError)
		return
	}
	booking.ID = id

	if err := h.outboxRepo.Insert(ctx, tx, outbox.SlotBooked(*booking)); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	respBody, err := json.Marshal(bookingResponse{
		BookingID:      id,
		TenantID:       booking.TenantID,
		ServiceID:      booking.ServiceID,
		ProfessionalID: booking.ProfessionalID,
		StartTime:      booking.StartTime.Format(time.RFC3339),
		EndTime:        booking.EndTime.Format(time.RFC3339),
		Status:         string(booking.Status),
	})
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if idempotencyKey != "" {
		if err := h.repo.FinalizeIdempotency(ctx, tx, booking.TenantID, idempotencyKey, id, http.StatusCreated, respBody); err != nil {
			http.Error(w, "failed to finalize idempotency key", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

// UpdateStatus moves a booking through its lifecycle. Cancelling an already
// cancelled booking is a no-op that returns the current record.
// statusNoop reports whether a requested transition restates the current
// state. Cancelling an already-cancelled booking is idempotent and returns
// the booking unchanged rather than a 409.
func statusNoop(current, target model.Status) bool {
	return current == model.StatusCancelled && target == model.StatusCancelled
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tenantID := httpx.TenantIDFromContext(r.Context())
	if tenantID == "" {
		http.Error(w, "tenant required", http.StatusUnauthorized)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BookingID = strings.TrimSpace(req.BookingID)
	if req.BookingID == "" {
		http.Error(w, "booking_id required", http.StatusBadRequest)
		return
	}
	target, ok := model.ParseStatus(strings.TrimSpace(req.Status))
	if !ok {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	booking, err := h.repo.GetBookingForUpdate(ctx, tx, tenantID, req.BookingID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load booking", http.StatusInternalServerError)
		return
	}

	if statusNoop(booking.Status, target) {
		h.writeBooking(w, http.StatusOK, booking)
		return
	}
	if !model.CanTransition(booking.Status, target) {
		http.Error(w, fmt.Sprintf("cannot move booking from %s to %s", booking.Status, target), http.StatusConflict)
		return
	}

	// The lifecycle never re-occupies a freed interval: every transition into
	// an occupying status starts from one. Re-check overlap anyway if that
	// invariant is ever relaxed.
	if target.Occupying() && !booking.Status.Occupying() {
		if err := h.repo.AcquireSlotLock(ctx, tx, booking.TenantID, booking.ServiceID); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		n, err := h.repo.CountOverlapping(ctx, tx, booking.TenantID, booking.ServiceID, booking.ProfessionalID, booking.StartTime, booking.EndTime)
		if err != nil {
			http.Error(w, "failed to check for conflicts", http.StatusInternalServerError)
			return
		}
		if n > 0 {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
	}

	from := booking.Status
	if target == model.StatusCancelled {
		cancelledAt, err := h.repo.CancelBooking(ctx, tx, tenantID, booking.ID, strings.TrimSpace(req.Reason))
		if err != nil {
			http.Error(w, "failed to cancel booking", http.StatusInternalServerError)
			return
		}
		booking.Status = model.StatusCancelled
		booking.CancelledAt = &cancelledAt
		booking.CancelReason = strings.TrimSpace(req.Reason)
		if err := h.outboxRepo.Insert(ctx, tx, outbox.Cancelled(booking, booking.CancelReason, cancelledAt)); err != nil {
			http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
			return
		}
	} else {
		if err := h.repo.UpdateStatus(ctx, tx, tenantID, booking.ID, target); err != nil {
			http.Error(w, "failed to update booking", http.StatusInternalServerError)
			return
		}
		booking.Status = target
		if err := h.outboxRepo.Insert(ctx, tx, outbox.StatusChanged(booking, from, target)); err != nil {
			http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	h.writeBooking(w, http.StatusOK, booking)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tenantID := httpx.TenantIDFromContext(r.Context())
	if tenantID == "" {
		http.Error(w, "tenant required", http.StatusUnauthorized)
		return
	}

	filter := storage.ListFilter{
		ServiceID:      strings.TrimSpace(r.URL.Query().Get("service_id")),
		ProfessionalID: strings.TrimSpace(r.URL.Query().Get("professional_id")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
		filter.From = t
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "invalid to", http.StatusBadRequest)
			return
		}
		filter.To = t
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			filter.Limit = n
		}
	}

	bookings, err := h.repo.ListByTenant(r.Context(), tenantID, filter)
	if err != nil {
		http.Error(w, "failed to list bookings", http.StatusInternalServerError)
		return
	}

	items := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, toBookingResponse(b))
	}
	body, err := json.Marshal(items)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Delete removes a booking row outright. Distinct from cancellation, which
// keeps the record with a terminal status.
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tenantID := httpx.TenantIDFromContext(r.Context())
	if tenantID == "" {
		http.Error(w, "tenant required", http.StatusUnauthorized)
		return
	}
	bookingID := strings.TrimSpace(r.URL.Query().Get("booking_id"))
	if bookingID == "" {
		http.Error(w, "booking_id required", http.StatusBadRequest)
		return
	}

	if err := h.repo.DeleteBooking(r.Context(), tenantID, bookingID); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete booking", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validateWithinSchedule checks the requested interval against the service
// windows for the booking's date. Without a directory provider the exclusion
// constraint remains the only guard.
func (h *BookingHandler) validateWithinSchedule(ctx context.Context, b *model.Booking) (bool, error) {
	if h.directory == nil {
		return true, nil
	}

	dateStr := b.StartTime.UTC().Format("2006-01-02")
	reqCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	bc, err := h.directory.GetBookingContext(reqCtx, b.TenantID, b.ServiceID, dateStr, b.ProfessionalID)
	if err != nil {
		return false, fmt.Errorf("booking context fetch failed: %w", err)
	}
	if !bc.ServiceActive {
		return false, nil
	}
	if bc.Unrestricted {
		return true, nil
	}
	for _, win := range bc.ServiceWindowsUTC {
		if !b.StartTime.Before(win.StartUTC) && !b.EndTime.After(win.EndUTC) {
			return true, nil
		}
	}
	return false, nil
}

func (h *BookingHandler) finalizeIdempotencyError(ctx context.Context, tx pgx.Tx, tenantID, key string, statusCode int, msg string) bool {
	body, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return false
	}
	if err := h.repo.FinalizeIdempotency(ctx, tx, tenantID, key, "", statusCode, body); err != nil {
		h.logger.Error("failed to finalize idempotency (error)", "err", err)
		return false
	}
	return true
}

func (h *BookingHandler) writeBooking(w http.ResponseWriter, status int, b model.Booking) {
	body, err := json.Marshal(toBookingResponse(b))
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func toBookingResponse(b model.Booking) bookingResponse {
	resp := bookingResponse{
		BookingID:      b.ID,
		TenantID:       b.TenantID,
		ServiceID:      b.ServiceID,
		ProfessionalID: b.ProfessionalID,
		StartTime:      b.StartTime.UTC().Format(time.RFC3339),
		EndTime:        b.EndTime.UTC().Format(time.RFC3339),
		Status:         string(b.Status),
	}
	if b.CancelledAt != nil {
		resp.CancelledAt = b.CancelledAt.UTC().Format(time.RFC3339)
	}
	if !b.CreatedAt.IsZero() {
		resp.CreatedAt = b.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
