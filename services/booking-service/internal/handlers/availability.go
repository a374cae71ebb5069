package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/d-okonkwo/slotly/services/booking-service/internal/availability"
	"github.com/d-okonkwo/slotly/services/booking-service/internal/directory"
	"github.com/d-okonkwo/slotly/services/booking-service/internal/schedule"
	"github.com/d-okonkwo/slotly/services/booking-service/internal/storage"
)

type AvailabilityHandler struct {
	repo      *storage.BookingRepository
	directory directory.Provider
	logger    *slog.Logger
}

func NewAvailabilityHandler(repo *storage.BookingRepository, provider directory.Provider, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{repo: repo, directory: provider, logger: logger}
}

type slotProfessional struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type slotResponse struct {
	StartTime     string             `json:"start_time"`
	EndTime       string             `json:"end_time"`
	Available     bool               `json:"available"`
	Reason        string             `json:"reason,omitempty"`
	Professionals []slotProfessional `json:"professionals,omitempty"`
}

type availabilityResponse struct {
	TenantID  string         `json:"tenant_id"`
	ServiceID string         `json:"service_id"`
	Date      string         `json:"date"`
	Slots     []slotResponse `json:"slots"`
}

// Slots answers the public availability query. The answer is computed fresh
// per request from the directory context and current occupying bookings. An
// empty day is a valid answer, not an error.
func (h *AvailabilityHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tenantID := strings.TrimSpace(r.URL.Query().Get("tenant_id"))
	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	professionalID := strings.TrimSpace(r.URL.Query().Get("professional_id"))
	if tenantID == "" || serviceID == "" || dateStr == "" {
		http.Error(w, "tenant_id, service_id, and date are required", http.StatusBadRequest)
		return
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	in, ok := h.buildResolverInput(r, tenantID, serviceID, dateStr, date, professionalID, w)
	if !ok {
		return
	}

	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)
	proIDs := make([]string, 0, len(in.Professionals))
	for _, p := range in.Professionals {
		proIDs = append(proIDs, p.ID)
	}
	booked, err := h.repo.ListOccupying(r.Context(), tenantID, serviceID, proIDs, dayStart, dayEnd)
	if err != nil {
		http.Error(w, "failed to load bookings", http.StatusInternalServerError)
		return
	}
	busy := make(map[string][]schedule.Interval)
	for _, b := range booked {
		busy[b.ProfessionalID] = append(busy[b.ProfessionalID], schedule.Interval{Start: b.StartTime, End: b.EndTime})
	}
	in.Busy = busy

	var slots []availability.Slot
	if professionalID != "" {
		slots = availability.ResolveForProfessional(in, professionalID)
	} else {
		slots = availability.Resolve(in)
	}

	resp := availabilityResponse{
		TenantID:  tenantID,
		ServiceID: serviceID,
		Date:      dateStr,
		Slots:     make([]slotResponse, 0, len(slots)),
	}
	for _, s := range slots {
		item := slotResponse{
			StartTime: s.Start.UTC().Format(time.RFC3339),
			EndTime:   s.End.UTC().Format(time.RFC3339),
			Available: s.Available,
			Reason:    s.Reason,
		}
		for _, p := range s.Professionals {
			item.Professionals = append(item.Professionals, slotProfessional{ID: p.ID, Name: p.Name})
		}
		resp.Slots = append(resp.Slots, item)
	}

	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// buildResolverInput fetches the directory context and turns it into resolver
// input. Without a directory provider it falls back to query-param defaults
// so the service stays usable in dev builds.
func (h *AvailabilityHandler) buildResolverInput(r *http.Request, tenantID, serviceID, dateStr string, date time.Time, professionalID string, w http.ResponseWriter) (availability.Input, bool) {
	if h.directory == nil {
		return h.fallbackInput(r, date, w)
	}

	reqCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	bc, err := h.directory.GetBookingContext(reqCtx, tenantID, serviceID, dateStr, professionalID)
	if err != nil {
		h.logger.Warn("booking context fetch failed", "err", err)
		http.Error(w, "directory service unavailable", http.StatusServiceUnavailable)
		return availability.Input{}, false
	}
	if !bc.ServiceActive {
		http.Error(w, "service not found", http.StatusNotFound)
		return availability.Input{}, false
	}

	in := availability.Input{
		Duration: time.Duration(bc.DurationMinutes) * time.Minute,
		Step:     time.Duration(bc.SlotStepMinutes) * time.Minute,
	}
	if in.Duration <= 0 {
		in.Duration = schedule.DefaultStep
	}

	if bc.Unrestricted {
		in.ServiceWindows = []schedule.Interval{{Start: date, End: date.AddDate(0, 0, 1)}}
	} else {
		for _, tw := range bc.ServiceWindowsUTC {
			in.ServiceWindows = append(in.ServiceWindows, schedule.Interval{Start: tw.StartUTC, End: tw.EndUTC})
		}
	}

	for _, pro := range bc.Professionals {
		p := availability.Professional{
			ID:        pro.ID,
			Name:      pro.Name,
			Available: pro.Available,
			Working:   pro.Working,
		}
		for _, tw := range pro.WindowsUTC {
			p.Windows = append(p.Windows, schedule.Interval{Start: tw.StartUTC, End: tw.EndUTC})
		}
		in.Professionals = append(in.Professionals, p)
	}
	return in, true
}

func (h *AvailabilityHandler) fallbackInput(r *http.Request, date time.Time, w http.ResponseWriter) (availability.Input, bool) {
	durationMins := 30
	if v := strings.TrimSpace(r.URL.Query().Get("duration_minutes")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 8*60 {
			http.Error(w, "invalid duration_minutes", http.StatusBadRequest)
			return availability.Input{}, false
		}
		durationMins = n
	}

	start := date.Add(9 * time.Hour)
	end := date.Add(17 * time.Hour)
	return availability.Input{
		ServiceWindows: []schedule.Interval{{Start: start, End: end}},
		Duration:       time.Duration(durationMins) * time.Minute,
		Step:           schedule.DefaultStep,
		Professionals: []availability.Professional{{
			ID:        "default",
			Name:      "Default",
			Available: true,
			Working:   true,
			Windows:   []schedule.Interval{{Start: start, End: end}},
		}},
	}, true
}
