package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/d-okonkwo/slotly/libs/auth"
	"github.com/d-okonkwo/slotly/libs/httpx"
	"github.com/d-okonkwo/slotly/services/directory-service/internal/storage"
)

type Handler struct {
	repo      *storage.Repository
	jwtSecret string
}

func New(repo *storage.Repository, jwtSecret string) *Handler {
	return &Handler{repo: repo, jwtSecret: jwtSecret}
}

// RequireAPIKey authenticates admin calls with the tenant's API key. The
// tenant id rides in X-Tenant-Id and the key in X-Api-Key; only the bcrypt
// hash is stored.
func (h *Handler) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := strings.TrimSpace(r.Header.Get("X-Tenant-Id"))
		key := strings.TrimSpace(r.Header.Get("X-Api-Key"))
		if tenantID == "" || key == "" {
			http.Error(w, "missing X-Tenant-Id or X-Api-Key", http.StatusUnauthorized)
			return
		}
		t, err := h.repo.GetTenant(r.Context(), tenantID)
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if err := auth.VerifyAPIKey(t.APIKeyHash, key); err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(httpx.ContextWithTenantID(r.Context(), tenantID)))
	})
}

func tenantID(r *http.Request) string {
	return httpx.TenantIDFromContext(r.Context())
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	key, hash, err := auth.NewAPIKey()
	if err != nil {
		http.Error(w, "failed to generate api key", http.StatusInternalServerError)
		return
	}
	id, err := h.repo.CreateTenant(r.Context(), req.Name, hash)
	if err != nil {
		http.Error(w, "failed to create tenant", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	// The plaintext key is returned exactly once.
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      id,
		"api_key": key,
	})
}

// IssueToken exchanges a verified API key for a short-lived tenant JWT. The
// booking API accepts only Bearer tokens, so tenant dashboards call this
// first and refresh before the hour is up.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tid := tenantID(r)
	now := time.Now().UTC()
	exp := now.Add(time.Hour)
	token, err := auth.SignHS256(auth.Claims{
		Sub:      tid,
		TenantID: tid,
		Role:     "tenant",
		Iat:      now.Unix(),
		Exp:      exp.Unix(),
	}, h.jwtSecret)
	if err != nil {
		http.Error(w, "failed to sign token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   exp.Format(time.RFC3339),
	})
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name         string  `json:"name"`
		DurationMins int     `json:"duration_minutes"`
		StepMins     int     `json:"slot_step_minutes"`
		Price        float64 `json:"price"`
		Description  string  `json:"description"`
		Unrestricted bool    `json:"unrestricted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" || req.DurationMins <= 0 {
		http.Error(w, "name and duration_minutes required", http.StatusBadRequest)
		return
	}
	if req.StepMins < 0 || req.StepMins > 120 {
		http.Error(w, "invalid slot_step_minutes", http.StatusBadRequest)
		return
	}
	if req.StepMins == 0 {
		req.StepMins = 30
	}

	id, err := h.repo.CreateService(r.Context(), storage.Service{
		TenantID:     tenantID(r),
		Name:         req.Name,
		DurationMins: req.DurationMins,
		StepMins:     req.StepMins,
		Price:        formatPrice(req.Price),
		Description:  req.Description,
		Unrestricted: req.Unrestricted,
	})
	if err != nil {
		http.Error(w, "failed to create service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": id})
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	services, err := h.repo.ListServices(r.Context(), tenantID(r), 100)
	if err != nil {
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(services)
}

func (h *Handler) DeactivateService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	if serviceID == "" {
		http.Error(w, "service_id is required", http.StatusBadRequest)
		return
	}
	if err := h.repo.DeactivateService(r.Context(), tenantID(r), serviceID); err != nil {
		http.Error(w, "service not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scheduleWindowRequest struct {
	Weekday     int `json:"weekday"`
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

func parseWindows(in []scheduleWindowRequest) ([]storage.ScheduleWindow, bool) {
	out := make([]storage.ScheduleWindow, 0, len(in))
	for _, w := range in {
		if w.Weekday < 0 || w.Weekday > 6 {
			return nil, false
		}
		if w.StartMinute < 0 || w.StartMinute >= 1440 || w.EndMinute <= 0 || w.EndMinute > 1440 || w.StartMinute >= w.EndMinute {
			return nil, false
		}
		out = append(out, storage.ScheduleWindow{
			Weekday:     w.Weekday,
			StartMinute: w.StartMinute,
			EndMinute:   w.EndMinute,
		})
	}
	return out, true
}

func (h *Handler) ReplaceServiceHours(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	if serviceID == "" {
		http.Error(w, "service_id is required", http.StatusBadRequest)
		return
	}

	var req struct {
		Windows []scheduleWindowRequest `json:"windows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	windows, ok := parseWindows(req.Windows)
	if !ok {
		http.Error(w, "invalid windows", http.StatusBadRequest)
		return
	}

	if err := h.repo.ReplaceServiceHours(r.Context(), tenantID(r), serviceID, windows); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to replace service hours", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateProfessional(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name      string `json:"name"`
		Available *bool  `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}

	id, err := h.repo.CreateProfessional(r.Context(), tenantID(r), req.Name, available)
	if err != nil {
		http.Error(w, "failed to create professional", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": id})
}

func (h *Handler) ListProfessionals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pros, err := h.repo.ListProfessionals(r.Context(), tenantID(r), 100)
	if err != nil {
		http.Error(w, "failed to list professionals", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(pros)
}

func (h *Handler) SetProfessionalAvailable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	professionalID := strings.TrimSpace(r.URL.Query().Get("professional_id"))
	if professionalID == "" {
		http.Error(w, "professional_id is required", http.StatusBadRequest)
		return
	}

	var req struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	if err := h.repo.SetProfessionalAvailable(r.Context(), tenantID(r), professionalID, req.Available); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "professional not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update professional", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ReplaceProfessionalHours(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	professionalID := strings.TrimSpace(r.URL.Query().Get("professional_id"))
	if professionalID == "" {
		http.Error(w, "professional_id is required", http.StatusBadRequest)
		return
	}

	var req struct {
		Windows []scheduleWindowRequest `json:"windows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	windows, ok := parseWindows(req.Windows)
	if !ok {
		http.Error(w, "invalid windows", http.StatusBadRequest)
		return
	}

	if err := h.repo.ReplaceProfessionalHours(r.Context(), tenantID(r), professionalID, windows); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "professional not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to replace professional hours", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Qualifications tie a professional to a service they can perform.
func (h *Handler) Qualify(w http.ResponseWriter, r *http.Request) {
	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	professionalID := strings.TrimSpace(r.URL.Query().Get("professional_id"))
	if serviceID == "" || professionalID == "" {
		http.Error(w, "service_id and professional_id are required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		if err := h.repo.Qualify(r.Context(), tenantID(r), serviceID, professionalID); err != nil {
			if storage.IsNotFound(err) {
				http.Error(w, "service or professional not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to add qualification", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if err := h.repo.Unqualify(r.Context(), tenantID(r), serviceID, professionalID); err != nil {
			if storage.IsNotFound(err) {
				http.Error(w, "qualification not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to remove qualification", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) CreateTimeOff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	professionalID := strings.TrimSpace(r.URL.Query().Get("professional_id"))
	if professionalID == "" {
		http.Error(w, "professional_id is required", http.StatusBadRequest)
		return
	}

	var req struct {
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Reason = strings.TrimSpace(req.Reason)

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndTime))
	if err != nil {
		http.Error(w, "invalid end_time", http.StatusBadRequest)
		return
	}
	if !end.After(start) {
		http.Error(w, "end_time must be after start_time", http.StatusBadRequest)
		return
	}

	id, err := h.repo.CreateTimeOff(r.Context(), tenantID(r), professionalID, start.UTC(), end.UTC(), req.Reason)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "professional not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to create time off", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": id})
}

func (h *Handler) ListTimeOff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	professionalID := strings.TrimSpace(r.URL.Query().Get("professional_id"))
	if professionalID == "" {
		http.Error(w, "professional_id is required", http.StatusBadRequest)
		return
	}
	fromStr := strings.TrimSpace(r.URL.Query().Get("from"))
	toStr := strings.TrimSpace(r.URL.Query().Get("to"))
	if fromStr == "" || toStr == "" {
		http.Error(w, "from and to are required (RFC3339)", http.StatusBadRequest)
		return
	}
	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		http.Error(w, "invalid from", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		http.Error(w, "invalid to", http.StatusBadRequest)
		return
	}
	if !to.After(from) {
		http.Error(w, "to must be after from", http.StatusBadRequest)
		return
	}

	items, err := h.repo.ListTimeOff(r.Context(), tenantID(r), professionalID, from.UTC(), to.UTC(), 100)
	if err != nil {
		http.Error(w, "failed to list time off", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(items)
}

func (h *Handler) DeleteTimeOff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	if err := h.repo.DeleteTimeOff(r.Context(), tenantID(r), id); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "time off not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete time off", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
