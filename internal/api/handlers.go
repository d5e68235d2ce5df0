// Package api exposes the front-desk operations over HTTP for the voice
// dispatcher and the admin dashboard.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/renovalabs/voice-frontdesk/internal/callrecord"
	"github.com/renovalabs/voice-frontdesk/internal/frontdesk"
	"github.com/renovalabs/voice-frontdesk/pkg/logging"
)

// CallArchive is the read side of the call-record archive used by the admin
// endpoints.
type CallArchive interface {
	Stats(ctx context.Context, days int) (*callrecord.Stats, error)
	RecentCalls(ctx context.Context, limit int) ([]callrecord.CallRecord, error)
}

// Pinger reports reachability of a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handler adapts the front-desk service to JSON over HTTP.
type Handler struct {
	svc     *frontdesk.Service
	archive CallArchive
	deps    map[string]Pinger
	logger  *logging.Logger
}

// NewHandler creates the HTTP handler set. archive may be nil; the admin
// endpoints then report 404. deps are pinged by the health endpoint.
func NewHandler(svc *frontdesk.Service, archive CallArchive, deps map[string]Pinger, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, archive: archive, deps: deps, logger: logger}
}

// CheckAvailability handles POST /v1/availability.
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req frontdesk.AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.svc.CheckAvailability(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Book handles POST /v1/appointments.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var req frontdesk.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.svc.Book(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Cancel handles POST /v1/appointments/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req frontdesk.CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.svc.Cancel(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Identify handles POST /v1/calls/{sessionID}/identify.
func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.svc.Identify(r.Context(), chi.URLParam(r, "sessionID"), req.Phone)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// logCallRequest is the wire form of a call-record update.
type logCallRequest struct {
	CustomerPhone      string `json:"customer_phone,omitempty"`
	CustomerName       string `json:"customer_name,omitempty"`
	CustomerEmail      string `json:"customer_email,omitempty"`
	CustomerType       string `json:"customer_type,omitempty"`
	Language           string `json:"language,omitempty"`
	CallType           string `json:"call_type,omitempty"`
	DepartmentEnquired string `json:"department_enquired,omitempty"`
	DoctorEnquired     string `json:"doctor_enquired,omitempty"`
	AppointmentDate    string `json:"appointment_date,omitempty"`
	AppointmentTime    string `json:"appointment_time,omitempty"`
	ResolutionStatus   string `json:"resolution_status,omitempty"`
	Summary            string `json:"summary,omitempty"`
	AgentNotes         string `json:"agent_notes,omitempty"`
	HangupReason       string `json:"hangup_reason,omitempty"`
}

func (req logCallRequest) fields() callrecord.Fields {
	return callrecord.Fields{
		CustomerPhone:      req.CustomerPhone,
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		CustomerType:       req.CustomerType,
		Language:           req.Language,
		CallType:           callrecord.CallType(req.CallType),
		DepartmentEnquired: req.DepartmentEnquired,
		DoctorEnquired:     req.DoctorEnquired,
		AppointmentDate:    req.AppointmentDate,
		AppointmentTime:    req.AppointmentTime,
		ResolutionStatus:   callrecord.ResolutionStatus(req.ResolutionStatus),
		Summary:            req.Summary,
		AgentNotes:         req.AgentNotes,
		HangupReason:       req.HangupReason,
	}
}

// LogCall handles POST /v1/calls/{sessionID}/log.
func (h *Handler) LogCall(w http.ResponseWriter, r *http.Request) {
	var req logCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.svc.LogCall(r.Context(), chi.URLParam(r, "sessionID"), req.fields()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged"})
}

// FinalizeCall handles POST /v1/calls/{sessionID}/finalize.
func (h *Handler) FinalizeCall(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.FinalizeCall(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Stats handles GET /admin/stats?days=N.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "call archive not configured")
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	stats, err := h.archive.Stats(r.Context(), days)
	if err != nil {
		h.logger.Error("stats query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// RecentCalls handles GET /admin/calls/recent?limit=N.
func (h *Handler) RecentCalls(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "call archive not configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recs, err := h.archive.RecentCalls(r.Context(), limit)
	if err != nil {
		h.logger.Error("recent calls query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if recs == nil {
		recs = []callrecord.CallRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// Health handles GET /health, pinging each configured dependency.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]string{"status": "ok"}
	for name, dep := range h.deps {
		if err := dep.Ping(r.Context()); err != nil {
			h.logger.Warn("health check failed", "dependency", name, "error", err)
			body[name] = "unreachable"
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		body[name] = "ok"
	}
	writeJSON(w, status, body)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *frontdesk.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": verr.Reason,
			"field": verr.Field,
		})
	case errors.Is(err, callrecord.ErrAlreadyFinalized):
		writeError(w, http.StatusConflict, "session already finalized")
	case errors.Is(err, callrecord.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	default:
		h.logger.Error("request failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
