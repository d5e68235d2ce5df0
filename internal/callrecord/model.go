// Package callrecord accumulates a structured record of each caller
// interaction and finalizes it exactly once at session end.
package callrecord

import (
	"errors"
	"time"
)

var (
	// ErrSessionExists is returned by Start when the session already has an
	// active record.
	ErrSessionExists = errors.New("callrecord: session already started")

	// ErrSessionNotFound is returned when no active record exists for the
	// session.
	ErrSessionNotFound = errors.New("callrecord: session not found")

	// ErrAlreadyFinalized reports a caller-contract violation: finalize must
	// be called exactly once per session. It propagates rather than being
	// swallowed because double-persistence would corrupt analytics counts.
	ErrAlreadyFinalized = errors.New("callrecord: session already finalized")
)

// CallType classifies what the caller wanted.
type CallType string

const (
	CallTypeInquiry      CallType = "inquiry"
	CallTypeBooking      CallType = "appointment_booking"
	CallTypeCancellation CallType = "cancellation"
)

// ResolutionStatus records how the call ended.
type ResolutionStatus string

const (
	ResolutionResolved          ResolutionStatus = "resolved"
	ResolutionPartiallyResolved ResolutionStatus = "partially_resolved"
	ResolutionEscalated         ResolutionStatus = "escalated"
	ResolutionInProgress        ResolutionStatus = "in_progress"
)

// CallRecord is the structured record of one caller interaction. It is
// mutated incrementally while the session is active and immutable once
// finalized.
type CallRecord struct {
	CallID    string    `json:"call_id"`
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`

	// DurationSeconds is computed at finalize from the start/end timestamps.
	DurationSeconds int `json:"duration_seconds,omitempty"`

	// CustomerPhone is a weak reference into the patient directory: lookup
	// only, not ownership.
	CustomerPhone string `json:"customer_phone,omitempty"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerType  string `json:"customer_type,omitempty"`
	Language      string `json:"language,omitempty"`

	CallType           CallType `json:"call_type,omitempty"`
	DepartmentEnquired string   `json:"department_enquired,omitempty"`
	DoctorEnquired     string   `json:"doctor_enquired,omitempty"`
	AppointmentDate    string   `json:"appointment_date,omitempty"`
	AppointmentTime    string   `json:"appointment_time,omitempty"`

	ResolutionStatus ResolutionStatus `json:"resolution_status,omitempty"`
	Summary          string           `json:"summary,omitempty"`
	AgentNotes       string           `json:"agent_notes,omitempty"`
	HangupReason     string           `json:"hangup_reason,omitempty"`
}

// Fields is a partial update merged into the active record. Empty fields
// leave the current value untouched; within a session the last write wins
// per field.
type Fields struct {
	CustomerPhone      string
	CustomerName       string
	CustomerEmail      string
	CustomerType       string
	Language           string
	CallType           CallType
	DepartmentEnquired string
	DoctorEnquired     string
	AppointmentDate    string
	AppointmentTime    string
	ResolutionStatus   ResolutionStatus
	Summary            string
	AgentNotes         string
	HangupReason       string
}

func (r *CallRecord) apply(f Fields) {
	if f.CustomerPhone != "" {
		r.CustomerPhone = f.CustomerPhone
	}
	if f.CustomerName != "" {
		r.CustomerName = f.CustomerName
	}
	if f.CustomerEmail != "" {
		r.CustomerEmail = f.CustomerEmail
	}
	if f.CustomerType != "" {
		r.CustomerType = f.CustomerType
	}
	if f.Language != "" {
		r.Language = f.Language
	}
	if f.CallType != "" {
		r.CallType = f.CallType
	}
	if f.DepartmentEnquired != "" {
		r.DepartmentEnquired = f.DepartmentEnquired
	}
	if f.DoctorEnquired != "" {
		r.DoctorEnquired = f.DoctorEnquired
	}
	if f.AppointmentDate != "" {
		r.AppointmentDate = f.AppointmentDate
	}
	if f.AppointmentTime != "" {
		r.AppointmentTime = f.AppointmentTime
	}
	if f.ResolutionStatus != "" {
		r.ResolutionStatus = f.ResolutionStatus
	}
	if f.Summary != "" {
		r.Summary = f.Summary
	}
	if f.AgentNotes != "" {
		r.AgentNotes = f.AgentNotes
	}
	if f.HangupReason != "" {
		r.HangupReason = f.HangupReason
	}
}
