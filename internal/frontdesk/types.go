package frontdesk

import (
	"fmt"

	"github.com/renovalabs/voice-frontdesk/internal/directory"
	"github.com/renovalabs/voice-frontdesk/internal/schedule"
)

// ValidationError reports malformed or missing input. It is raised before
// any collaborator is called and surfaced verbatim to the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("frontdesk: invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// AvailabilityRequest asks whether a slot is free. Date is ISO 8601
// (YYYY-MM-DD); Time accepts 12- or 24-hour clock strings. Relative dates
// must already be resolved by the caller.
type AvailabilityRequest struct {
	SessionID       string `json:"session_id,omitempty"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Doctor          string `json:"doctor_name,omitempty"`
	Department      string `json:"department,omitempty"`
}

// AvailabilityResponse mirrors schedule.AvailabilityResult with the request
// echoed back for the caller.
type AvailabilityResponse struct {
	Available    bool            `json:"available"`
	Requested    schedule.Slot   `json:"requested"`
	Conflicts    []schedule.Slot `json:"conflicts,omitempty"`
	Alternatives []schedule.Slot `json:"alternatives,omitempty"`
}

// BookRequest books a slot for a patient. All fields are required except
// DurationMinutes, which defaults to the configured slot length.
type BookRequest struct {
	SessionID       string `json:"session_id,omitempty"`
	PatientName     string `json:"patient_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Doctor          string `json:"doctor_name"`
	Department      string `json:"department"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// CancelRequest identifies an appointment to remove. Email is optional but
// must match the booked event when supplied.
type CancelRequest struct {
	SessionID   string `json:"session_id,omitempty"`
	PatientName string `json:"patient_name"`
	Phone       string `json:"phone"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Doctor      string `json:"doctor_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// IdentifyResponse reports who is calling and a greeting suited to how well
// we know them.
type IdentifyResponse struct {
	CustomerType directory.CustomerType   `json:"customer_type"`
	Patient      *directory.PatientRecord `json:"patient,omitempty"`
	Greeting     string                   `json:"greeting"`
}
