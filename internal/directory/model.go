// Package directory identifies and merges patient records across the
// per-session cache and the durable store, tagging callers as new,
// existing, or returning.
package directory

import (
	"errors"
	"time"
)

// ErrPatientNotFound is returned by stores when no record matches the phone.
var ErrPatientNotFound = errors.New("directory: patient not found")

// CustomerType classifies how the caller is known to the clinic.
type CustomerType string

const (
	// CustomerNew has never been seen before.
	CustomerNew CustomerType = "new"
	// CustomerExisting was already seen earlier in the current session.
	CustomerExisting CustomerType = "existing"
	// CustomerReturning exists in durable storage from a prior call.
	CustomerReturning CustomerType = "returning"
)

// PatientRecord is the profile keyed by phone number. Records are created on
// first sighting of a phone and merged on every later interaction; they are
// never hard-deleted.
type PatientRecord struct {
	Phone           string       `json:"phone"`
	Name            string       `json:"name,omitempty"`
	Email           string       `json:"email,omitempty"`
	PreferredDoctor string       `json:"preferred_doctor,omitempty"`
	Department      string       `json:"department,omitempty"`
	Language        string       `json:"language,omitempty"`
	CustomerType    CustomerType `json:"customer_type,omitempty"`
	VisitCount      int          `json:"visit_count"`
	LastVisit       time.Time    `json:"last_visit,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	CreatedAt       time.Time    `json:"created_at,omitempty"`
	UpdatedAt       time.Time    `json:"updated_at,omitempty"`
}

// Merge overlays non-empty fields from in onto the record. Counters and
// timestamps are managed by the Directory, not by callers.
func (r *PatientRecord) Merge(in PatientRecord) {
	if in.Name != "" {
		r.Name = in.Name
	}
	if in.Email != "" {
		r.Email = in.Email
	}
	if in.PreferredDoctor != "" {
		r.PreferredDoctor = in.PreferredDoctor
	}
	if in.Department != "" {
		r.Department = in.Department
	}
	if in.Language != "" {
		r.Language = in.Language
	}
	if in.Notes != "" {
		r.Notes = in.Notes
	}
}
