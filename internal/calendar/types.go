package calendar

import "time"

// Event is a committed appointment on the shared clinic calendar.
type Event struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Doctor       string    `json:"doctor"`
	Department   string    `json:"department"`
	PatientName  string    `json:"patient_name"`
	PatientEmail string    `json:"patient_email"`
	PatientPhone string    `json:"patient_phone"`
}

// Overlaps reports whether the event shares any positive duration with
// [start, end). Touching endpoints do not overlap.
func (e Event) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && start.Before(e.End)
}
