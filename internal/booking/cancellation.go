package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/renovalabs/voice-frontdesk/internal/calendar"
	"github.com/renovalabs/voice-frontdesk/internal/callrecord"
	"github.com/renovalabs/voice-frontdesk/internal/notify"
	"github.com/renovalabs/voice-frontdesk/pkg/logging"
)

// DefaultCancelTolerance is how far a stated appointment time may drift from
// the booked start and still identify the same appointment.
const DefaultCancelTolerance = 15 * time.Minute

// CancelRequest identifies the appointment the caller wants removed. Email is
// optional; when present it must also match the booked event.
type CancelRequest struct {
	SessionID   string
	PatientName string
	Phone       string
	Email       string
	Start       time.Time
	Doctor      string
}

// CancelResult reports a cancellation attempt. Found false means no event
// matched and nothing was touched.
type CancelResult struct {
	Success   bool            `json:"success"`
	Found     bool            `json:"found"`
	EmailSent bool            `json:"email_sent"`
	Cancelled *calendar.Event `json:"cancelled,omitempty"`
}

// Verifier cancels appointments only when the caller's details identify a
// booked event unambiguously. A near-miss is "not found", never a fuzzy
// cancellation.
type Verifier struct {
	cal       calendar.Service
	sender    notify.EmailSender
	renderer  *notify.Renderer
	calls     CallLog
	tolerance time.Duration
	logger    *logging.Logger
}

// NewVerifier creates a cancellation verifier. A non-positive tolerance falls
// back to the default 15 minutes.
func NewVerifier(
	cal calendar.Service,
	sender notify.EmailSender,
	renderer *notify.Renderer,
	calls CallLog,
	tolerance time.Duration,
	logger *logging.Logger,
) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultCancelTolerance
	}
	if logger == nil {
		logger = logging.Default()
	}
	if renderer == nil {
		renderer = notify.NewRenderer("", "")
	}
	return &Verifier{
		cal:       cal,
		sender:    sender,
		renderer:  renderer,
		calls:     calls,
		tolerance: tolerance,
		logger:    logger,
	}
}

// Cancel removes the matching appointment. The match requires the event start
// within the tolerance of the stated time, a case-insensitive patient-name
// match, and an email match when the caller supplied one. Retrying after a
// successful cancel finds nothing and is a safe no-op.
func (v *Verifier) Cancel(ctx context.Context, req CancelRequest) (*CancelResult, error) {
	dayStart := time.Date(req.Start.Year(), req.Start.Month(), req.Start.Day(), 0, 0, 0, 0, req.Start.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	events, err := v.cal.ListEvents(ctx, dayStart, dayEnd, req.Doctor)
	if err != nil {
		return nil, fmt.Errorf("booking: cancel lookup: %w", err)
	}

	match := v.findMatch(events, req)
	if match == nil {
		v.logger.Info("cancellation found no matching appointment",
			"patient", req.PatientName, "doctor", req.Doctor, "start", req.Start)
		return &CancelResult{}, nil
	}

	if err := v.cal.DeleteEvent(ctx, match.ID); err != nil {
		return nil, fmt.Errorf("booking: delete event: %w", err)
	}

	res := &CancelResult{
		Success:   true,
		Found:     true,
		Cancelled: match,
	}
	res.EmailSent = v.sendNotice(ctx, req, match)
	v.recordCancellation(ctx, req, match)

	v.logger.Info("appointment cancelled",
		"event_id", match.ID, "doctor", match.Doctor, "start", match.Start)
	return res, nil
}

func (v *Verifier) findMatch(events []calendar.Event, req CancelRequest) *calendar.Event {
	for i := range events {
		ev := &events[i]
		drift := ev.Start.Sub(req.Start)
		if drift < 0 {
			drift = -drift
		}
		if drift > v.tolerance {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(ev.PatientName), strings.TrimSpace(req.PatientName)) {
			continue
		}
		if req.Email != "" && !strings.EqualFold(ev.PatientEmail, req.Email) {
			continue
		}
		return ev
	}
	return nil
}

func (v *Verifier) sendNotice(ctx context.Context, req CancelRequest, ev *calendar.Event) bool {
	to := req.Email
	if to == "" {
		to = ev.PatientEmail
	}
	if v.sender == nil || to == "" {
		return false
	}
	msg, err := v.renderer.Cancellation(notify.AppointmentEmail{
		PatientName:  ev.PatientName,
		PatientEmail: to,
		PatientPhone: req.Phone,
		Doctor:       ev.Doctor,
		Department:   ev.Department,
		Date:         ev.Start.Format("January 2, 2006"),
		Time:         ev.Start.Format("3:04 PM"),
	})
	if err != nil {
		v.logger.Error("cancellation render failed", "error", err)
		return false
	}
	if err := v.sender.Send(ctx, msg); err != nil {
		v.logger.Warn("cancellation email failed", "error", err, "to", to)
		return false
	}
	return true
}

func (v *Verifier) recordCancellation(ctx context.Context, req CancelRequest, ev *calendar.Event) {
	if v.calls == nil || req.SessionID == "" {
		return
	}
	_, err := v.calls.Update(ctx, req.SessionID, callrecord.Fields{
		CustomerPhone:      req.Phone,
		CustomerName:       ev.PatientName,
		CallType:           callrecord.CallTypeCancellation,
		DoctorEnquired:     ev.Doctor,
		DepartmentEnquired: ev.Department,
		AppointmentDate:    ev.Start.Format("2006-01-02"),
		AppointmentTime:    ev.Start.Format("3:04 PM"),
		ResolutionStatus:   callrecord.ResolutionResolved,
	})
	if err != nil {
		v.logger.Warn("call record update failed", "error", err, "session_id", req.SessionID)
	}
}
