// Package booking commits appointments against the calendar using a
// verify-then-commit protocol, and verifies cancellations before removing
// anything.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/renovalabs/voice-frontdesk/internal/calendar"
	"github.com/renovalabs/voice-frontdesk/internal/callrecord"
	"github.com/renovalabs/voice-frontdesk/internal/directory"
	"github.com/renovalabs/voice-frontdesk/internal/notify"
	"github.com/renovalabs/voice-frontdesk/internal/schedule"
	"github.com/renovalabs/voice-frontdesk/pkg/logging"
)

// AvailabilityChecker is the verification gate consumed by the coordinator.
type AvailabilityChecker interface {
	Check(ctx context.Context, req schedule.Slot) (*schedule.AvailabilityResult, error)
}

// PatientDirectory records patient details gathered during the call.
type PatientDirectory interface {
	Upsert(ctx context.Context, sessionID string, in directory.PatientRecord) (*directory.PatientRecord, error)
}

// CallLog receives call-record updates as booking operations complete.
type CallLog interface {
	Update(ctx context.Context, sessionID string, f callrecord.Fields) (*callrecord.CallRecord, error)
}

// Request is a booking attempt for one patient and one slot.
type Request struct {
	SessionID   string
	PatientName string
	Email       string
	Phone       string
	Slot        schedule.Slot
}

// Result reports the outcome of a booking attempt. When the slot was not
// available, Alternatives carries ranked substitutes and nothing was
// committed.
type Result struct {
	Success         bool            `json:"success"`
	EmailSent       bool            `json:"email_sent"`
	CalendarEventID string          `json:"calendar_event_id,omitempty"`
	Conflicts       []schedule.Slot `json:"conflicts,omitempty"`
	Alternatives    []schedule.Slot `json:"alternatives,omitempty"`
}

// Coordinator books appointments. The calendar is the source of truth for
// conflicts: availability is re-verified immediately before every commit, and
// a conflict rejection from the calendar itself is handled the same way as a
// failed check.
type Coordinator struct {
	checker  AvailabilityChecker
	cal      calendar.Service
	sender   notify.EmailSender
	renderer *notify.Renderer
	dir      PatientDirectory
	calls    CallLog
	logger   *logging.Logger
}

// NewCoordinator creates a booking coordinator. dir and calls may be nil when
// the respective side effects are not wanted (tests, batch tooling).
func NewCoordinator(
	checker AvailabilityChecker,
	cal calendar.Service,
	sender notify.EmailSender,
	renderer *notify.Renderer,
	dir PatientDirectory,
	calls CallLog,
	logger *logging.Logger,
) *Coordinator {
	if logger == nil {
		logger = logging.Default()
	}
	if renderer == nil {
		renderer = notify.NewRenderer("", "")
	}
	return &Coordinator{
		checker:  checker,
		cal:      cal,
		sender:   sender,
		renderer: renderer,
		dir:      dir,
		calls:    calls,
		logger:   logger,
	}
}

// Book runs the two-phase booking protocol: verify the slot, then commit the
// calendar event, confirmation email, patient record, and call record. If
// verification fails, nothing is committed and alternatives are returned. A
// failed email after a successful calendar commit degrades to success with
// EmailSent false.
func (c *Coordinator) Book(ctx context.Context, req Request) (*Result, error) {
	avail, err := c.checker.Check(ctx, req.Slot)
	if err != nil {
		return nil, fmt.Errorf("booking: verify slot: %w", err)
	}
	if !avail.Available {
		return &Result{
			Conflicts:    avail.Conflicts,
			Alternatives: avail.Alternatives,
		}, nil
	}

	eventID, err := c.cal.CreateEvent(ctx, calendar.Event{
		Summary:      fmt.Sprintf("Appointment: %s", req.PatientName),
		Start:        req.Slot.Start,
		End:          req.Slot.End(),
		Doctor:       req.Slot.Doctor,
		Department:   req.Slot.Department,
		PatientName:  req.PatientName,
		PatientEmail: req.Email,
		PatientPhone: req.Phone,
	})
	if err != nil {
		if errors.Is(err, calendar.ErrSlotTaken) {
			// Another booking landed between verify and commit. Re-run the
			// check so the caller gets fresh conflicts and alternatives.
			c.logger.Info("slot taken at commit, re-suggesting",
				"doctor", req.Slot.Doctor, "start", req.Slot.Start)
			retry, rerr := c.checker.Check(ctx, req.Slot)
			if rerr != nil {
				return &Result{}, nil
			}
			return &Result{
				Conflicts:    retry.Conflicts,
				Alternatives: retry.Alternatives,
			}, nil
		}
		return nil, fmt.Errorf("booking: create event: %w", err)
	}

	res := &Result{
		Success:         true,
		CalendarEventID: eventID,
	}
	res.EmailSent = c.sendConfirmation(ctx, req)
	c.recordBooking(ctx, req)

	c.logger.Info("appointment booked",
		"event_id", eventID,
		"doctor", req.Slot.Doctor,
		"start", req.Slot.Start,
		"email_sent", res.EmailSent,
	)
	return res, nil
}

func (c *Coordinator) sendConfirmation(ctx context.Context, req Request) bool {
	if c.sender == nil || req.Email == "" {
		return false
	}
	msg, err := c.renderer.Confirmation(notify.AppointmentEmail{
		PatientName:  req.PatientName,
		PatientEmail: req.Email,
		PatientPhone: req.Phone,
		Doctor:       req.Slot.Doctor,
		Department:   req.Slot.Department,
		Date:         req.Slot.Start.Format("January 2, 2006"),
		Time:         req.Slot.TimeString(),
	})
	if err != nil {
		c.logger.Error("confirmation render failed", "error", err)
		return false
	}
	if err := c.sender.Send(ctx, msg); err != nil {
		// The calendar event stands; a lost email never rolls back a
		// confirmed slot.
		c.logger.Warn("confirmation email failed", "error", err, "to", req.Email)
		return false
	}
	return true
}

func (c *Coordinator) recordBooking(ctx context.Context, req Request) {
	if c.dir != nil && req.Phone != "" {
		_, err := c.dir.Upsert(ctx, req.SessionID, directory.PatientRecord{
			Phone:           req.Phone,
			Name:            req.PatientName,
			Email:           req.Email,
			PreferredDoctor: req.Slot.Doctor,
			Department:      req.Slot.Department,
		})
		if err != nil {
			c.logger.Warn("patient record update failed", "error", err, "phone", req.Phone)
		}
	}

	if c.calls != nil && req.SessionID != "" {
		_, err := c.calls.Update(ctx, req.SessionID, callrecord.Fields{
			CustomerPhone:      req.Phone,
			CustomerName:       req.PatientName,
			CustomerEmail:      req.Email,
			CallType:           callrecord.CallTypeBooking,
			DoctorEnquired:     req.Slot.Doctor,
			DepartmentEnquired: req.Slot.Department,
			AppointmentDate:    req.Slot.DateString(),
			AppointmentTime:    req.Slot.TimeString(),
			ResolutionStatus:   callrecord.ResolutionResolved,
		})
		if err != nil {
			c.logger.Warn("call record update failed", "error", err, "session_id", req.SessionID)
		}
	}
}
