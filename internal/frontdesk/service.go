// Package frontdesk is the operation surface invoked by the call
// dispatcher: availability checks, bookings, cancellations, caller
// identification, and call logging. Input validation happens here, before
// any collaborator is touched.
package frontdesk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/renovalabs/voice-frontdesk/internal/booking"
	"github.com/renovalabs/voice-frontdesk/internal/callrecord"
	"github.com/renovalabs/voice-frontdesk/internal/directory"
	"github.com/renovalabs/voice-frontdesk/internal/observability/metrics"
	"github.com/renovalabs/voice-frontdesk/internal/schedule"
	"github.com/renovalabs/voice-frontdesk/pkg/logging"
)

// Service wires the scheduling, booking, directory, and call-record
// components behind the operations the dispatcher calls.
type Service struct {
	checker  booking.AvailabilityChecker
	coord    *booking.Coordinator
	verifier *booking.Verifier
	dir      *directory.Directory
	recorder *callrecord.Recorder
	policy   schedule.Policy
	metrics  *metrics.FrontDeskMetrics
	hospital string
	logger   *logging.Logger
	now      func() time.Time
}

// NewService creates the front-desk service. dir, recorder, and m may be nil
// when the respective concern is disabled.
func NewService(
	checker booking.AvailabilityChecker,
	coord *booking.Coordinator,
	verifier *booking.Verifier,
	dir *directory.Directory,
	recorder *callrecord.Recorder,
	policy schedule.Policy,
	m *metrics.FrontDeskMetrics,
	hospital string,
	logger *logging.Logger,
) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if hospital == "" {
		hospital = "Renova Hospitals"
	}
	return &Service{
		checker:  checker,
		coord:    coord,
		verifier: verifier,
		dir:      dir,
		recorder: recorder,
		policy:   policy,
		metrics:  m,
		hospital: hospital,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckAvailability reports whether the requested slot is free, with ranked
// alternatives when it is not.
func (s *Service) CheckAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error) {
	defer s.observeLatency("check_appointment_availability", s.now())

	slot, err := s.parseSlot(req.Date, req.Time, req.DurationMinutes, req.Doctor, req.Department)
	if err != nil {
		return nil, err
	}

	res, err := s.checker.Check(ctx, slot)
	if err != nil {
		if errors.Is(err, schedule.ErrPastSlot) {
			return nil, invalid("time", "appointment time is in the past")
		}
		return nil, fmt.Errorf("frontdesk: check availability: %w", err)
	}
	s.metrics.ObserveAvailability(res.Available)

	s.logCall(ctx, req.SessionID, callrecord.Fields{
		DoctorEnquired:     req.Doctor,
		DepartmentEnquired: req.Department,
		AppointmentDate:    slot.DateString(),
		AppointmentTime:    slot.TimeString(),
	})

	return &AvailabilityResponse{
		Available:    res.Available,
		Requested:    slot,
		Conflicts:    res.Conflicts,
		Alternatives: res.Alternatives,
	}, nil
}

// Book verifies and commits an appointment.
func (s *Service) Book(ctx context.Context, req BookRequest) (*booking.Result, error) {
	defer s.observeLatency("book_appointment", s.now())

	for field, value := range map[string]string{
		"patient_name": req.PatientName,
		"email":        req.Email,
		"phone":        req.Phone,
		"doctor_name":  req.Doctor,
		"department":   req.Department,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, invalid(field, "required")
		}
	}

	slot, err := s.parseSlot(req.Date, req.Time, req.DurationMinutes, req.Doctor, req.Department)
	if err != nil {
		return nil, err
	}

	s.identifyCaller(ctx, req.SessionID, req.Phone)

	res, err := s.coord.Book(ctx, booking.Request{
		SessionID:   req.SessionID,
		PatientName: req.PatientName,
		Email:       req.Email,
		Phone:       req.Phone,
		Slot:        slot,
	})
	if err != nil {
		if errors.Is(err, schedule.ErrPastSlot) {
			return nil, invalid("time", "appointment time is in the past")
		}
		return nil, err
	}
	s.metrics.ObserveBooking(res.Success, res.EmailSent)
	return res, nil
}

// Cancel removes an appointment when the caller's details match a booked
// event.
func (s *Service) Cancel(ctx context.Context, req CancelRequest) (*booking.CancelResult, error) {
	defer s.observeLatency("cancel_appointment", s.now())

	if strings.TrimSpace(req.PatientName) == "" {
		return nil, invalid("patient_name", "required")
	}
	if strings.TrimSpace(req.Phone) == "" {
		return nil, invalid("phone", "required")
	}

	slot, err := s.parseSlot(req.Date, req.Time, 0, req.Doctor, "")
	if err != nil {
		return nil, err
	}

	s.identifyCaller(ctx, req.SessionID, req.Phone)

	res, err := s.verifier.Cancel(ctx, booking.CancelRequest{
		SessionID:   req.SessionID,
		PatientName: req.PatientName,
		Phone:       req.Phone,
		Email:       req.Email,
		Start:       slot.Start,
		Doctor:      req.Doctor,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveCancellation(res.Found)
	return res, nil
}

// Identify resolves the caller by phone and returns a greeting matched to
// how well the caller is known.
func (s *Service) Identify(ctx context.Context, sessionID, phone string) (*IdentifyResponse, error) {
	if strings.TrimSpace(phone) == "" {
		return nil, invalid("phone", "required")
	}
	if s.dir == nil {
		return &IdentifyResponse{
			CustomerType: directory.CustomerNew,
			Greeting:     s.greeting(directory.CustomerNew, nil),
		}, nil
	}

	ct, rec, err := s.dir.Identify(ctx, sessionID, phone)
	if err != nil {
		return nil, err
	}

	fields := callrecord.Fields{CustomerPhone: phone, CustomerType: string(ct)}
	if rec != nil {
		fields.CustomerName = rec.Name
		fields.CustomerEmail = rec.Email
		fields.Language = rec.Language
	}
	s.logCall(ctx, sessionID, fields)

	return &IdentifyResponse{
		CustomerType: ct,
		Patient:      rec,
		Greeting:     s.greeting(ct, rec),
	}, nil
}

// LogCall merges the fields into the session's call record, opening the
// record on first use.
func (s *Service) LogCall(ctx context.Context, sessionID string, fields callrecord.Fields) error {
	if strings.TrimSpace(sessionID) == "" {
		return invalid("session_id", "required")
	}
	if s.recorder == nil {
		return nil
	}

	_, err := s.recorder.Update(ctx, sessionID, fields)
	if errors.Is(err, callrecord.ErrSessionNotFound) {
		_, err = s.recorder.Start(ctx, sessionID, fields)
	}
	return err
}

// FinalizeCall closes and persists the session's call record. It is the
// cleanup hook the front end must invoke exactly once, including on
// mid-call disconnects.
func (s *Service) FinalizeCall(ctx context.Context, sessionID string) (*callrecord.CallRecord, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, invalid("session_id", "required")
	}
	if s.recorder == nil {
		return nil, callrecord.ErrSessionNotFound
	}

	rec, err := s.recorder.Finalize(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveCallFinalized(string(rec.ResolutionStatus))
	return rec, nil
}

func (s *Service) parseSlot(dateStr, timeStr string, durationMinutes int, doctor, department string) (schedule.Slot, error) {
	if strings.TrimSpace(dateStr) == "" {
		return schedule.Slot{}, invalid("date", "required")
	}
	if strings.TrimSpace(timeStr) == "" {
		return schedule.Slot{}, invalid("time", "required")
	}

	start, err := schedule.ParseDateTime(dateStr, timeStr, s.policy.Location)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidDate):
			return schedule.Slot{}, invalid("date", fmt.Sprintf("unrecognized date %q", dateStr))
		case errors.Is(err, schedule.ErrInvalidTime):
			return schedule.Slot{}, invalid("time", fmt.Sprintf("unrecognized time %q", timeStr))
		default:
			return schedule.Slot{}, err
		}
	}
	if start.Before(s.now()) {
		return schedule.Slot{}, invalid("date", "appointment time is in the past")
	}

	duration := s.policy.SlotDuration
	if durationMinutes > 0 {
		duration = time.Duration(durationMinutes) * time.Minute
	}
	return schedule.Slot{
		Start:      start,
		Duration:   duration,
		Doctor:     strings.TrimSpace(doctor),
		Department: strings.TrimSpace(department),
	}, nil
}

func (s *Service) identifyCaller(ctx context.Context, sessionID, phone string) {
	if s.dir == nil || phone == "" {
		return
	}
	ct, rec, err := s.dir.Identify(ctx, sessionID, phone)
	if err != nil {
		s.logger.Warn("caller identification failed", "error", err, "phone", phone)
		return
	}
	fields := callrecord.Fields{CustomerPhone: phone, CustomerType: string(ct)}
	if rec != nil {
		fields.CustomerName = rec.Name
	}
	s.logCall(ctx, sessionID, fields)
}

func (s *Service) logCall(ctx context.Context, sessionID string, fields callrecord.Fields) {
	if s.recorder == nil || sessionID == "" {
		return
	}
	if err := s.LogCall(ctx, sessionID, fields); err != nil {
		s.logger.Warn("call log update failed", "error", err, "session_id", sessionID)
	}
}

func (s *Service) greeting(ct directory.CustomerType, rec *directory.PatientRecord) string {
	switch {
	case ct == directory.CustomerReturning && rec != nil && rec.Name != "":
		if rec.PreferredDoctor != "" {
			return fmt.Sprintf("Welcome back to %s, %s! Would you like to see %s again?",
				s.hospital, rec.Name, rec.PreferredDoctor)
		}
		return fmt.Sprintf("Welcome back to %s, %s! How may I help you today?", s.hospital, rec.Name)
	case ct == directory.CustomerExisting && rec != nil && rec.Name != "":
		return fmt.Sprintf("Yes %s, what else can I do for you?", rec.Name)
	default:
		return fmt.Sprintf("Thank you for calling %s. How may I help you today?", s.hospital)
	}
}

func (s *Service) observeLatency(operation string, started time.Time) {
	s.metrics.ObserveOperationLatency(operation, s.now().Sub(started).Seconds())
}
