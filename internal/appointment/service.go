package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medibook/clinic-appointments/internal/account"
	"github.com/medibook/clinic-appointments/internal/auth"
	redisclient "github.com/medibook/clinic-appointments/internal/redis"
)

const (
	EventAppointmentBooked    = "APPOINTMENT_BOOKED"
	EventAppointmentCompleted = "APPOINTMENT_COMPLETED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
)

var (
	ErrBookingInProgress       = errors.New("slot is currently being booked, please retry")
	ErrInvalidStatusValue      = errors.New("status must be either completed or cancelled")
	ErrInvalidSlotTime         = errors.New("appointment time must be a valid instant")
	ErrInvalidStatusTransition = errors.New("only scheduled appointments can be updated")
	ErrNotAuthorized           = errors.New("not authorized for this appointment")
)

// DoctorDirectory is the slice of the account layer the scheduler needs:
// confirming a doctor exists and supplying its display name.
type DoctorDirectory interface {
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*account.Doctor, error)
}

type Service struct {
	repo      Repository
	directory DoctorDirectory
	locker    redisclient.Locker
	logger    zerolog.Logger
}

func NewService(repo Repository, directory DoctorDirectory, locker redisclient.Locker, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		locker:    locker,
		logger:    logger,
	}
}

// Book reserves a slot for the calling patient. Identity fields come from the
// verified token, never from the request body. The check-then-create section
// runs under a per (doctor, instant) lock, and the partial unique index backs
// it up, so two concurrent bookings of the same instant cannot both succeed.
func (s *Service) Book(ctx context.Context, doctorID uuid.UUID, patient auth.Identity, at time.Time) (*Appointment, error) {
	if at.IsZero() {
		return nil, ErrInvalidSlotTime
	}

	doctor, err := s.directory.GetDoctorByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, account.ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	var created *Appointment

	err = s.locker.WithBookingLock(ctx, doctorID, at, func(lockCtx context.Context) error {
		// Inside the critical section re-check for a scheduled appointment at
		// this exact instant.
		existing, err := s.repo.GetScheduledAt(lockCtx, doctorID, at)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check scheduled appointment: %w", err)
		}
		if existing != nil {
			return ErrSlotTaken
		}

		appt := &Appointment{
			ID:             uuid.New(),
			DoctorID:       doctorID,
			PatientID:      patient.ID,
			DoctorName:     doctor.Name,
			PatientName:    patient.Name,
			PatientAadhaar: patient.Aadhaar,
			Time:           at,
		}

		if err := s.repo.Create(lockCtx, appt); err != nil {
			return err
		}

		created = appt

		s.logEvent(lockCtx, appt.ID, EventAppointmentBooked, map[string]any{
			"doctor_id":        doctorID.String(),
			"patient_id":       patient.ID.String(),
			"appointment_time": at,
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrBookingInProgress
		}
		return nil, err
	}

	return created, nil
}

// AvailableSlots returns the day's slot grid minus every instant that already
// holds a scheduled appointment for the doctor. The result is finite, strictly
// ascending, and identical across calls absent intervening bookings.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]time.Time, error) {
	if _, err := s.directory.GetDoctorByID(ctx, doctorID); err != nil {
		if errors.Is(err, account.ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	from, to := DayBounds(date)
	booked, err := s.repo.ListScheduledBetween(ctx, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list scheduled appointments: %w", err)
	}

	taken := make(map[int64]struct{}, len(booked))
	for _, a := range booked {
		taken[a.Time.Unix()] = struct{}{}
	}

	free := make([]time.Time, 0, 16)
	for _, slot := range SlotGrid(date) {
		if _, ok := taken[slot.Unix()]; ok {
			continue
		}
		free = append(free, slot)
	}

	return free, nil
}

// UpdateStatus moves a scheduled appointment to completed or cancelled.
// Authorization is checked before the state: completing is reserved for the
// assigned doctor, cancelling for the assigned doctor or the appointment's
// patient. Completed and cancelled are terminal.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, caller auth.Identity, newStatus Status) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if newStatus != StatusCompleted && newStatus != StatusCancelled {
		return nil, ErrInvalidStatusValue
	}

	if !callerMay(caller, appt, newStatus) {
		return nil, ErrNotAuthorized
	}

	if appt.Status.Terminal() {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.UpdateStatusFromScheduled(ctx, id, newStatus)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Lost a race with another transition.
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	event := EventAppointmentCompleted
	if newStatus == StatusCancelled {
		event = EventAppointmentCancelled
	}
	s.logEvent(ctx, updated.ID, event, map[string]any{
		"caller_id":   caller.ID.String(),
		"caller_role": string(caller.Role),
	})

	return updated, nil
}

func callerMay(caller auth.Identity, appt *Appointment, newStatus Status) bool {
	isAssignedDoctor := caller.Role == auth.RoleDoctor && caller.ID == appt.DoctorID
	isPatientParty := caller.Role == auth.RolePatient && caller.ID == appt.PatientID

	switch newStatus {
	case StatusCompleted:
		return isAssignedDoctor
	case StatusCancelled:
		return isAssignedDoctor || isPatientParty
	default:
		return false
	}
}

// Get returns an appointment to one of its parties.
func (s *Service) Get(ctx context.Context, id uuid.UUID, caller auth.Identity) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	party := (caller.Role == auth.RoleDoctor && caller.ID == appt.DoctorID) ||
		(caller.Role == auth.RolePatient && caller.ID == appt.PatientID)
	if !party {
		return nil, ErrNotAuthorized
	}

	return appt, nil
}

// ListForPatient returns the caller's appointments, newest first, looked up by
// the Aadhaar number carried in the verified identity.
func (s *Service) ListForPatient(ctx context.Context, caller auth.Identity) ([]Appointment, error) {
	appts, err := s.repo.ListByPatientAadhaar(ctx, caller.Aadhaar)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appts, nil
}

// ListForDoctor returns the calling doctor's appointments, newest first.
func (s *Service) ListForDoctor(ctx context.Context, caller auth.Identity) ([]Appointment, error) {
	appts, err := s.repo.ListByDoctor(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor: %w", err)
	}
	return appts, nil
}

// ListAll returns every appointment system-wide. Admin only.
func (s *Service) ListAll(ctx context.Context, caller auth.Identity) ([]Appointment, error) {
	if caller.Role != auth.RoleAdmin {
		return nil, ErrNotAuthorized
	}

	appts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all appointments: %w", err)
	}
	return appts, nil
}

// Delete hard-deletes an appointment. Admin only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, caller auth.Identity) error {
	if caller.Role != auth.RoleAdmin {
		return ErrNotAuthorized
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.logger.Error().Err(err).
			Str("event", eventType).
			Str("appointment_id", appointmentID.String()).
			Msg("insert event log")
	}
}
