package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotTaken           = errors.New("slot already has a scheduled appointment")
)

// Repository contains all DB interactions needed by the scheduler service.
type Repository interface {
	// Create inserts a scheduled appointment. It returns ErrSlotTaken when the
	// (doctor, instant, scheduled) uniqueness constraint rejects the insert.
	Create(ctx context.Context, a *Appointment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// For conflict checks
	GetScheduledAt(ctx context.Context, doctorID uuid.UUID, at time.Time) (*Appointment, error)

	// For slot computation
	ListScheduledBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error)

	// Projections, each ordered by appointment time descending
	ListByPatientAadhaar(ctx context.Context, aadhaar string) ([]Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error)
	ListAll(ctx context.Context) ([]Appointment, error)

	// UpdateStatusFromScheduled is a compare-and-swap: it only succeeds while
	// the appointment is still scheduled.
	UpdateStatusFromScheduled(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
