package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound        = errors.New("doctor not found")
	ErrPatientNotFound       = errors.New("patient not found")
	ErrDuplicateRegistration = errors.New("doctor with this registration number already exists")
	ErrDuplicateAadhaar      = errors.New("patient with this aadhaar number already exists")
)

// Repository contains all DB interactions needed by the account service.
type Repository interface {
	CreateDoctor(ctx context.Context, d *Doctor) error
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetDoctorByRegistration(ctx context.Context, registrationNumber string) (*Doctor, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)
	UpdateDoctorProfile(ctx context.Context, id uuid.UUID, profile DoctorProfile) (*Doctor, error)

	CreatePatient(ctx context.Context, p *Patient) error
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetPatientByAadhaar(ctx context.Context, aadhaar string) (*Patient, error)
}
