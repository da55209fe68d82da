package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medibook/clinic-appointments/internal/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotProfileOwner    = errors.New("not authorized to update this profile")
	ErrInvalidInput       = errors.New("invalid input")
)

var mobileNumberRe = regexp.MustCompile(`^[0-9]{10}$`)

const minPasswordLength = 8

type Service struct {
	repo   Repository
	tokens *auth.TokenManager
	logger zerolog.Logger
}

func NewService(repo Repository, tokens *auth.TokenManager, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

type RegisterDoctorInput struct {
	Name               string
	RegistrationNumber string
	Password           string
	Specialization     string
	Qualification      string
	Experience         string
	MobileNumber       string
	City               string
	MedicalCouncil     string
}

func (in *RegisterDoctorInput) validate() error {
	required := map[string]string{
		"name":                in.Name,
		"registration_number": in.RegistrationNumber,
		"specialization":      in.Specialization,
		"qualification":       in.Qualification,
		"experience":          in.Experience,
		"city":                in.City,
		"medical_council":     in.MedicalCouncil,
	}
	for field, v := range required {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
		}
	}
	if len(in.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if !mobileNumberRe.MatchString(in.MobileNumber) {
		return fmt.Errorf("%w: mobile_number must be a 10-digit number", ErrInvalidInput)
	}
	return nil
}

// RegisterDoctor creates a doctor account and returns it with a signed token.
func (s *Service) RegisterDoctor(ctx context.Context, in RegisterDoctorInput) (*Doctor, string, error) {
	if err := in.validate(); err != nil {
		return nil, "", err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	doctor := &Doctor{
		ID:                 uuid.New(),
		Name:               strings.TrimSpace(in.Name),
		RegistrationNumber: strings.ToUpper(strings.TrimSpace(in.RegistrationNumber)),
		PasswordHash:       hash,
		Specialization:     strings.TrimSpace(in.Specialization),
		Qualification:      strings.TrimSpace(in.Qualification),
		Experience:         strings.TrimSpace(in.Experience),
		MobileNumber:       in.MobileNumber,
		City:               strings.TrimSpace(in.City),
		MedicalCouncil:     strings.TrimSpace(in.MedicalCouncil),
	}

	if err := s.repo.CreateDoctor(ctx, doctor); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(auth.Identity{ID: doctor.ID, Role: auth.RoleDoctor, Name: doctor.Name})
	if err != nil {
		return nil, "", fmt.Errorf("issue doctor token: %w", err)
	}

	s.logger.Info().Str("doctor_id", doctor.ID.String()).Msg("doctor registered")
	return doctor, token, nil
}

// LoginDoctor authenticates by registration number and password. A missing
// doctor and a wrong password are indistinguishable to the caller.
func (s *Service) LoginDoctor(ctx context.Context, registrationNumber, password string) (*Doctor, string, error) {
	doctor, err := s.repo.GetDoctorByRegistration(ctx, strings.ToUpper(strings.TrimSpace(registrationNumber)))
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("load doctor: %w", err)
	}

	if !auth.CheckPassword(doctor.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Identity{ID: doctor.ID, Role: auth.RoleDoctor, Name: doctor.Name})
	if err != nil {
		return nil, "", fmt.Errorf("issue doctor token: %w", err)
	}

	return doctor, token, nil
}

type RegisterPatientInput struct {
	Name     string
	Aadhaar  string
	Password string
}

func (in *RegisterPatientInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Aadhaar) == "" {
		return fmt.Errorf("%w: aadhaar is required", ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	return nil
}

// RegisterPatient creates a patient account and returns it with a signed token.
// The token carries the Aadhaar number so appointment lookups never trust it
// from a request body.
func (s *Service) RegisterPatient(ctx context.Context, in RegisterPatientInput) (*Patient, string, error) {
	if err := in.validate(); err != nil {
		return nil, "", err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	patient := &Patient{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Aadhaar:      strings.TrimSpace(in.Aadhaar),
		PasswordHash: hash,
	}

	if err := s.repo.CreatePatient(ctx, patient); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(auth.Identity{
		ID:      patient.ID,
		Role:    auth.RolePatient,
		Name:    patient.Name,
		Aadhaar: patient.Aadhaar,
	})
	if err != nil {
		return nil, "", fmt.Errorf("issue patient token: %w", err)
	}

	s.logger.Info().Str("patient_id", patient.ID.String()).Msg("patient registered")
	return patient, token, nil
}

// LoginPatient authenticates by Aadhaar number and password.
func (s *Service) LoginPatient(ctx context.Context, aadhaar, password string) (*Patient, string, error) {
	patient, err := s.repo.GetPatientByAadhaar(ctx, strings.TrimSpace(aadhaar))
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("load patient: %w", err)
	}

	if !auth.CheckPassword(patient.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Identity{
		ID:      patient.ID,
		Role:    auth.RolePatient,
		Name:    patient.Name,
		Aadhaar: patient.Aadhaar,
	})
	if err != nil {
		return nil, "", fmt.Errorf("issue patient token: %w", err)
	}

	return patient, token, nil
}

// ListDoctors returns the full doctor directory.
func (s *Service) ListDoctors(ctx context.Context) ([]Doctor, error) {
	doctors, err := s.repo.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

// GetDoctor returns a single doctor from the directory.
func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	doctor, err := s.repo.GetDoctorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return doctor, nil
}

// UpdateDoctorProfile lets a doctor change their own profile fields.
func (s *Service) UpdateDoctorProfile(ctx context.Context, caller auth.Identity, id uuid.UUID, profile DoctorProfile) (*Doctor, error) {
	if _, err := s.repo.GetDoctorByID(ctx, id); err != nil {
		return nil, err
	}

	if caller.Role != auth.RoleDoctor || caller.ID != id {
		return nil, ErrNotProfileOwner
	}

	if strings.TrimSpace(profile.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	updated, err := s.repo.UpdateDoctorProfile(ctx, id, profile)
	if err != nil {
		return nil, fmt.Errorf("update doctor profile: %w", err)
	}

	return updated, nil
}

// CurrentDoctor and CurrentPatient resolve a verified identity back to its
// stored record, for the /me endpoint.

func (s *Service) CurrentDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetDoctorByID(ctx, id)
}

func (s *Service) CurrentPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetPatientByID(ctx, id)
}
