package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidReview = errors.New("invalid review")
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

type CreateInput struct {
	DoctorName               string
	DoctorRegistrationNumber string
	PatientName              string
	Comment                  string
	Stars                    int
}

// Create stores a patient's review of a doctor. All fields are required and
// stars must lie in [1, 5].
func (s *Service) Create(ctx context.Context, in CreateInput) (*Review, error) {
	required := map[string]string{
		"doctor_name":                in.DoctorName,
		"doctor_registration_number": in.DoctorRegistrationNumber,
		"patient_name":               in.PatientName,
		"comment":                    in.Comment,
	}
	for field, v := range required {
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidReview, field)
		}
	}
	if in.Stars < MinStars || in.Stars > MaxStars {
		return nil, fmt.Errorf("%w: stars must be between %d and %d", ErrInvalidReview, MinStars, MaxStars)
	}

	rv := &Review{
		ID:                       uuid.New(),
		DoctorName:               strings.TrimSpace(in.DoctorName),
		DoctorRegistrationNumber: strings.ToUpper(strings.TrimSpace(in.DoctorRegistrationNumber)),
		PatientName:              strings.TrimSpace(in.PatientName),
		Comment:                  strings.TrimSpace(in.Comment),
		Stars:                    in.Stars,
	}

	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info().
		Str("doctor", rv.DoctorName).
		Int("stars", rv.Stars).
		Msg("review created")

	return rv, nil
}

// ListByDoctorName returns a doctor's reviews, newest first. An empty result
// is reported as ErrNoReviews.
func (s *Service) ListByDoctorName(ctx context.Context, doctorName string) ([]Review, error) {
	reviews, err := s.repo.ListByDoctorName(ctx, strings.TrimSpace(doctorName))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if len(reviews) == 0 {
		return nil, ErrNoReviews
	}
	return reviews, nil
}
