package review

import (
	"context"
	"errors"
)

var (
	ErrNoReviews = errors.New("no reviews found for this doctor")
)

// Repository contains all DB interactions needed by the review service.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	ListByDoctorName(ctx context.Context, doctorName string) ([]Review, error)
}
