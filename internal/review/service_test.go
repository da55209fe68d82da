package review

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	reviews []Review
}

func (f *fakeRepo) Create(_ context.Context, r *Review) error {
	f.reviews = append(f.reviews, *r)
	return nil
}

func (f *fakeRepo) ListByDoctorName(_ context.Context, doctorName string) ([]Review, error) {
	var out []Review
	for _, r := range f.reviews {
		if r.DoctorName == doctorName {
			out = append(out, r)
		}
	}
	return out, nil
}

func validInput() CreateInput {
	return CreateInput{
		DoctorName:               "Dr. Meera Nair",
		DoctorRegistrationNumber: "mci-44821",
		PatientName:              "Asha Rao",
		Comment:                  "Thorough and kind.",
		Stars:                    5,
	}
}

func TestCreateReview(t *testing.T) {
	svc := NewService(&fakeRepo{}, zerolog.Nop())

	rv, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "MCI-44821", rv.DoctorRegistrationNumber)
	assert.Equal(t, 5, rv.Stars)
	assert.NotEqual(t, "", rv.ID.String())
}

func TestCreateReviewStarsBounds(t *testing.T) {
	svc := NewService(&fakeRepo{}, zerolog.Nop())

	for _, stars := range []int{0, -1, 6} {
		in := validInput()
		in.Stars = stars
		_, err := svc.Create(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidReview)
	}

	for stars := MinStars; stars <= MaxStars; stars++ {
		in := validInput()
		in.Stars = stars
		_, err := svc.Create(context.Background(), in)
		assert.NoError(t, err)
	}
}

func TestCreateReviewRequiredFields(t *testing.T) {
	svc := NewService(&fakeRepo{}, zerolog.Nop())

	in := validInput()
	in.Comment = "  "
	_, err := svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidReview)

	in = validInput()
	in.DoctorName = ""
	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidReview)
}

func TestListByDoctorName(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	reviews, err := svc.ListByDoctorName(context.Background(), "Dr. Meera Nair")
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	_, err = svc.ListByDoctorName(context.Background(), "Dr. Nobody")
	assert.ErrorIs(t, err, ErrNoReviews)
}
