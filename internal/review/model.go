package review

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinStars = 1
	MaxStars = 5
)

type Review struct {
	ID                       uuid.UUID
	DoctorName               string
	DoctorRegistrationNumber string
	PatientName              string
	Comment                  string
	Stars                    int
	CreatedAt                time.Time
}
