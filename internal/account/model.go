package account

import (
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID                 uuid.UUID
	Name               string
	RegistrationNumber string
	PasswordHash       string
	Specialization     string
	Qualification      string
	Experience         string
	MobileNumber       string
	City               string
	MedicalCouncil     string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Patient struct {
	ID           uuid.UUID
	Name         string
	Aadhaar      string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DoctorProfile holds the fields a doctor may change after registration.
// Registration number and password are deliberately absent.
type DoctorProfile struct {
	Name           string
	Specialization string
	Qualification  string
	Experience     string
	MobileNumber   string
	City           string
	MedicalCouncil string
}
