package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/medibook/clinic-appointments/internal/account"
	"github.com/medibook/clinic-appointments/internal/appointment"
	"github.com/medibook/clinic-appointments/internal/review"
)

// Auth

type RegisterDoctorRequest struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
	Password           string `json:"password"`
	Specialization     string `json:"specialization"`
	Qualification      string `json:"qualification"`
	Experience         string `json:"experience"`
	MobileNumber       string `json:"mobile_number"`
	City               string `json:"city"`
	MedicalCouncil     string `json:"medical_council"`
}

type LoginDoctorRequest struct {
	RegistrationNumber string `json:"registration_number"`
	Password           string `json:"password"`
}

type RegisterPatientRequest struct {
	Name     string `json:"name"`
	Aadhaar  string `json:"aadhaar"`
	Password string `json:"password"`
}

type LoginPatientRequest struct {
	Aadhaar  string `json:"aadhaar"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type DoctorResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	RegistrationNumber string    `json:"registration_number"`
	Specialization     string    `json:"specialization"`
	Qualification      string    `json:"qualification"`
	Experience         string    `json:"experience"`
	MobileNumber       string    `json:"mobile_number"`
	City               string    `json:"city"`
	MedicalCouncil     string    `json:"medical_council"`
	Role               string    `json:"role"`
}

type PatientResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Aadhaar string    `json:"aadhaar"`
	Role    string    `json:"role"`
}

func toDoctorResponse(d *account.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:                 d.ID,
		Name:               d.Name,
		RegistrationNumber: d.RegistrationNumber,
		Specialization:     d.Specialization,
		Qualification:      d.Qualification,
		Experience:         d.Experience,
		MobileNumber:       d.MobileNumber,
		City:               d.City,
		MedicalCouncil:     d.MedicalCouncil,
		Role:               "doctor",
	}
}

func toPatientResponse(p *account.Patient) PatientResponse {
	return PatientResponse{
		ID:      p.ID,
		Name:    p.Name,
		Aadhaar: p.Aadhaar,
		Role:    "patient",
	}
}

// Doctor profile update

type UpdateDoctorRequest struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Qualification  string `json:"qualification"`
	Experience     string `json:"experience"`
	MobileNumber   string `json:"mobile_number"`
	City           string `json:"city"`
	MedicalCouncil string `json:"medical_council"`
}

// Appointments

type BookAppointmentRequest struct {
	DoctorID        string `json:"doctor_id"`
	AppointmentTime string `json:"appointment_time"` // RFC 3339
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	ID             uuid.UUID `json:"id"`
	DoctorID       uuid.UUID `json:"doctor_id"`
	PatientID      uuid.UUID `json:"patient_id"`
	DoctorName     string    `json:"doctor_name"`
	PatientName    string    `json:"patient_name"`
	PatientAadhaar string    `json:"patient_aadhaar"`
	Time           time.Time `json:"appointment_time"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:             a.ID,
		DoctorID:       a.DoctorID,
		PatientID:      a.PatientID,
		DoctorName:     a.DoctorName,
		PatientName:    a.PatientName,
		PatientAadhaar: a.PatientAadhaar,
		Time:           a.Time,
		Status:         string(a.Status),
		CreatedAt:      a.CreatedAt,
	}
}

func toAppointmentResponses(appts []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	return out
}

type AvailableSlotsResponse struct {
	DoctorID uuid.UUID   `json:"doctor_id"`
	Date     string      `json:"date"`
	Slots    []time.Time `json:"slots"`
}

// Reviews

type CreateReviewRequest struct {
	DoctorName               string `json:"doctor_name"`
	DoctorRegistrationNumber string `json:"doctor_registration_number"`
	Comment                  string `json:"comment"`
	Stars                    int    `json:"stars"`
}

type ReviewResponse struct {
	ID                       uuid.UUID `json:"id"`
	DoctorName               string    `json:"doctor_name"`
	DoctorRegistrationNumber string    `json:"doctor_registration_number"`
	PatientName              string    `json:"patient_name"`
	Comment                  string    `json:"comment"`
	Stars                    int       `json:"stars"`
	CreatedAt                time.Time `json:"created_at"`
}

func toReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:                       r.ID,
		DoctorName:               r.DoctorName,
		DoctorRegistrationNumber: r.DoctorRegistrationNumber,
		PatientName:              r.PatientName,
		Comment:                  r.Comment,
		Stars:                    r.Stars,
		CreatedAt:                r.CreatedAt,
	}
}
