package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medibook/clinic-appointments/internal/account"
	"github.com/medibook/clinic-appointments/internal/auth"
)

func registerDoctorHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctor, token, err := svc.RegisterDoctor(r.Context(), account.RegisterDoctorInput{
			Name:               req.Name,
			RegistrationNumber: req.RegistrationNumber,
			Password:           req.Password,
			Specialization:     req.Specialization,
			Qualification:      req.Qualification,
			Experience:         req.Experience,
			MobileNumber:       req.MobileNumber,
			City:               req.City,
			MedicalCouncil:     req.MedicalCouncil,
		})
		if err != nil {
			handleAccountError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: toDoctorResponse(doctor)})
	}
}

func loginDoctorHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctor, token, err := svc.LoginDoctor(r.Context(), req.RegistrationNumber, req.Password)
		if err != nil {
			handleAccountError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: toDoctorResponse(doctor)})
	}
}

func registerPatientHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterPatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patient, token, err := svc.RegisterPatient(r.Context(), account.RegisterPatientInput{
			Name:     req.Name,
			Aadhaar:  req.Aadhaar,
			Password: req.Password,
		})
		if err != nil {
			handleAccountError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: toPatientResponse(patient)})
	}
}

func loginPatientHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginPatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patient, token, err := svc.LoginPatient(r.Context(), req.Aadhaar, req.Password)
		if err != nil {
			handleAccountError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: toPatientResponse(patient)})
	}
}

// meHandler resolves the bearer token back to the stored account record.
func meHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not_authenticated", "missing identity")
			return
		}

		switch identity.Role {
		case auth.RoleDoctor:
			doctor, err := svc.CurrentDoctor(r.Context(), identity.ID)
			if err != nil {
				handleAccountError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, toDoctorResponse(doctor))
		case auth.RolePatient:
			patient, err := svc.CurrentPatient(r.Context(), identity.ID)
			if err != nil {
				handleAccountError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, toPatientResponse(patient))
		default:
			writeError(w, http.StatusNotFound, "user_not_found", "no account record for this identity")
		}
	}
}

func handleAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, account.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, account.ErrDuplicateRegistration),
		errors.Is(err, account.ErrDuplicateAadhaar):
		writeError(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, account.ErrDoctorNotFound),
		errors.Is(err, account.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, account.ErrNotProfileOwner):
		writeError(w, http.StatusForbidden, "not_authorized", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
