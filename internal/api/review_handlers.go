package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/medibook/clinic-appointments/internal/review"
)

func createReviewHandler(svc *review.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not_authenticated", "missing identity")
			return
		}

		var req CreateReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		// The reviewer name comes from the verified identity, not the body.
		rv, err := svc.Create(r.Context(), review.CreateInput{
			DoctorName:               req.DoctorName,
			DoctorRegistrationNumber: req.DoctorRegistrationNumber,
			PatientName:              identity.Name,
			Comment:                  req.Comment,
			Stars:                    req.Stars,
		})
		if err != nil {
			handleReviewError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toReviewResponse(rv))
	}
}

func listReviewsHandler(svc *review.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := url.PathUnescape(chi.URLParam(r, "name"))
		if err != nil || name == "" {
			writeError(w, http.StatusBadRequest, "invalid_doctor_name", "doctor name is required")
			return
		}

		reviews, err := svc.ListByDoctorName(r.Context(), name)
		if err != nil {
			handleReviewError(w, err)
			return
		}

		out := make([]ReviewResponse, 0, len(reviews))
		for i := range reviews {
			out = append(out, toReviewResponse(&reviews[i]))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func handleReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, review.ErrInvalidReview):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, review.ErrNoReviews):
		writeError(w, http.StatusNotFound, "no_reviews", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
