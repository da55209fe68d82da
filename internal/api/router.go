package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/medibook/clinic-appointments/internal/account"
	"github.com/medibook/clinic-appointments/internal/appointment"
	"github.com/medibook/clinic-appointments/internal/auth"
	"github.com/medibook/clinic-appointments/internal/review"
)

type RouterConfig struct {
	Accounts     *account.Service
	Appointments *appointment.Service
	Reviews      *review.Service
	Tokens       *auth.TokenManager
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Logger       zerolog.Logger
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	authenticated := AuthMiddleware(cfg.Tokens)

	r.Route("/api", func(r chi.Router) {
		// Registration and login
		r.Post("/auth/doctor/register", registerDoctorHandler(cfg.Accounts))
		r.Post("/auth/doctor/login", loginDoctorHandler(cfg.Accounts))
		r.Post("/auth/patient/register", registerPatientHandler(cfg.Accounts))
		r.Post("/auth/patient/login", loginPatientHandler(cfg.Accounts))

		r.With(authenticated).Get("/me", meHandler(cfg.Accounts))

		// Doctor directory
		r.Get("/doctors", listDoctorsHandler(cfg.Accounts))
		r.Get("/doctors/{id}", getDoctorHandler(cfg.Accounts))
		r.With(authenticated).Put("/doctors/{id}", updateDoctorHandler(cfg.Accounts))

		// Appointments
		r.Route("/appointments", func(r chi.Router) {
			r.Use(authenticated)

			r.With(RequireRole(auth.RolePatient)).Post("/", bookAppointmentHandler(cfg.Appointments))
			r.With(RequireRole(auth.RolePatient)).Get("/my", myAppointmentsHandler(cfg.Appointments))
			r.With(RequireRole(auth.RoleDoctor)).Get("/doctor", doctorAppointmentsHandler(cfg.Appointments))
			r.Get("/all", allAppointmentsHandler(cfg.Appointments))
			r.Get("/available-slots/{doctorID}/{date}", availableSlotsHandler(cfg.Appointments))
			r.Get("/{id}", getAppointmentHandler(cfg.Appointments))
			r.Put("/{id}/status", updateStatusHandler(cfg.Appointments))
			r.Put("/{id}/cancel", cancelAppointmentHandler(cfg.Appointments))
			r.Delete("/{id}", deleteAppointmentHandler(cfg.Appointments))
		})

		// Reviews
		r.With(authenticated, RequireRole(auth.RolePatient)).Post("/reviews", createReviewHandler(cfg.Reviews))
		r.Get("/reviews/doctor/{name}", listReviewsHandler(cfg.Reviews))
	})

	return r
}
