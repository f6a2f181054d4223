package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/clinic"
)

// ClinicService is what the handlers need from clinic.Service.
type ClinicService interface {
	Book(ctx context.Context, req clinic.BookingRequest) (clinic.Outcome, error)
	RankByDoctor(ctx context.Context) ([]clinic.DoctorRankRow, error)
	AddDoctor(ctx context.Context, d clinic.Doctor) error
	AddPatient(ctx context.Context, p clinic.Patient) error
	AddAppointment(ctx context.Context, a clinic.Appointment) error
	ListDoctorAppointments(ctx context.Context, doctorID int, from, to time.Time) ([]clinic.AppointmentSummary, error)
	ListAvailableByDepartment(ctx context.Context, department string, date time.Time) ([]clinic.AvailableSlot, error)
	CountPatientsByStatus(ctx context.Context, status clinic.Status) ([]clinic.DoctorPatientCount, error)
}

type RouterConfig struct {
	Service ClinicService
	PgPool  Pinger
	Redis   *redis.Client // nil when locking is disabled
	Logger  zerolog.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Post("/doctors", createDoctorHandler(cfg.Service))
	r.Get("/doctors/{id}/appointments", doctorAppointmentsHandler(cfg.Service))
	r.Post("/patients", createPatientHandler(cfg.Service))
	r.Post("/appointments", createAppointmentHandler(cfg.Service))
	r.Post("/bookings", bookHandler(cfg.Service))
	r.Get("/departments/{name}/available", availableByDepartmentHandler(cfg.Service))

	r.Route("/reports", func(r chi.Router) {
		r.Get("/status-ranking", statusRankingHandler(cfg.Service))
		r.Get("/patients-per-doctor", patientsPerDoctorHandler(cfg.Service))
	})

	return r
}
