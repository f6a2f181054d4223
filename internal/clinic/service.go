package clinic

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
)

type Options struct {
	// Atomic runs each booking inside a single transaction.
	Atomic bool
	// FillIDRange makes the ranking report cover every id between the
	// lowest and highest doctor id.
	FillIDRange bool
}

// Service is the entry point used by the menu, the HTTP API and the seeder.
type Service struct {
	repo       Repository
	booking    *BookingEngine
	aggregator *StatusAggregator
	logger     zerolog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, opts Options, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		booking:    NewBookingEngine(repo, locker, opts.Atomic, logger),
		aggregator: NewStatusAggregator(repo, opts.FillIDRange, logger),
		logger:     logger.With().Str("component", "service").Logger(),
	}
}

// Book resolves the patient and doctor, then applies the status machine to
// the requested appointment.
func (s *Service) Book(ctx context.Context, req BookingRequest) (Outcome, error) {
	return s.booking.Book(ctx, req)
}

func (s *Service) RankByDoctor(ctx context.Context) ([]DoctorRankRow, error) {
	return s.aggregator.RankByDoctor(ctx)
}

// AddDoctor inserts a doctor row as given. A duplicate id is a store error.
func (s *Service) AddDoctor(ctx context.Context, d Doctor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := s.repo.InsertDoctor(ctx, d); err != nil {
		return persistence("insert doctor", err)
	}
	s.logger.Info().Int("doctor_id", d.ID).Msg("doctor added")
	return nil
}

func (s *Service) AddPatient(ctx context.Context, p Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.InsertPatient(ctx, p); err != nil {
		return persistence("insert patient", err)
	}
	s.logger.Info().Int("patient_id", p.ID).Msg("patient added")
	return nil
}

func (s *Service) AddAppointment(ctx context.Context, a Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.repo.InsertAppointment(ctx, a); err != nil {
		return persistence("insert appointment", err)
	}
	s.logger.Info().Int("appointment_id", a.ID).Str("status", string(a.Status)).Msg("appointment added")
	return nil
}

// ListDoctorAppointments returns the doctor's active and available
// appointments dated within [from, to].
func (s *Service) ListDoctorAppointments(ctx context.Context, doctorID int, from, to time.Time) ([]AppointmentSummary, error) {
	if from.IsZero() || to.IsZero() {
		return nil, &ValidationError{Field: "date range", Reason: "both ends are required"}
	}
	if to.Before(from) {
		return nil, &ValidationError{Field: "date range", Value: from.Format(time.DateOnly) + ".." + to.Format(time.DateOnly), Reason: "end is before start"}
	}
	out, err := s.repo.ListDoctorAppointments(ctx, doctorID, from, to)
	if err != nil {
		return nil, persistence("list doctor appointments", err)
	}
	return out, nil
}

// ListAvailableByDepartment returns the available appointments on date for
// doctors in the named department.
func (s *Service) ListAvailableByDepartment(ctx context.Context, department string, date time.Time) ([]AvailableSlot, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, &ValidationError{Field: "department", Reason: "is required"}
	}
	if date.IsZero() {
		return nil, &ValidationError{Field: "date", Reason: "is required"}
	}
	out, err := s.repo.ListAvailableByDepartment(ctx, department, date)
	if err != nil {
		return nil, persistence("list available appointments", err)
	}
	return out, nil
}

// CountPatientsByStatus counts, per doctor, the appointments in the given
// status.
func (s *Service) CountPatientsByStatus(ctx context.Context, status Status) ([]DoctorPatientCount, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Value: string(status), Reason: "must be one of PA, AC, AV, WL"}
	}
	out, err := s.repo.CountPatientsByStatus(ctx, status)
	if err != nil {
		return nil, persistence("count patients per doctor", err)
	}
	return out, nil
}
