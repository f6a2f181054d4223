package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-scheduling/internal/clinic"
	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/db"
	"github.com/hackgods/clinic-scheduling/internal/logging"
	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
)

var departments = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

var timeSlots = []string{
	"08:00-09:00", "09:00-10:00", "10:00-11:00", "11:00-12:00",
	"13:00-14:00", "14:00-15:00", "15:00-16:00", "16:00-17:00",
}

type seedOptions struct {
	startID      int
	doctors      int
	patients     int
	appointments int
	bookings     int
}

func main() {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the clinic tables with fake departments, doctors, patients and appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.startID, "start-id", 1, "first id used for every seeded table")
	f.IntVar(&opts.doctors, "doctors", 50, "number of doctors")
	f.IntVar(&opts.patients, "patients", 500, "number of patients")
	f.IntVar(&opts.appointments, "appointments", 1000, "number of appointments")
	f.IntVar(&opts.bookings, "bookings", 800, "number of bookings to run through the booking workflow")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts seedOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}
	logger := logging.New("seed", cfg.Env, cfg.LogLevel)
	logger.Info().Msg("seed starting")

	pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	store := db.NewRecordStore(pool)
	svc := clinic.NewService(clinic.NewPgRepository(store), redisclient.NopLocker{}, clinic.Options{Atomic: true}, logger)

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedDepartments(ctx, store, opts.startID, logger); err != nil {
		return fmt.Errorf("seed departments: %w", err)
	}

	s := seeder{svc: svc, logger: logger, opts: opts}
	s.doctors(ctx)
	s.patients(ctx)
	s.appointments(ctx)
	s.bookings(ctx)

	logger.Info().Msg("seed complete")
	return nil
}

// seedDepartments writes the department table in one transaction.
func seedDepartments(ctx context.Context, store *db.RecordStore, startID int, logger zerolog.Logger) error {
	rows := make([]interface{}, 0, len(departments))
	for i, name := range departments {
		rows = append(rows, goqu.Record{"dept_id": startID + i, "name": name})
	}

	query, args, err := goqu.Dialect("postgres").Insert("department").
		Rows(rows...).
		OnConflict(goqu.DoNothing()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	return store.WithinTx(ctx, func(tx *db.RecordStore) error {
		n, err := tx.Execute(ctx, query, args...)
		if err != nil {
			return err
		}
		logger.Info().Int64("inserted", n).Msg("departments seeded")
		return nil
	})
}

type seeder struct {
	svc    *clinic.Service
	logger zerolog.Logger
	opts   seedOptions
}

func (s seeder) doctors(ctx context.Context) {
	added := 0
	for i := 0; i < s.opts.doctors; i++ {
		dept := gofakeit.Number(0, len(departments)-1)
		err := s.svc.AddDoctor(ctx, clinic.Doctor{
			ID:           s.opts.startID + i,
			Name:         "Dr. " + gofakeit.LastName(),
			Specialty:    departments[dept],
			DepartmentID: s.opts.startID + dept,
		})
		if err != nil {
			s.logger.Warn().Err(err).Msg("skipping doctor")
			continue
		}
		added++
	}
	s.logger.Info().Int("added", added).Int("requested", s.opts.doctors).Msg("doctors seeded")
}

func (s seeder) patients(ctx context.Context) {
	added := 0
	for i := 0; i < s.opts.patients; i++ {
		err := s.svc.AddPatient(ctx, clinic.Patient{
			ID:      s.opts.startID + i,
			Name:    gofakeit.Name(),
			Gender:  gofakeit.RandomString([]string{"M", "F"}),
			Age:     gofakeit.Number(1, 95),
			Address: gofakeit.Street() + ", " + gofakeit.City(),
		})
		if err != nil {
			s.logger.Warn().Err(err).Msg("skipping patient")
			continue
		}
		added++
	}
	s.logger.Info().Int("added", added).Int("requested", s.opts.patients).Msg("patients seeded")
}

func (s seeder) appointments(ctx context.Context) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	added := 0
	for i := 0; i < s.opts.appointments; i++ {
		offset := gofakeit.Number(-30, 60)
		status := clinic.StatusAvailable
		if offset < 0 {
			status = clinic.StatusPast
		}
		err := s.svc.AddAppointment(ctx, clinic.Appointment{
			ID:       s.opts.startID + i,
			Date:     today.AddDate(0, 0, offset),
			TimeSlot: gofakeit.RandomString(timeSlots),
			Status:   status,
		})
		if err != nil {
			s.logger.Warn().Err(err).Msg("skipping appointment")
			continue
		}
		added++
	}
	s.logger.Info().Int("added", added).Int("requested", s.opts.appointments).Msg("appointments seeded")
}

// bookings drives the real booking workflow so links, counts and statuses
// stay consistent with each other.
func (s seeder) bookings(ctx context.Context) {
	if s.opts.doctors == 0 || s.opts.patients == 0 || s.opts.appointments == 0 {
		return
	}

	tally := map[clinic.OutcomeKind]int{}
	for i := 0; i < s.opts.bookings; i++ {
		out, err := s.svc.Book(ctx, clinic.BookingRequest{
			Patient:     clinic.Patient{ID: s.opts.startID + gofakeit.Number(0, s.opts.patients-1)},
			Doctor:      clinic.Doctor{ID: s.opts.startID + gofakeit.Number(0, s.opts.doctors-1)},
			Appointment: clinic.Appointment{ID: s.opts.startID + gofakeit.Number(0, s.opts.appointments-1), Date: time.Now().UTC().Truncate(24 * time.Hour), TimeSlot: timeSlots[0], Status: clinic.StatusAvailable},
		})
		if err != nil {
			s.logger.Warn().Err(err).Msg("booking failed")
			continue
		}
		tally[out.Kind]++
	}

	evt := s.logger.Info()
	for kind, n := range tally {
		evt = evt.Int(kind.String(), n)
	}
	evt.Msg("bookings seeded")
}
