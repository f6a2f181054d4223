package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-scheduling/internal/cli"
	"github.com/hackgods/clinic-scheduling/internal/clinic"
	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/db"
	"github.com/hackgods/clinic-scheduling/internal/logging"
	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic",
		Short: "Clinic scheduling operator tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd.Context())
		},
	}

	rootCmd.AddCommand(menuCmd())
	rootCmd.AddCommand(bookCmd())
	rootCmd.AddCommand(reportCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app holds everything a subcommand needs.
type app struct {
	svc    *clinic.Service
	logger zerolog.Logger
	pool   *pgxpool.Pool
	rdb    *redis.Client
}

func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	a.pool.Close()
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config load error: %w", err)
	}

	logger := logging.New("clinic", cfg.Env, cfg.LogLevel)

	pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		logger.Error().Err(err).Msg("postgres connection error")
		return nil, err
	}

	a := &app{logger: logger, pool: pool}

	var locker redisclient.Locker = redisclient.NopLocker{}
	if cfg.LockingEnabled() {
		rdb, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			pool.Close()
			logger.Error().Err(err).Msg("redis connection error")
			return nil, err
		}
		a.rdb = rdb
		locker = redisclient.NewRedisAppointmentLocker(rdb, cfg.LockTTL)
	}

	repo := clinic.NewPgRepository(db.NewRecordStore(pool))
	a.svc = clinic.NewService(repo, locker, clinic.Options{
		Atomic:      cfg.BookingAtomic,
		FillIDRange: cfg.ReportFillIDRange,
	}, logger)

	logger.Debug().
		Bool("booking_atomic", cfg.BookingAtomic).
		Bool("locking", cfg.LockingEnabled()).
		Msg("clinic ready")

	return a, nil
}

func menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Run the interactive operator menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd.Context())
		},
	}
}

func runMenu(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	con := cli.NewConsole(os.Stdin, os.Stdout)
	return cli.NewMenu(a.svc, con, a.logger).Run(ctx)
}

func bookCmd() *cobra.Command {
	var (
		patient clinic.Patient
		doctor  clinic.Doctor
		appt    clinic.Appointment
		date    string
		status  string
	)

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a patient into a doctor's appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := cli.ParseDate(date)
			if err != nil {
				return errors.New("--date must be YYYY-MM-DD")
			}
			s, err := cli.ParseStatus(status)
			if err != nil {
				return err
			}
			appt.Date, appt.Status = d, s

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.svc.Book(cmd.Context(), clinic.BookingRequest{Patient: patient, Doctor: doctor, Appointment: appt})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Message())
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&patient.ID, "patient-id", 0, "patient id")
	f.StringVar(&patient.Name, "patient-name", "", "patient name, used when the patient is new")
	f.StringVar(&patient.Gender, "gender", "", "patient gender (M, F)")
	f.IntVar(&patient.Age, "age", 0, "patient age")
	f.StringVar(&patient.Address, "address", "", "patient address")
	f.IntVar(&patient.AppointmentCount, "previous-appointments", 0, "patient's previous appointment count")
	f.IntVar(&doctor.ID, "doctor-id", 0, "doctor id")
	f.StringVar(&doctor.Name, "doctor-name", "", "doctor name, used when the doctor is new")
	f.StringVar(&doctor.Specialty, "specialty", "", "doctor specialty")
	f.IntVar(&doctor.DepartmentID, "department-id", 0, "doctor department id")
	f.IntVar(&appt.ID, "appointment-id", 0, "appointment id")
	f.StringVar(&date, "date", "", "appointment date (YYYY-MM-DD)")
	f.StringVar(&appt.TimeSlot, "time-slot", "", "appointment time slot (HH:MM-HH:MM)")
	f.StringVar(&status, "status", "AV", "status used when the appointment is new (PA, AC, AV, WL)")

	for _, name := range []string{"patient-id", "doctor-id", "appointment-id", "date", "time-slot"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print appointment status counts per doctor, dominant status first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.svc.RankByDoctor(cmd.Context())
			if err != nil {
				return err
			}
			cli.RenderRanking(cmd.OutOrStdout(), rows)
			return nil
		},
	}
}
