package clinic

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
)

// BookingRequest carries the operator's candidate records. Patient and
// Doctor are inserted verbatim when missing; Appointment is inserted when
// its id is unknown and its Status then counts as the current status.
type BookingRequest struct {
	Patient     Patient
	Doctor      Doctor
	Appointment Appointment
}

func (r BookingRequest) Validate() error {
	if err := r.Patient.Validate(); err != nil {
		return err
	}
	if err := r.Doctor.Validate(); err != nil {
		return err
	}
	return r.Appointment.Validate()
}

// BookingEngine applies the appointment status machine:
//
//	PA -> rejected, nothing written
//	AV -> AC, link + patient count
//	AC -> WL, link + patient count
//	WL -> WL, link + patient count
//
// Any other stored value is reported and left untouched.
type BookingEngine struct {
	repo   Repository
	locker redisclient.Locker
	atomic bool
	logger zerolog.Logger
}

// NewBookingEngine builds an engine. With atomic set the whole booking runs
// in one transaction and the first store failure rolls it back. Without it
// every statement commits on its own and failures before the transition are
// logged and skipped.
func NewBookingEngine(repo Repository, locker redisclient.Locker, atomic bool, logger zerolog.Logger) *BookingEngine {
	if locker == nil {
		locker = redisclient.NopLocker{}
	}
	return &BookingEngine{
		repo:   repo,
		locker: locker,
		atomic: atomic,
		logger: logger.With().Str("component", "booking").Logger(),
	}
}

func (e *BookingEngine) Book(ctx context.Context, req BookingRequest) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	err := e.locker.WithAppointmentLock(ctx, req.Appointment.ID, func(lockCtx context.Context) error {
		if !e.atomic {
			var err error
			out, err = e.run(lockCtx, e.repo, req)
			return err
		}
		return e.repo.WithinTx(lockCtx, func(tx Repository) error {
			var err error
			out, err = e.run(lockCtx, tx, req)
			return err
		})
	})

	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return Outcome{}, ErrAppointmentBeingBooked
	}
	if err != nil && e.atomic {
		// rolled back, nothing from out was kept
		return Outcome{}, err
	}

	e.logger.Info().
		Int("appointment_id", req.Appointment.ID).
		Int("patient_id", req.Patient.ID).
		Int("doctor_id", req.Doctor.ID).
		Str("outcome", out.Kind.String()).
		Str("previous", out.Previous).
		Err(err).
		Msg("booking processed")

	return out, err
}

func (e *BookingEngine) run(ctx context.Context, repo Repository, req BookingRequest) (Outcome, error) {
	resolver := NewIdentityResolver(repo)
	out := Outcome{AppointmentID: req.Appointment.ID}

	_, res, err := resolver.ResolvePatient(ctx, req.Patient)
	if err != nil {
		if e.atomic {
			return out, err
		}
		e.stepFailed("resolve patient", err)
	}
	out.PatientResolution = res

	_, res, err = resolver.ResolveDoctor(ctx, req.Doctor)
	if err != nil {
		if e.atomic {
			return out, err
		}
		e.stepFailed("resolve doctor", err)
	}
	out.DoctorResolution = res

	current, err := repo.GetAppointmentStatus(ctx, req.Appointment.ID)
	if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
		if e.atomic {
			return out, persistence("load appointment status", err)
		}
		// a failed lookup counts as not found
		e.stepFailed("load appointment status", err)
	}
	if err == nil {
		out.AppointmentWasFound = true
	} else {
		if insErr := repo.InsertAppointment(ctx, req.Appointment); insErr != nil {
			if e.atomic {
				return out, persistence("insert appointment", insErr)
			}
			e.stepFailed("insert appointment", insErr)
		} else {
			out.AppointmentWasCreated = true
		}
		current = string(req.Appointment.Status)
	}
	out.Previous = current

	link := DoctorAppointmentLink{AppointmentID: req.Appointment.ID, DoctorID: req.Doctor.ID}

	switch Status(strings.TrimSpace(current)) {
	case StatusPast:
		out.Kind = OutcomeRejected
		out.Reason = RejectReasonConcluded
		out.Current = StatusPast
		return out, nil
	case StatusActive:
		out.Kind = OutcomeWaitlisted
		out.Current = StatusWaitlisted
		return out, e.claim(ctx, repo, link, req.Patient.ID, StatusWaitlisted)
	case StatusAvailable:
		out.Kind = OutcomeBooked
		out.Current = StatusActive
		return out, e.claim(ctx, repo, link, req.Patient.ID, StatusActive)
	case StatusWaitlisted:
		out.Kind = OutcomeAlreadyWaitlisted
		out.Current = StatusWaitlisted
		return out, e.claim(ctx, repo, link, req.Patient.ID, "")
	default:
		out.Kind = OutcomeUnrecognizedStatus
		e.logger.Warn().
			Int("appointment_id", req.Appointment.ID).
			Str("status", current).
			Msg("unknown appointment status")
		return out, nil
	}
}

// claim moves the appointment to `to` (skipped when empty), records the
// doctor link and bumps the patient's count. It stops at the first failure.
func (e *BookingEngine) claim(ctx context.Context, repo Repository, link DoctorAppointmentLink, patientID int, to Status) error {
	if to != "" {
		if err := repo.UpdateAppointmentStatus(ctx, link.AppointmentID, to); err != nil {
			return e.transitionFailed("update appointment status", err)
		}
	}
	if err := repo.InsertDoctorAppointment(ctx, link); err != nil {
		return e.transitionFailed("insert doctor appointment link", err)
	}
	if err := repo.IncrementPatientAppointments(ctx, patientID); err != nil {
		return e.transitionFailed("increment patient appointments", err)
	}
	return nil
}

func (e *BookingEngine) transitionFailed(op string, err error) error {
	err = persistence(op, err)
	if !e.atomic {
		e.stepFailed(op, err)
	}
	return err
}

func (e *BookingEngine) stepFailed(op string, err error) {
	e.logger.Warn().Str("op", op).Err(err).Msg("table update error, continuing")
}
