package clinic

import (
	"context"
	"time"
)

// Repository contains all DB interactions needed by the clinic services.
type Repository interface {
	// Identity lookups; Get* return ErrPatientNotFound / ErrDoctorNotFound.
	PatientExists(ctx context.Context, id int) (bool, error)
	GetPatientByID(ctx context.Context, id int) (*Patient, error)
	InsertPatient(ctx context.Context, p Patient) error
	DoctorExists(ctx context.Context, id int) (bool, error)
	GetDoctorByID(ctx context.Context, id int) (*Doctor, error)
	InsertDoctor(ctx context.Context, d Doctor) error

	// GetAppointmentStatus returns the stored status verbatim, it may be
	// outside the known set. Returns ErrAppointmentNotFound.
	GetAppointmentStatus(ctx context.Context, id int) (string, error)
	InsertAppointment(ctx context.Context, a Appointment) error
	UpdateAppointmentStatus(ctx context.Context, id int, to Status) error

	// Booking side effects
	InsertDoctorAppointment(ctx context.Context, link DoctorAppointmentLink) error
	IncrementPatientAppointments(ctx context.Context, patientID int) error

	// Reporting
	ListDoctorIDs(ctx context.Context) ([]int, error)
	CountAppointmentsByStatus(ctx context.Context, status Status) (map[int]int, error)
	ListDoctorAppointments(ctx context.Context, doctorID int, from, to time.Time) ([]AppointmentSummary, error)
	ListAvailableByDepartment(ctx context.Context, department string, date time.Time) ([]AvailableSlot, error)
	CountPatientsByStatus(ctx context.Context, status Status) ([]DoctorPatientCount, error)

	// WithinTx runs fn against a repository bound to one transaction.
	WithinTx(ctx context.Context, fn func(tx Repository) error) error
}
