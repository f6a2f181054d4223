package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/clinic"
)

type fakeService struct {
	doctors      []clinic.Doctor
	patients     []clinic.Patient
	appointments []clinic.Appointment
	bookings     []clinic.BookingRequest

	outcome clinic.Outcome
	err     error

	rows []clinic.DoctorRankRow
}

func (f *fakeService) Book(_ context.Context, req clinic.BookingRequest) (clinic.Outcome, error) {
	f.bookings = append(f.bookings, req)
	return f.outcome, f.err
}

func (f *fakeService) RankByDoctor(context.Context) ([]clinic.DoctorRankRow, error) {
	return f.rows, f.err
}

func (f *fakeService) AddDoctor(_ context.Context, d clinic.Doctor) error {
	f.doctors = append(f.doctors, d)
	return f.err
}

func (f *fakeService) AddPatient(_ context.Context, p clinic.Patient) error {
	f.patients = append(f.patients, p)
	return f.err
}

func (f *fakeService) AddAppointment(_ context.Context, a clinic.Appointment) error {
	f.appointments = append(f.appointments, a)
	return f.err
}

func (f *fakeService) ListDoctorAppointments(context.Context, int, time.Time, time.Time) ([]clinic.AppointmentSummary, error) {
	return []clinic.AppointmentSummary{{AppointmentID: 11, Status: "AC"}}, f.err
}

func (f *fakeService) ListAvailableByDepartment(context.Context, string, time.Time) ([]clinic.AvailableSlot, error) {
	return []clinic.AvailableSlot{{AppointmentID: 14, TimeSlot: "9:00-10:00"}}, f.err
}

func (f *fakeService) CountPatientsByStatus(_ context.Context, s clinic.Status) ([]clinic.DoctorPatientCount, error) {
	return []clinic.DoctorPatientCount{{DoctorID: 1, DoctorName: "Dr. Grey", Patients: 3}}, f.err
}

func runMenu(t *testing.T, svc Service, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	err := NewMenu(svc, NewConsole(in, &out), zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)
	return out.String()
}

func TestMenu_AddDoctorRetriesInvalidInput(t *testing.T) {
	svc := &fakeService{}
	out := runMenu(t, svc, "1", "abc", "-3", "12", "Dr. Grey", "Cardiology", "2", "9")

	require.Len(t, svc.doctors, 1)
	assert.Equal(t, clinic.Doctor{ID: 12, Name: "Dr. Grey", Specialty: "Cardiology", DepartmentID: 2}, svc.doctors[0])
	assert.Equal(t, 2, strings.Count(out, "Your input is invalid!"))
	assert.Contains(t, out, "Doctor added.")
	assert.Contains(t, out, "Bye !")
}

func TestMenu_AddAppointmentStoreFailure(t *testing.T) {
	svc := &fakeService{err: &clinic.PersistenceError{Op: "insert appointment", Err: errors.New("duplicate key")}}
	out := runMenu(t, svc, "3", "5", "2024-13-01", "2024-03-14", "9:00-10:00", "xx", "av", "9")

	require.Len(t, svc.appointments, 1)
	a := svc.appointments[0]
	assert.Equal(t, clinic.StatusAvailable, a.Status)
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), a.Date)
	assert.Contains(t, out, "Table update error! Please double check values!")
	assert.NotContains(t, out, "Appointment added.")
}

func TestMenu_MakeAppointment(t *testing.T) {
	svc := &fakeService{outcome: clinic.Outcome{
		Kind:                clinic.OutcomeBooked,
		AppointmentID:       100,
		Previous:            "AV",
		Current:             clinic.StatusActive,
		PatientResolution:   clinic.Created,
		DoctorResolution:    clinic.Found,
		AppointmentWasFound: true,
	}}
	out := runMenu(t, svc,
		"4",
		"7", "Ann", "F", "41", "12 Elm St", "0",
		"1", "Dr. Grey", "Cardiology", "2",
		"100", "2024-03-14", "9:00-10:00", "AV",
		"9",
	)

	require.Len(t, svc.bookings, 1)
	assert.Equal(t, 7, svc.bookings[0].Patient.ID)
	assert.Equal(t, 1, svc.bookings[0].Doctor.ID)
	assert.Equal(t, 100, svc.bookings[0].Appointment.ID)

	assert.Contains(t, out, "Patient added.")
	assert.Contains(t, out, "Doctor found.")
	assert.Contains(t, out, "Appointment found.")
	assert.Contains(t, out, "Appointment booked. Thank you.")
}

func TestMenu_MakeAppointmentUnknownStatus(t *testing.T) {
	svc := &fakeService{outcome: clinic.Outcome{
		Kind:              clinic.OutcomeUnrecognizedStatus,
		Previous:          "ZZ",
		PatientResolution: clinic.Found,
		DoctorResolution:  clinic.Found,
	}}
	out := runMenu(t, svc,
		"4",
		"7", "Ann", "F", "41", "12 Elm St", "0",
		"1", "Dr. Grey", "Cardiology", "2",
		"100", "2024-03-14", "9:00-10:00", "AV",
		"9",
	)

	assert.Contains(t, out, "Unknown Appointment Status.\nZZ\n")
}

func TestMenu_MakeAppointmentFailure(t *testing.T) {
	svc := &fakeService{err: &clinic.PersistenceError{Op: "insert doctor appointment link", Err: errors.New("conn reset")}}
	out := runMenu(t, svc,
		"4",
		"7", "Ann", "F", "41", "12 Elm St", "0",
		"1", "Dr. Grey", "Cardiology", "2",
		"100", "2024-03-14", "9:00-10:00", "AV",
		"9",
	)

	assert.Contains(t, out, "Table update error! Please double check values!")
	assert.NotContains(t, out, "Thank you")
	// the menu is shown again after the failure
	assert.Equal(t, 2, strings.Count(out, "MAIN MENU"))
}

func TestMenu_MakeAppointmentLookupAndInsertFailed(t *testing.T) {
	// per-step mode: the status lookup and the insert both failed, so the
	// typed status drove the transition and nothing was found or added
	svc := &fakeService{
		outcome: clinic.Outcome{
			Kind:              clinic.OutcomeBooked,
			AppointmentID:     100,
			Previous:          "AV",
			Current:           clinic.StatusActive,
			PatientResolution: clinic.Found,
			DoctorResolution:  clinic.Found,
		},
		err: &clinic.PersistenceError{Op: "update appointment status", Err: errors.New("conn reset")},
	}
	out := runMenu(t, svc,
		"4",
		"7", "Ann", "F", "41", "12 Elm St", "0",
		"1", "Dr. Grey", "Cardiology", "2",
		"100", "2024-03-14", "9:00-10:00", "AV",
		"9",
	)

	assert.Contains(t, out, "Patient found.")
	assert.NotContains(t, out, "Appointment found.")
	assert.NotContains(t, out, "Appointment added.")
	assert.Contains(t, out, "Table update error! Please double check values!")
}

func TestMenu_Reports(t *testing.T) {
	svc := &fakeService{rows: []clinic.DoctorRankRow{{
		DoctorID: 3,
		Counts: [4]clinic.StatusCount{
			{Status: clinic.StatusWaitlisted, Count: 2},
			{Status: clinic.StatusActive, Count: 1},
			{Status: clinic.StatusAvailable, Count: 0},
			{Status: clinic.StatusPast, Count: 0},
		},
	}}}
	out := runMenu(t, svc,
		"5", "1", "2024-03-01", "2024-03-31",
		"6", "Cardiology", "2024-03-14",
		"7",
		"8", "ac",
		"9",
	)

	assert.Contains(t, out, "9:00-10:00")
	assert.Contains(t, out, "2 WL")
	assert.Contains(t, out, "Dr. Grey")
}

func TestMenu_EndOfInputExits(t *testing.T) {
	svc := &fakeService{}
	var out bytes.Buffer
	err := NewMenu(svc, NewConsole(strings.NewReader("1\n5\nDr"), &out), zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, svc.doctors)
}

func TestMenu_InvalidChoice(t *testing.T) {
	out := runMenu(t, &fakeService{}, "0", "10", "x", "9")
	assert.Equal(t, 3, strings.Count(out, "Your input is invalid!"))
}
