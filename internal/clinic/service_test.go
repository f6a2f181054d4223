package clinic

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(repo Repository) *Service {
	return NewService(repo, nil, Options{Atomic: true}, zerolog.Nop())
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"pa", " AC ", "Av", "WL"} {
		s, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.True(t, s.Valid())
	}

	_, err := ParseStatus("XX")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), `"XX"`)
}

func TestAppointmentValidate(t *testing.T) {
	ok := Appointment{ID: 1, Date: day, TimeSlot: "9:00", Status: StatusAvailable}
	require.NoError(t, ok.Validate())

	noSlot := ok
	noSlot.TimeSlot = "  "
	assert.True(t, IsValidation(noSlot.Validate()))

	noDate := ok
	noDate.Date = time.Time{}
	assert.True(t, IsValidation(noDate.Validate()))

	badStatus := ok
	badStatus.Status = "QQ"
	assert.True(t, IsValidation(badStatus.Validate()))
}

func TestOutcomeMessages(t *testing.T) {
	assert.Equal(t, "Appointment already booked. Added to waitlist.", Outcome{Kind: OutcomeWaitlisted}.Message())
	assert.Equal(t, "Appointment currently waitlisted. Added to waitlist.", Outcome{Kind: OutcomeAlreadyWaitlisted}.Message())
	assert.Equal(t, "already_waitlisted", OutcomeAlreadyWaitlisted.String())
	assert.False(t, Outcome{Kind: OutcomeRejected}.Linked())
}

func TestService_AddRecords(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.AddDoctor(ctx, Doctor{ID: 1, Name: "Dr. Grey", Specialty: "Cardiology", DepartmentID: 2}))
	require.NoError(t, svc.AddPatient(ctx, Patient{ID: 4, Name: "Ann", Age: 30}))
	require.NoError(t, svc.AddAppointment(ctx, Appointment{ID: 9, Date: day, TimeSlot: "8:00-9:00", Status: StatusAvailable}))

	assert.Equal(t, "Dr. Grey", repo.doctors[1].Name)
	assert.Equal(t, "Ann", repo.patients[4].Name)
	assert.Equal(t, StatusAvailable, repo.appointments[9].Status)

	err := svc.AddDoctor(ctx, Doctor{ID: 1})
	require.Error(t, err)
	assert.True(t, IsPersistence(err))

	err = svc.AddPatient(ctx, Patient{ID: 5, Age: -2})
	assert.True(t, IsValidation(err))
	assert.NotContains(t, repo.patients, 5)
}

func TestService_ListDoctorAppointments(t *testing.T) {
	repo := linkedRepo()
	repo.appointments[12] = Appointment{ID: 12, Date: day.AddDate(0, 0, 10), TimeSlot: "9:00", Status: StatusActive}
	svc := newTestService(repo)

	got, err := svc.ListDoctorAppointments(context.Background(), 1, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.ElementsMatch(t, []AppointmentSummary{
		{AppointmentID: 13, Status: "AC"},
		{AppointmentID: 14, Status: "AV"},
	}, got)

	_, err = svc.ListDoctorAppointments(context.Background(), 1, day, day.AddDate(0, 0, -1))
	assert.True(t, IsValidation(err))
}

func TestService_ListAvailableByDepartment(t *testing.T) {
	repo := linkedRepo()
	repo.departments[2] = "Cardiology"
	repo.doctors[1] = Doctor{ID: 1, Name: "A", DepartmentID: 2}
	svc := newTestService(repo)

	got, err := svc.ListAvailableByDepartment(context.Background(), " Cardiology ", day)
	require.NoError(t, err)
	assert.Equal(t, []AvailableSlot{{AppointmentID: 14, TimeSlot: "9:00"}}, got)

	_, err = svc.ListAvailableByDepartment(context.Background(), "", day)
	assert.True(t, IsValidation(err))
}

func TestService_CountPatientsByStatus(t *testing.T) {
	svc := newTestService(linkedRepo())

	got, err := svc.CountPatientsByStatus(context.Background(), StatusActive)
	require.NoError(t, err)
	assert.Equal(t, []DoctorPatientCount{
		{DoctorID: 1, DoctorName: "A", Patients: 2},
		{DoctorID: 3, DoctorName: "C", Patients: 1},
	}, got)

	_, err = svc.CountPatientsByStatus(context.Background(), Status("??"))
	assert.True(t, IsValidation(err))
}

func TestService_BookAndRank(t *testing.T) {
	repo := seededRepo(StatusAvailable)
	svc := newTestService(repo)

	out, err := svc.Book(context.Background(), request(7, 1, 100))
	require.NoError(t, err)
	assert.Equal(t, OutcomeBooked, out.Kind)

	rows, err := svc.RankByDoctor(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, StatusActive, rows[0].Dominant())
	assert.Equal(t, 1, rows[0].Counts[0].Count)
}
