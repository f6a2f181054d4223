package cli

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/clinic"
)

// Service is what the menu drives; *clinic.Service implements it.
type Service interface {
	Book(ctx context.Context, req clinic.BookingRequest) (clinic.Outcome, error)
	RankByDoctor(ctx context.Context) ([]clinic.DoctorRankRow, error)
	AddDoctor(ctx context.Context, d clinic.Doctor) error
	AddPatient(ctx context.Context, p clinic.Patient) error
	AddAppointment(ctx context.Context, a clinic.Appointment) error
	ListDoctorAppointments(ctx context.Context, doctorID int, from, to time.Time) ([]clinic.AppointmentSummary, error)
	ListAvailableByDepartment(ctx context.Context, department string, date time.Time) ([]clinic.AvailableSlot, error)
	CountPatientsByStatus(ctx context.Context, status clinic.Status) ([]clinic.DoctorPatientCount, error)
}

const (
	msgUpdateError = "Table update error! Please double check values!"
	msgSearchError = "Table Search Error! Please double check values!"
)

const menuText = `MAIN MENU
---------
1. Add Doctor
2. Add Patient
3. Add Appointment
4. Make an Appointment
5. List appointments of a given doctor
6. List all available appointments of a given department
7. List total number of different types of appointments per doctor in descending order
8. Find total number of patients per doctor with a given status
9. < EXIT`

type Menu struct {
	svc    Service
	con    *Console
	logger zerolog.Logger
}

func NewMenu(svc Service, con *Console, logger zerolog.Logger) *Menu {
	return &Menu{svc: svc, con: con, logger: logger.With().Str("component", "menu").Logger()}
}

// Run shows the menu until the operator exits or input ends. A failed
// operation prints a notice and returns to the menu.
func (m *Menu) Run(ctx context.Context) error {
	for {
		m.con.Println(menuText)
		choice, err := ask(m.con, "Please make your choice: ", ParseChoice(1, 9))
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if choice == 9 {
			m.con.Println("Bye !")
			return nil
		}

		if err := m.dispatch(ctx, choice); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (m *Menu) dispatch(ctx context.Context, choice int) error {
	switch choice {
	case 1:
		return m.addDoctor(ctx)
	case 2:
		return m.addPatient(ctx)
	case 3:
		return m.addAppointment(ctx)
	case 4:
		return m.makeAppointment(ctx)
	case 5:
		return m.listDoctorAppointments(ctx)
	case 6:
		return m.listAvailableByDepartment(ctx)
	case 7:
		return m.rankByDoctor(ctx)
	case 8:
		return m.patientsPerDoctor(ctx)
	}
	return nil
}

func (m *Menu) readDoctor() (clinic.Doctor, error) {
	var d clinic.Doctor
	var err error
	if d.ID, err = ask(m.con, "Input Doctor's ID:", ParseNonNegativeInt); err != nil {
		return d, err
	}
	if d.Name, err = ask(m.con, "Input Doctor's Name:", ParseText); err != nil {
		return d, err
	}
	if d.Specialty, err = ask(m.con, "Input Doctor's Specialty:", ParseText); err != nil {
		return d, err
	}
	d.DepartmentID, err = ask(m.con, "Input Doctor's Department ID:", ParseNonNegativeInt)
	return d, err
}

func (m *Menu) readPatient() (clinic.Patient, error) {
	var p clinic.Patient
	var err error
	if p.ID, err = ask(m.con, "Input Patient's ID:", ParseNonNegativeInt); err != nil {
		return p, err
	}
	if p.Name, err = ask(m.con, "Input Patient's name:", ParseText); err != nil {
		return p, err
	}
	if p.Gender, err = ask(m.con, "Input Patient's Gender (M, F):", ParseText); err != nil {
		return p, err
	}
	if p.Age, err = ask(m.con, "Input Patient's age:", ParseNonNegativeInt); err != nil {
		return p, err
	}
	if p.Address, err = ask(m.con, "Input Patient's address:", ParseText); err != nil {
		return p, err
	}
	p.AppointmentCount, err = ask(m.con, "Input Patient's Number of Previous Appointments:", ParseNonNegativeInt)
	return p, err
}

func (m *Menu) readAppointment() (clinic.Appointment, error) {
	var a clinic.Appointment
	var err error
	if a.ID, err = ask(m.con, "Input Appointment's ID:", ParseNonNegativeInt); err != nil {
		return a, err
	}
	if a.Date, err = ask(m.con, "Input Appointment's Date (YYYY-MM-DD):", ParseDate); err != nil {
		return a, err
	}
	if a.TimeSlot, err = ask(m.con, "Input Appointment's Timeslot (HH:MM-HH:MM):", ParseText); err != nil {
		return a, err
	}
	a.Status, err = ask(m.con, "Input Appointment's Status (PA, AC, AV, WL):", ParseStatus)
	return a, err
}

func (m *Menu) addDoctor(ctx context.Context) error {
	d, err := m.readDoctor()
	if err != nil {
		return err
	}
	if err := m.svc.AddDoctor(ctx, d); err != nil {
		m.failed(msgUpdateError, err)
		return nil
	}
	m.con.Println("Doctor added.")
	return nil
}

func (m *Menu) addPatient(ctx context.Context) error {
	p, err := m.readPatient()
	if err != nil {
		return err
	}
	if err := m.svc.AddPatient(ctx, p); err != nil {
		m.failed(msgUpdateError, err)
		return nil
	}
	m.con.Println("Patient added.")
	return nil
}

func (m *Menu) addAppointment(ctx context.Context) error {
	a, err := m.readAppointment()
	if err != nil {
		return err
	}
	if err := m.svc.AddAppointment(ctx, a); err != nil {
		m.failed(msgUpdateError, err)
		return nil
	}
	m.con.Println("Appointment added.")
	return nil
}

func (m *Menu) makeAppointment(ctx context.Context) error {
	p, err := m.readPatient()
	if err != nil {
		return err
	}
	d, err := m.readDoctor()
	if err != nil {
		return err
	}
	a, err := m.readAppointment()
	if err != nil {
		return err
	}

	out, err := m.svc.Book(ctx, clinic.BookingRequest{Patient: p, Doctor: d, Appointment: a})
	if errors.Is(err, clinic.ErrAppointmentBeingBooked) {
		m.con.Println("Appointment is being booked by someone else. Please try again.")
		return nil
	}
	if out.Kind == 0 {
		// nothing was kept
		m.failed(msgUpdateError, err)
		return nil
	}

	m.printResolution("Patient", out.PatientResolution)
	m.printResolution("Doctor", out.DoctorResolution)
	if out.AppointmentWasCreated {
		m.con.Println("Appointment added.")
	} else if out.AppointmentWasFound {
		m.con.Println("Appointment found.")
	}

	if err != nil {
		m.failed(msgUpdateError, err)
		return nil
	}
	m.con.Println(out.Message())
	if out.Kind == clinic.OutcomeUnrecognizedStatus {
		m.con.Println(out.Previous)
	}
	return nil
}

func (m *Menu) printResolution(what string, r clinic.Resolution) {
	switch r {
	case clinic.Found:
		m.con.Println(what + " found.")
	case clinic.Created:
		m.con.Println(what + " added.")
	}
}

func (m *Menu) listDoctorAppointments(ctx context.Context) error {
	id, err := ask(m.con, "Input Doctor's ID:", ParseNonNegativeInt)
	if err != nil {
		return err
	}
	from, err := ask(m.con, "Starting from what date? (YYYY-MM-DD):", ParseDate)
	if err != nil {
		return err
	}
	to, err := ask(m.con, "Ending on what date? (YYYY-MM-DD):", ParseDate)
	if err != nil {
		return err
	}

	list, err := m.svc.ListDoctorAppointments(ctx, id, from, to)
	if err != nil {
		m.failed(msgSearchError, err)
		return nil
	}
	renderAppointments(m.con.Writer(), list)
	return nil
}

func (m *Menu) listAvailableByDepartment(ctx context.Context) error {
	name, err := ask(m.con, "Input Department's Name:", ParseText)
	if err != nil {
		return err
	}
	date, err := ask(m.con, "Input date of appointments (YYYY-MM-DD):", ParseDate)
	if err != nil {
		return err
	}

	list, err := m.svc.ListAvailableByDepartment(ctx, name, date)
	if err != nil {
		m.failed(msgSearchError, err)
		return nil
	}
	renderAvailable(m.con.Writer(), list)
	return nil
}

func (m *Menu) rankByDoctor(ctx context.Context) error {
	rows, err := m.svc.RankByDoctor(ctx)
	if err != nil {
		m.failed("Table Search Error!!", err)
		return nil
	}
	RenderRanking(m.con.Writer(), rows)
	return nil
}

func (m *Menu) patientsPerDoctor(ctx context.Context) error {
	status, err := ask(m.con, "Input Appointment's Status (PA, AC, AV, WL):", ParseStatus)
	if err != nil {
		return err
	}

	list, err := m.svc.CountPatientsByStatus(ctx, status)
	if err != nil {
		m.failed(msgSearchError, err)
		return nil
	}
	renderPatientCounts(m.con.Writer(), list)
	return nil
}

func (m *Menu) failed(notice string, err error) {
	m.logger.Warn().Err(err).Msg("operation failed")
	m.con.Println(notice)
}
