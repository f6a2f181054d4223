package clinic

import (
	"strings"
	"time"
)

// Status is the two letter appointment status stored in the appointment table.
type Status string

const (
	StatusPast       Status = "PA"
	StatusActive     Status = "AC"
	StatusAvailable  Status = "AV"
	StatusWaitlisted Status = "WL"
)

// Statuses lists every status in counting order. Report columns and
// tie-breaking follow this order.
var Statuses = [4]Status{StatusPast, StatusActive, StatusAvailable, StatusWaitlisted}

// ParseStatus accepts one of PA, AC, AV, WL in any case.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", &ValidationError{Field: "status", Value: raw, Reason: "must be one of PA, AC, AV, WL"}
	}
	return s, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPast, StatusActive, StatusAvailable, StatusWaitlisted:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusPast:
		return "past"
	case StatusActive:
		return "active"
	case StatusAvailable:
		return "available"
	case StatusWaitlisted:
		return "waitlisted"
	}
	return "unknown"
}

type Doctor struct {
	ID           int
	Name         string
	Specialty    string
	DepartmentID int
}

type Patient struct {
	ID               int
	Name             string
	Gender           string
	Age              int
	Address          string
	AppointmentCount int
}

type Appointment struct {
	ID       int
	Date     time.Time
	TimeSlot string
	Status   Status
}

// DoctorAppointmentLink is one row of has_appointment. Rows are only ever
// appended.
type DoctorAppointmentLink struct {
	AppointmentID int
	DoctorID      int
}

// AppointmentSummary is a row of the per-doctor appointment listing.
type AppointmentSummary struct {
	AppointmentID int
	Status        string
}

// AvailableSlot is a row of the per-department availability listing.
type AvailableSlot struct {
	AppointmentID int
	TimeSlot      string
}

// DoctorPatientCount is a row of the patients-per-doctor listing.
type DoctorPatientCount struct {
	DoctorID   int
	DoctorName string
	Patients   int
}

func (d Doctor) Validate() error {
	if d.ID < 0 {
		return &ValidationError{Field: "doctor_id", Value: itoa(d.ID), Reason: "must not be negative"}
	}
	return nil
}

func (p Patient) Validate() error {
	if p.ID < 0 {
		return &ValidationError{Field: "patient_id", Value: itoa(p.ID), Reason: "must not be negative"}
	}
	if p.Age < 0 {
		return &ValidationError{Field: "age", Value: itoa(p.Age), Reason: "must not be negative"}
	}
	if p.AppointmentCount < 0 {
		return &ValidationError{Field: "number_of_appts", Value: itoa(p.AppointmentCount), Reason: "must not be negative"}
	}
	return nil
}

func (a Appointment) Validate() error {
	if a.ID < 0 {
		return &ValidationError{Field: "appnt_id", Value: itoa(a.ID), Reason: "must not be negative"}
	}
	if a.Date.IsZero() {
		return &ValidationError{Field: "adate", Reason: "is required"}
	}
	if strings.TrimSpace(a.TimeSlot) == "" {
		return &ValidationError{Field: "time_slot", Reason: "is required"}
	}
	if !a.Status.Valid() {
		return &ValidationError{Field: "status", Value: string(a.Status), Reason: "must be one of PA, AC, AV, WL"}
	}
	return nil
}
