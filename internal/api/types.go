package api

import (
	"time"

	"github.com/hackgods/clinic-scheduling/internal/clinic"
)

const dateLayout = time.DateOnly

type DoctorRequest struct {
	ID           int    `json:"doctor_id"`
	Name         string `json:"name"`
	Specialty    string `json:"specialty"`
	DepartmentID int    `json:"did"`
}

func (r DoctorRequest) toDomain() clinic.Doctor {
	return clinic.Doctor{ID: r.ID, Name: r.Name, Specialty: r.Specialty, DepartmentID: r.DepartmentID}
}

type PatientRequest struct {
	ID               int    `json:"patient_id"`
	Name             string `json:"name"`
	Gender           string `json:"gtype"`
	Age              int    `json:"age"`
	Address          string `json:"address"`
	AppointmentCount int    `json:"number_of_appts"`
}

func (r PatientRequest) toDomain() clinic.Patient {
	return clinic.Patient{
		ID:               r.ID,
		Name:             r.Name,
		Gender:           r.Gender,
		Age:              r.Age,
		Address:          r.Address,
		AppointmentCount: r.AppointmentCount,
	}
}

type AppointmentRequest struct {
	ID       int    `json:"appnt_id"`
	Date     string `json:"adate"` // YYYY-MM-DD
	TimeSlot string `json:"time_slot"`
	Status   string `json:"status"`
}

func (r AppointmentRequest) toDomain() (clinic.Appointment, error) {
	date, err := parseDate("adate", r.Date)
	if err != nil {
		return clinic.Appointment{}, err
	}
	status, err := clinic.ParseStatus(r.Status)
	if err != nil {
		return clinic.Appointment{}, err
	}
	return clinic.Appointment{ID: r.ID, Date: date, TimeSlot: r.TimeSlot, Status: status}, nil
}

type BookingRequest struct {
	Patient     PatientRequest     `json:"patient"`
	Doctor      DoctorRequest      `json:"doctor"`
	Appointment AppointmentRequest `json:"appointment"`
}

type BookingResponse struct {
	Outcome               string `json:"outcome"`
	Message               string `json:"message"`
	AppointmentID         int    `json:"appnt_id"`
	Reason                string `json:"reason,omitempty"`
	PreviousStatus        string `json:"previous_status"`
	CurrentStatus         string `json:"current_status,omitempty"`
	Patient               string `json:"patient"`
	Doctor                string `json:"doctor"`
	AppointmentWasFound   bool   `json:"appointment_found"`
	AppointmentWasCreated bool   `json:"appointment_created"`
}

func newBookingResponse(o clinic.Outcome) BookingResponse {
	return BookingResponse{
		Outcome:               o.Kind.String(),
		Message:               o.Message(),
		AppointmentID:         o.AppointmentID,
		Reason:                o.Reason,
		PreviousStatus:        o.Previous,
		CurrentStatus:         string(o.Current),
		Patient:               o.PatientResolution.String(),
		Doctor:                o.DoctorResolution.String(),
		AppointmentWasFound:   o.AppointmentWasFound,
		AppointmentWasCreated: o.AppointmentWasCreated,
	}
}

type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type RankRowResponse struct {
	DoctorID int                   `json:"doctor_id"`
	Dominant string                `json:"dominant_status"`
	Counts   []StatusCountResponse `json:"counts"`
}

type AppointmentSummaryResponse struct {
	AppointmentID int    `json:"appnt_id"`
	Status        string `json:"status"`
}

type AvailableSlotResponse struct {
	AppointmentID int    `json:"appnt_id"`
	TimeSlot      string `json:"time_slot"`
}

type DoctorPatientCountResponse struct {
	DoctorID int    `json:"doctor_id"`
	Name     string `json:"name"`
	Patients int    `json:"total_patients"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	// Booking is what a per-step booking kept before it failed.
	Booking *BookingResponse `json:"booking,omitempty"`
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, &clinic.ValidationError{Field: field, Value: raw, Reason: "must be YYYY-MM-DD"}
	}
	return t, nil
}
