package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-scheduling/internal/clinic"
)

func createDoctorHandler(svc ClinicService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if err := svc.AddDoctor(r.Context(), req.toDomain()); err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, req)
	}
}

func createPatientHandler(svc ClinicService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if err := svc.AddPatient(r.Context(), req.toDomain()); err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, req)
	}
}

func createAppointmentHandler(svc ClinicService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := req.toDomain()
		if err != nil {
			handleError(w, err)
			return
		}
		if err := svc.AddAppointment(r.Context(), appt); err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, req)
	}
}

func bookHandler(svc ClinicService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := req.Appointment.toDomain()
		if err != nil {
			handleError(w, err)
			return
		}

		out, err := svc.Book(r.Context(), clinic.BookingRequest{
			Patient:     req.Patient.toDomain(),
			Doctor:      req.Doctor.toDomain(),
			Appointment: appt,
		})
		if err != nil && out.Kind != 0 && clinic.IsPersistence(err) {
			// per-step mode kept part of the booking
			resp := newBookingResponse(out)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error:   "table_update_error",
				Details: "please double check values",
				Booking: &resp,
			})
			return
		}
		if err != nil {
			handleError(w, err)
			return
		}

		status := http.StatusOK
		if out.Kind == clinic.OutcomeRejected || out.Kind == clinic.OutcomeUnrecognizedStatus {
			status = http.StatusConflict
		}
		writeJSON(w, status, newBookingResponse(out))
	}
}

func statusRankingHandler(svc ClinicService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.RankByDoctor(r.Context())
		if err != nil {
			handleError(w, err)
			return
		}

		resp := make([]RankRowResponse, 0, len(rows))
		for _, row := range rows {
			counts := make([]StatusCountResponse, 0, len(row.Counts))
			for _, c := range row.Counts {
				counts = append(counts, StatusCountResponse{Status: string(c.Status), Count: c.Count})
			}
			resp = append(resp, RankRowResponse{
				DoctorID: row.DoctorID,
				Dominant: string(row.Dominant()),
				Counts:   counts,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func doctorAppointmentsHandler(svc ClinicService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be an integer")
			return
		}
		from, err := parseDate("from", r.URL.Query().Get("from"))
		if err != nil {
			handleError(w, err)
			return
		}
		to, err := parseDate("to", r.URL.Query().Get("to"))
		if err != nil {
			handleError(w, err)
			return
		}

		list, err := svc.ListDoctorAppointments(r.Context(), doctorID, from, to)
		if err != nil {
			handleError(w, err)
			return
		}

		resp := make([]AppointmentSummaryResponse, 0, len(list))
		for _, a := range list {
			resp = append(resp, AppointmentSummaryResponse{AppointmentID: a.AppointmentID, Status: strings.TrimSpace(a.Status)})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func availableByDepartmentHandler(svc ClinicService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := parseDate("date", r.URL.Query().Get("date"))
		if err != nil {
			handleError(w, err)
			return
		}

		list, err := svc.ListAvailableByDepartment(r.Context(), chi.URLParam(r, "name"), date)
		if err != nil {
			handleError(w, err)
			return
		}

		resp := make([]AvailableSlotResponse, 0, len(list))
		for _, s := range list {
			resp = append(resp, AvailableSlotResponse{AppointmentID: s.AppointmentID, TimeSlot: s.TimeSlot})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func patientsPerDoctorHandler(svc ClinicService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := clinic.ParseStatus(r.URL.Query().Get("status"))
		if err != nil {
			handleError(w, err)
			return
		}

		list, err := svc.CountPatientsByStatus(r.Context(), status)
		if err != nil {
			handleError(w, err)
			return
		}

		resp := make([]DoctorPatientCountResponse, 0, len(list))
		for _, c := range list {
			resp = append(resp, DoctorPatientCountResponse{DoctorID: c.DoctorID, Name: c.DoctorName, Patients: c.Patients})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleError(w http.ResponseWriter, err error) {
	var ve *clinic.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, "invalid_"+strings.ReplaceAll(ve.Field, " ", "_"), err.Error())
	case errors.Is(err, clinic.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, clinic.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, clinic.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, clinic.ErrAppointmentBeingBooked):
		writeError(w, http.StatusConflict, "appointment_being_booked", "appointment is currently being booked, please retry shortly")
	case clinic.IsPersistence(err):
		writeError(w, http.StatusInternalServerError, "table_update_error", "please double check values")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
