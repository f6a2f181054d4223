package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/hackgods/clinic-scheduling/internal/clinic"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func renderAppointments(w io.Writer, list []clinic.AppointmentSummary) {
	t := newTable(w, "appnt_id", "status")
	for _, a := range list {
		t.Append([]string{strconv.Itoa(a.AppointmentID), strings.TrimSpace(a.Status)})
	}
	t.Render()
}

func renderAvailable(w io.Writer, list []clinic.AvailableSlot) {
	t := newTable(w, "appnt_id", "time_slot")
	for _, s := range list {
		t.Append([]string{strconv.Itoa(s.AppointmentID), s.TimeSlot})
	}
	t.Render()
}

func renderPatientCounts(w io.Writer, list []clinic.DoctorPatientCount) {
	t := newTable(w, "doctor_id", "name", "total_patients")
	for _, c := range list {
		t.Append([]string{strconv.Itoa(c.DoctorID), c.DoctorName, strconv.Itoa(c.Patients)})
	}
	t.Render()
}

// RenderRanking prints one line per doctor. The first pair is the dominant
// status; the remaining pairs keep their swapped positions.
func RenderRanking(w io.Writer, rows []clinic.DoctorRankRow) {
	t := newTable(w, "doctor_id", "1st", "2nd", "3rd", "4th")
	for _, row := range rows {
		rec := []string{strconv.Itoa(row.DoctorID)}
		for _, c := range row.Counts {
			rec = append(rec, strconv.Itoa(c.Count)+" "+string(c.Status))
		}
		t.Append(rec)
	}
	t.Render()
}
