package clinic

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"
)

var errStore = errors.New("store unavailable")

// memRepo is an in-memory Repository. Setting fail[op] makes that method
// return the error; WithinTx restores a snapshot when fn fails.
type memRepo struct {
	mu sync.Mutex

	patients     map[int]Patient
	doctors      map[int]Doctor
	appointments map[int]Appointment
	// raw holds stored statuses that are outside the known set
	raw         map[int]string
	links       []DoctorAppointmentLink
	departments map[int]string

	fail  map[string]error
	calls []string
}

func newMemRepo() *memRepo {
	return &memRepo{
		patients:     map[int]Patient{},
		doctors:      map[int]Doctor{},
		appointments: map[int]Appointment{},
		raw:          map[int]string{},
		departments:  map[int]string{},
		fail:         map[string]error{},
	}
}

func (m *memRepo) hit(op string) error {
	m.calls = append(m.calls, op)
	return m.fail[op]
}

func (m *memRepo) PatientExists(_ context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("PatientExists"); err != nil {
		return false, err
	}
	_, ok := m.patients[id]
	return ok, nil
}

func (m *memRepo) GetPatientByID(_ context.Context, id int) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("GetPatientByID"); err != nil {
		return nil, err
	}
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (m *memRepo) InsertPatient(_ context.Context, p Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("InsertPatient"); err != nil {
		return err
	}
	if _, ok := m.patients[p.ID]; ok {
		return errors.New("duplicate key patient_id")
	}
	m.patients[p.ID] = p
	return nil
}

func (m *memRepo) DoctorExists(_ context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("DoctorExists"); err != nil {
		return false, err
	}
	_, ok := m.doctors[id]
	return ok, nil
}

func (m *memRepo) GetDoctorByID(_ context.Context, id int) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("GetDoctorByID"); err != nil {
		return nil, err
	}
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (m *memRepo) InsertDoctor(_ context.Context, d Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("InsertDoctor"); err != nil {
		return err
	}
	if _, ok := m.doctors[d.ID]; ok {
		return errors.New("duplicate key doctor_id")
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *memRepo) GetAppointmentStatus(_ context.Context, id int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("GetAppointmentStatus"); err != nil {
		return "", err
	}
	if s, ok := m.raw[id]; ok {
		return s, nil
	}
	a, ok := m.appointments[id]
	if !ok {
		return "", ErrAppointmentNotFound
	}
	return string(a.Status), nil
}

func (m *memRepo) InsertAppointment(_ context.Context, a Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("InsertAppointment"); err != nil {
		return err
	}
	if _, ok := m.appointments[a.ID]; ok {
		return errors.New("duplicate key appnt_id")
	}
	m.appointments[a.ID] = a
	return nil
}

func (m *memRepo) UpdateAppointmentStatus(_ context.Context, id int, to Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("UpdateAppointmentStatus"); err != nil {
		return err
	}
	a, ok := m.appointments[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	a.Status = to
	m.appointments[id] = a
	delete(m.raw, id)
	return nil
}

func (m *memRepo) InsertDoctorAppointment(_ context.Context, link DoctorAppointmentLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("InsertDoctorAppointment"); err != nil {
		return err
	}
	m.links = append(m.links, link)
	return nil
}

func (m *memRepo) IncrementPatientAppointments(_ context.Context, patientID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("IncrementPatientAppointments"); err != nil {
		return err
	}
	p, ok := m.patients[patientID]
	if !ok {
		return ErrPatientNotFound
	}
	p.AppointmentCount++
	m.patients[patientID] = p
	return nil
}

func (m *memRepo) ListDoctorIDs(_ context.Context) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("ListDoctorIDs"); err != nil {
		return nil, err
	}
	return slices.Collect(maps.Keys(m.doctors)), nil
}

func (m *memRepo) statusOf(id int) string {
	if s, ok := m.raw[id]; ok {
		return s
	}
	return string(m.appointments[id].Status)
}

func (m *memRepo) CountAppointmentsByStatus(_ context.Context, status Status) (map[int]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("CountAppointmentsByStatus:" + string(status)); err != nil {
		return nil, err
	}
	out := map[int]int{}
	for _, l := range m.links {
		if _, ok := m.doctors[l.DoctorID]; !ok {
			continue
		}
		if _, ok := m.appointments[l.AppointmentID]; !ok {
			continue
		}
		if m.statusOf(l.AppointmentID) == string(status) {
			out[l.DoctorID]++
		}
	}
	return out, nil
}

func (m *memRepo) ListDoctorAppointments(_ context.Context, doctorID int, from, to time.Time) ([]AppointmentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("ListDoctorAppointments"); err != nil {
		return nil, err
	}
	var out []AppointmentSummary
	for _, l := range m.links {
		if l.DoctorID != doctorID {
			continue
		}
		a, ok := m.appointments[l.AppointmentID]
		if !ok || a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		if a.Status == StatusActive || a.Status == StatusAvailable {
			out = append(out, AppointmentSummary{AppointmentID: a.ID, Status: string(a.Status)})
		}
	}
	return out, nil
}

func (m *memRepo) ListAvailableByDepartment(_ context.Context, department string, date time.Time) ([]AvailableSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("ListAvailableByDepartment"); err != nil {
		return nil, err
	}
	var out []AvailableSlot
	for _, l := range m.links {
		d, ok := m.doctors[l.DoctorID]
		if !ok || m.departments[d.DepartmentID] != department {
			continue
		}
		a, ok := m.appointments[l.AppointmentID]
		if !ok || a.Status != StatusAvailable || !a.Date.Equal(date) {
			continue
		}
		out = append(out, AvailableSlot{AppointmentID: a.ID, TimeSlot: a.TimeSlot})
	}
	return out, nil
}

func (m *memRepo) CountPatientsByStatus(_ context.Context, status Status) ([]DoctorPatientCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("CountPatientsByStatus"); err != nil {
		return nil, err
	}
	counts := map[int]int{}
	for _, l := range m.links {
		if m.statusOf(l.AppointmentID) == string(status) {
			counts[l.DoctorID]++
		}
	}
	ids := slices.Sorted(maps.Keys(counts))
	out := make([]DoctorPatientCount, 0, len(ids))
	for _, id := range ids {
		out = append(out, DoctorPatientCount{DoctorID: id, DoctorName: m.doctors[id].Name, Patients: counts[id]})
	}
	return out, nil
}

func (m *memRepo) WithinTx(ctx context.Context, fn func(tx Repository) error) error {
	m.mu.Lock()
	patients := maps.Clone(m.patients)
	doctors := maps.Clone(m.doctors)
	appointments := maps.Clone(m.appointments)
	raw := maps.Clone(m.raw)
	links := slices.Clone(m.links)
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.patients, m.doctors, m.appointments, m.raw, m.links = patients, doctors, appointments, raw, links
		m.mu.Unlock()
		return err
	}
	return nil
}
