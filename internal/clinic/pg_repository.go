package clinic

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/hackgods/clinic-scheduling/internal/db"
)

var dialect = goqu.Dialect("postgres")

// PgRepository builds statements with goqu and runs them through a
// db.RecordStore, so every row comes back as text.
type PgRepository struct {
	store *db.RecordStore
}

func NewPgRepository(store *db.RecordStore) *PgRepository {
	return &PgRepository{store: store}
}

// Helpers

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

func (r *PgRepository) exec(ctx context.Context, op string, b sqlBuilder) (int64, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return 0, persistence(op, fmt.Errorf("build statement: %w", err))
	}
	n, err := r.store.Execute(ctx, query, args...)
	if err != nil {
		return 0, persistence(op, err)
	}
	return n, nil
}

func (r *PgRepository) query(ctx context.Context, op string, b sqlBuilder) ([][]string, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, persistence(op, fmt.Errorf("build statement: %w", err))
	}
	rows, err := r.store.Query(ctx, query, args...)
	if err != nil {
		return nil, persistence(op, err)
	}
	return rows, nil
}

func (r *PgRepository) count(ctx context.Context, op string, b sqlBuilder) (int, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return 0, persistence(op, fmt.Errorf("build statement: %w", err))
	}
	n, err := r.store.Count(ctx, query, args...)
	if err != nil {
		return 0, persistence(op, err)
	}
	return n, nil
}

func atoi(op, column, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, persistence(op, fmt.Errorf("column %s: %w", column, err))
	}
	return n, nil
}

// atoiOrZero reads a nullable numeric column; NULL comes back as "".
func atoiOrZero(op, column, raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return atoi(op, column, raw)
}

// Patients

func (r *PgRepository) PatientExists(ctx context.Context, id int) (bool, error) {
	n, err := r.count(ctx, "look up patient", dialect.From("patient").
		Select("patient_id").
		Where(goqu.Ex{"patient_id": id}).
		Prepared(true))
	return n > 0, err
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id int) (*Patient, error) {
	const op = "load patient"
	rows, err := r.query(ctx, op, dialect.From("patient").
		Select("patient_id", "name", "gtype", "age", "address", "number_of_appts").
		Where(goqu.Ex{"patient_id": id}).
		Prepared(true))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrPatientNotFound
	}

	row := rows[0]
	p := Patient{Name: row[1], Gender: row[2], Address: row[4]}
	if p.ID, err = atoi(op, "patient_id", row[0]); err != nil {
		return nil, err
	}
	if p.Age, err = atoiOrZero(op, "age", row[3]); err != nil {
		return nil, err
	}
	if p.AppointmentCount, err = atoiOrZero(op, "number_of_appts", row[5]); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgRepository) InsertPatient(ctx context.Context, p Patient) error {
	_, err := r.exec(ctx, "insert patient", dialect.Insert("patient").
		Cols("patient_id", "name", "gtype", "age", "address", "number_of_appts").
		Vals(goqu.Vals{p.ID, p.Name, p.Gender, p.Age, p.Address, p.AppointmentCount}).
		Prepared(true))
	return err
}

func (r *PgRepository) IncrementPatientAppointments(ctx context.Context, patientID int) error {
	n, err := r.exec(ctx, "increment patient appointments", dialect.Update("patient").
		Set(goqu.Record{"number_of_appts": goqu.L(`COALESCE("number_of_appts", 0) + 1`)}).
		Where(goqu.Ex{"patient_id": patientID}).
		Prepared(true))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPatientNotFound
	}
	return nil
}

// Doctors

func (r *PgRepository) DoctorExists(ctx context.Context, id int) (bool, error) {
	n, err := r.count(ctx, "look up doctor", dialect.From("doctor").
		Select("doctor_id").
		Where(goqu.Ex{"doctor_id": id}).
		Prepared(true))
	return n > 0, err
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id int) (*Doctor, error) {
	const op = "load doctor"
	rows, err := r.query(ctx, op, dialect.From("doctor").
		Select("doctor_id", "name", "specialty", "did").
		Where(goqu.Ex{"doctor_id": id}).
		Prepared(true))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrDoctorNotFound
	}

	row := rows[0]
	d := Doctor{Name: row[1], Specialty: row[2]}
	if d.ID, err = atoi(op, "doctor_id", row[0]); err != nil {
		return nil, err
	}
	if d.DepartmentID, err = atoiOrZero(op, "did", row[3]); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PgRepository) InsertDoctor(ctx context.Context, d Doctor) error {
	_, err := r.exec(ctx, "insert doctor", dialect.Insert("doctor").
		Cols("doctor_id", "name", "specialty", "did").
		Vals(goqu.Vals{d.ID, d.Name, d.Specialty, d.DepartmentID}).
		Prepared(true))
	return err
}

// Appointments

func (r *PgRepository) GetAppointmentStatus(ctx context.Context, id int) (string, error) {
	rows, err := r.query(ctx, "load appointment status", dialect.From("appointment").
		Select("status").
		Where(goqu.Ex{"appnt_id": id}).
		Prepared(true))
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", ErrAppointmentNotFound
	}
	return rows[0][0], nil
}

func (r *PgRepository) InsertAppointment(ctx context.Context, a Appointment) error {
	_, err := r.exec(ctx, "insert appointment", dialect.Insert("appointment").
		Cols("appnt_id", "adate", "time_slot", "status").
		Vals(goqu.Vals{a.ID, a.Date, a.TimeSlot, string(a.Status)}).
		Prepared(true))
	return err
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id int, to Status) error {
	n, err := r.exec(ctx, "update appointment status", dialect.Update("appointment").
		Set(goqu.Record{"status": string(to)}).
		Where(goqu.Ex{"appnt_id": id}).
		Prepared(true))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) InsertDoctorAppointment(ctx context.Context, link DoctorAppointmentLink) error {
	_, err := r.exec(ctx, "insert doctor appointment link", dialect.Insert("has_appointment").
		Cols("appt_id", "doctor_id").
		Vals(goqu.Vals{link.AppointmentID, link.DoctorID}).
		Prepared(true))
	return err
}

// Reporting

func (r *PgRepository) ListDoctorIDs(ctx context.Context) ([]int, error) {
	const op = "list doctors"
	rows, err := r.query(ctx, op, dialect.From("doctor").
		Select("doctor_id").
		Order(goqu.C("doctor_id").Asc()))
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		id, err := atoi(op, "doctor_id", row[0])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// linkedAppointments joins doctors to their appointments through has_appointment.
func linkedAppointments() *goqu.SelectDataset {
	return dialect.From(goqu.T("doctor").As("d")).
		Join(goqu.T("has_appointment").As("h"), goqu.On(goqu.I("d.doctor_id").Eq(goqu.I("h.doctor_id")))).
		Join(goqu.T("appointment").As("a"), goqu.On(goqu.I("h.appt_id").Eq(goqu.I("a.appnt_id"))))
}

func (r *PgRepository) CountAppointmentsByStatus(ctx context.Context, status Status) (map[int]int, error) {
	op := "count " + string(status) + " appointments"
	rows, err := r.query(ctx, op, linkedAppointments().
		Select(goqu.I("d.doctor_id"), goqu.COUNT(goqu.I("a.appnt_id"))).
		Where(goqu.I("a.status").Eq(string(status))).
		GroupBy(goqu.I("d.doctor_id")).
		Order(goqu.I("d.doctor_id").Asc()).
		Prepared(true))
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int, len(rows))
	for _, row := range rows {
		id, err := atoi(op, "doctor_id", row[0])
		if err != nil {
			return nil, err
		}
		n, err := atoi(op, "count", row[1])
		if err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, nil
}

func (r *PgRepository) ListDoctorAppointments(ctx context.Context, doctorID int, from, to time.Time) ([]AppointmentSummary, error) {
	const op = "list doctor appointments"
	rows, err := r.query(ctx, op, linkedAppointments().
		Select(goqu.I("a.appnt_id"), goqu.I("a.status")).
		Where(
			goqu.I("d.doctor_id").Eq(doctorID),
			goqu.I("a.status").In(string(StatusActive), string(StatusAvailable)),
			goqu.I("a.adate").Gte(from),
			goqu.I("a.adate").Lte(to),
		).
		Order(goqu.I("a.adate").Asc(), goqu.I("a.appnt_id").Asc()).
		Prepared(true))
	if err != nil {
		return nil, err
	}

	out := make([]AppointmentSummary, 0, len(rows))
	for _, row := range rows {
		id, err := atoi(op, "appnt_id", row[0])
		if err != nil {
			return nil, err
		}
		out = append(out, AppointmentSummary{AppointmentID: id, Status: row[1]})
	}
	return out, nil
}

func (r *PgRepository) ListAvailableByDepartment(ctx context.Context, department string, date time.Time) ([]AvailableSlot, error) {
	const op = "list available appointments"
	rows, err := r.query(ctx, op, linkedAppointments().
		Join(goqu.T("department").As("de"), goqu.On(goqu.I("d.did").Eq(goqu.I("de.dept_id")))).
		Select(goqu.I("a.appnt_id"), goqu.I("a.time_slot")).
		Where(
			goqu.I("a.status").Eq(string(StatusAvailable)),
			goqu.I("a.adate").Eq(date),
			goqu.I("de.name").Eq(department),
		).
		Order(goqu.I("a.appnt_id").Asc()).
		Prepared(true))
	if err != nil {
		return nil, err
	}

	out := make([]AvailableSlot, 0, len(rows))
	for _, row := range rows {
		id, err := atoi(op, "appnt_id", row[0])
		if err != nil {
			return nil, err
		}
		out = append(out, AvailableSlot{AppointmentID: id, TimeSlot: row[1]})
	}
	return out, nil
}

func (r *PgRepository) CountPatientsByStatus(ctx context.Context, status Status) ([]DoctorPatientCount, error) {
	const op = "count patients per doctor"
	rows, err := r.query(ctx, op, linkedAppointments().
		Select(goqu.I("d.doctor_id"), goqu.I("d.name"), goqu.COUNT(goqu.I("a.appnt_id")).As("total_patients")).
		Where(goqu.I("a.status").Eq(string(status))).
		GroupBy(goqu.I("d.doctor_id"), goqu.I("d.name")).
		Order(goqu.I("d.doctor_id").Asc()).
		Prepared(true))
	if err != nil {
		return nil, err
	}

	out := make([]DoctorPatientCount, 0, len(rows))
	for _, row := range rows {
		id, err := atoi(op, "doctor_id", row[0])
		if err != nil {
			return nil, err
		}
		n, err := atoi(op, "total_patients", row[2])
		if err != nil {
			return nil, err
		}
		out = append(out, DoctorPatientCount{DoctorID: id, DoctorName: row[1], Patients: n})
	}
	return out, nil
}

func (r *PgRepository) WithinTx(ctx context.Context, fn func(tx Repository) error) error {
	return r.store.WithinTx(ctx, func(tx *db.RecordStore) error {
		return fn(&PgRepository{store: tx})
	})
}
