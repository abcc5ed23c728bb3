package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindlens/mindlens-api/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Slot Store ===========

type slotStorePG struct{ pool *pgxpool.Pool }

func NewSlotStorePG(pool *pgxpool.Pool) SlotStore { return &slotStorePG{pool: pool} }

func (r *slotStorePG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *slotStorePG) GetSlot(ctx context.Context, id uuid.UUID) (*SlotInfo, error) {
	var sl SlotInfo
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, counselor_id, start_time, end_time, is_booked, is_blocked
		FROM availability_slot WHERE id = $1`, id).
		Scan(&sl.ID, &sl.CounselorID, &sl.StartTime, &sl.EndTime, &sl.IsBooked, &sl.IsBlocked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sl, nil
}

func (r *slotStorePG) MarkBooked(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE availability_slot
		SET is_booked = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_booked = FALSE AND is_blocked = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotUnavailable
	}
	return nil
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (id, slot_id, patient_id, counselor_id, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		a.ID, a.SlotID, a.PatientID, a.CounselorID, a.Status).
		Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	var a Appointment
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, slot_id, patient_id, counselor_id, status, created_at, updated_at
		FROM appointment WHERE id = $1`, id).
		Scan(&a.ID, &a.SlotID, &a.PatientID, &a.CounselorID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentMissing
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const detailQuery = `
	SELECT a.id, a.slot_id, a.patient_id, a.counselor_id, a.status,
	       a.created_at, a.updated_at, s.start_time, s.end_time
	FROM appointment a
	JOIN availability_slot s ON s.id = a.slot_id`

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*AppointmentDetail, int, error) {
	return r.list(ctx, "a.patient_id", patientID, limit, offset)
}

func (r *appointmentRepoPG) ListByCounselor(ctx context.Context, counselorID uuid.UUID, limit, offset int) ([]*AppointmentDetail, int, error) {
	return r.list(ctx, "a.counselor_id", counselorID, limit, offset)
}

func (r *appointmentRepoPG) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*AppointmentDetail, int, error) {
	conn := r.conn(ctx)

	var total int
	if err := conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment a WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := conn.Query(ctx, detailQuery+`
		WHERE `+col+` = $1
		ORDER BY s.start_time DESC
		LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*AppointmentDetail
	for rows.Next() {
		var d AppointmentDetail
		if err := rows.Scan(&d.ID, &d.SlotID, &d.PatientID, &d.CounselorID, &d.Status,
			&d.CreatedAt, &d.UpdatedAt, &d.StartTime, &d.EndTime); err != nil {
			return nil, 0, err
		}
		items = append(items, &d)
	}
	return items, total, rows.Err()
}
