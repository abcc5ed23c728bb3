package availability

import (
	"context"
	"errors"
	"time"

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

// =========== Schedule Repository ===========

type scheduleRepoPG struct{ pool *pgxpool.Pool }

func NewScheduleRepoPG(pool *pgxpool.Pool) ScheduleRepository { return &scheduleRepoPG{pool: pool} }

func (r *scheduleRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *scheduleRepoPG) ListByCounselor(ctx context.Context, counselorID uuid.UUID) ([]RecurringEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, counselor_id, day_of_week, start_time, end_time, created_at
		FROM recurring_schedule
		WHERE counselor_id = $1
		ORDER BY day_of_week, start_time`, counselorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []RecurringEntry
	for rows.Next() {
		var e RecurringEntry
		if err := rows.Scan(&e.ID, &e.CounselorID, &e.DayOfWeek, &e.StartTime, &e.EndTime, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *scheduleRepoPG) ReplaceForCounselor(ctx context.Context, counselorID uuid.UUID, entries []RecurringEntry) error {
	conn := r.conn(ctx)
	if _, err := conn.Exec(ctx, `DELETE FROM recurring_schedule WHERE counselor_id = $1`, counselorID); err != nil {
		return err
	}
	for i := range entries {
		entries[i].ID = uuid.New()
		entries[i].CounselorID = counselorID
		if _, err := conn.Exec(ctx, `
			INSERT INTO recurring_schedule (id, counselor_id, day_of_week, start_time, end_time)
			VALUES ($1,$2,$3,$4,$5)`,
			entries[i].ID, counselorID, entries[i].DayOfWeek, entries[i].StartTime, entries[i].EndTime); err != nil {
			return err
		}
	}
	return nil
}

// =========== Slot Repository ===========

type slotRepoPG struct{ pool *pgxpool.Pool }

func NewSlotRepoPG(pool *pgxpool.Pool) SlotRepository { return &slotRepoPG{pool: pool} }

func (r *slotRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const slotCols = `id, counselor_id, start_time, end_time, is_booked, is_blocked, created_at, updated_at`

func scanSlot(row pgx.Row) (*Slot, error) {
	var sl Slot
	err := row.Scan(&sl.ID, &sl.CounselorID, &sl.StartTime, &sl.EndTime,
		&sl.IsBooked, &sl.IsBlocked, &sl.CreatedAt, &sl.UpdatedAt)
	return &sl, err
}

func (r *slotRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	sl, err := scanSlot(r.conn(ctx).QueryRow(ctx, `SELECT `+slotCols+` FROM availability_slot WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return sl, nil
}

func (r *slotRepoPG) ListByCounselorRange(ctx context.Context, counselorID uuid.UUID, from, to time.Time) ([]*Slot, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+slotCols+` FROM availability_slot
		WHERE counselor_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC`, counselorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSlots(rows)
}

func (r *slotRepoPG) ListFutureBooked(ctx context.Context, counselorID uuid.UUID, now time.Time) ([]*Slot, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+slotCols+` FROM availability_slot
		WHERE counselor_id = $1 AND start_time > $2 AND is_booked = TRUE
		ORDER BY start_time ASC`, counselorID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSlots(rows)
}

func (r *slotRepoPG) DeleteFutureUnbooked(ctx context.Context, counselorID uuid.UUID, now time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM availability_slot
		WHERE counselor_id = $1 AND start_time > $2 AND is_booked = FALSE`, counselorID, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *slotRepoPG) BulkInsert(ctx context.Context, counselorID uuid.UUID, windows []Window) (int, error) {
	if len(windows) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, w := range windows {
		batch.Queue(`
			INSERT INTO availability_slot (id, counselor_id, start_time, end_time, is_booked, is_blocked)
			VALUES ($1,$2,$3,$4,FALSE,FALSE)`,
			uuid.New(), counselorID, w.Start, w.End)
	}

	var sender interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	}
	if tx := db.TxFromContext(ctx); tx != nil {
		sender = tx
	} else {
		sender = r.pool
	}

	results := sender.SendBatch(ctx, batch)
	defer results.Close()
	for range windows {
		if _, err := results.Exec(); err != nil {
			return 0, err
		}
	}
	return len(windows), nil
}

func (r *slotRepoPG) ToggleBlock(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	var blocked bool
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE availability_slot
		SET is_blocked = NOT is_blocked, updated_at = NOW()
		WHERE id = $1 AND is_booked = FALSE AND start_time > $2
		RETURNING is_blocked`, id, now).Scan(&blocked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrSlotNotFound
	}
	if err != nil {
		return false, err
	}
	return blocked, nil
}

func collectSlots(rows pgx.Rows) ([]*Slot, error) {
	var items []*Slot
	for rows.Next() {
		sl, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, sl)
	}
	return items, rows.Err()
}
