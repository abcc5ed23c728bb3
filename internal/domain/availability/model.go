package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SlotDuration is the fixed length of every bookable slot.
const SlotDuration = time.Hour

// DefaultHorizonWeeks is the number of weeks ahead for which concrete slots
// are materialized from the recurring schedule.
const DefaultHorizonWeeks = 4

// Common errors returned by the availability service.
var (
	ErrSlotNotFound = errors.New("slot not found")
	ErrSlotBooked   = errors.New("slot is already booked")
	ErrSlotInPast   = errors.New("slot is in the past")
	ErrNotSlotOwner = errors.New("slot does not belong to the requesting counselor")
)

// ValidationError identifies the offending day and block of a rejected
// schedule. Block is -1 for day-level failures.
type ValidationError struct {
	Day    int
	Block  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Block < 0 {
		return fmt.Sprintf("day %d: %s", e.Day, e.Reason)
	}
	return fmt.Sprintf("day %d, block %d: %s", e.Day, e.Block, e.Reason)
}

// RecurringEntry maps to the recurring_schedule table. One row is one weekly
// availability window of a counselor; the set is replaced wholesale on every
// schedule save.
type RecurringEntry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	CounselorID uuid.UUID `db:"counselor_id" json:"counselor_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"` // 0 = Sunday .. 6 = Saturday
	StartTime   string    `db:"start_time" json:"start_time"`   // "HH:MM", 24-hour
	EndTime     string    `db:"end_time" json:"end_time"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Slot maps to the availability_slot table. Slots with a past start are
// historical records and are never mutated or deleted by regeneration.
type Slot struct {
	ID          uuid.UUID `db:"id" json:"id"`
	CounselorID uuid.UUID `db:"counselor_id" json:"counselor_id"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	IsBooked    bool      `db:"is_booked" json:"is_booked"`
	IsBlocked   bool      `db:"is_blocked" json:"is_blocked"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TimeBlock is one availability window within a day, as submitted by the
// schedule form.
type TimeBlock struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// DaySchedule is the submitted availability for one day of the week. A
// disabled day carries no blocks; an enabled day must carry at least one.
type DaySchedule struct {
	DayOfWeek int         `json:"day_of_week"`
	Enabled   bool        `json:"enabled"`
	Blocks    []TimeBlock `json:"blocks"`
}

// Window is a compiled candidate slot interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the half-open intervals [w.Start, w.End) and
// [start, end) intersect.
func (w Window) Overlaps(start, end time.Time) bool {
	return w.Start.Before(end) && start.Before(w.End)
}
