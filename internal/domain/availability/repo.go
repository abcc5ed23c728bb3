package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ScheduleRepository interface {
	ListByCounselor(ctx context.Context, counselorID uuid.UUID) ([]RecurringEntry, error)
	// ReplaceForCounselor deletes the counselor's recurring entries and
	// inserts the new set. Runs inside the caller's transaction.
	ReplaceForCounselor(ctx context.Context, counselorID uuid.UUID, entries []RecurringEntry) error
}

type SlotRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	// ListByCounselorRange returns the counselor's slots with start times in
	// [from, to), ordered by start time.
	ListByCounselorRange(ctx context.Context, counselorID uuid.UUID, from, to time.Time) ([]*Slot, error)
	// ListFutureBooked returns booked slots starting after now.
	ListFutureBooked(ctx context.Context, counselorID uuid.UUID, now time.Time) ([]*Slot, error)
	// DeleteFutureUnbooked removes future unbooked slots, leaving booked
	// future slots and all past slots untouched.
	DeleteFutureUnbooked(ctx context.Context, counselorID uuid.UUID, now time.Time) (int64, error)
	BulkInsert(ctx context.Context, counselorID uuid.UUID, windows []Window) (int, error)
	// ToggleBlock flips is_blocked on a future unbooked slot and returns the
	// new state. Returns ErrSlotNotFound when the slot no longer qualifies
	// (booked or started in the meantime).
	ToggleBlock(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
}
