package availability

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mindlens/mindlens-api/internal/platform/db"
)

// RegenerationSummary reports what a schedule save did to the slot set.
type RegenerationSummary struct {
	Deleted int64 `json:"deleted"`
	Created int   `json:"created"`
	Skipped int   `json:"skipped"` // candidates dropped for colliding with booked slots
}

type Service struct {
	tx           db.TxRunner
	schedules    ScheduleRepository
	slots        SlotRepository
	horizonWeeks int
	now          func() time.Time
}

func NewService(tx db.TxRunner, schedules ScheduleRepository, slots SlotRepository, horizonWeeks int) *Service {
	if horizonWeeks <= 0 {
		horizonWeeks = DefaultHorizonWeeks
	}
	return &Service{
		tx:           tx,
		schedules:    schedules,
		slots:        slots,
		horizonWeeks: horizonWeeks,
		now:          time.Now,
	}
}

// GetRecurringSchedule returns the counselor's current weekly template.
func (s *Service) GetRecurringSchedule(ctx context.Context, counselorID uuid.UUID) ([]RecurringEntry, error) {
	return s.schedules.ListByCounselor(ctx, counselorID)
}

// ReplaceSchedule validates and saves a new weekly schedule, then rebuilds
// the counselor's future slot set from it. The whole operation is one
// transaction: a validation or persistence failure leaves no partial state.
//
// Future booked slots survive regeneration untouched, and any compiled
// candidate that would overlap one of them is skipped. Past slots are never
// touched.
func (s *Service) ReplaceSchedule(ctx context.Context, counselorID uuid.UUID, days []DaySchedule) (*RegenerationSummary, error) {
	if err := ValidateWeek(days); err != nil {
		return nil, err
	}

	entries := FlattenWeek(counselorID, days)
	now := s.now()

	summary := &RegenerationSummary{}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.schedules.ReplaceForCounselor(ctx, counselorID, entries); err != nil {
			return err
		}

		deleted, err := s.slots.DeleteFutureUnbooked(ctx, counselorID, now)
		if err != nil {
			return err
		}
		summary.Deleted = deleted

		booked, err := s.slots.ListFutureBooked(ctx, counselorID, now)
		if err != nil {
			return err
		}

		candidates := CompileSlots(entries, s.horizonWeeks, now)
		kept := FilterBooked(candidates, booked)
		summary.Skipped = len(candidates) - len(kept)

		created, err := s.slots.BulkInsert(ctx, counselorID, kept)
		if err != nil {
			return err
		}
		summary.Created = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ToggleBlock flips a single future unbooked slot between available and
// blocked, returning the new blocked state. Only the owning counselor may
// toggle, and booked or past slots are rejected before any write.
func (s *Service) ToggleBlock(ctx context.Context, slotID, counselorID uuid.UUID) (bool, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return false, err
	}
	if slot.CounselorID != counselorID {
		return false, ErrNotSlotOwner
	}
	if slot.IsBooked {
		return false, ErrSlotBooked
	}
	now := s.now()
	if !slot.StartTime.After(now) {
		return false, ErrSlotInPast
	}

	blocked, err := s.slots.ToggleBlock(ctx, slotID, now)
	if errors.Is(err, ErrSlotNotFound) {
		// The conditional update matched nothing: the slot was booked or
		// crossed into the past between the read and the write.
		current, getErr := s.slots.GetByID(ctx, slotID)
		if getErr != nil {
			return false, getErr
		}
		if current.IsBooked {
			return false, ErrSlotBooked
		}
		return false, ErrSlotInPast
	}
	if err != nil {
		return false, err
	}
	return blocked, nil
}

// ListWeek returns the counselor's slot grid for the seven days starting at
// weekStart, for the manage-availability view.
func (s *Service) ListWeek(ctx context.Context, counselorID uuid.UUID, weekStart time.Time) ([]*Slot, error) {
	return s.slots.ListByCounselorRange(ctx, counselorID, weekStart, weekStart.AddDate(0, 0, 7))
}
