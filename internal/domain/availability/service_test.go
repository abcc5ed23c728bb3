package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repositories --

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockScheduleRepo struct {
	entries map[uuid.UUID][]RecurringEntry
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{entries: make(map[uuid.UUID][]RecurringEntry)}
}

func (m *mockScheduleRepo) ListByCounselor(_ context.Context, counselorID uuid.UUID) ([]RecurringEntry, error) {
	return m.entries[counselorID], nil
}

func (m *mockScheduleRepo) ReplaceForCounselor(_ context.Context, counselorID uuid.UUID, entries []RecurringEntry) error {
	for i := range entries {
		entries[i].ID = uuid.New()
		entries[i].CounselorID = counselorID
	}
	m.entries[counselorID] = entries
	return nil
}

type mockSlotRepo struct {
	slots map[uuid.UUID]*Slot
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{slots: make(map[uuid.UUID]*Slot)}
}

func (m *mockSlotRepo) GetByID(_ context.Context, id uuid.UUID) (*Slot, error) {
	sl, ok := m.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	cp := *sl
	return &cp, nil
}

func (m *mockSlotRepo) ListByCounselorRange(_ context.Context, counselorID uuid.UUID, from, to time.Time) ([]*Slot, error) {
	var out []*Slot
	for _, sl := range m.slots {
		if sl.CounselorID == counselorID && !sl.StartTime.Before(from) && sl.StartTime.Before(to) {
			cp := *sl
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockSlotRepo) ListFutureBooked(_ context.Context, counselorID uuid.UUID, now time.Time) ([]*Slot, error) {
	var out []*Slot
	for _, sl := range m.slots {
		if sl.CounselorID == counselorID && sl.IsBooked && sl.StartTime.After(now) {
			cp := *sl
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockSlotRepo) DeleteFutureUnbooked(_ context.Context, counselorID uuid.UUID, now time.Time) (int64, error) {
	var n int64
	for id, sl := range m.slots {
		if sl.CounselorID == counselorID && !sl.IsBooked && sl.StartTime.After(now) {
			delete(m.slots, id)
			n++
		}
	}
	return n, nil
}

func (m *mockSlotRepo) BulkInsert(_ context.Context, counselorID uuid.UUID, windows []Window) (int, error) {
	for _, w := range windows {
		id := uuid.New()
		m.slots[id] = &Slot{
			ID:          id,
			CounselorID: counselorID,
			StartTime:   w.Start,
			EndTime:     w.End,
		}
	}
	return len(windows), nil
}

func (m *mockSlotRepo) ToggleBlock(_ context.Context, id uuid.UUID, now time.Time) (bool, error) {
	sl, ok := m.slots[id]
	if !ok || sl.IsBooked || !sl.StartTime.After(now) {
		return false, ErrSlotNotFound
	}
	sl.IsBlocked = !sl.IsBlocked
	return sl.IsBlocked, nil
}

func newTestService(schedules *mockScheduleRepo, slots *mockSlotRepo) *Service {
	svc := NewService(passthroughTx{}, schedules, slots, 2)
	svc.now = func() time.Time { return wednesdayNoon }
	return svc
}

// -- Tests --

func mondayNineToEleven() []DaySchedule {
	return []DaySchedule{day(1, TimeBlock{"09:00", "11:00"})}
}

func TestReplaceScheduleGeneratesSlots(t *testing.T) {
	schedules := newMockScheduleRepo()
	slots := newMockSlotRepo()
	svc := newTestService(schedules, slots)
	counselorID := uuid.New()

	summary, err := svc.ReplaceSchedule(context.Background(), counselorID, mondayNineToEleven())
	if err != nil {
		t.Fatalf("ReplaceSchedule: %v", err)
	}
	if summary.Created != 4 {
		t.Errorf("created = %d, want 4", summary.Created)
	}
	if summary.Skipped != 0 {
		t.Errorf("skipped = %d, want 0", summary.Skipped)
	}
	if got := len(schedules.entries[counselorID]); got != 1 {
		t.Errorf("stored %d recurring entries, want 1", got)
	}
	if got := len(slots.slots); got != 4 {
		t.Errorf("stored %d slots, want 4", got)
	}
}

func TestReplaceScheduleIsIdempotent(t *testing.T) {
	schedules := newMockScheduleRepo()
	slots := newMockSlotRepo()
	svc := newTestService(schedules, slots)
	counselorID := uuid.New()

	if _, err := svc.ReplaceSchedule(context.Background(), counselorID, mondayNineToEleven()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	summary, err := svc.ReplaceSchedule(context.Background(), counselorID, mondayNineToEleven())
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	if summary.Deleted != 4 || summary.Created != 4 {
		t.Errorf("second save deleted %d created %d, want 4 and 4", summary.Deleted, summary.Created)
	}
	if got := len(slots.slots); got != 4 {
		t.Errorf("slot count after resave = %d, want 4", got)
	}
}

func TestReplaceSchedulePreservesBookedSlots(t *testing.T) {
	schedules := newMockScheduleRepo()
	slots := newMockSlotRepo()
	svc := newTestService(schedules, slots)
	counselorID := uuid.New()

	if _, err := svc.ReplaceSchedule(context.Background(), counselorID, mondayNineToEleven()); err != nil {
		t.Fatalf("initial save: %v", err)
	}

	// Book one of the generated slots, then switch the schedule to a block
	// that overlaps it.
	var bookedID uuid.UUID
	for id, sl := range slots.slots {
		if sl.StartTime.Hour() == 9 {
			sl.IsBooked = true
			bookedID = id
			break
		}
	}
	if bookedID == uuid.Nil {
		t.Fatal("no 09:00 slot to book")
	}

	summary, err := svc.ReplaceSchedule(context.Background(), counselorID, []DaySchedule{
		day(1, TimeBlock{"08:00", "12:00"}),
	})
	if err != nil {
		t.Fatalf("resave: %v", err)
	}

	if _, ok := slots.slots[bookedID]; !ok {
		t.Fatal("booked slot deleted by regeneration")
	}
	if summary.Skipped == 0 {
		t.Error("no candidates skipped despite booked overlap")
	}
	for id, sl := range slots.slots {
		if id == bookedID {
			continue
		}
		if sl.StartTime.Equal(slots.slots[bookedID].StartTime) {
			t.Error("duplicate slot inserted over booked time")
		}
	}
}

func TestReplaceScheduleRejectsInvalidWeekWithoutSideEffects(t *testing.T) {
	schedules := newMockScheduleRepo()
	slots := newMockSlotRepo()
	svc := newTestService(schedules, slots)
	counselorID := uuid.New()

	if _, err := svc.ReplaceSchedule(context.Background(), counselorID, mondayNineToEleven()); err != nil {
		t.Fatalf("initial save: %v", err)
	}

	_, err := svc.ReplaceSchedule(context.Background(), counselorID, []DaySchedule{
		day(1, TimeBlock{"09:00", "11:00"}),
		day(2, TimeBlock{"10:00", "10:30"}),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if got := len(slots.slots); got != 4 {
		t.Errorf("slot set changed on rejected save: %d slots", got)
	}
	if got := len(schedules.entries[counselorID]); got != 1 {
		t.Errorf("recurring entries changed on rejected save: %d", got)
	}
}

func TestToggleBlock(t *testing.T) {
	schedules := newMockScheduleRepo()
	slots := newMockSlotRepo()
	svc := newTestService(schedules, slots)
	counselorID := uuid.New()

	future := wednesdayNoon.Add(48 * time.Hour)
	slotID := uuid.New()
	slots.slots[slotID] = &Slot{
		ID:          slotID,
		CounselorID: counselorID,
		StartTime:   future,
		EndTime:     future.Add(time.Hour),
	}

	blocked, err := svc.ToggleBlock(context.Background(), slotID, counselorID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !blocked {
		t.Error("first toggle should block")
	}

	blocked, err = svc.ToggleBlock(context.Background(), slotID, counselorID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if blocked {
		t.Error("second toggle should unblock")
	}
}

func TestToggleBlockRejections(t *testing.T) {
	schedules := newMockScheduleRepo()
	slots := newMockSlotRepo()
	svc := newTestService(schedules, slots)
	counselorID := uuid.New()

	future := wednesdayNoon.Add(48 * time.Hour)
	booked := uuid.New()
	slots.slots[booked] = &Slot{ID: booked, CounselorID: counselorID, StartTime: future, EndTime: future.Add(time.Hour), IsBooked: true}
	past := uuid.New()
	slots.slots[past] = &Slot{ID: past, CounselorID: counselorID, StartTime: wednesdayNoon.Add(-time.Hour), EndTime: wednesdayNoon}
	foreign := uuid.New()
	slots.slots[foreign] = &Slot{ID: foreign, CounselorID: uuid.New(), StartTime: future, EndTime: future.Add(time.Hour)}

	tests := []struct {
		name string
		id   uuid.UUID
		want error
	}{
		{"missing slot", uuid.New(), ErrSlotNotFound},
		{"booked slot", booked, ErrSlotBooked},
		{"past slot", past, ErrSlotInPast},
		{"foreign slot", foreign, ErrNotSlotOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ToggleBlock(context.Background(), tt.id, counselorID)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
