package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repositories --

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockSlotStore struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*SlotInfo
}

func newMockSlotStore() *mockSlotStore {
	return &mockSlotStore{slots: make(map[uuid.UUID]*SlotInfo)}
}

func (m *mockSlotStore) GetSlot(_ context.Context, id uuid.UUID) (*SlotInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sl, ok := m.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	cp := *sl
	return &cp, nil
}

// MarkBooked mirrors the conditional update: atomic check-and-set, losers
// see zero rows.
func (m *mockSlotStore) MarkBooked(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sl, ok := m.slots[id]
	if !ok || sl.IsBooked || sl.IsBlocked {
		return ErrSlotUnavailable
	}
	sl.IsBooked = true
	return nil
}

type mockApptRepo struct {
	mu    sync.Mutex
	appts []*Appointment
}

func (m *mockApptRepo) Create(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.appts = append(m.appts, a)
	return nil
}

func (m *mockApptRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.appts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, ErrAppointmentMissing
}

func (m *mockApptRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*AppointmentDetail, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*AppointmentDetail
	for _, a := range m.appts {
		if a.PatientID == patientID {
			out = append(out, &AppointmentDetail{Appointment: *a})
		}
	}
	return out, len(out), nil
}

func (m *mockApptRepo) ListByCounselor(_ context.Context, counselorID uuid.UUID, limit, offset int) ([]*AppointmentDetail, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*AppointmentDetail
	for _, a := range m.appts {
		if a.CounselorID == counselorID {
			out = append(out, &AppointmentDetail{Appointment: *a})
		}
	}
	return out, len(out), nil
}

var testNow = time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)

func newTestService(slots *mockSlotStore, appts *mockApptRepo) *Service {
	svc := NewService(passthroughTx{}, slots, appts)
	svc.now = func() time.Time { return testNow }
	return svc
}

func freeSlot(counselorID uuid.UUID) *SlotInfo {
	return &SlotInfo{
		ID:          uuid.New(),
		CounselorID: counselorID,
		StartTime:   testNow.Add(24 * time.Hour),
		EndTime:     testNow.Add(25 * time.Hour),
	}
}

// -- Tests --

func TestBookCreatesScheduledAppointment(t *testing.T) {
	slots := newMockSlotStore()
	appts := &mockApptRepo{}
	svc := newTestService(slots, appts)

	counselorID := uuid.New()
	patientID := uuid.New()
	sl := freeSlot(counselorID)
	slots.slots[sl.ID] = sl

	appt, err := svc.Book(context.Background(), sl.ID, patientID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if appt.Status != StatusScheduled {
		t.Errorf("status = %q, want %q", appt.Status, StatusScheduled)
	}
	if appt.CounselorID != counselorID {
		t.Errorf("counselor id not taken from slot")
	}
	if appt.PatientID != patientID {
		t.Errorf("patient id not recorded")
	}
	if !slots.slots[sl.ID].IsBooked {
		t.Error("slot not marked booked")
	}
}

func TestBookRejections(t *testing.T) {
	slots := newMockSlotStore()
	appts := &mockApptRepo{}
	svc := newTestService(slots, appts)
	counselorID := uuid.New()

	booked := freeSlot(counselorID)
	booked.IsBooked = true
	slots.slots[booked.ID] = booked

	blocked := freeSlot(counselorID)
	blocked.IsBlocked = true
	slots.slots[blocked.ID] = blocked

	past := freeSlot(counselorID)
	past.StartTime = testNow.Add(-time.Hour)
	past.EndTime = testNow
	slots.slots[past.ID] = past

	tests := []struct {
		name string
		id   uuid.UUID
		want error
	}{
		{"missing slot", uuid.New(), ErrSlotNotFound},
		{"booked slot", booked.ID, ErrSlotUnavailable},
		{"blocked slot", blocked.ID, ErrSlotUnavailable},
		{"past slot", past.ID, ErrSlotUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Book(context.Background(), tt.id, uuid.New())
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
			if len(appts.appts) != 0 {
				t.Error("appointment created on rejected booking")
			}
		})
	}
}

func TestBookConcurrentRaceHasOneWinner(t *testing.T) {
	slots := newMockSlotStore()
	appts := &mockApptRepo{}
	svc := newTestService(slots, appts)

	sl := freeSlot(uuid.New())
	slots.slots[sl.ID] = sl

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(context.Background(), sl.ID, uuid.New())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrSlotUnavailable):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Errorf("%d bookings won, want exactly 1", won)
	}
	if lost != attempts-1 {
		t.Errorf("%d bookings lost, want %d", lost, attempts-1)
	}
	if len(appts.appts) != 1 {
		t.Errorf("%d appointments created, want 1", len(appts.appts))
	}
}

func TestListForPatient(t *testing.T) {
	slots := newMockSlotStore()
	appts := &mockApptRepo{}
	svc := newTestService(slots, appts)

	patientID := uuid.New()
	counselorID := uuid.New()
	for i := 0; i < 3; i++ {
		sl := freeSlot(counselorID)
		sl.StartTime = sl.StartTime.Add(time.Duration(i) * 24 * time.Hour)
		slots.slots[sl.ID] = sl
		if _, err := svc.Book(context.Background(), sl.ID, patientID); err != nil {
			t.Fatalf("Book %d: %v", i, err)
		}
	}

	items, total, err := svc.ListForPatient(context.Background(), patientID, 20, 0)
	if err != nil {
		t.Fatalf("ListForPatient: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Errorf("got %d items total %d, want 3 and 3", len(items), total)
	}
}
