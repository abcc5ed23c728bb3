package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mindlens/mindlens-api/internal/platform/db"
)

type Service struct {
	tx           db.TxRunner
	slots        SlotStore
	appointments AppointmentRepository
	now          func() time.Time
}

func NewService(tx db.TxRunner, slots SlotStore, appointments AppointmentRepository) *Service {
	return &Service{
		tx:           tx,
		slots:        slots,
		appointments: appointments,
		now:          time.Now,
	}
}

// Book claims the slot for the patient and creates a SCHEDULED appointment,
// atomically. The eager checks give fast, precise rejections, but the real
// guarantee is the conditional update inside the transaction: when two
// patients race for the same slot exactly one update matches, and the loser
// gets ErrSlotUnavailable with nothing committed.
func (s *Service) Book(ctx context.Context, slotID, patientID uuid.UUID) (*Appointment, error) {
	slot, err := s.slots.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.IsBooked || slot.IsBlocked {
		return nil, ErrSlotUnavailable
	}
	if !slot.StartTime.After(s.now()) {
		return nil, ErrSlotUnavailable
	}

	appt := &Appointment{
		SlotID:      slotID,
		PatientID:   patientID,
		CounselorID: slot.CounselorID,
		Status:      StatusScheduled,
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.slots.MarkBooked(ctx, slotID); err != nil {
			return err
		}
		return s.appointments.Create(ctx, appt)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Get returns a single appointment by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// ListForPatient returns the patient's appointments with slot times, newest
// first.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*AppointmentDetail, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

// ListForCounselor returns the counselor's appointments with slot times,
// newest first.
func (s *Service) ListForCounselor(ctx context.Context, counselorID uuid.UUID, limit, offset int) ([]*AppointmentDetail, int, error) {
	return s.appointments.ListByCounselor(ctx, counselorID, limit, offset)
}
