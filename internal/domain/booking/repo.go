package booking

import (
	"context"

	"github.com/google/uuid"
)

// SlotStore is the booking-side access to availability slots.
type SlotStore interface {
	GetSlot(ctx context.Context, id uuid.UUID) (*SlotInfo, error)
	// MarkBooked flips is_booked only when the slot is still free and
	// unblocked. Zero affected rows means a concurrent booking won and is
	// reported as ErrSlotUnavailable.
	MarkBooked(ctx context.Context, id uuid.UUID) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*AppointmentDetail, int, error)
	ListByCounselor(ctx context.Context, counselorID uuid.UUID, limit, offset int) ([]*AppointmentDetail, int, error)
}
