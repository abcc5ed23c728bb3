package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Only StatusScheduled is ever created by booking;
// the rest are set by later lifecycle operations.
const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusNoShow    = "NO_SHOW"
)

var (
	ErrSlotNotFound = errors.New("slot not found")
	// ErrSlotUnavailable covers every reason a slot cannot be booked: already
	// booked, blocked, in the past, or lost to a concurrent booking.
	ErrSlotUnavailable    = errors.New("slot is not available for booking")
	ErrAppointmentMissing = errors.New("appointment not found")
)

// Appointment maps to the appointment table. The unique slot_id constraint
// backs up the conditional slot update as a second line of defense against
// double booking.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	SlotID      uuid.UUID `db:"slot_id" json:"slot_id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	CounselorID uuid.UUID `db:"counselor_id" json:"counselor_id"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// AppointmentDetail is an appointment joined with its slot times for the
// dashboard lists.
type AppointmentDetail struct {
	Appointment
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
}

// SlotInfo is the booking-side view of an availability slot.
type SlotInfo struct {
	ID          uuid.UUID
	CounselorID uuid.UUID
	StartTime   time.Time
	EndTime     time.Time
	IsBooked    bool
	IsBlocked   bool
}

// Review maps to the review table. One review per appointment, written by
// the patient after a completed session.
type Review struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	CounselorID   uuid.UUID `db:"counselor_id" json:"counselor_id"`
	Rating        int       `db:"rating" json:"rating"`
	Comment       string    `db:"comment" json:"comment"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
