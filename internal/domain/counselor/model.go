package counselor

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Verification states of a counselor profile. Only VERIFIED profiles are
// surfaced by search.
const (
	VerificationPending  = "PENDING"
	VerificationVerified = "VERIFIED"
	VerificationRejected = "REJECTED"
)

var (
	ErrProfileNotFound = errors.New("counselor profile not found")
	ErrInvalidProfile  = errors.New("invalid profile data")
)

// Profile maps to the counselor_profile table.
type Profile struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	UserID             uuid.UUID  `db:"user_id" json:"user_id"`
	FullName           string     `db:"full_name" json:"full_name"`
	ProfessionalTitle  string     `db:"professional_title" json:"professional_title"`
	Bio                string     `db:"bio" json:"bio"`
	ExperienceYears    int        `db:"experience_years" json:"experience_years"`
	HourlyRate         float64    `db:"hourly_rate" json:"hourly_rate"`
	DateOfBirth        *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	PhoneNumber        string     `db:"phone_number" json:"phone_number"`
	VerificationStatus string     `db:"verification_status" json:"verification_status"`
	IsOnboarded        bool       `db:"is_onboarded" json:"is_onboarded"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`

	Specialties []Specialty `db:"-" json:"specialties"`
}

// Specialty is a dictionary entry. Names are unique; new names submitted by
// counselors are created on first use.
type Specialty struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}

// SpecialtySelection is the profile form's mixed input: existing dictionary
// ids plus free-form names to create.
type SpecialtySelection struct {
	IDs   []uuid.UUID `json:"ids"`
	Names []string    `json:"names"`
}

// ProfileUpdate carries the editable fields of a profile save.
type ProfileUpdate struct {
	FullName          string             `json:"full_name"`
	ProfessionalTitle string             `json:"professional_title"`
	Bio               string             `json:"bio"`
	ExperienceYears   int                `json:"experience_years"`
	HourlyRate        float64            `json:"hourly_rate"`
	DateOfBirth       *time.Time         `json:"date_of_birth,omitempty"`
	PhoneNumber       string             `json:"phone_number"`
	Specialties       SpecialtySelection `json:"specialties"`
}
