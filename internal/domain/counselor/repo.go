package counselor

import (
	"context"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	// Update persists the editable profile fields and marks the profile
	// onboarded. Runs inside the caller's transaction.
	Update(ctx context.Context, id uuid.UUID, upd ProfileUpdate) error
	ListSpecialtiesFor(ctx context.Context, counselorID uuid.UUID) ([]Specialty, error)
	// ReplaceSpecialtyLinks swaps the counselor's specialty set wholesale.
	ReplaceSpecialtyLinks(ctx context.Context, counselorID uuid.UUID, specialtyIDs []uuid.UUID) error
}

type SpecialtyRepository interface {
	List(ctx context.Context) ([]Specialty, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Specialty, error)
	// GetOrCreateByName returns the existing specialty with the given name or
	// creates it. Name matching is case-insensitive; the stored casing of an
	// existing entry wins.
	GetOrCreateByName(ctx context.Context, name string) (*Specialty, error)
}
