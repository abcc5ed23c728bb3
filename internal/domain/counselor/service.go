package counselor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mindlens/mindlens-api/internal/platform/db"
)

type Service struct {
	tx          db.TxRunner
	profiles    ProfileRepository
	specialties SpecialtyRepository
}

func NewService(tx db.TxRunner, profiles ProfileRepository, specialties SpecialtyRepository) *Service {
	return &Service{tx: tx, profiles: profiles, specialties: specialties}
}

// GetProfile returns a counselor profile with its specialties attached.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withSpecialties(ctx, p)
}

// ProfileIDByUser resolves the counselor profile owned by an authenticated
// user. Tokens carry the user id as subject; schedule and slot rows key on
// the profile id, so every counselor-facing endpoint goes through this
// mapping.
func (s *Service) ProfileIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// GetProfileByUser resolves the profile belonging to an authenticated user.
func (s *Service) GetProfileByUser(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withSpecialties(ctx, p)
}

// ListSpecialties returns the full dictionary for the profile form.
func (s *Service) ListSpecialties(ctx context.Context) ([]Specialty, error) {
	return s.specialties.List(ctx)
}

// UpdateProfile saves the editable fields and replaces the counselor's
// specialty set in one transaction. Custom specialty names are resolved
// through the dictionary first, so two counselors typing the same new name
// end up sharing one entry.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*Profile, error) {
	if err := validateUpdate(upd); err != nil {
		return nil, err
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		specialtyIDs, err := s.EnsureSpecialties(ctx, upd.Specialties)
		if err != nil {
			return err
		}
		if err := s.profiles.Update(ctx, id, upd); err != nil {
			return err
		}
		return s.profiles.ReplaceSpecialtyLinks(ctx, id, specialtyIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, id)
}

// EnsureSpecialties resolves a mixed selection of dictionary ids and
// free-form names into a deduplicated id list, creating missing names. Must
// run inside the caller's transaction when used as part of a profile save.
func (s *Service) EnsureSpecialties(ctx context.Context, sel SpecialtySelection) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID

	if len(sel.IDs) > 0 {
		known, err := s.specialties.GetByIDs(ctx, sel.IDs)
		if err != nil {
			return nil, err
		}
		byID := make(map[uuid.UUID]bool, len(known))
		for _, sp := range known {
			byID[sp.ID] = true
		}
		for _, id := range sel.IDs {
			if !byID[id] {
				return nil, fmt.Errorf("%w: unknown specialty id %s", ErrInvalidProfile, id)
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	for _, name := range sel.Names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		sp, err := s.specialties.GetOrCreateByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if !seen[sp.ID] {
			seen[sp.ID] = true
			ids = append(ids, sp.ID)
		}
	}

	return ids, nil
}

func (s *Service) withSpecialties(ctx context.Context, p *Profile) (*Profile, error) {
	specs, err := s.profiles.ListSpecialtiesFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if specs == nil {
		specs = []Specialty{}
	}
	p.Specialties = specs
	return p, nil
}

func validateUpdate(upd ProfileUpdate) error {
	if strings.TrimSpace(upd.FullName) == "" {
		return fmt.Errorf("%w: full name is required", ErrInvalidProfile)
	}
	if upd.ExperienceYears < 0 {
		return fmt.Errorf("%w: experience years cannot be negative", ErrInvalidProfile)
	}
	if upd.HourlyRate < 0 {
		return fmt.Errorf("%w: hourly rate cannot be negative", ErrInvalidProfile)
	}
	return nil
}
