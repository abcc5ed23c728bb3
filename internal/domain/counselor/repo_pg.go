package counselor

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindlens/mindlens-api/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Profile Repository ===========

type profileRepoPG struct{ pool *pgxpool.Pool }

func NewProfileRepoPG(pool *pgxpool.Pool) ProfileRepository { return &profileRepoPG{pool: pool} }

func (r *profileRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const profileCols = `id, user_id, full_name, professional_title, bio, experience_years,
	hourly_rate, date_of_birth, phone_number, verification_status, is_onboarded,
	created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.ProfessionalTitle, &p.Bio,
		&p.ExperienceYears, &p.HourlyRate, &p.DateOfBirth, &p.PhoneNumber,
		&p.VerificationStatus, &p.IsOnboarded, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return scanProfile(r.conn(ctx).QueryRow(ctx,
		`SELECT `+profileCols+` FROM counselor_profile WHERE id = $1`, id))
}

func (r *profileRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return scanProfile(r.conn(ctx).QueryRow(ctx,
		`SELECT `+profileCols+` FROM counselor_profile WHERE user_id = $1`, userID))
}

func (r *profileRepoPG) Update(ctx context.Context, id uuid.UUID, upd ProfileUpdate) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE counselor_profile
		SET full_name = $2, professional_title = $3, bio = $4, experience_years = $5,
		    hourly_rate = $6, date_of_birth = $7, phone_number = $8,
		    is_onboarded = TRUE, updated_at = NOW()
		WHERE id = $1`,
		id, upd.FullName, upd.ProfessionalTitle, upd.Bio, upd.ExperienceYears,
		upd.HourlyRate, upd.DateOfBirth, upd.PhoneNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *profileRepoPG) ListSpecialtiesFor(ctx context.Context, counselorID uuid.UUID) ([]Specialty, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT st.id, st.name
		FROM counselor_specialty cs
		JOIN specialty_type st ON st.id = cs.specialty_id
		WHERE cs.counselor_id = $1
		ORDER BY st.name`, counselorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSpecialties(rows)
}

func (r *profileRepoPG) ReplaceSpecialtyLinks(ctx context.Context, counselorID uuid.UUID, specialtyIDs []uuid.UUID) error {
	conn := r.conn(ctx)
	if _, err := conn.Exec(ctx,
		`DELETE FROM counselor_specialty WHERE counselor_id = $1`, counselorID); err != nil {
		return err
	}
	for _, sid := range specialtyIDs {
		if _, err := conn.Exec(ctx, `
			INSERT INTO counselor_specialty (counselor_id, specialty_id)
			VALUES ($1, $2)`, counselorID, sid); err != nil {
			return err
		}
	}
	return nil
}

// =========== Specialty Repository ===========

type specialtyRepoPG struct{ pool *pgxpool.Pool }

func NewSpecialtyRepoPG(pool *pgxpool.Pool) SpecialtyRepository { return &specialtyRepoPG{pool: pool} }

func (r *specialtyRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *specialtyRepoPG) List(ctx context.Context) ([]Specialty, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name FROM specialty_type ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSpecialties(rows)
}

func (r *specialtyRepoPG) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Specialty, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name FROM specialty_type WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSpecialties(rows)
}

func (r *specialtyRepoPG) GetOrCreateByName(ctx context.Context, name string) (*Specialty, error) {
	conn := r.conn(ctx)

	var sp Specialty
	err := conn.QueryRow(ctx,
		`SELECT id, name FROM specialty_type WHERE LOWER(name) = LOWER($1)`, name).
		Scan(&sp.ID, &sp.Name)
	if err == nil {
		return &sp, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Insert racing with another creator of the same name resolves through
	// the unique index: on conflict nothing is inserted and the winning row
	// is read back.
	sp = Specialty{ID: uuid.New(), Name: name}
	tag, err := conn.Exec(ctx, `
		INSERT INTO specialty_type (id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING`, sp.ID, sp.Name)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 1 {
		return &sp, nil
	}
	err = conn.QueryRow(ctx,
		`SELECT id, name FROM specialty_type WHERE LOWER(name) = LOWER($1)`, name).
		Scan(&sp.ID, &sp.Name)
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func collectSpecialties(rows pgx.Rows) ([]Specialty, error) {
	var items []Specialty
	for rows.Next() {
		var sp Specialty
		if err := rows.Scan(&sp.ID, &sp.Name); err != nil {
			return nil, err
		}
		items = append(items, sp)
	}
	return items, rows.Err()
}
