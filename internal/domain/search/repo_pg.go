package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const baseQuery = `
	SELECT cp.id, cp.full_name, cp.professional_title, cp.bio,
	       cp.experience_years, cp.hourly_rate,
	       (
	           SELECT AVG(r.rating)::float
	           FROM review r
	           JOIN appointment a ON a.id = r.appointment_id
	           WHERE r.counselor_id = cp.id AND a.status = 'COMPLETED'
	       ) AS avg_rating,
	       (
	           SELECT COUNT(*)
	           FROM review r
	           JOIN appointment a ON a.id = r.appointment_id
	           WHERE r.counselor_id = cp.id AND a.status = 'COMPLETED'
	       ) AS total_reviews,
	       (
	           SELECT MIN(s.start_time)
	           FROM availability_slot s
	           WHERE s.counselor_id = cp.id
	             AND s.is_booked = FALSE AND s.is_blocked = FALSE
	             AND s.start_time > NOW()
	       ) AS next_available
	FROM counselor_profile cp`

func (r *repoPG) Search(ctx context.Context, params Params) ([]*Result, error) {
	conds := []string{
		"cp.verification_status = 'VERIFIED'",
		"cp.is_onboarded = TRUE",
	}
	var args []interface{}

	if q := strings.TrimSpace(params.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(
			cp.full_name ILIKE $%d OR cp.professional_title ILIKE $%d OR EXISTS (
				SELECT 1 FROM counselor_specialty cs
				JOIN specialty_type st ON st.id = cs.specialty_id
				WHERE cs.counselor_id = cp.id AND st.name ILIKE $%d
			))`, n, n, n))
	}
	if params.SpecialtyID != uuid.Nil {
		args = append(args, params.SpecialtyID)
		conds = append(conds, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM counselor_specialty cs
			WHERE cs.counselor_id = cp.id AND cs.specialty_id = $%d)`, len(args)))
	}
	if params.MinExperience > 0 {
		args = append(args, params.MinExperience)
		conds = append(conds, fmt.Sprintf("cp.experience_years >= $%d", len(args)))
	}
	if params.AvailableOn != nil {
		args = append(args, *params.AvailableOn)
		conds = append(conds, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM availability_slot s
			WHERE s.counselor_id = cp.id
			  AND s.is_booked = FALSE AND s.is_blocked = FALSE
			  AND s.start_time >= date_trunc('day', $%d::timestamptz)
			  AND s.start_time < date_trunc('day', $%d::timestamptz) + interval '1 day')`,
			len(args), len(args)))
	}

	query := baseQuery + "\n\tWHERE " + strings.Join(conds, " AND ")

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*Result
	byID := make(map[uuid.UUID]*Result)
	for rows.Next() {
		var res Result
		var avg *float64
		if err := rows.Scan(&res.CounselorID, &res.FullName, &res.ProfessionalTitle, &res.Bio,
			&res.ExperienceYears, &res.HourlyRate, &avg, &res.TotalReviews,
			&res.NextAvailable); err != nil {
			return nil, err
		}
		res.AvgRating = roundRating(avg)
		res.Specialties = []string{}
		results = append(results, &res)
		byID[res.CounselorID] = &res
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return results, nil
	}

	if err := r.attachSpecialties(ctx, byID); err != nil {
		return nil, err
	}
	return results, nil
}

// roundRating rounds an average rating to one decimal place. Counselors
// without completed-session reviews score zero.
func roundRating(avg *float64) float64 {
	if avg == nil {
		return 0
	}
	return math.Round(*avg*10) / 10
}

func (r *repoPG) attachSpecialties(ctx context.Context, byID map[uuid.UUID]*Result) error {
	ids := make([]uuid.UUID, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT cs.counselor_id, st.name
		FROM counselor_specialty cs
		JOIN specialty_type st ON st.id = cs.specialty_id
		WHERE cs.counselor_id = ANY($1)
		ORDER BY st.name`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var counselorID uuid.UUID
		var name string
		if err := rows.Scan(&counselorID, &name); err != nil {
			return err
		}
		if res, ok := byID[counselorID]; ok {
			res.Specialties = append(res.Specialties, name)
		}
	}
	return rows.Err()
}
