package search

import (
	"time"

	"github.com/google/uuid"
)

// Sort orders accepted by the search endpoint.
const (
	SortByRating     = "rating"
	SortByExperience = "experience"
)

// Params are the search filters. Zero values mean "not filtered".
type Params struct {
	Query         string     // free text over name, title and specialty names
	SpecialtyID   uuid.UUID  // exact specialty match
	AvailableOn   *time.Time // has a free slot on this calendar day
	MinRating     float64    // applied after aggregation
	MinExperience int
	SortBy        string // rating (default) or experience
}

// Result is one ranked counselor card.
type Result struct {
	CounselorID       uuid.UUID  `json:"counselor_id"`
	FullName          string     `json:"full_name"`
	ProfessionalTitle string     `json:"professional_title"`
	Bio               string     `json:"bio"`
	ExperienceYears   int        `json:"experience_years"`
	HourlyRate        float64    `json:"hourly_rate"`
	Specialties       []string   `json:"specialties"`
	AvgRating         float64    `json:"avg_rating"` // 1 decimal, 0 when unreviewed
	TotalReviews      int        `json:"total_reviews"`
	NextAvailable     *time.Time `json:"next_available"` // nil when fully booked out
}
