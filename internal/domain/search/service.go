package search

import (
	"context"
	"sort"

	"github.com/mindlens/mindlens-api/pkg/pagination"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search runs the store-level filters, then applies the rating floor,
// ranking and pagination. The rating floor cannot be pushed into the store
// predicate because avg_rating only exists after aggregation.
func (s *Service) Search(ctx context.Context, params Params, pg pagination.Params) (*pagination.Response, error) {
	results, err := s.repo.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	if params.MinRating > 0 {
		kept := results[:0]
		for _, r := range results {
			if r.AvgRating >= params.MinRating {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	rank(results, params.SortBy)

	total := len(results)
	start := pg.Offset()
	if start > total {
		start = total
	}
	end := start + pg.PageSize
	if end > total {
		end = total
	}
	page := results[start:end]
	if page == nil {
		page = []*Result{}
	}

	return pagination.NewResponse(page, total, pg), nil
}

// rank orders results by the requested dimension descending, breaking ties
// by counselor id so pages are stable between requests.
func rank(results []*Result, sortBy string) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		switch sortBy {
		case SortByExperience:
			if a.ExperienceYears != b.ExperienceYears {
				return a.ExperienceYears > b.ExperienceYears
			}
		default:
			if a.AvgRating != b.AvgRating {
				return a.AvgRating > b.AvgRating
			}
		}
		return a.CounselorID.String() < b.CounselorID.String()
	})
}
