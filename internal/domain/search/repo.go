package search

import "context"

// Repository returns every counselor matching the store-level filters of
// params, with review and availability aggregates attached. The rating
// floor, ordering and pagination are applied by the service on top.
type Repository interface {
	Search(ctx context.Context, params Params) ([]*Result, error)
}
