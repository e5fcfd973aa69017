package activity

import (
	"context"

	domain "clubportal/internal/domain/activity"
)

// ListFilter defines criteria for listing activities.
type ListFilter struct {
	Limit  int
	Offset int
	Status domain.Status // empty means all
}

// Store defines persistence operations for activities and their lead
// assignments. AttachLeads is a separate operation from Save: callers that
// need the partial-failure distinction (activity created but leads missing)
// depend on that split.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Activity, error)
	Save(ctx context.Context, entity domain.Activity) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Activity, error)
	Count(ctx context.Context, filter ListFilter) (int, error)

	// AttachLeads replaces the lead set for an activity.
	AttachLeads(ctx context.Context, activityID string, accountIDs []string) error
	// ListLeads returns the account IDs assigned as leads, for the given
	// activity IDs, keyed by activity ID.
	ListLeads(ctx context.Context, activityIDs []string) (map[string][]string, error)
}
