package projections

import (
	"context"

	activitystore "clubportal/internal/adapters/storage/activity"
	accountstore "clubportal/internal/adapters/storage/account"
	taskstore "clubportal/internal/adapters/storage/task"
	domainAccount "clubportal/internal/domain/account"
	domainActivity "clubportal/internal/domain/activity"
	domainTask "clubportal/internal/domain/task"
)

// AccountStore interface for account queries.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (domainAccount.Account, error)
	List(ctx context.Context, filter accountstore.ListFilter) ([]domainAccount.Account, error)
	Count(ctx context.Context) (int, error)
}

// TaskStore interface for task queries.
type TaskStore interface {
	List(ctx context.Context, filter taskstore.ListFilter) ([]domainTask.Task, error)
	Count(ctx context.Context, filter taskstore.ListFilter) (int, error)
}

// ActivityStore interface for activity queries.
type ActivityStore interface {
	List(ctx context.Context, filter activitystore.ListFilter) ([]domainActivity.Activity, error)
	ListLeads(ctx context.Context, activityIDs []string) (map[string][]string, error)
	Count(ctx context.Context, filter activitystore.ListFilter) (int, error)
}
