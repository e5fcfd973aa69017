package projections

import (
	"context"

	activitystore "clubportal/internal/adapters/storage/activity"
	taskstore "clubportal/internal/adapters/storage/task"
	"clubportal/internal/domain/activity"
	"clubportal/internal/domain/task"
)

// GetDashboardQuery carries query parameters.
type GetDashboardQuery struct {
	AccountID string
}

// GetDashboardResult carries the headline counts for the landing page.
type GetDashboardResult struct {
	TotalMembers       int
	MyOpenTasks        int // pending + submitted assigned to the account
	AwaitingVerify     int // submitted, across all members
	UpcomingActivities int
}

// GetDashboardDeps holds dependencies for GetDashboard.
type GetDashboardDeps struct {
	AccountStore  AccountStore
	TaskStore     TaskStore
	ActivityStore ActivityStore
}

// QueryGetDashboard computes the landing-page counters.
// PRE: query.AccountID identifies the signed-in account
// POST: Returns current counts; no caching
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (GetDashboardResult, error) {
	var result GetDashboardResult

	total, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return GetDashboardResult{}, err
	}
	result.TotalMembers = total

	pending, err := deps.TaskStore.Count(ctx, taskstore.ListFilter{
		Status:     task.StatusPending,
		AssignedTo: query.AccountID,
	})
	if err != nil {
		return GetDashboardResult{}, err
	}
	submitted, err := deps.TaskStore.Count(ctx, taskstore.ListFilter{
		Status:     task.StatusSubmitted,
		AssignedTo: query.AccountID,
	})
	if err != nil {
		return GetDashboardResult{}, err
	}
	result.MyOpenTasks = pending + submitted

	awaiting, err := deps.TaskStore.Count(ctx, taskstore.ListFilter{Status: task.StatusSubmitted})
	if err != nil {
		return GetDashboardResult{}, err
	}
	result.AwaitingVerify = awaiting

	upcoming, err := deps.ActivityStore.Count(ctx, activitystore.ListFilter{Status: activity.StatusUpcoming})
	if err != nil {
		return GetDashboardResult{}, err
	}
	result.UpcomingActivities = upcoming

	return result, nil
}
