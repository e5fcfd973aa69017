package projections

import (
	"context"

	accountstore "clubportal/internal/adapters/storage/account"
	activitystore "clubportal/internal/adapters/storage/activity"
	"clubportal/internal/domain/activity"
)

// GetActivityListQuery carries query parameters.
type GetActivityListQuery struct {
	Status activity.Status // empty means all
}

// ActivityLead is a resolved lead assignment for display.
type ActivityLead struct {
	AccountID string
	FullName  string
}

// ActivityRow represents one activity with its resolved leads.
type ActivityRow struct {
	ID          string
	Title       string
	Description string
	Date        string // YYYY-MM-DD
	Status      activity.Status
	Leads       []ActivityLead
}

// GetActivityListResult carries the query result.
type GetActivityListResult struct {
	Activities []ActivityRow
}

// GetActivityListDeps holds dependencies for GetActivityList.
type GetActivityListDeps struct {
	ActivityStore ActivityStore
	AccountStore  AccountStore
}

// QueryGetActivityList retrieves activities with lead names resolved.
// PRE: Valid query parameters
// POST: Returns activities ordered by date ascending; leads resolved in one
// account pass, a lead whose account was deleted shows its bare ID
func QueryGetActivityList(ctx context.Context, query GetActivityListQuery, deps GetActivityListDeps) (GetActivityListResult, error) {
	activities, err := deps.ActivityStore.List(ctx, activitystore.ListFilter{
		Limit:  200,
		Offset: 0,
		Status: query.Status,
	})
	if err != nil {
		return GetActivityListResult{}, err
	}

	ids := make([]string, 0, len(activities))
	for _, a := range activities {
		ids = append(ids, a.ID)
	}

	leadsByActivity, err := deps.ActivityStore.ListLeads(ctx, ids)
	if err != nil {
		return GetActivityListResult{}, err
	}

	// Resolve display names once across all activities.
	accounts, err := deps.AccountStore.List(ctx, accountstore.ListFilter{Limit: 500, Offset: 0})
	if err != nil {
		return GetActivityListResult{}, err
	}
	nameByID := make(map[string]string, len(accounts))
	for _, a := range accounts {
		nameByID[a.ID] = a.FullName
	}

	var rows []ActivityRow
	for _, a := range activities {
		row := ActivityRow{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Date:        a.Date.Format("2006-01-02"),
			Status:      a.Status,
		}
		for _, leadID := range leadsByActivity[a.ID] {
			name, ok := nameByID[leadID]
			if !ok {
				name = leadID
			}
			row.Leads = append(row.Leads, ActivityLead{AccountID: leadID, FullName: name})
		}
		rows = append(rows, row)
	}

	return GetActivityListResult{Activities: rows}, nil
}
