package projections

import (
	"context"

	accountstore "clubportal/internal/adapters/storage/account"
	taskstore "clubportal/internal/adapters/storage/task"
	"clubportal/internal/domain/task"
)

// GetTaskBoardQuery carries query parameters. When AssignedTo is set the
// board is scoped to that member's own tasks.
type GetTaskBoardQuery struct {
	AssignedTo string
}

// TaskRow represents one task with its assignee resolved.
type TaskRow struct {
	ID           string
	Title        string
	Description  string
	Status       task.Status
	AssignedTo   string
	AssigneeName string
}

// GetTaskBoardResult groups tasks by lifecycle status.
type GetTaskBoardResult struct {
	Pending   []TaskRow
	Submitted []TaskRow
	Verified  []TaskRow
}

// GetTaskBoardDeps holds dependencies for GetTaskBoard.
type GetTaskBoardDeps struct {
	TaskStore    TaskStore
	AccountStore AccountStore
}

// QueryGetTaskBoard retrieves tasks grouped into board columns.
// PRE: Valid query parameters
// POST: Every task appears in exactly one column; assignee names resolved,
// a deleted assignee shows its bare ID
func QueryGetTaskBoard(ctx context.Context, query GetTaskBoardQuery, deps GetTaskBoardDeps) (GetTaskBoardResult, error) {
	tasks, err := deps.TaskStore.List(ctx, taskstore.ListFilter{
		Limit:      500,
		Offset:     0,
		AssignedTo: query.AssignedTo,
	})
	if err != nil {
		return GetTaskBoardResult{}, err
	}

	accounts, err := deps.AccountStore.List(ctx, accountstore.ListFilter{Limit: 500, Offset: 0})
	if err != nil {
		return GetTaskBoardResult{}, err
	}
	nameByID := make(map[string]string, len(accounts))
	for _, a := range accounts {
		nameByID[a.ID] = a.FullName
	}

	var result GetTaskBoardResult
	for _, t := range tasks {
		name, ok := nameByID[t.AssignedTo]
		if !ok {
			name = t.AssignedTo
		}
		row := TaskRow{
			ID:           t.ID,
			Title:        t.Title,
			Description:  t.Description,
			Status:       t.Status,
			AssignedTo:   t.AssignedTo,
			AssigneeName: name,
		}
		switch t.Status {
		case task.StatusSubmitted:
			result.Submitted = append(result.Submitted, row)
		case task.StatusVerified:
			result.Verified = append(result.Verified, row)
		default:
			result.Pending = append(result.Pending, row)
		}
	}

	return result, nil
}
