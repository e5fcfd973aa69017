package projections

import (
	"context"

	accountstore "clubportal/internal/adapters/storage/account"
	"clubportal/internal/domain/account"
)

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	Role account.Role // empty means all roles
}

// MemberRow represents one account in the member directory.
type MemberRow struct {
	ID        string
	FullName  string
	Email     string
	Role      account.Role
	RoleLabel string
	Locked    bool
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members []MemberRow
	Total   int
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	AccountStore AccountStore
}

// QueryGetMemberList retrieves the member directory with display labels.
// PRE: Valid query parameters
// POST: Returns accounts filtered by role, newest first, with human role labels
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps) (GetMemberListResult, error) {
	accounts, err := deps.AccountStore.List(ctx, accountstore.ListFilter{
		Limit:  500,
		Offset: 0,
		Role:   query.Role,
	})
	if err != nil {
		return GetMemberListResult{}, err
	}

	total, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return GetMemberListResult{}, err
	}

	var rows []MemberRow
	for _, a := range accounts {
		rows = append(rows, MemberRow{
			ID:        a.ID,
			FullName:  a.FullName,
			Email:     a.Email,
			Role:      a.Role,
			RoleLabel: a.Role.Label(),
			Locked:    a.IsLocked(),
		})
	}

	return GetMemberListResult{Members: rows, Total: total}, nil
}
