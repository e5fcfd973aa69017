package actions

import (
	"context"
	"testing"

	"clubportal/internal/domain/activity"
)

func createActivityDeps(accounts *mockAccounts, acts *mockActivities) CreateActivityDeps {
	return CreateActivityDeps{
		Accounts:   accounts,
		Privileged: acts,
		GenerateID: fixedID,
		Now:        fixedNow,
	}
}

// TestExecuteCreateActivity_WithLeads tests that the lead set contains exactly
// the requested ids.
func TestExecuteCreateActivity_WithLeads(t *testing.T) {
	accounts := newMockAccounts(adminAcct)
	acts := newMockActivities()
	res := ExecuteCreateActivity(context.Background(), CreateActivityInput{
		ActorID: "a1",
		Title:   "Movie Night",
		Date:    "2025-01-01",
		LeadIDs: []string{"m1", "m2"},
	}, createActivityDeps(accounts, acts))

	if res.Error {
		t.Fatalf("unexpected failure: %s", res.Message)
	}
	created := acts.activities["new-id-001"]
	if created.Status != activity.StatusUpcoming {
		t.Errorf("default status = %s, want upcoming", created.Status)
	}
	leads := acts.leads["new-id-001"]
	if len(leads) != 2 || leads[0] != "m1" || leads[1] != "m2" {
		t.Errorf("lead set = %v, want [m1 m2]", leads)
	}
}

// TestExecuteCreateActivity_ZeroLeads tests that zero leads is valid, not an error.
func TestExecuteCreateActivity_ZeroLeads(t *testing.T) {
	accounts := newMockAccounts(adminAcct)
	acts := newMockActivities()
	res := ExecuteCreateActivity(context.Background(), CreateActivityInput{
		ActorID: "a1",
		Title:   "AGM",
		Date:    "2025-06-01",
	}, createActivityDeps(accounts, acts))

	if res.Error {
		t.Fatalf("unexpected failure: %s", res.Message)
	}
	if len(acts.leads["new-id-001"]) != 0 {
		t.Errorf("lead set = %v, want empty", acts.leads["new-id-001"])
	}
}

// TestExecuteCreateActivity_Validation tests required fields and date format.
func TestExecuteCreateActivity_Validation(t *testing.T) {
	accounts := newMockAccounts(adminAcct)
	tests := []struct {
		name  string
		input CreateActivityInput
	}{
		{"missing title", CreateActivityInput{ActorID: "a1", Date: "2025-01-01"}},
		{"missing date", CreateActivityInput{ActorID: "a1", Title: "x"}},
		{"bad date", CreateActivityInput{ActorID: "a1", Title: "x", Date: "January first"}},
		{"bad status", CreateActivityInput{ActorID: "a1", Title: "x", Date: "2025-01-01", Status: "cancelled"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acts := newMockActivities()
			res := ExecuteCreateActivity(context.Background(), tt.input, createActivityDeps(accounts, acts))
			if !res.Error {
				t.Fatal("expected error result")
			}
			if len(acts.activities) != 0 {
				t.Error("activity created despite validation failure")
			}
		})
	}
}

// TestExecuteCreateActivity_Gate tests that members cannot create activities.
func TestExecuteCreateActivity_Gate(t *testing.T) {
	accounts := newMockAccounts(memberAcct, secAcct)
	acts := newMockActivities()

	res := ExecuteCreateActivity(context.Background(), CreateActivityInput{
		ActorID: "m1", Title: "x", Date: "2025-01-01",
	}, createActivityDeps(accounts, acts))
	if !res.Error || res.Message != "Only admins can create activities" {
		t.Errorf("member: got %+v", res)
	}

	res = ExecuteCreateActivity(context.Background(), CreateActivityInput{
		ActorID: "s1", Title: "x", Date: "2025-01-01",
	}, createActivityDeps(accounts, acts))
	if res.Error {
		t.Errorf("super_admin: unexpected denial: %s", res.Message)
	}
}

// TestExecuteCreateActivity_PartialFailure tests the non-transactional
// two-step write: the activity survives a failed lead attachment and the
// message is distinct from a total failure.
func TestExecuteCreateActivity_PartialFailure(t *testing.T) {
	accounts := newMockAccounts(adminAcct)
	acts := newMockActivities()
	acts.attachErr = errTest

	res := ExecuteCreateActivity(context.Background(), CreateActivityInput{
		ActorID: "a1",
		Title:   "Movie Night",
		Date:    "2025-01-01",
		LeadIDs: []string{"m1"},
	}, createActivityDeps(accounts, acts))

	if !res.Error {
		t.Fatal("expected error result")
	}
	if res.Message != "Activity created but failed to assign leads" {
		t.Errorf("message = %q, want distinct partial-failure message", res.Message)
	}
	if _, exists := acts.activities["new-id-001"]; !exists {
		t.Error("activity should survive the failed lead attachment")
	}
}

// TestExecuteCreateActivity_TotalFailure tests that a failed primary insert
// reports differently from the partial path.
func TestExecuteCreateActivity_TotalFailure(t *testing.T) {
	accounts := newMockAccounts(adminAcct)
	acts := newMockActivities()
	acts.saveErr = errTest

	res := ExecuteCreateActivity(context.Background(), CreateActivityInput{
		ActorID: "a1",
		Title:   "Movie Night",
		Date:    "2025-01-01",
	}, createActivityDeps(accounts, acts))

	if !res.Error || res.Message != "Failed to create activity" {
		t.Errorf("got %+v", res)
	}
}
