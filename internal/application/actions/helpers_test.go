package actions

import (
	"context"
	"errors"
	"time"

	"clubportal/internal/domain/account"
	"clubportal/internal/domain/activity"
	"clubportal/internal/domain/task"
)

var fixedTime = time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)

var errTest = errors.New("store exploded")

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "new-id-001" }

// mockAccounts implements gate.AccountStore and PrivilegedAccountStore.
type mockAccounts struct {
	accounts map[string]account.Account
	saveErr  error
	delErr   error
}

func newMockAccounts(accts ...account.Account) *mockAccounts {
	m := &mockAccounts{accounts: make(map[string]account.Account)}
	for _, a := range accts {
		m.accounts[a.ID] = a
	}
	return m
}

// GetByID implements gate.AccountStore.
// PRE: id is non-empty
// POST: returns account or error
func (m *mockAccounts) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, errors.New("not found")
	}
	return a, nil
}

// GetByEmail implements PrivilegedAccountStore.
func (m *mockAccounts) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, errors.New("not found")
}

// Save implements PrivilegedAccountStore.
func (m *mockAccounts) Save(_ context.Context, a account.Account) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.accounts[a.ID] = a
	return nil
}

// Delete implements PrivilegedAccountStore.
func (m *mockAccounts) Delete(_ context.Context, id string) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.accounts, id)
	return nil
}

// mockTasks implements TaskStore.
type mockTasks struct {
	tasks   map[string]task.Task
	saveErr error
}

func newMockTasks(tasks ...task.Task) *mockTasks {
	m := &mockTasks{tasks: make(map[string]task.Task)}
	for _, t := range tasks {
		m.tasks[t.ID] = t
	}
	return m
}

// GetByID implements TaskStore.
func (m *mockTasks) GetByID(_ context.Context, id string) (task.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return task.Task{}, errors.New("not found")
	}
	return t, nil
}

// Save implements TaskStore.
func (m *mockTasks) Save(_ context.Context, t task.Task) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.tasks[t.ID] = t
	return nil
}

// TransitionStatus implements TaskStore with the same conditional semantics
// as the SQLite store: the write applies only if the stored status still
// matches from.
func (m *mockTasks) TransitionStatus(_ context.Context, id string, from, to task.Status, updatedAt time.Time) (bool, error) {
	t, ok := m.tasks[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	t.UpdatedAt = updatedAt
	m.tasks[id] = t
	return true, nil
}

// mockActivities implements PrivilegedActivityStore.
type mockActivities struct {
	activities map[string]activity.Activity
	leads      map[string][]string
	saveErr    error
	attachErr  error
}

func newMockActivities() *mockActivities {
	return &mockActivities{
		activities: make(map[string]activity.Activity),
		leads:      make(map[string][]string),
	}
}

// Save implements PrivilegedActivityStore.
func (m *mockActivities) Save(_ context.Context, a activity.Activity) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.activities[a.ID] = a
	return nil
}

// AttachLeads implements PrivilegedActivityStore.
func (m *mockActivities) AttachLeads(_ context.Context, activityID string, leadIDs []string) error {
	if m.attachErr != nil {
		return m.attachErr
	}
	m.leads[activityID] = append(m.leads[activityID], leadIDs...)
	return nil
}

// Standard cast of accounts used across the action tests.
var (
	memberAcct = account.Account{ID: "m1", Email: "member@club.org", FullName: "Morgan Member", Role: account.RoleMember}
	adminAcct  = account.Account{ID: "a1", Email: "admin@club.org", FullName: "Avery Admin", Role: account.RoleAdmin}
	secAcct    = account.Account{ID: "s1", Email: "sec@club.org", FullName: "Sam Secretary", Role: account.RoleSuperAdmin}
)
