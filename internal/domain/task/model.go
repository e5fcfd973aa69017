package task

import (
	"errors"
	"strings"
	"time"

	"clubportal/internal/domain/account"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// Status is the lifecycle state of a task.
type Status string

// Task status constants. A task starts pending; verified is terminal.
const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusVerified  Status = "verified"
)

// ValidStatuses contains all valid task status values.
var ValidStatuses = []Status{StatusPending, StatusSubmitted, StatusVerified}

// Domain errors
var (
	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrEmptyAssignee     = errors.New("task must have an assignee")
	ErrInvalidStatus     = errors.New("status must be one of: pending, submitted, verified")
	ErrIllegalTransition = errors.New("no such status transition")
	ErrNotAssignee       = errors.New("only the assigned account can submit this task")
	ErrNotAdmin          = errors.New("only admins can verify or reject tasks")
)

// Task holds state for the Task concept.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	AssignedTo  string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// transition is a (from, to) pair in the status lifecycle.
type transition struct {
	From Status
	To   Status
}

// rule describes who may trigger a transition. Exactly one of the two
// conditions applies per rule.
type rule struct {
	AssigneeOnly bool
	MinRole      account.Role
}

// transitionRules is the full legality table for the task lifecycle.
// Any (from, to) pair not present here is illegal.
var transitionRules = map[transition]rule{
	{StatusPending, StatusSubmitted}:  {AssigneeOnly: true},
	{StatusSubmitted, StatusVerified}: {MinRole: account.RoleAdmin},
	{StatusSubmitted, StatusPending}:  {MinRole: account.RoleAdmin}, // rejection
}

// IsValidStatus returns true if s is one of the closed status set.
func IsValidStatus(s Status) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Validate checks if the Task has valid data.
// PRE: Task struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if len(t.Title) > MaxTitleLength {
		return errors.New("title cannot exceed 200 characters")
	}
	if len(t.Description) > MaxDescriptionLength {
		return errors.New("description cannot exceed 2000 characters")
	}
	if t.AssignedTo == "" {
		return ErrEmptyAssignee
	}
	if !IsValidStatus(t.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Transition moves the task to a new status if the lifecycle table permits it
// for this actor. Rejected transitions leave the task unchanged.
// PRE: actorID and actorRole identify the caller
// POST: Status and UpdatedAt set on success; no mutation on error
func (t *Task) Transition(to Status, actorID string, actorRole account.Role, now time.Time) error {
	r, ok := transitionRules[transition{t.Status, to}]
	if !ok {
		return ErrIllegalTransition
	}
	if r.AssigneeOnly && actorID != t.AssignedTo {
		return ErrNotAssignee
	}
	if r.MinRole != "" && !account.HasRole(actorRole, r.MinRole) {
		return ErrNotAdmin
	}
	t.Status = to
	t.UpdatedAt = now
	return nil
}

// Submit marks a pending task as submitted by its assignee.
// PRE: actorID is the caller's account id
// POST: Status is submitted on success
func (t *Task) Submit(actorID string, now time.Time) error {
	return t.Transition(StatusSubmitted, actorID, "", now)
}

// Verify marks a submitted task as verified by an admin-tier actor.
// PRE: actorRole is the caller's role
// POST: Status is verified on success
func (t *Task) Verify(actorRole account.Role, now time.Time) error {
	return t.Transition(StatusVerified, "", actorRole, now)
}

// Reject sends a submitted task back to pending.
// PRE: actorRole is the caller's role
// POST: Status is pending on success
func (t *Task) Reject(actorRole account.Role, now time.Time) error {
	return t.Transition(StatusPending, "", actorRole, now)
}
