package activity

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// Status is the lifecycle state of an activity.
type Status string

// Activity status constants.
const (
	StatusUpcoming Status = "upcoming"
	StatusDone     Status = "done"
)

// Domain errors
var (
	ErrEmptyTitle    = errors.New("title cannot be empty")
	ErrEmptyDate     = errors.New("activity date is required")
	ErrInvalidStatus = errors.New("status must be 'upcoming' or 'done'")
)

// Activity represents a club activity with zero or more lead accounts.
// Leads are attached at creation; membership only, no ordering guarantee.
type Activity struct {
	ID          string
	Title       string
	Description string
	Date        time.Time
	Status      Status
	CreatedBy   string // account ID
	CreatedAt   time.Time
	LeadIDs     []string
}

// IsValidStatus returns true if s is one of the closed status set.
func IsValidStatus(s Status) bool {
	return s == StatusUpcoming || s == StatusDone
}

// Validate checks the activity's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyTitle
	}
	if len(a.Title) > MaxTitleLength {
		return errors.New("title cannot exceed 200 characters")
	}
	if len(a.Description) > MaxDescriptionLength {
		return errors.New("description cannot exceed 2000 characters")
	}
	if a.Date.IsZero() {
		return ErrEmptyDate
	}
	if !IsValidStatus(a.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// HasLead returns true if the given account id is in the lead set.
// INVARIANT: Activity fields are not mutated
func (a *Activity) HasLead(accountID string) bool {
	for _, id := range a.LeadIDs {
		if id == accountID {
			return true
		}
	}
	return false
}

// IsPast returns true if the activity date is before the given day.
// PRE: now is the current time
// POST: returns true if Date falls on an earlier calendar day
func (a *Activity) IsPast(now time.Time) bool {
	return a.Date.Format("2006-01-02") < now.Format("2006-01-02")
}
