package activity_test

import (
	"testing"
	"time"

	"clubportal/internal/domain/activity"
)

var date = time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

// TestActivityValidation tests validation of Activity.
func TestActivityValidation(t *testing.T) {
	tests := []struct {
		name    string
		act     activity.Activity
		wantErr error
	}{
		{
			name:    "valid with leads",
			act:     activity.Activity{Title: "Movie Night", Date: date, Status: activity.StatusUpcoming, LeadIDs: []string{"a", "b"}},
			wantErr: nil,
		},
		{
			name:    "valid with zero leads",
			act:     activity.Activity{Title: "AGM", Date: date, Status: activity.StatusDone},
			wantErr: nil,
		},
		{
			name:    "empty title",
			act:     activity.Activity{Date: date, Status: activity.StatusUpcoming},
			wantErr: activity.ErrEmptyTitle,
		},
		{
			name:    "missing date",
			act:     activity.Activity{Title: "Movie Night", Status: activity.StatusUpcoming},
			wantErr: activity.ErrEmptyDate,
		},
		{
			name:    "invalid status",
			act:     activity.Activity{Title: "Movie Night", Date: date, Status: "cancelled"},
			wantErr: activity.ErrInvalidStatus,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.act.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if tt.wantErr != nil && err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestHasLead tests lead set membership.
func TestHasLead(t *testing.T) {
	act := activity.Activity{LeadIDs: []string{"a1", "a2"}}
	if !act.HasLead("a2") {
		t.Error("expected a2 to be a lead")
	}
	if act.HasLead("a3") {
		t.Error("a3 should not be a lead")
	}
}

// TestIsPast tests calendar-day comparison.
func TestIsPast(t *testing.T) {
	act := activity.Activity{Date: date}
	if act.IsPast(date.Add(6 * time.Hour)) {
		t.Error("same day should not be past")
	}
	if !act.IsPast(date.AddDate(0, 0, 1)) {
		t.Error("next day should be past")
	}
}
