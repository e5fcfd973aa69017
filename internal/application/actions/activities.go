package actions

import (
	"context"
	"log/slog"
	"time"

	"clubportal/internal/application/gate"
	"clubportal/internal/domain/account"
	"clubportal/internal/domain/activity"
)

// PrivilegedActivityStore is the capability for activity writes. Lead rows
// are attached in a separate insert after the activity row; the two writes
// are deliberately not wrapped in a transaction (see ExecuteCreateActivity).
type PrivilegedActivityStore interface {
	Save(ctx context.Context, a activity.Activity) error
	AttachLeads(ctx context.Context, activityID string, leadIDs []string) error
}

// CreateActivityInput carries the typed form input for activity creation.
type CreateActivityInput struct {
	ActorID     string
	Title       string
	Description string
	Date        string // form date, "2006-01-02"
	Status      activity.Status
	LeadIDs     []string
}

// CreateActivityDeps holds dependencies for ExecuteCreateActivity.
type CreateActivityDeps struct {
	Accounts   gate.AccountStore
	Privileged PrivilegedActivityStore
	GenerateID func() string
	Now        NowFunc
}

// ExecuteCreateActivity creates an activity and attaches its leads.
// Admin tier or above. The activity insert and the lead insert are two
// separate writes: if the second fails the activity stays, and the result
// carries a distinct partial-success message rather than rolling back or
// pretending everything worked.
// PRE: input fields come straight from the form, unvalidated
// POST: activity persisted; lead rows persisted unless partial failure
func ExecuteCreateActivity(ctx context.Context, input CreateActivityInput, deps CreateActivityDeps) ActionResult {
	auth, err := gate.Check(ctx, input.ActorID, account.RoleAdmin, deps.Accounts)
	if err == gate.ErrForbidden {
		return fail("Only admins can create activities")
	}
	if err != nil {
		return fail("Unauthorized")
	}

	if input.Title == "" || input.Date == "" {
		return fail("Title and date are required")
	}
	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return fail("Date must be in YYYY-MM-DD format")
	}

	status := input.Status
	if status == "" {
		status = activity.StatusUpcoming
	}

	act := activity.Activity{
		ID:          deps.GenerateID(),
		Title:       input.Title,
		Description: input.Description,
		Date:        date,
		Status:      status,
		CreatedBy:   auth.AccountID,
		CreatedAt:   deps.Now(),
		LeadIDs:     input.LeadIDs,
	}
	if err := act.Validate(); err != nil {
		return fail(err.Error())
	}

	if err := deps.Privileged.Save(ctx, act); err != nil {
		slog.Error("action_event", "event", "create_activity_failed", "title", input.Title, "error", err)
		return fail("Failed to create activity")
	}

	if len(act.LeadIDs) > 0 {
		if err := deps.Privileged.AttachLeads(ctx, act.ID, act.LeadIDs); err != nil {
			slog.Error("action_event", "event", "attach_leads_failed", "activity_id", act.ID, "error", err)
			return fail("Activity created but failed to assign leads")
		}
	}

	slog.Info("action_event", "event", "activity_created", "activity_id", act.ID, "leads", len(act.LeadIDs), "by", auth.AccountID)
	return ok("Activity created successfully")
}
