package actions

import (
	"context"
	"log/slog"
	"time"

	"clubportal/internal/application/gate"
	"clubportal/internal/domain/account"
	"clubportal/internal/domain/task"
)

// TaskStore defines the task persistence needed by the task operations.
// TransitionStatus performs a conditional update: the write applies only if
// the row still holds the expected current status, so concurrent conflicting
// transitions resolve at the store without an explicit lock token.
type TaskStore interface {
	GetByID(ctx context.Context, id string) (task.Task, error)
	Save(ctx context.Context, t task.Task) error
	TransitionStatus(ctx context.Context, id string, from, to task.Status, updatedAt time.Time) (bool, error)
}

// CreateTaskInput carries the typed form input for task creation.
type CreateTaskInput struct {
	ActorID     string
	Title       string
	Description string
	AssignedTo  string
}

// CreateTaskDeps holds dependencies for ExecuteCreateTask.
type CreateTaskDeps struct {
	Accounts   gate.AccountStore
	Tasks      TaskStore
	GenerateID func() string
	Now        NowFunc
}

// ExecuteCreateTask creates a task targeting exactly one assignee.
// Admin tier or above.
// PRE: input fields come straight from the form, unvalidated
// POST: task persisted with status pending, or an error result
func ExecuteCreateTask(ctx context.Context, input CreateTaskInput, deps CreateTaskDeps) ActionResult {
	auth, err := gate.Check(ctx, input.ActorID, account.RoleAdmin, deps.Accounts)
	if err == gate.ErrForbidden {
		return fail("Only Admins can create tasks")
	}
	if err != nil {
		return fail("Unauthorized")
	}

	if input.Title == "" || input.AssignedTo == "" {
		return fail("Title and Assignee are required")
	}
	if _, err := deps.Accounts.GetByID(ctx, input.AssignedTo); err != nil {
		return fail("Assignee does not exist")
	}

	now := deps.Now()
	tk := task.Task{
		ID:          deps.GenerateID(),
		Title:       input.Title,
		Description: input.Description,
		Status:      task.StatusPending,
		AssignedTo:  input.AssignedTo,
		CreatedBy:   auth.AccountID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tk.Validate(); err != nil {
		return fail(err.Error())
	}

	if err := deps.Tasks.Save(ctx, tk); err != nil {
		slog.Error("action_event", "event", "create_task_failed", "title", input.Title, "error", err)
		return fail("Failed to create task")
	}

	slog.Info("action_event", "event", "task_created", "task_id", tk.ID, "assigned_to", tk.AssignedTo, "by", auth.AccountID)
	return ok("Task created successfully")
}

// SubmitTaskInput carries input for task submission.
type SubmitTaskInput struct {
	ActorID string
	TaskID  string
}

// SubmitTaskDeps holds dependencies for ExecuteSubmitTask.
type SubmitTaskDeps struct {
	Accounts gate.AccountStore
	Tasks    TaskStore
	Now      NowFunc
}

// ExecuteSubmitTask moves a pending task to submitted. Assignee only; even
// admins cannot submit on someone else's behalf.
// PRE: TaskID identifies an existing task
// POST: status submitted, or an error result with no mutation
func ExecuteSubmitTask(ctx context.Context, input SubmitTaskInput, deps SubmitTaskDeps) ActionResult {
	auth, err := gate.Check(ctx, input.ActorID, account.RoleMember, deps.Accounts)
	if err != nil {
		return fail("Unauthorized")
	}
	if input.TaskID == "" {
		return fail("Missing fields")
	}

	tk, err := deps.Tasks.GetByID(ctx, input.TaskID)
	if err != nil {
		return fail("Task not found")
	}

	from := tk.Status
	now := deps.Now()
	if err := tk.Submit(auth.AccountID, now); err != nil {
		return fail(transitionMessage(err))
	}

	applied, err := deps.Tasks.TransitionStatus(ctx, tk.ID, from, tk.Status, now)
	if err != nil {
		slog.Error("action_event", "event", "submit_task_failed", "task_id", tk.ID, "error", err)
		return fail("Failed to submit task")
	}
	if !applied {
		// Someone else moved the task first; the re-read on the next page
		// load shows the current state.
		return fail("Task was updated by someone else, please refresh")
	}

	slog.Info("action_event", "event", "task_submitted", "task_id", tk.ID, "by", auth.AccountID)
	return ok("Task submitted")
}

// VerifyTaskInput carries input for the admin verify/reject decision.
type VerifyTaskInput struct {
	ActorID string
	TaskID  string
	Approve bool // true verifies, false rejects back to pending
}

// VerifyTaskDeps holds dependencies for ExecuteVerifyTask.
type VerifyTaskDeps struct {
	Accounts gate.AccountStore
	Tasks    TaskStore
	Now      NowFunc
}

// ExecuteVerifyTask verifies a submitted task or rejects it back to pending.
// Admin tier or above.
// PRE: TaskID identifies an existing task
// POST: status verified or pending, or an error result with no mutation
func ExecuteVerifyTask(ctx context.Context, input VerifyTaskInput, deps VerifyTaskDeps) ActionResult {
	auth, err := gate.Check(ctx, input.ActorID, account.RoleAdmin, deps.Accounts)
	if err == gate.ErrForbidden {
		return fail("Only Admins can verify tasks")
	}
	if err != nil {
		return fail("Unauthorized")
	}
	if input.TaskID == "" {
		return fail("Missing fields")
	}

	tk, err := deps.Tasks.GetByID(ctx, input.TaskID)
	if err != nil {
		return fail("Task not found")
	}

	from := tk.Status
	now := deps.Now()
	if input.Approve {
		err = tk.Verify(auth.Role, now)
	} else {
		err = tk.Reject(auth.Role, now)
	}
	if err != nil {
		return fail(transitionMessage(err))
	}

	applied, err := deps.Tasks.TransitionStatus(ctx, tk.ID, from, tk.Status, now)
	if err != nil {
		slog.Error("action_event", "event", "verify_task_failed", "task_id", tk.ID, "error", err)
		return fail("Failed to update task")
	}
	if !applied {
		return fail("Task was updated by someone else, please refresh")
	}

	if input.Approve {
		slog.Info("action_event", "event", "task_verified", "task_id", tk.ID, "by", auth.AccountID)
		return ok("Task verified")
	}
	slog.Info("action_event", "event", "task_rejected", "task_id", tk.ID, "by", auth.AccountID)
	return ok("Task sent back to pending")
}

// transitionMessage maps domain transition errors to user-facing messages.
func transitionMessage(err error) string {
	switch err {
	case task.ErrNotAssignee:
		return "Only the assigned account can submit this task"
	case task.ErrNotAdmin:
		return "Only Admins can verify tasks"
	case task.ErrIllegalTransition:
		return "Task is not in a state that allows this"
	default:
		return err.Error()
	}
}
