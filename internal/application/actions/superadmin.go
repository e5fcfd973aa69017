package actions

import (
	"context"
	"log/slog"

	"clubportal/internal/adapters/email"
	"clubportal/internal/application/gate"
	"clubportal/internal/domain/account"
)

// DeleteMemberInput carries input for member deletion.
type DeleteMemberInput struct {
	ActorID  string
	TargetID string
}

// DeleteMemberDeps holds dependencies for ExecuteDeleteMember.
type DeleteMemberDeps struct {
	Accounts   gate.AccountStore
	Privileged PrivilegedAccountStore
}

// ExecuteDeleteMember removes an account. General Secretary only.
// PRE: TargetID identifies the account to remove
// POST: account row deleted, or an error result
func ExecuteDeleteMember(ctx context.Context, input DeleteMemberInput, deps DeleteMemberDeps) ActionResult {
	auth, err := gate.Check(ctx, input.ActorID, account.RoleSuperAdmin, deps.Accounts)
	if err != nil {
		return fail("Unauthorized")
	}
	if input.TargetID == "" {
		return fail("Missing fields")
	}
	if input.TargetID == auth.AccountID {
		return fail("You cannot delete your own account")
	}

	if err := deps.Privileged.Delete(ctx, input.TargetID); err != nil {
		slog.Error("action_event", "event", "delete_member_failed", "target", input.TargetID, "error", err)
		return fail("Failed to delete user")
	}

	slog.Info("action_event", "event", "member_deleted", "target", input.TargetID, "by", auth.AccountID)
	return ok("User deleted successfully")
}

// ResetPasswordInput carries input for a password reset.
type ResetPasswordInput struct {
	ActorID     string
	TargetID    string
	NewPassword string
}

// ResetPasswordDeps holds dependencies for ExecuteResetPassword.
type ResetPasswordDeps struct {
	Accounts   gate.AccountStore
	Privileged PrivilegedAccountStore
	Email      email.Sender // optional
	EmailFrom  string
}

// ExecuteResetPassword sets a new password on the target account.
// General Secretary only. The target must change it on next login.
// PRE: NewPassword is the plaintext chosen by the caller
// POST: target's hash replaced, or an error result
func ExecuteResetPassword(ctx context.Context, input ResetPasswordInput, deps ResetPasswordDeps) ActionResult {
	auth, err := gate.Check(ctx, input.ActorID, account.RoleSuperAdmin, deps.Accounts)
	if err != nil {
		return fail("Unauthorized")
	}
	if input.TargetID == "" || input.NewPassword == "" {
		return fail("Missing fields")
	}

	acct, err := deps.Accounts.GetByID(ctx, input.TargetID)
	if err != nil {
		return fail("Account not found")
	}
	if err := acct.SetPassword(input.NewPassword); err != nil {
		return fail(err.Error())
	}
	acct.PasswordChangeRequired = true
	acct.ResetFailedLogins()

	if err := deps.Privileged.Save(ctx, acct); err != nil {
		slog.Error("action_event", "event", "reset_password_failed", "target", input.TargetID, "error", err)
		return fail("Failed to reset password")
	}

	if deps.Email != nil {
		_, mailErr := deps.Email.Send(ctx, email.SendRequest{
			To:      []string{acct.Email},
			From:    deps.EmailFrom,
			Subject: "Your club portal password was reset",
			HTML:    "<p>The General Secretary has reset your portal password. You will be asked to choose a new one on your next login.</p>",
		})
		if mailErr != nil {
			slog.Warn("action_event", "event", "reset_mail_failed", "email", acct.Email, "error", mailErr)
		}
	}

	slog.Info("action_event", "event", "password_reset", "target", input.TargetID, "by", auth.AccountID)
	return ok("Password reset successfully")
}

// UpdateRoleInput carries input for a role change.
type UpdateRoleInput struct {
	ActorID  string
	TargetID string
	NewRole  account.Role
}

// UpdateRoleDeps holds dependencies for ExecuteUpdateRole.
type UpdateRoleDeps struct {
	Accounts   gate.AccountStore
	Privileged PrivilegedAccountStore
}

// ExecuteUpdateRole changes the target account's role. General Secretary only.
// PRE: NewRole comes straight from the form
// POST: target holds exactly the new role, or an error result
func ExecuteUpdateRole(ctx context.Context, input UpdateRoleInput, deps UpdateRoleDeps) ActionResult {
	auth, err := gate.Check(ctx, input.ActorID, account.RoleSuperAdmin, deps.Accounts)
	if err != nil {
		return fail("Unauthorized")
	}
	if input.TargetID == "" {
		return fail("Missing fields")
	}
	if !account.IsValidRole(input.NewRole) {
		return fail("Invalid role")
	}

	acct, err := deps.Accounts.GetByID(ctx, input.TargetID)
	if err != nil {
		return fail("Account not found")
	}
	acct.Role = input.NewRole

	if err := deps.Privileged.Save(ctx, acct); err != nil {
		slog.Error("action_event", "event", "update_role_failed", "target", input.TargetID, "error", err)
		return fail("Failed to update role")
	}

	slog.Info("action_event", "event", "role_updated", "target", input.TargetID, "role", input.NewRole, "by", auth.AccountID)
	return ok("Role updated successfully")
}
