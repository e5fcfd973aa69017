package actions

import (
	"context"
	"fmt"
	"log/slog"

	"clubportal/internal/adapters/email"
	"clubportal/internal/application/gate"
	"clubportal/internal/domain/account"
)

// PrivilegedAccountStore is the capability for writes that bypass
// caller-scoped restrictions: account creation, deletion, password resets and
// role updates. It is constructed once in main and handed only to the
// operations that need it; read paths never see it.
type PrivilegedAccountStore interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Delete(ctx context.Context, id string) error
}

// CreateUserInput carries the typed form input for user creation.
type CreateUserInput struct {
	ActorID  string // caller's session account id
	Email    string
	Password string
	FullName string
	Role     account.Role
}

// CreateUserDeps holds dependencies for ExecuteCreateUser.
type CreateUserDeps struct {
	Accounts   gate.AccountStore
	Privileged PrivilegedAccountStore
	Email      email.Sender // optional; nil disables the credentials mail
	EmailFrom  string
	GenerateID func() string
	Now        NowFunc
}

// ExecuteCreateUser creates a new account. General Secretary only.
// PRE: input fields come straight from the form, unvalidated
// POST: account persisted with hashed password, or an error result
func ExecuteCreateUser(ctx context.Context, input CreateUserInput, deps CreateUserDeps) ActionResult {
	auth, err := gate.Check(ctx, input.ActorID, account.RoleSuperAdmin, deps.Accounts)
	if err == gate.ErrForbidden {
		return fail("Unauthorized: Only General Secretary can create users")
	}
	if err != nil {
		return fail("Unauthorized")
	}

	if input.Email == "" || input.Password == "" || input.FullName == "" || input.Role == "" {
		return fail("Missing fields")
	}

	if _, err := deps.Privileged.GetByEmail(ctx, input.Email); err == nil {
		return fail("An account with this email already exists")
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     input.Email,
		FullName:  input.FullName,
		Role:      input.Role,
		CreatedAt: deps.Now(),
		// First login with a password someone else chose forces a change.
		PasswordChangeRequired: true,
	}
	if err := acct.Validate(); err != nil {
		return fail(err.Error())
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return fail(err.Error())
	}

	if err := deps.Privileged.Save(ctx, acct); err != nil {
		slog.Error("action_event", "event", "create_user_failed", "email", input.Email, "error", err)
		return fail("Failed to create user")
	}

	sendCredentialsMail(ctx, deps, acct)

	slog.Info("action_event", "event", "user_created", "email", input.Email, "role", input.Role, "by", auth.AccountID)
	return ok("User created successfully")
}

// sendCredentialsMail mails initial credentials best-effort. Delivery failure
// never fails the operation.
func sendCredentialsMail(ctx context.Context, deps CreateUserDeps, acct account.Account) {
	if deps.Email == nil {
		return
	}
	_, err := deps.Email.Send(ctx, email.SendRequest{
		To:      []string{acct.Email},
		From:    deps.EmailFrom,
		Subject: "Your club portal account",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>An account has been created for you on the club portal as <strong>%s</strong>. Sign in with this email address; you will be asked to choose your own password on first login.</p>",
			acct.FullName, acct.Role.Label()),
	})
	if err != nil {
		slog.Warn("action_event", "event", "credentials_mail_failed", "email", acct.Email, "error", err)
	}
}
