// Package gate performs the authorization check that runs before every
// mutating portal operation. The caller's role is read fresh from the account
// store on every call, so a demotion takes effect on the very next action.
package gate

import (
	"context"
	"errors"

	"clubportal/internal/domain/account"
)

// AccountStore defines the store interface needed by the gate.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// Authorized identifies a caller that passed the gate.
type Authorized struct {
	AccountID string
	Email     string
	FullName  string
	Role      account.Role
}

// Denial reasons. Callers render these as user-facing messages.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("insufficient role")
)

// Check resolves the caller's current role and compares it against the
// required tier. The session's cached role string is never trusted; the
// account row is the source of truth.
// PRE: required is a valid role tier
// POST: returns Authorized on permit; ErrUnauthorized or ErrForbidden on deny
// INVARIANT: read-only, no state change on any path
func Check(ctx context.Context, accountID string, required account.Role, store AccountStore) (Authorized, error) {
	if accountID == "" {
		return Authorized{}, ErrUnauthorized
	}
	acct, err := store.GetByID(ctx, accountID)
	if err != nil {
		// Account deleted mid-session: treat as no session at all.
		return Authorized{}, ErrUnauthorized
	}
	if !account.HasRole(acct.Role, required) {
		return Authorized{}, ErrForbidden
	}
	return Authorized{
		AccountID: acct.ID,
		Email:     acct.Email,
		FullName:  acct.FullName,
		Role:      acct.Role,
	}, nil
}
