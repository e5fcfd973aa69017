package orchestrators

import (
	"context"
	"errors"
	"testing"

	"clubportal/internal/domain/account"
)

// mockAccountStore implements the account store interfaces used by the
// orchestrators in this package.
type mockAccountStore struct {
	accounts map[string]account.Account
}

func newMockAccountStore(accts ...account.Account) *mockAccountStore {
	m := &mockAccountStore{accounts: make(map[string]account.Account)}
	for _, a := range accts {
		m.accounts[a.ID] = a
	}
	return m
}

// GetByID implements AccountStoreForChangePassword.
func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, errors.New("not found")
	}
	return a, nil
}

// GetByEmail implements AccountStoreForLogin.
func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, errors.New("not found")
}

// Save implements AccountStoreForLogin.
func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.accounts[a.ID] = a
	return nil
}

// Count implements AccountStoreForSeed.
func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

func seededAccount(t *testing.T, password string) account.Account {
	t.Helper()
	acct := account.Account{
		ID:       "a1",
		Email:    "sec@club.org",
		FullName: "Sam Secretary",
		Role:     account.RoleSuperAdmin,
	}
	if err := acct.SetPassword(password); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	return acct
}

// TestExecuteLogin_Success tests a valid credential pair.
func TestExecuteLogin_Success(t *testing.T) {
	store := newMockAccountStore(seededAccount(t, "correct horse battery"))

	res, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "sec@club.org",
		Password: "correct horse battery",
	}, LoginDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AccountID != "a1" || res.Role != account.RoleSuperAdmin {
		t.Errorf("result = %+v", res)
	}
}

// TestExecuteLogin_WrongPassword tests failure counting on bad credentials.
func TestExecuteLogin_WrongPassword(t *testing.T) {
	store := newMockAccountStore(seededAccount(t, "correct horse battery"))

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "sec@club.org",
		Password: "not the password",
	}, LoginDeps{AccountStore: store})
	if err != ErrInvalidCredentials {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
	if store.accounts["a1"].FailedLogins != 1 {
		t.Errorf("FailedLogins = %d, want 1", store.accounts["a1"].FailedLogins)
	}
}

// TestExecuteLogin_Lockout tests that 5 failures lock the account.
func TestExecuteLogin_Lockout(t *testing.T) {
	store := newMockAccountStore(seededAccount(t, "correct horse battery"))

	for i := 0; i < 5; i++ {
		_, _ = ExecuteLogin(context.Background(), LoginInput{
			Email:    "sec@club.org",
			Password: "not the password",
		}, LoginDeps{AccountStore: store})
	}

	// Even the correct password is refused while locked.
	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "sec@club.org",
		Password: "correct horse battery",
	}, LoginDeps{AccountStore: store})
	if err != ErrAccountLocked {
		t.Errorf("got %v, want ErrAccountLocked", err)
	}
}

// TestExecuteLogin_UnknownEmail tests that unknown emails get the same
// generic error as a wrong password.
func TestExecuteLogin_UnknownEmail(t *testing.T) {
	store := newMockAccountStore()
	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "nobody@club.org",
		Password: "whatever it is",
	}, LoginDeps{AccountStore: store})
	if err != ErrInvalidCredentials {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
}

// TestExecuteChangePassword tests the self-service password change.
func TestExecuteChangePassword(t *testing.T) {
	acct := seededAccount(t, "correct horse battery")
	acct.PasswordChangeRequired = true
	store := newMockAccountStore(acct)

	err := ExecuteChangePassword(context.Background(), ChangePasswordInput{
		AccountID:       "a1",
		CurrentPassword: "wrong current one",
		NewPassword:     "a different password",
	}, ChangePasswordDeps{AccountStore: store})
	if err != ErrCurrentPasswordWrong {
		t.Errorf("got %v, want ErrCurrentPasswordWrong", err)
	}

	err = ExecuteChangePassword(context.Background(), ChangePasswordInput{
		AccountID:       "a1",
		CurrentPassword: "correct horse battery",
		NewPassword:     "correct horse battery",
	}, ChangePasswordDeps{AccountStore: store})
	if err != ErrNewPasswordSame {
		t.Errorf("got %v, want ErrNewPasswordSame", err)
	}

	err = ExecuteChangePassword(context.Background(), ChangePasswordInput{
		AccountID:       "a1",
		CurrentPassword: "correct horse battery",
		NewPassword:     "a different password",
	}, ChangePasswordDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updated := store.accounts["a1"]
	if updated.PasswordChangeRequired {
		t.Error("forced change flag should be cleared")
	}
	if err := updated.CheckPassword("a different password"); err != nil {
		t.Errorf("new password not accepted: %v", err)
	}
}

// TestExecuteSeedSuperAdmin tests first-run seeding and idempotence.
func TestExecuteSeedSuperAdmin(t *testing.T) {
	store := newMockAccountStore()
	deps := SeedSuperAdminDeps{AccountStore: store}

	if err := ExecuteSeedSuperAdmin(context.Background(), deps, "sec@club.org", "a seed password!", "Sam Secretary"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(store.accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(store.accounts))
	}
	for _, a := range store.accounts {
		if a.Role != account.RoleSuperAdmin {
			t.Errorf("seeded role = %s, want super_admin", a.Role)
		}
		if !a.PasswordChangeRequired {
			t.Error("seeded account should require a password change")
		}
	}

	// Second run is a no-op.
	if err := ExecuteSeedSuperAdmin(context.Background(), deps, "other@club.org", "a seed password!", "Other"); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if len(store.accounts) != 1 {
		t.Errorf("accounts after second seed = %d, want 1", len(store.accounts))
	}
}
