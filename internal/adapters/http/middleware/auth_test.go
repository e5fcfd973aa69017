package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"clubportal/internal/domain/account"
)

// TestSessionStore_CreateGetDelete verifies the basic session lifecycle.
func TestSessionStore_CreateGetDelete(t *testing.T) {
	ss := NewSessionStore()

	token, err := ss.Create("a1", "alice@test.com", "Alice", account.RoleMember)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if token == "" {
		t.Fatal("Create returned empty token")
	}

	session, ok := ss.Get(token)
	if !ok {
		t.Fatal("Get: session not found")
	}
	if session.AccountID != "a1" || session.Role != account.RoleMember {
		t.Errorf("session = %+v, want a1/member", session)
	}

	ss.Delete(token)
	if _, ok := ss.Get(token); ok {
		t.Error("session still present after Delete")
	}
}

// TestSessionStore_Expiry verifies sessions older than 24 hours are rejected.
func TestSessionStore_Expiry(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("a1", "alice@test.com", "Alice", account.RoleMember)

	ss.mu.Lock()
	s := ss.sessions[token]
	s.CreatedAt = time.Now().Add(-25 * time.Hour)
	ss.sessions[token] = s
	ss.mu.Unlock()

	if _, ok := ss.Get(token); ok {
		t.Error("expired session should not be returned")
	}
}

// TestSessionStore_ConcurrentExpiredGets verifies many requests presenting the
// same expired token can race on the expiry deletion. Run with -race.
func TestSessionStore_ConcurrentExpiredGets(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("a1", "alice@test.com", "Alice", account.RoleMember)

	ss.mu.Lock()
	s := ss.sessions[token]
	s.CreatedAt = time.Now().Add(-25 * time.Hour)
	ss.sessions[token] = s
	ss.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := ss.Get(token); ok {
				t.Error("expired session should not be returned")
			}
		}()
	}
	wg.Wait()

	ss.mu.RLock()
	_, still := ss.sessions[token]
	ss.mu.RUnlock()
	if still {
		t.Error("expired session should have been deleted")
	}
}

// TestSessionStore_DeleteByAccountID verifies all of an account's sessions
// are removed, others untouched.
func TestSessionStore_DeleteByAccountID(t *testing.T) {
	ss := NewSessionStore()
	t1, _ := ss.Create("a1", "alice@test.com", "Alice", account.RoleMember)
	t2, _ := ss.Create("a1", "alice@test.com", "Alice", account.RoleMember)
	t3, _ := ss.Create("a2", "bob@test.com", "Bob", account.RoleAdmin)

	ss.DeleteByAccountID("a1")

	if _, ok := ss.Get(t1); ok {
		t.Error("first a1 session survived")
	}
	if _, ok := ss.Get(t2); ok {
		t.Error("second a1 session survived")
	}
	if _, ok := ss.Get(t3); !ok {
		t.Error("a2 session was removed")
	}
}

// TestAuthMiddleware_SetsContext verifies the cookie session lands in context.
func TestAuthMiddleware_SetsContext(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("a1", "alice@test.com", "Alice", account.RoleAdmin)

	var got Session
	var found bool
	handler := Auth(ss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = GetSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !found {
		t.Fatal("session not found in context")
	}
	if got.AccountID != "a1" || got.Role != account.RoleAdmin {
		t.Errorf("session = %+v, want a1/admin", got)
	}
}

// TestRequireAuth_RedirectsAnonymous verifies unauthenticated requests go to /login.
func TestRequireAuth_RedirectsAnonymous(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

// TestRequireRole_TierGate verifies the role tier ordering at the page gate.
func TestRequireRole_TierGate(t *testing.T) {
	tests := []struct {
		name       string
		role       account.Role
		required   account.Role
		wantStatus int
	}{
		{"member blocked from admin page", account.RoleMember, account.RoleAdmin, http.StatusForbidden},
		{"admin allowed on admin page", account.RoleAdmin, account.RoleAdmin, http.StatusOK},
		{"super admin allowed on admin page", account.RoleSuperAdmin, account.RoleAdmin, http.StatusOK},
		{"admin blocked from super admin page", account.RoleAdmin, account.RoleSuperAdmin, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(tt.required)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/admin", nil)
			req = req.WithContext(ContextWithSession(req.Context(), Session{
				AccountID: "a1",
				Role:      tt.role,
			}))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

// TestRateLimiter_Exhaustion verifies requests are rejected once the bucket empties.
func TestRateLimiter_Exhaustion(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("fourth request should be rejected")
	}
	// Different IP has its own bucket
	if !rl.Allow("10.0.0.2") {
		t.Error("different IP should be allowed")
	}
}

// TestSecurityHeaders verifies the OWASP headers are set.
func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("X-Frame-Options missing")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("X-Content-Type-Options missing")
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("Content-Security-Policy missing")
	}
}
