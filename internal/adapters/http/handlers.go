package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"clubportal/internal/adapters/http/middleware"
	"clubportal/internal/application/actions"
	"clubportal/internal/application/orchestrators"
	"clubportal/internal/application/projections"
	accountDomain "clubportal/internal/domain/account"
	activityDomain "clubportal/internal/domain/activity"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

const templatesDir = "internal/adapters/http/templates"

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())

	funcMap := template.FuncMap{
		"currentRole":  func() string { return string(sess.Role) },
		"currentName":  func() string { return sess.FullName },
		"currentEmail": func() string { return sess.Email },
		"isLoggedIn":   func() bool { return loggedIn },
		"isAdmin":      func() bool { return loggedIn && accountDomain.HasRole(sess.Role, accountDomain.RoleAdmin) },
		"isSuperAdmin": func() bool { return loggedIn && accountDomain.HasRole(sess.Role, accountDomain.RoleSuperAdmin) },
		"csrfToken":    func() string { return csrf.Token(r) },
		"roleLabel":    func(role string) string { return accountDomain.Role(role).Label() },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// redirectWithResult encodes the action outcome into flash query params.
// Failures land in "err", successes in "msg"; the message is never empty.
func redirectWithResult(w http.ResponseWriter, r *http.Request, path string, result actions.ActionResult) {
	q := url.Values{}
	if result.Error {
		q.Set("err", result.Message)
	} else if result.Message != "" {
		q.Set("msg", result.Message)
	}
	target := path
	if encoded := q.Encode(); encoded != "" {
		target += "?" + encoded
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// flashFromQuery extracts the flash params set by redirectWithResult.
func flashFromQuery(r *http.Request) (msg, errMsg string) {
	return r.URL.Query().Get("msg"), r.URL.Query().Get("err")
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", handleIndex)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)
	mux.HandleFunc("/change-password", handleChangePassword)

	mux.Handle("/dashboard", middleware.RequireAuth(http.HandlerFunc(handleDashboard)))
	mux.Handle("/members", middleware.RequireAuth(http.HandlerFunc(handleMembers)))
	mux.Handle("/tasks", middleware.RequireAuth(http.HandlerFunc(handleTasks)))
	mux.Handle("/tasks/create", middleware.RequireAuth(http.HandlerFunc(handleCreateTask)))
	mux.Handle("/tasks/submit", middleware.RequireAuth(http.HandlerFunc(handleSubmitTask)))
	mux.Handle("/tasks/verify", middleware.RequireAuth(http.HandlerFunc(handleVerifyTask)))
	mux.Handle("/activities", middleware.RequireAuth(http.HandlerFunc(handleActivities)))
	mux.Handle("/activities/create", middleware.RequireAuth(http.HandlerFunc(handleCreateActivity)))

	// The page gate keeps non-secretary accounts off the admin screens; the
	// actions behind them still re-check the stored role on every call.
	mux.Handle("/admin/users", middleware.RequireRole(accountDomain.RoleSuperAdmin)(http.HandlerFunc(handleAdminUsers)))
	mux.Handle("/admin/users/delete", middleware.RequireAuth(http.HandlerFunc(handleDeleteUser)))
	mux.Handle("/admin/users/reset-password", middleware.RequireAuth(http.HandlerFunc(handleResetPassword)))
	mux.Handle("/admin/users/role", middleware.RequireAuth(http.HandlerFunc(handleUpdateRole)))

	mux.Handle("/admin/perf", middleware.RequireRole(accountDomain.RoleAdmin)(http.HandlerFunc(handlePerfSnapshot)))
}

// handleIndex redirects to the dashboard or the login form.
func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleLogin handles GET (form) and POST (authenticate) for /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// If already logged in, redirect to dashboard
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.LoginInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}
		deps := orchestrators.LoginDeps{
			AccountStore: stores.AccountStore,
		}

		result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
		if err != nil {
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		token, err := sessions.Create(result.AccountID, result.Email, result.FullName, result.Role)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		middleware.SetSessionCookie(w, token)
		if result.PasswordChangeRequired {
			http.Redirect(w, r, "/change-password", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie("portal_session")
	if err == nil {
		sessions.Delete(cookie.Value)
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleChangePassword handles GET (form) and POST (update) for /change-password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == "GET" {
		renderTemplate(w, r, "change_password.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Form error", http.StatusBadRequest)
			return
		}

		if r.FormValue("NewPassword") != r.FormValue("ConfirmPassword") {
			renderTemplate(w, r, "change_password.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     "New passwords do not match",
			})
			return
		}

		input := orchestrators.ChangePasswordInput{
			AccountID:       session.AccountID,
			CurrentPassword: r.FormValue("CurrentPassword"),
			NewPassword:     r.FormValue("NewPassword"),
		}
		deps := orchestrators.ChangePasswordDeps{
			AccountStore: stores.AccountStore,
		}

		if err := orchestrators.ExecuteChangePassword(r.Context(), input, deps); err != nil {
			renderTemplate(w, r, "change_password.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleDashboard renders the landing page counters.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	result, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		AccountID: session.AccountID,
	}, projections.GetDashboardDeps{
		AccountStore:  stores.AccountStore,
		TaskStore:     stores.TaskStore,
		ActivityStore: stores.ActivityStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "dashboard.html", result)
}

// handleMembers renders the member directory.
func handleMembers(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetMemberList(r.Context(), projections.GetMemberListQuery{
		Role: accountDomain.Role(r.URL.Query().Get("role")),
	}, projections.GetMemberListDeps{
		AccountStore: stores.AccountStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	msg, errMsg := flashFromQuery(r)
	renderTemplate(w, r, "members.html", map[string]any{
		"Members": result.Members,
		"Total":   result.Total,
		"Message": msg,
		"Error":   errMsg,
	})
}

// handleTasks renders the task board. Members see only their own tasks;
// admin tier sees the whole board.
func handleTasks(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	query := projections.GetTaskBoardQuery{}
	if !accountDomain.HasRole(session.Role, accountDomain.RoleAdmin) {
		query.AssignedTo = session.AccountID
	}

	result, err := projections.QueryGetTaskBoard(r.Context(), query, projections.GetTaskBoardDeps{
		TaskStore:    stores.TaskStore,
		AccountStore: stores.AccountStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	msg, errMsg := flashFromQuery(r)
	renderTemplate(w, r, "tasks.html", map[string]any{
		"Pending":   result.Pending,
		"Submitted": result.Submitted,
		"Verified":  result.Verified,
		"Message":   msg,
		"Error":     errMsg,
	})
}

// handleCreateTask handles POST /tasks/create
func handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	session, _ := middleware.GetSessionFromContext(r.Context())

	result := actions.ExecuteCreateTask(r.Context(), actions.CreateTaskInput{
		ActorID:     session.AccountID,
		Title:       strings.TrimSpace(r.FormValue("Title")),
		Description: r.FormValue("Description"),
		AssignedTo:  r.FormValue("AssignedTo"),
	}, actions.CreateTaskDeps{
		Accounts:   stores.AccountStore,
		Tasks:      stores.TaskStore,
		GenerateID: generateID,
		Now:        timeNow,
	})

	redirectWithResult(w, r, "/tasks", result)
}

// handleSubmitTask handles POST /tasks/submit
func handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	session, _ := middleware.GetSessionFromContext(r.Context())

	result := actions.ExecuteSubmitTask(r.Context(), actions.SubmitTaskInput{
		ActorID: session.AccountID,
		TaskID:  r.FormValue("TaskID"),
	}, actions.SubmitTaskDeps{
		Accounts: stores.AccountStore,
		Tasks:    stores.TaskStore,
		Now:      timeNow,
	})

	redirectWithResult(w, r, "/tasks", result)
}

// handleVerifyTask handles POST /tasks/verify with Decision=approve|reject
func handleVerifyTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	session, _ := middleware.GetSessionFromContext(r.Context())

	result := actions.ExecuteVerifyTask(r.Context(), actions.VerifyTaskInput{
		ActorID: session.AccountID,
		TaskID:  r.FormValue("TaskID"),
		Approve: r.FormValue("Decision") == "approve",
	}, actions.VerifyTaskDeps{
		Accounts: stores.AccountStore,
		Tasks:    stores.TaskStore,
		Now:      timeNow,
	})

	redirectWithResult(w, r, "/tasks", result)
}

// handleActivities renders the activity list with resolved leads.
func handleActivities(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetActivityList(r.Context(), projections.GetActivityListQuery{
		Status: activityDomain.Status(r.URL.Query().Get("status")),
	}, projections.GetActivityListDeps{
		ActivityStore: stores.ActivityStore,
		AccountStore:  stores.AccountStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	memberList, err := projections.QueryGetMemberList(r.Context(), projections.GetMemberListQuery{}, projections.GetMemberListDeps{
		AccountStore: stores.AccountStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	msg, errMsg := flashFromQuery(r)
	renderTemplate(w, r, "activities.html", map[string]any{
		"Activities": result.Activities,
		"Members":    memberList.Members,
		"Message":    msg,
		"Error":      errMsg,
	})
}

// handleCreateActivity handles POST /activities/create
func handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	session, _ := middleware.GetSessionFromContext(r.Context())

	result := actions.ExecuteCreateActivity(r.Context(), actions.CreateActivityInput{
		ActorID:     session.AccountID,
		Title:       strings.TrimSpace(r.FormValue("Title")),
		Description: r.FormValue("Description"),
		Date:        r.FormValue("Date"),
		Status:      activityDomain.Status(r.FormValue("Status")),
		LeadIDs:     r.Form["LeadIDs"],
	}, actions.CreateActivityDeps{
		Accounts:   stores.AccountStore,
		Privileged: stores.ActivityStore,
		GenerateID: generateID,
		Now:        timeNow,
	})

	redirectWithResult(w, r, "/activities", result)
}

// handleAdminUsers handles GET (user admin page) and POST (create user)
func handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	if r.Method == "GET" {
		result, err := projections.QueryGetMemberList(r.Context(), projections.GetMemberListQuery{}, projections.GetMemberListDeps{
			AccountStore: stores.AccountStore,
		})
		if err != nil {
			internalError(w, err)
			return
		}

		msg, errMsg := flashFromQuery(r)
		renderTemplate(w, r, "admin_users.html", map[string]any{
			"Members": result.Members,
			"Roles":   []accountDomain.Role{accountDomain.RoleMember, accountDomain.RoleAdmin, accountDomain.RoleSuperAdmin},
			"Message": msg,
			"Error":   errMsg,
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Form error", http.StatusBadRequest)
			return
		}

		result := actions.ExecuteCreateUser(r.Context(), actions.CreateUserInput{
			ActorID:  session.AccountID,
			Email:    strings.TrimSpace(r.FormValue("Email")),
			Password: r.FormValue("Password"),
			FullName: strings.TrimSpace(r.FormValue("FullName")),
			Role:     accountDomain.Role(r.FormValue("Role")),
		}, actions.CreateUserDeps{
			Accounts:   stores.AccountStore,
			Privileged: stores.AccountStore,
			Email:      emailSender,
			EmailFrom:  emailFromAddress,
			GenerateID: generateID,
			Now:        timeNow,
		})

		redirectWithResult(w, r, "/admin/users", result)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleDeleteUser handles POST /admin/users/delete
func handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	session, _ := middleware.GetSessionFromContext(r.Context())
	targetID := r.FormValue("TargetID")

	result := actions.ExecuteDeleteMember(r.Context(), actions.DeleteMemberInput{
		ActorID:  session.AccountID,
		TargetID: targetID,
	}, actions.DeleteMemberDeps{
		Accounts:   stores.AccountStore,
		Privileged: stores.AccountStore,
	})

	if !result.Error {
		// Deleted accounts must not keep working sessions.
		sessions.DeleteByAccountID(targetID)
	}

	redirectWithResult(w, r, "/admin/users", result)
}

// handleResetPassword handles POST /admin/users/reset-password
func handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	session, _ := middleware.GetSessionFromContext(r.Context())

	result := actions.ExecuteResetPassword(r.Context(), actions.ResetPasswordInput{
		ActorID:     session.AccountID,
		TargetID:    r.FormValue("TargetID"),
		NewPassword: r.FormValue("NewPassword"),
	}, actions.ResetPasswordDeps{
		Accounts:   stores.AccountStore,
		Privileged: stores.AccountStore,
		Email:      emailSender,
		EmailFrom:  emailFromAddress,
	})

	redirectWithResult(w, r, "/admin/users", result)
}

// handleUpdateRole handles POST /admin/users/role
func handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	session, _ := middleware.GetSessionFromContext(r.Context())
	targetID := r.FormValue("TargetID")

	result := actions.ExecuteUpdateRole(r.Context(), actions.UpdateRoleInput{
		ActorID:  session.AccountID,
		TargetID: targetID,
		NewRole:  accountDomain.Role(r.FormValue("Role")),
	}, actions.UpdateRoleDeps{
		Accounts:   stores.AccountStore,
		Privileged: stores.AccountStore,
	})

	if !result.Error {
		// Drop the target's sessions so the cached role hint cannot outlive
		// the change.
		sessions.DeleteByAccountID(targetID)
	}

	redirectWithResult(w, r, "/admin/users", result)
}

// handlePerfSnapshot handles GET /admin/perf — JSON snapshot of recent timings.
func handlePerfSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if perfCollector == nil {
		http.Error(w, "perf collection disabled", http.StatusNotFound)
		return
	}

	snap := perfCollector.Snapshot(timeNow().Add(-15*time.Minute), 20)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		internalError(w, err)
	}
}
