package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "clubportal/internal/adapters/email"
	web "clubportal/internal/adapters/http"
	"clubportal/internal/adapters/http/perf"
	"clubportal/internal/adapters/storage"
	accountStore "clubportal/internal/adapters/storage/account"
	activityStore "clubportal/internal/adapters/storage/activity"
	taskStore "clubportal/internal/adapters/storage/task"
	"clubportal/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	logLevel := slog.LevelInfo
	if os.Getenv("PORTAL_ENV") != "production" {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("PORTAL_DB_PATH", "portal.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	// Run database migrations
	if err := storage.MigrateDB(db, dbPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	// Create store instances (using timed DB for query instrumentation)
	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:  acctStore,
		TaskStore:     taskStore.NewSQLiteStore(timedDB),
		ActivityStore: activityStore.NewSQLiteStore(timedDB),
	}

	// Seed the first General Secretary account if no accounts exist
	adminEmail := envOrDefault("PORTAL_ADMIN_EMAIL", "secretary@clubportal.local")
	adminPassword := envOrDefault("PORTAL_ADMIN_PASSWORD", "change me on first login")
	adminName := envOrDefault("PORTAL_ADMIN_NAME", "General Secretary")
	seedDeps := orchestrators.SeedSuperAdminDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedSuperAdmin(context.Background(), seedDeps, adminEmail, adminPassword, adminName); err != nil {
		log.Fatalf("failed to seed super admin: %v", err)
	}

	// Configure email sender
	resendKey := os.Getenv("PORTAL_RESEND_KEY")
	emailFrom := envOrDefault("PORTAL_RESEND_FROM", "Club Portal <noreply@clubportal.local>")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom)
		if os.Getenv("PORTAL_ENV") == "production" {
			log.Println("WARNING: PORTAL_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set PORTAL_RESEND_KEY for real delivery)")
		}
	}

	// Create HTTP handler with middleware (pass collector for timing + perf endpoint)
	mux := web.NewMux("static", stores, collector)

	// Start server
	addr := envOrDefault("PORTAL_ADDR", ":8080")
	log.Printf("Club portal %s starting on %s (env=%s, schema=%d)", version, addr, envOrDefault("PORTAL_ENV", "development"), storage.LatestSchemaVersion())

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
