package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	_ "modernc.org/sqlite"

	emailPkg "podium/internal/adapters/email"
	web "podium/internal/adapters/http"
	"podium/internal/adapters/http/perf"
	"podium/internal/adapters/storage"
	accountStore "podium/internal/adapters/storage/account"
	sheetStore "podium/internal/adapters/storage/sheet"
	"podium/internal/application/orchestrators"
	"podium/internal/domain/student"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("PODIUM_DB", "podium.db")
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

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	sheets := sheetStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore: acctStore,
		SheetStore:   sheets,
	}

	// Seed the bootstrap admin account when credentials are configured
	seedInput := orchestrators.SeedAdminInput{
		Email:    os.Getenv("PODIUM_ADMIN_EMAIL"),
		Password: os.Getenv("PODIUM_ADMIN_PASSWORD"),
	}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedInput, orchestrators.SeedAdminDeps{AccountStore: acctStore}); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Seed a starter Templates config and roster sheet in development
	if os.Getenv("PODIUM_ENV") != "production" {
		if err := orchestrators.ExecuteSeedTemplates(context.Background(), orchestrators.SeedTemplatesDeps{Sheets: sheets}); err != nil {
			log.Fatalf("failed to seed templates: %v", err)
		}
		log.Println("Starter Templates and Index sheets loaded (dev mode)")
	}

	// Configure email sender
	resendKey := os.Getenv("PODIUM_RESEND_KEY")
	emailFrom := envOrDefault("PODIUM_RESEND_FROM", "Podium <noreply@podium.example>")
	emailReply := envOrDefault("PODIUM_REPLY_TO", "")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, emailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, emailReply)
		if os.Getenv("PODIUM_ENV") == "production" {
			log.Println("WARNING: PODIUM_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set PODIUM_RESEND_KEY for real delivery)")
		}
	}

	web.SetFallbackTeacherEmail(envOrDefault("PODIUM_TEACHER_EMAIL", student.DefaultTeacherEmail))

	// Create HTTP handler with middleware (pass collector for timing + dashboard)
	mux := web.NewMux("static", stores, collector)

	// Start server
	addr := envOrDefault("PODIUM_ADDR", ":8080")
	log.Printf("Podium %s starting on %s (env=%s)", version, addr, envOrDefault("PODIUM_ENV", "development"))

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
