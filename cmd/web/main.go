// cmd/web/main.go
//
// storekit – HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load typed config, resolve the DB password from Vault (env fallback
//     for development), and open the shared pool.
//
//  4. Build the tenant directory, resolver, and repositories.
//
//  5. Expose Prometheus /metrics and a /healthz probe.
//
//  6. Chain middleware: security headers → request-info enrichment →
//     tenant resolution → handlers.  Resolution is lazy; the strategy
//     chain runs the first time a handler or repository forces the scope.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/storekit/internal/config"
	"github.com/yanizio/storekit/internal/customer"
	"github.com/yanizio/storekit/internal/database"
	"github.com/yanizio/storekit/internal/logger"
	"github.com/yanizio/storekit/internal/middleware"
	"github.com/yanizio/storekit/internal/requestinfo"
	"github.com/yanizio/storekit/internal/scope"
	"github.com/yanizio/storekit/internal/server"
	"github.com/yanizio/storekit/internal/settings"
	"github.com/yanizio/storekit/internal/tenant"
	"github.com/yanizio/storekit/internal/vault"
)

const serverEnvPath = "/usr/local/etc/storekit/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	ctx := context.Background()

	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 1.  DB credential and shared pool ───────────────────────────────
	//
	password := os.Getenv("STOREKIT_DB_PASSWORD")
	if cfg.Database.VaultPath != "" {
		cli, err := vault.New(ctx, logOut.Infof)
		if err != nil {
			logOut.Fatalf("vault client: %v", err)
		}
		password, err = cli.GetKV(ctx, cfg.Database.VaultPath, cfg.Database.VaultKey, 0)
		if err != nil {
			logOut.Fatalf("vault db password: %v", err)
		}
	}
	if password == "" {
		logOut.Fatal("no DB password: set database.vault_path or STOREKIT_DB_PASSWORD")
	}

	db, err := database.Open(fmt.Sprintf(cfg.Database.DSN, password))
	if err != nil {
		logOut.Fatalf("connect DB: %v", err)
	}
	defer db.Close()
	logOut.Infow("database online")

	// Log live-tenant count as an early sanity check.
	var active int
	_ = db.Get(&active, `SELECT COUNT(*) FROM tenant WHERE deleted_at IS NULL`)
	logOut.Infow("tenants found", "count", active)

	//
	// ── 2.  Directory, resolver, and collaborators ──────────────────────
	//
	dir := tenant.NewDirectory(db, tenant.IdleTTL, tenant.MaxEntries)
	defer dir.Close()

	set := settings.New(db)
	customers := customer.NewStore(db)
	resolver := tenant.NewResolver(dir, set,
		func() customer.Lookup { return customers },
		tenant.Options{
			RegistrationPath: cfg.Tenant.RegistrationPath,
			TaskPath:         cfg.Tenant.TaskPath,
			MobileMarkers:    cfg.Tenant.MobileMarkers,
		})

	if cfg.Geo.DBPath != "" {
		if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
			logOut.Warnw("geo database unavailable", "path", cfg.Geo.DBPath, "err", err)
		}
	}

	//
	// ── 3.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(middleware.Security)
	r.Use(requestinfo.Enrich)
	r.Use(middleware.Resolve(resolver))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := db.PingContext(req.Context()); err != nil {
			http.Error(w, "db unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// Echo route: forces resolution and reports the active tenant plus the
	// enriched client attributes.
	r.Get("/whoami", func(w http.ResponseWriter, req *http.Request) {
		rc, _ := tenant.FromContext(req.Context())
		ten, err := rc.CurrentTenant(req.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		id, _ := scope.TenantID(req.Context())
		body := map[string]any{
			"tenant_id": id,
			"name":      ten.Name,
			"url":       ten.URL,
		}
		if info := requestinfo.FromContext(req.Context()); info != nil {
			body["device"] = info.UA.Device
			body["browser"] = info.UA.Browser
			body["lang"] = info.UA.PrimaryLang
			body["country"] = info.Geo.CountryISO
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	var handler http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(dir, handler)
	}

	srv := server.New(cfg.HTTP.ListenAddr, handler)
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
}
