package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms"`
	Details   map[string]any `json:"details,omitempty"`
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// MigrationStatus reports the applied schema version and whether the last
// migration stopped halfway.
type MigrationStatus func() (version uint, dirty bool, err error)

type HealthChecker struct {
	db         Pinger
	migrations MigrationStatus
	version    string
	gitCommit  string
	now        func() time.Time
}

func NewHealthChecker(db Pinger, migrations MigrationStatus, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		db:         db,
		migrations: migrations,
		version:    version,
		gitCommit:  gitCommit,
		now:        time.Now,
	}
}

// Healthz is the liveness probe. It never touches the database.
func (h *HealthChecker) Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ok")
	})
}

// Readyz reports ready only when the database answers.
func (h *HealthChecker) Readyz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if h.db == nil || h.db.Ping(ctx) != nil {
			respondHealth(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		respondHealth(w, http.StatusOK, "ready")
	})
}

// Health runs every check and reports an aggregate status.
func (h *HealthChecker) Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]CheckResult{
			"database":   h.checkDatabase(ctx),
			"migrations": h.checkMigrations(),
		}

		status, code := "healthy", http.StatusOK
		for _, check := range checks {
			if check.Status == "fail" {
				status, code = "unhealthy", http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(HealthCheck{
			Status:    status,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: h.now().UTC().Format(time.RFC3339),
		})
	})
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{Status: "fail", Message: "Database not configured"}
	}

	start := time.Now()
	dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := h.db.Ping(dbCtx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		message := "Database ping failed"
		if dbCtx.Err() == context.DeadlineExceeded {
			message = "Database ping timed out after 2 seconds"
		}
		return CheckResult{
			Status:    "fail",
			Message:   message,
			LatencyMs: latency,
			Details:   map[string]any{"error": err.Error()},
		}
	}
	return CheckResult{Status: "pass", Message: "PostgreSQL connection successful", LatencyMs: latency}
}

func (h *HealthChecker) checkMigrations() CheckResult {
	if h.migrations == nil {
		return CheckResult{Status: "warn", Message: "Migration status unavailable"}
	}

	start := time.Now()
	version, dirty, err := h.migrations()
	latency := time.Since(start).Milliseconds()
	switch {
	case err != nil:
		return CheckResult{
			Status:    "fail",
			Message:   "Failed to read migration version",
			LatencyMs: latency,
			Details:   map[string]any{"error": err.Error()},
		}
	case dirty:
		return CheckResult{
			Status:    "fail",
			Message:   "Database in dirty migration state",
			LatencyMs: latency,
			Details:   map[string]any{"version": version, "dirty": true},
		}
	case version == 0:
		return CheckResult{Status: "fail", Message: "No migrations applied", LatencyMs: latency}
	}
	return CheckResult{
		Status:    "pass",
		Message:   fmt.Sprintf("Migrations applied (version %d)", version),
		LatencyMs: latency,
		Details:   map[string]any{"version": version},
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}
