package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/pkg/httputil"
	"github.com/ignite/mailflow/internal/storage"
)

const healthVersion = "1.0.0"

// HealthStatus represents the overall health of the system.
type HealthStatus struct {
	Status  string                    `json:"status"` // "healthy", "degraded", "unhealthy"
	Version string                    `json:"version"`
	Uptime  string                    `json:"uptime"`
	Checks  map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck represents the health of a single component.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down", "degraded"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// RunState reports the campaign run, if any.
type RunState interface {
	Snapshot() (domain.RunSnapshot, bool)
}

// HealthChecker probes the storage backend and the run state. db and
// redisClient are optional and only set for those backends.
type HealthChecker struct {
	kv          storage.KV
	db          *sql.DB
	redisClient *redis.Client
	runs        RunState
	startTime   time.Time
}

// NewHealthChecker creates a new HealthChecker.
func NewHealthChecker(kv storage.KV, db *sql.DB, redisClient *redis.Client, runs RunState) *HealthChecker {
	return &HealthChecker{kv: kv, db: db, redisClient: redisClient, runs: runs, startTime: time.Now()}
}

// HandleHealth reports every check. It always answers 200; the status
// field carries the verdict.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())
	httputil.OK(w, HealthStatus{
		Status:  determineOverallStatus(checks),
		Version: healthVersion,
		Uptime:  formatUptime(time.Since(hc.startTime)),
		Checks:  checks,
	})
}

// HandleLiveness always returns 200 while the process runs.
//
//	GET /health/live
func (hc *HealthChecker) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status": "alive",
		"uptime": formatUptime(time.Since(hc.startTime)),
	})
}

func (hc *HealthChecker) runAllChecks(ctx context.Context) map[string]ComponentCheck {
	type result struct {
		name  string
		check ComponentCheck
	}
	ch := make(chan result, 3)
	go func() { ch <- result{"storage", hc.checkStorage(ctx)} }()
	go func() { ch <- result{"database", hc.checkDatabase(ctx)} }()
	go func() { ch <- result{"redis", hc.checkRedis(ctx)} }()

	checks := make(map[string]ComponentCheck, 4)
	for i := 0; i < 3; i++ {
		r := <-ch
		checks[r.name] = r.check
	}
	checks["campaign"] = hc.checkCampaign()
	return checks
}

// checkStorage reads a key through the configured backend.
func (hc *HealthChecker) checkStorage(ctx context.Context) ComponentCheck {
	if hc.kv == nil {
		return ComponentCheck{Status: "down", Message: "not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	var flag struct{}
	_, err := hc.kv.Get(ctx, storage.KeyAuthFlag, &flag)
	return timedCheck(time.Since(start), err, time.Second)
}

// checkDatabase pings PostgreSQL or SQLite.
func (hc *HealthChecker) checkDatabase(ctx context.Context) ComponentCheck {
	if hc.db == nil {
		return ComponentCheck{Status: "down", Message: "not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	err := hc.db.PingContext(ctx)
	return timedCheck(time.Since(start), err, time.Second)
}

// checkRedis pings Redis with a 2-second timeout.
func (hc *HealthChecker) checkRedis(ctx context.Context) ComponentCheck {
	if hc.redisClient == nil {
		return ComponentCheck{Status: "down", Message: "not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := hc.redisClient.Ping(ctx).Err()
	return timedCheck(time.Since(start), err, 500*time.Millisecond)
}

func (hc *HealthChecker) checkCampaign() ComponentCheck {
	if hc.runs == nil {
		return ComponentCheck{Status: "up", Message: "idle"}
	}
	snap, ok := hc.runs.Snapshot()
	if !ok {
		return ComponentCheck{Status: "up", Message: "idle"}
	}
	p := snap.Progress
	return ComponentCheck{
		Status:  "up",
		Message: fmt.Sprintf("%s %d/%d", snap.Status, p.Success+p.Failed, p.Total),
	}
}

func timedCheck(latency time.Duration, err error, slow time.Duration) ComponentCheck {
	if err != nil {
		return ComponentCheck{Status: "down", Latency: latency.String(), Message: err.Error()}
	}
	if latency > slow {
		return ComponentCheck{Status: "degraded", Latency: latency.String(), Message: fmt.Sprintf("slow response (%s)", latency)}
	}
	return ComponentCheck{Status: "up", Latency: latency.String(), Message: "connected"}
}

// determineOverallStatus derives the aggregate status from individual checks.
//
// Rules:
//   - "unhealthy" if storage is down
//   - "degraded"  if any check is degraded or a configured check is down
//   - "healthy"   otherwise
func determineOverallStatus(checks map[string]ComponentCheck) string {
	if s, ok := checks["storage"]; ok && s.Status == "down" {
		return "unhealthy"
	}
	for _, c := range checks {
		if c.Status == "degraded" {
			return "degraded"
		}
		if c.Status == "down" && c.Message != "not configured" {
			return "degraded"
		}
	}
	return "healthy"
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
