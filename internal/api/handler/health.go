package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const readinessTimeout = 3 * time.Second

// HealthHandler serves the liveness probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Liveness
//
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// probe is one named readiness check.
type probe struct {
	name  string
	check func(ctx context.Context) error
}

// HealthDependenciesHandler serves the readiness probe over the configured
// backing services.
type HealthDependenciesHandler struct {
	probes []probe
}

// NewHealthDependenciesHandler registers a probe for every non-nil dependency.
// nc is nil unless lifecycle events go over NATS.
func NewHealthDependenciesHandler(db *mongo.Database, rdb *redis.Client, nc *nats.Conn) *HealthDependenciesHandler {
	h := &HealthDependenciesHandler{}
	if db != nil {
		h.probes = append(h.probes, probe{name: "mongodb", check: func(ctx context.Context) error {
			return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
		}})
	}
	if rdb != nil {
		h.probes = append(h.probes, probe{name: "redis", check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	if nc != nil {
		h.probes = append(h.probes, probe{name: "nats", check: func(context.Context) error {
			if nc.IsConnected() {
				return nil
			}
			return errNATSDown{status: nc.Status()}
		}})
	}
	return h
}

type errNATSDown struct{ status nats.Status }

func (e errNATSDown) Error() string { return "nats connection " + e.status.String() }

type dependencyStatus struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness
//
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  readinessResponse
// @Failure  503  {object}  readinessResponse
// @Router   /health/ready [get]
func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	resp := readinessResponse{Status: "ok", Dependencies: make(map[string]dependencyStatus, len(h.probes))}
	code := http.StatusOK

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, p := range h.probes {
		wg.Add(1)
		go func(p probe) {
			defer wg.Done()
			start := time.Now()
			err := p.check(ctx)
			st := dependencyStatus{Status: "ok", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				st.Status = "unhealthy"
				st.Error = err.Error()
			}
			mu.Lock()
			resp.Dependencies[p.name] = st
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	for _, st := range resp.Dependencies {
		if st.Status != "ok" {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}
	return c.JSON(code, resp)
}
