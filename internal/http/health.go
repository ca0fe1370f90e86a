package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/bundle-service/internal/circuitbreaker"
)

// HealthChecker pings a backing store.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthCheckerFunc adapts a ping function to HealthChecker.
type HealthCheckerFunc func(ctx context.Context) error

func (f HealthCheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}

const (
	readinessTimeout = 2 * time.Second
	statusOK         = "ok"
	statusDegraded   = "degraded"
)

// readinessReport is the /readyz body. Checks maps each dependency to "ok",
// its error text, or the state of its circuit breaker.
type readinessReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers map[string]HealthChecker
	breakers map[string]*circuitbreaker.CircuitBreaker
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		checkers: map[string]HealthChecker{},
		breakers: map[string]*circuitbreaker.CircuitBreaker{},
	}
}

// RegisterChecker adds a dependency ping, such as MongoDB or Redis.
func (h *HealthHandler) RegisterChecker(name string, checker HealthChecker) {
	h.checkers[name] = checker
}

// RegisterCircuitBreaker reports the breaker as "<name>_circuit". Nil is ignored.
func (h *HealthHandler) RegisterCircuitBreaker(name string, cb *circuitbreaker.CircuitBreaker) {
	if cb != nil {
		h.breakers[name] = cb
	}
}

func (h *HealthHandler) Register(router *gin.Engine) {
	router.GET("/healthz", h.Liveness)
	router.GET("/readyz", h.Readiness)
}

// Liveness godoc
// @Summary     Liveness probe
// @Description Reports that the process is up. It never touches a dependency.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]string
// @Router      /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// Readiness godoc
// @Summary     Readiness probe
// @Description Pings every registered store in parallel and reports each circuit breaker. Any failure or non-closed breaker answers 503.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]interface{}
// @Failure     503 {object} map[string]interface{}
// @Router      /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	report := h.probe(c.Request.Context())

	status := http.StatusOK
	if report.Status != statusOK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

// probe runs the checkers concurrently, each under its own deadline.
func (h *HealthHandler) probe(ctx context.Context) readinessReport {
	report := readinessReport{Status: statusOK, Checks: make(map[string]string, len(h.checkers)+len(h.breakers))}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for name, checker := range h.checkers {
		name, checker := name, checker
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, readinessTimeout)
			defer cancel()

			result := statusOK
			if err := checker.Check(checkCtx); err != nil {
				result = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = result
			if result != statusOK {
				report.Status = statusDegraded
			}
			return nil
		})
	}
	_ = g.Wait()

	for name, cb := range h.breakers {
		stats := cb.GetStats()
		report.Checks[name+"_circuit"] = stats.State
		if !stats.IsHealthy {
			report.Status = statusDegraded
		}
	}

	if len(report.Checks) == 0 {
		report.Checks["service"] = statusOK
	}
	return report
}
