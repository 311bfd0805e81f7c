package health

import (
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Scope selects which set of checks a probe runs.
type Scope string

const (
	ScopeGeneral   Scope = "health"
	ScopeReadiness Scope = "readiness"
	ScopeLiveness  Scope = "liveness"
)

// Check is the outcome of one probe.
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ns"`
}

// CheckFunc is a function that performs a health check
type CheckFunc func() Check

// HealthChecker holds the planner's checks per scope.
type HealthChecker struct {
	mu        sync.RWMutex
	scopes    map[Scope]map[string]CheckFunc
	startTime time.Time
}

// Response is the aggregate served by the health endpoints.
type Response struct {
	Status    Status           `json:"status"`
	Scope     Scope            `json:"scope"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    float64          `json:"uptime_seconds"`
}
