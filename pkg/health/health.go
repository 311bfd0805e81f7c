// Package health aggregates liveness and readiness checks for the planner
// process and serves them over HTTP.
package health

import (
	"sort"
	"time"
)

// NewHealthChecker creates a checker with no checks registered.
func NewHealthChecker() *HealthChecker {
	hc := &HealthChecker{
		scopes:    make(map[Scope]map[string]CheckFunc, 3),
		startTime: time.Now(),
	}
	for _, s := range []Scope{ScopeGeneral, ScopeReadiness, ScopeLiveness} {
		hc.scopes[s] = make(map[string]CheckFunc)
	}
	return hc
}

// Register adds check under name in scope, replacing any previous one.
func (hc *HealthChecker) Register(scope Scope, name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	if hc.scopes[scope] == nil {
		hc.scopes[scope] = make(map[string]CheckFunc)
	}
	hc.scopes[scope][name] = check
}

// RegisterCheck registers a general health check
func (hc *HealthChecker) RegisterCheck(name string, check CheckFunc) {
	hc.Register(ScopeGeneral, name, check)
}

// RegisterReadinessCheck registers a readiness check
func (hc *HealthChecker) RegisterReadinessCheck(name string, check CheckFunc) {
	hc.Register(ScopeReadiness, name, check)
}

// RegisterLivenessCheck registers a liveness check
func (hc *HealthChecker) RegisterLivenessCheck(name string, check CheckFunc) {
	hc.Register(ScopeLiveness, name, check)
}

// Names lists the checks registered in scope.
func (hc *HealthChecker) Names(scope Scope) []string {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	names := make([]string, 0, len(hc.scopes[scope]))
	for name := range hc.scopes[scope] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check performs all general checks
func (hc *HealthChecker) Check() Response { return hc.Run(ScopeGeneral) }

// CheckReadiness performs readiness checks
func (hc *HealthChecker) CheckReadiness() Response { return hc.Run(ScopeReadiness) }

// CheckLiveness performs liveness checks
func (hc *HealthChecker) CheckLiveness() Response { return hc.Run(ScopeLiveness) }

// Run performs every check in scope. The worst status wins.
func (hc *HealthChecker) Run(scope Scope) Response {
	hc.mu.RLock()
	checks := make(map[string]CheckFunc, len(hc.scopes[scope]))
	for name, fn := range hc.scopes[scope] {
		checks[name] = fn
	}
	hc.mu.RUnlock()

	response := Response{
		Status:    StatusHealthy,
		Scope:     scope,
		Timestamp: time.Now(),
		Checks:    make(map[string]Check, len(checks)),
		Uptime:    time.Since(hc.startTime).Seconds(),
	}

	for name, fn := range checks {
		start := time.Now()
		check := fn()
		check.Duration = time.Since(start)
		check.LastChecked = start
		if check.Name == "" {
			check.Name = name
		}
		response.Checks[name] = check
		response.Status = worse(response.Status, check.Status)
	}
	return response
}

func worse(a, b Status) Status {
	if rank(b) > rank(a) {
		return b
	}
	return a
}

func rank(s Status) int {
	switch s {
	case StatusUnhealthy:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}
