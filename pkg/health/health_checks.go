package health

import "time"

// SimpleCheck creates a check that always returns healthy
func SimpleCheck(name string) Check {
	return Check{
		Name:        name,
		Status:      StatusHealthy,
		LastChecked: time.Now(),
	}
}

// LoopCheck reports the planning loop unhealthy when it has not ticked
// within maxAge, or has stopped with an error. A tick blocked on an
// execution is not a stall: executing may be nil.
func LoopCheck(state func() (lastTick time.Time, ticks uint64, err error), executing func() (since time.Time, ok bool), maxAge time.Duration) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "loop",
			Details: make(map[string]any),
		}

		lastTick, ticks, err := state()
		check.Details["ticks"] = ticks
		var since time.Time
		busy := false
		if executing != nil {
			since, busy = executing()
		}

		switch {
		case err != nil:
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		case busy:
			check.Details["executing_seconds"] = time.Since(since).Seconds()
			check.Status = StatusHealthy
			check.Message = "Executing instruction"
		case ticks == 0:
			check.Status = StatusHealthy
			check.Message = "Waiting for first tick"
		default:
			age := time.Since(lastTick)
			check.Details["last_tick_age_seconds"] = age.Seconds()
			if age > maxAge {
				check.Status = StatusUnhealthy
				check.Message = "Loop stalled"
			} else {
				check.Status = StatusHealthy
				check.Message = "Loop running"
			}
		}

		return check
	}
}

// BacklogCheck reports degraded when more than threshold instructions are
// waiting.
func BacklogCheck(pending func() int, threshold int) CheckFunc {
	return func() Check {
		n := pending()
		check := Check{
			Name:    "backlog",
			Details: map[string]any{"pending": n, "threshold": threshold},
		}

		if threshold > 0 && n > threshold {
			check.Status = StatusDegraded
			check.Message = "Instruction backlog high"
		} else {
			check.Status = StatusHealthy
		}

		return check
	}
}

// SocketCheck creates a check around a transport endpoint probe
func SocketCheck(name string, probe func() error) CheckFunc {
	return func() Check {
		check := Check{
			Name: name,
		}

		if err := probe(); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Connected"
		}

		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		if sys > 0 && float64(alloc)/float64(sys) > 0.9 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}
