package parallel

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestWorkerPoolRunsAllTasks tests that every submitted task executes
func TestWorkerPoolRunsAllTasks(t *testing.T) {
	pool := NewWorkerPool(4)

	var counter int64
	for i := 0; i < 100; i++ {
		if err := pool.Submit(func() error {
			atomic.AddInt64(&counter, 1)
			return nil
		}); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	if err := pool.Wait(); err != nil {
		t.Fatalf("Wait returned %v", err)
	}
	if counter != 100 {
		t.Errorf("Expected counter 100, got %d", counter)
	}
}

// TestWorkerPoolDefaultWorkers tests the CPU-sized default
func TestWorkerPoolDefaultWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	if pool.Workers() < 1 {
		t.Errorf("Workers() = %d, want >= 1", pool.Workers())
	}
}

// TestWorkerPoolFirstError tests that the first failure is reported
func TestWorkerPoolFirstError(t *testing.T) {
	pool := NewWorkerPool(1)
	boom := errors.New("boom")

	pool.Submit(func() error { return boom })
	pool.Submit(func() error { return errors.New("later") })

	if err := pool.Wait(); !errors.Is(err, boom) {
		t.Errorf("Wait() = %v, want %v", err, boom)
	}
}

// TestWorkerPoolRecoversPanic tests that a panicking task is reported, not fatal
func TestWorkerPoolRecoversPanic(t *testing.T) {
	pool := NewWorkerPool(2)

	var ran int64
	pool.Submit(func() error { panic("bad row") })
	pool.Submit(func() error {
		atomic.AddInt64(&ran, 1)
		return nil
	})

	if err := pool.Wait(); err == nil {
		t.Error("expected panic to surface as an error")
	}
	if ran != 1 {
		t.Error("other tasks should still run after a panic")
	}
}

// TestWorkerPoolSubmitAfterClose tests that submissions after close are rejected
func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()

	err := pool.Submit(func() error {
		t.Error("This task should never execute")
		return nil
	})
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Submit after close = %v, want ErrPoolClosed", err)
	}
}

// TestWorkerPoolCloseRace tests closing while other goroutines submit
func TestWorkerPoolCloseRace(t *testing.T) {
	for iteration := 0; iteration < 50; iteration++ {
		pool := NewWorkerPool(4)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					pool.Submit(func() error {
						time.Sleep(100 * time.Microsecond)
						return nil
					})
				}
			}()
		}

		time.Sleep(time.Millisecond)
		pool.Close()
		pool.Close()
		wg.Wait()
	}
}
