// Package parallel provides a small bounded worker pool.
package parallel

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("worker pool closed")

// WorkerPool runs submitted tasks on a fixed number of goroutines and
// collects the first failure.
type WorkerPool struct {
	workers int
	tasks   chan func() error
	wg      sync.WaitGroup
	once    sync.Once

	mu     sync.RWMutex // guards closed against concurrent Submit/Close
	closed bool

	errMu    sync.Mutex
	firstErr error
}

// NewWorkerPool starts a pool. A non-positive worker count means one
// worker per CPU.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	wp := &WorkerPool{
		workers: workers,
		tasks:   make(chan func() error, workers*2),
	}
	for i := 0; i < workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
	return wp
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.tasks {
		wp.run(task)
	}
}

func (wp *WorkerPool) run(task func() error) {
	defer func() {
		if r := recover(); r != nil {
			wp.record(fmt.Errorf("task panicked: %v", r))
		}
	}()
	if err := task(); err != nil {
		wp.record(err)
	}
}

func (wp *WorkerPool) record(err error) {
	wp.errMu.Lock()
	defer wp.errMu.Unlock()
	if wp.firstErr == nil {
		wp.firstErr = err
	}
}

// Submit queues a task. It blocks while the queue is full and returns
// ErrPoolClosed once Close or Wait has been called.
func (wp *WorkerPool) Submit(task func() error) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return ErrPoolClosed
	}
	wp.tasks <- task
	return nil
}

// Close stops accepting tasks and waits for queued ones to finish. It is
// safe to call more than once.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.tasks)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Wait closes the pool and returns the first task error or panic.
func (wp *WorkerPool) Wait() error {
	wp.Close()
	wp.errMu.Lock()
	defer wp.errMu.Unlock()
	return wp.firstErr
}
