package workerpool

import (
	"runtime/debug"
	"sync/atomic"
	"time"

	gperrors "github.com/vnykmshr/gopool/pkg/common/errors"
	"github.com/vnykmshr/gopool/pkg/common/validation"
)

// workerState is the position of a worker in its loop.
type workerState int32

const (
	// stateWaiting: blocked in the queue waiting for a task or for shutdown.
	stateWaiting workerState = iota
	// stateRunning: executing exactly one task.
	stateRunning
	// stateExiting: shutdown observed with an empty queue; terminal.
	stateExiting
)

func (s workerState) String() string {
	switch s {
	case stateWaiting:
		return "WAITING"
	case stateRunning:
		return "RUNNING"
	case stateExiting:
		return "EXITING"
	default:
		return "UNKNOWN"
	}
}

// worker represents a single worker in the pool.
type worker struct {
	id    int
	pool  *workerPool
	state atomic.Int32
}

// Submit adds a task to the pool for execution.
func (p *workerPool) Submit(task Task) error {
	if err := validation.ValidateNotNil("workerpool", "task", task); err != nil {
		return err
	}

	// Shutdown flips the flag under the write lock, so a task pushed here is
	// queued before any worker can observe termination.
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.stopping.Load() {
		return ErrPoolClosed
	}

	p.totalSubmitted.Add(1)
	p.queue.Push(task)
	return nil
}

// SubmitFunc adds fn to the pool for execution.
func (p *workerPool) SubmitFunc(fn func()) error {
	if fn == nil {
		return gperrors.NewValidationError("workerpool", "task", nil, "cannot be nil").
			WithHint("provide a valid task")
	}
	return p.Submit(TaskFunc(fn))
}

// Shutdown initiates a graceful shutdown of the pool and waits for it.
func (p *workerPool) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.logger.Debug("shutting down worker pool", "queued", p.queue.Len())

		p.submitMu.Lock()
		p.stopping.Store(true)
		p.submitMu.Unlock()

		// Wake every worker parked on an empty queue.
		p.queue.WakeAll()
		p.workerWg.Wait()

		p.logger.Debug("worker pool shut down",
			"completed", p.totalCompleted.Load(),
			"panicked", p.totalPanicked.Load())
	})
}

// Close shuts the pool down. It always returns nil.
func (p *workerPool) Close() error {
	p.Shutdown()
	return nil
}

// Size returns the number of workers in the pool.
func (p *workerPool) Size() int {
	return p.config.WorkerCount
}

// QueueSize returns the current number of queued tasks waiting for execution.
func (p *workerPool) QueueSize() int {
	return p.queue.Len()
}

// ActiveWorkers returns the number of workers currently executing tasks.
func (p *workerPool) ActiveWorkers() int {
	return int(p.activeWorkers.Load())
}

// TotalSubmitted returns the total number of tasks accepted by the pool.
func (p *workerPool) TotalSubmitted() int64 {
	return p.totalSubmitted.Load()
}

// TotalCompleted returns the total number of tasks that finished executing.
func (p *workerPool) TotalCompleted() int64 {
	return p.totalCompleted.Load()
}

// TotalPanicked returns the number of tasks that panicked or called runtime.Goexit.
func (p *workerPool) TotalPanicked() int64 {
	return p.totalPanicked.Load()
}

// workerStates returns a snapshot of every worker's loop state.
func (p *workerPool) workerStates() []workerState {
	states := make([]workerState, len(p.workers))
	for i, w := range p.workers {
		states[i] = workerState(w.state.Load())
	}
	return states
}

// run starts a worker and serves tasks until shutdown.
func (w *worker) run() {
	if w.pool.config.OnWorkerStart != nil {
		w.pool.config.OnWorkerStart(w.id)
	}
	w.pool.logger.Debug("worker started", "worker", w.id)

	w.serve()
}

// serve is the main loop for a worker. A task that calls runtime.Goexit ends
// the goroutine running serve; the loop then continues on a new goroutine,
// which inherits the worker's WaitGroup slot.
func (w *worker) serve() {
	stopped := false
	defer func() {
		if !stopped {
			w.pool.logger.Warn("worker goroutine exited inside a task, restarting", "worker", w.id)
			go w.serve()
			return
		}

		w.state.Store(int32(stateExiting))
		w.pool.logger.Debug("worker stopped", "worker", w.id)
		if w.pool.config.OnWorkerStop != nil {
			w.pool.config.OnWorkerStop(w.id)
		}
		w.pool.workerWg.Done()
	}()

	for {
		w.state.Store(int32(stateWaiting))
		task, ok := w.pool.queue.WaitAndPop(&w.pool.stopping)
		if !ok {
			// Shutdown requested and nothing left to drain
			break
		}

		w.state.Store(int32(stateRunning))
		w.executeTask(task)
	}
	stopped = true
}

// executeTask runs one task, isolating the worker from a panicking task.
// Completion is reported from a deferred call so that it also happens when
// the task ends its goroutine with runtime.Goexit.
func (w *worker) executeTask(task Task) {
	p := w.pool
	p.activeWorkers.Add(1)

	if p.config.OnTaskStart != nil {
		p.config.OnTaskStart(w.id)
	}

	var perr *PanicError
	returned := false
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		p.activeWorkers.Add(-1)

		var err error
		switch {
		case perr != nil:
			err = perr
			p.totalPanicked.Add(1)
			p.logger.Error("task panicked",
				"worker", w.id,
				"panic", perr.Value,
				"stack", string(perr.Stack))
			if p.config.PanicHandler != nil {
				p.config.PanicHandler(w.id, perr.Value)
			}
		case !returned:
			err = ErrTaskExited
			p.totalPanicked.Add(1)
			p.logger.Error("task called runtime.Goexit", "worker", w.id)
		}
		p.totalCompleted.Add(1)

		if p.config.OnTaskComplete != nil {
			p.config.OnTaskComplete(w.id, duration, err)
		}
	}()

	perr = runTask(task)
	returned = true
}

// runTask executes task and converts a panic into a *PanicError.
func runTask(task Task) (perr *PanicError) {
	defer func() {
		if r := recover(); r != nil {
			perr = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	task.Execute()
	return nil
}
