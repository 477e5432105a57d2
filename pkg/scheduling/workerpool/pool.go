package workerpool

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	gperrors "github.com/vnykmshr/gopool/pkg/common/errors"
	"github.com/vnykmshr/gopool/pkg/common/validation"
	"github.com/vnykmshr/gopool/pkg/scheduling/taskqueue"
)

// Task represents a unit of work that can be executed by a worker.
type Task interface {
	// Execute runs the task. It takes no arguments and returns nothing;
	// whatever the task needs must be captured when it is created.
	Execute()
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func()

// Execute implements the Task interface for TaskFunc.
func (f TaskFunc) Execute() {
	f()
}

// ErrPoolClosed is returned by Submit once Shutdown has been initiated.
var ErrPoolClosed = fmt.Errorf("worker pool has been shut down: %w", gperrors.ErrClosed)

// PanicError is reported to OnTaskComplete when a task panics.
type PanicError struct {
	// Value is the value passed to panic.
	Value interface{}

	// Stack is the stack trace of the panicking goroutine.
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// ErrTaskExited is reported to OnTaskComplete when a task ends its goroutine
// with runtime.Goexit, for example through testing.T.FailNow.
var ErrTaskExited = errors.New("task exited its goroutine")

// Pool represents a worker pool that can execute tasks concurrently.
type Pool interface {
	// Submit adds a task to the pool for execution.
	// It never blocks on queue capacity. Returns ErrPoolClosed after shutdown
	// has been initiated.
	Submit(task Task) error

	// SubmitFunc is shorthand for Submit(TaskFunc(fn)).
	SubmitFunc(fn func()) error

	// Shutdown stops accepting tasks, lets the workers drain every task
	// already queued, and returns once all workers have exited.
	// It is safe to call more than once; later calls wait for the first.
	// Calling Shutdown from inside a task deadlocks.
	Shutdown()

	// Close calls Shutdown and returns nil. It allows defer pool.Close().
	Close() error

	// Size returns the number of workers in the pool.
	Size() int

	// QueueSize returns the current number of queued tasks waiting for execution.
	QueueSize() int

	// ActiveWorkers returns the number of workers currently executing tasks.
	ActiveWorkers() int

	// TotalSubmitted returns the total number of tasks accepted by the pool.
	TotalSubmitted() int64

	// TotalCompleted returns the total number of tasks that finished
	// executing, including those that panicked.
	TotalCompleted() int64

	// TotalPanicked returns the number of tasks that panicked or called
	// runtime.Goexit.
	TotalPanicked() int64
}

// Config holds configuration options for creating a worker pool.
type Config struct {
	// WorkerCount is the number of workers in the pool.
	// Must be greater than 0.
	WorkerCount int

	// Name identifies the pool in logs and metrics. Defaults to "default".
	Name string

	// Logger receives worker lifecycle and panic logs.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// PanicHandler is called after a panicking task has been recovered.
	// The panic is always logged; the worker keeps running either way.
	PanicHandler func(workerID int, recovered interface{})

	// OnWorkerStart is called when a worker starts.
	// Useful for per-worker initialization (e.g., database connections).
	OnWorkerStart func(workerID int)

	// OnWorkerStop is called when a worker stops.
	// Useful for per-worker cleanup.
	OnWorkerStop func(workerID int)

	// OnTaskStart is called before a task begins execution.
	OnTaskStart func(workerID int)

	// OnTaskComplete is called after a task completes. err is a *PanicError
	// if the task panicked, ErrTaskExited if it called runtime.Goexit, and
	// nil otherwise.
	OnTaskComplete func(workerID int, duration time.Duration, err error)
}

// DefaultPoolName is used when Config.Name is empty.
const DefaultPoolName = "default"

// workerPool implements the Pool interface.
type workerPool struct {
	config Config
	logger *slog.Logger

	// Core pool state
	workers      []*worker
	queue        *taskqueue.Queue[Task]
	stopping     atomic.Bool
	submitMu     sync.RWMutex
	shutdownOnce sync.Once

	// State tracking
	activeWorkers  atomic.Int32
	totalSubmitted atomic.Int64
	totalCompleted atomic.Int64
	totalPanicked  atomic.Int64

	// Worker management
	workerWg sync.WaitGroup
}

// New creates a new worker pool with the specified number of workers.
func New(workerCount int) (Pool, error) {
	return NewWithConfig(Config{
		WorkerCount: workerCount,
	})
}

// NewWithConfig creates a new worker pool with the specified configuration.
// All workers are running when it returns. An invalid configuration returns
// a *errors.ValidationError and starts nothing.
func NewWithConfig(config Config) (Pool, error) {
	if err := validation.ValidatePositive("workerpool", "WorkerCount", config.WorkerCount); err != nil {
		return nil, err
	}

	if config.Name == "" {
		config.Name = DefaultPoolName
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pool := &workerPool{
		config: config,
		logger: logger.With("pool", config.Name),
		queue:  taskqueue.New[Task](),
	}

	// Create and start workers
	pool.workers = make([]*worker, config.WorkerCount)
	for i := 0; i < config.WorkerCount; i++ {
		pool.workers[i] = &worker{
			id:   i,
			pool: pool,
		}
		pool.workerWg.Add(1)
		go pool.workers[i].run()
	}

	pool.logger.Debug("worker pool started", "workers", config.WorkerCount)
	return pool, nil
}
