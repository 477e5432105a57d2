package workerpool

import (
	"sync/atomic"
	"time"

	"github.com/vnykmshr/gopool/pkg/metrics"
)

// MetricsPool wraps a worker Pool with Prometheus metrics collection.
type MetricsPool struct {
	pool     Pool
	name     string
	registry atomic.Pointer[metrics.Registry]
	enabled  atomic.Bool
}

// NewWithMetrics creates a new worker pool reporting to metrics.DefaultRegistry.
func NewWithMetrics(workerCount int, name string) (Pool, error) {
	return NewWithConfigAndMetrics(Config{
		WorkerCount: workerCount,
	}, name, metrics.Config{Enabled: true})
}

// NewWithConfigAndMetrics creates a new worker pool with custom config and metrics.
// If metricsConfig is disabled the plain pool is returned.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) (Pool, error) {
	if !metricsConfig.Enabled {
		return NewWithConfig(config)
	}

	if config.Name == "" {
		config.Name = name
	}

	mp := &MetricsPool{name: name}
	mp.registry.Store(registryFor(metricsConfig))
	mp.enabled.Store(true)

	// Chain the caller's hooks behind the metric updates.
	onStart, onComplete := config.OnTaskStart, config.OnTaskComplete
	config.OnTaskStart = func(workerID int) {
		mp.updateMetrics()
		if onStart != nil {
			onStart(workerID)
		}
	}
	config.OnTaskComplete = func(workerID int, duration time.Duration, err error) {
		mp.recordCompletion(duration, err)
		if onComplete != nil {
			onComplete(workerID, duration, err)
		}
	}

	basePool, err := NewWithConfig(config)
	if err != nil {
		return nil, err
	}
	mp.pool = basePool

	// Initialize metrics
	mp.updateMetrics()

	return mp, nil
}

// registryFor resolves the metrics registry described by config.
func registryFor(config metrics.Config) *metrics.Registry {
	if config.Registry == nil && config.Namespace == "" && config.Labels == nil {
		return metrics.DefaultRegistry
	}
	return metrics.NewRegistryWithConfig(config)
}

// updateMetrics updates the current state metrics.
func (mp *MetricsPool) updateMetrics() {
	if !mp.enabled.Load() || mp.pool == nil {
		return
	}

	registry := mp.registry.Load()
	registry.WorkerPoolSize.WithLabelValues(mp.name).Set(float64(mp.pool.Size()))
	registry.WorkerPoolActive.WithLabelValues(mp.name).Set(float64(mp.pool.ActiveWorkers()))
	registry.WorkerPoolQueued.WithLabelValues(mp.name).Set(float64(mp.pool.QueueSize()))
}

// recordCompletion records one finished task.
func (mp *MetricsPool) recordCompletion(duration time.Duration, err error) {
	if !mp.enabled.Load() {
		return
	}

	registry := mp.registry.Load()
	registry.TaskExecutionDuration.WithLabelValues(mp.name).Observe(duration.Seconds())
	registry.TasksExecuted.WithLabelValues(mp.name).Inc()
	if err != nil {
		registry.TasksPanicked.WithLabelValues(mp.name).Inc()
	}
	mp.updateMetrics()
}

// Submit adds a task to the pool for execution.
func (mp *MetricsPool) Submit(task Task) error {
	if task != nil {
		// Wrap the task to observe how long it waited in the queue
		task = &metricsTask{
			original:   task,
			pool:       mp,
			submitTime: time.Now(),
		}
	}

	err := mp.pool.Submit(task)

	if err == nil && mp.enabled.Load() {
		mp.registry.Load().TasksSubmitted.WithLabelValues(mp.name).Inc()
	}
	mp.updateMetrics()

	return err
}

// SubmitFunc adds fn to the pool for execution.
func (mp *MetricsPool) SubmitFunc(fn func()) error {
	if fn == nil {
		return mp.pool.SubmitFunc(nil)
	}
	return mp.Submit(TaskFunc(fn))
}

// metricsTask wraps a Task to record its queue wait time.
type metricsTask struct {
	original   Task
	pool       *MetricsPool
	submitTime time.Time
}

// Execute records queue wait time and runs the original task.
func (mt *metricsTask) Execute() {
	if mt.pool.enabled.Load() {
		wait := time.Since(mt.submitTime)
		mt.pool.registry.Load().TaskQueueWait.WithLabelValues(mt.pool.name).Observe(wait.Seconds())
	}

	mt.original.Execute()
}

// Shutdown initiates graceful shutdown of the pool.
func (mp *MetricsPool) Shutdown() {
	mp.pool.Shutdown()
	mp.updateMetrics()
}

// Close shuts the pool down.
func (mp *MetricsPool) Close() error {
	mp.Shutdown()
	return nil
}

// Size returns the current number of workers.
func (mp *MetricsPool) Size() int {
	return mp.pool.Size()
}

// QueueSize returns the current number of queued tasks.
func (mp *MetricsPool) QueueSize() int {
	queueSize := mp.pool.QueueSize()

	if mp.enabled.Load() {
		mp.registry.Load().WorkerPoolQueued.WithLabelValues(mp.name).Set(float64(queueSize))
	}

	return queueSize
}

// ActiveWorkers returns the number of workers currently executing tasks.
func (mp *MetricsPool) ActiveWorkers() int {
	activeWorkers := mp.pool.ActiveWorkers()

	if mp.enabled.Load() {
		mp.registry.Load().WorkerPoolActive.WithLabelValues(mp.name).Set(float64(activeWorkers))
	}

	return activeWorkers
}

// TotalSubmitted returns the total number of tasks submitted.
func (mp *MetricsPool) TotalSubmitted() int64 {
	return mp.pool.TotalSubmitted()
}

// TotalCompleted returns the total number of tasks completed.
func (mp *MetricsPool) TotalCompleted() int64 {
	return mp.pool.TotalCompleted()
}

// TotalPanicked returns the number of tasks that panicked.
func (mp *MetricsPool) TotalPanicked() int64 {
	return mp.pool.TotalPanicked()
}

// EnableMetrics enables metrics collection.
func (mp *MetricsPool) EnableMetrics(config metrics.Config) error {
	if config.Registry != nil || config.Namespace != "" || config.Labels != nil {
		mp.registry.Store(metrics.NewRegistryWithConfig(config))
	}
	mp.enabled.Store(config.Enabled)

	mp.updateMetrics()
	return nil
}

// DisableMetrics disables metrics collection.
func (mp *MetricsPool) DisableMetrics() {
	mp.enabled.Store(false)
}

// MetricsEnabled returns true if metrics are currently enabled.
func (mp *MetricsPool) MetricsEnabled() bool {
	return mp.enabled.Load()
}

var _ metrics.Instrumentable = (*MetricsPool)(nil)
