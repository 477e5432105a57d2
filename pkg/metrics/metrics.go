// Package metrics provides Prometheus instrumentation for gopool components.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name unless Config.Namespace is set.
const DefaultNamespace = "gopool"

// Registry holds all metric instances for gopool components.
type Registry struct {
	// Worker Pool Metrics
	WorkerPoolSize        *prometheus.GaugeVec
	WorkerPoolActive      *prometheus.GaugeVec
	WorkerPoolQueued      *prometheus.GaugeVec
	TasksSubmitted        *prometheus.CounterVec
	TasksExecuted         *prometheus.CounterVec
	TasksPanicked         *prometheus.CounterVec
	TaskExecutionDuration *prometheus.HistogramVec
	TaskQueueWait         *prometheus.HistogramVec

	// Scheduler Metrics
	SchedulerTriggers       *prometheus.CounterVec
	SchedulerSubmitFailures *prometheus.CounterVec

	// Feed Metrics
	FeedMessages *prometheus.CounterVec
	FeedErrors   *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by gopool components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Enabled: true, Registry: reg})
}

// NewRegistryWithConfig creates a metrics registry honoring the namespace and
// constant labels of config. Collectors already registered on the same
// registerer under the same name are reused, so several pools can share one
// Prometheus registry.
func NewRegistryWithConfig(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := config.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	labels := config.Labels

	return &Registry{
		// Worker Pool Metrics
		WorkerPoolSize: register(reg, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "size",
				Help:        "Number of workers in the pool",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		)),

		WorkerPoolActive: register(reg, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "active_workers",
				Help:        "Number of workers currently executing a task",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		)),

		WorkerPoolQueued: register(reg, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "queued_tasks",
				Help:        "Number of tasks waiting in the queue",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		)),

		TasksSubmitted: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "tasks_submitted_total",
				Help:        "Total number of tasks accepted by the pool",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		)),

		TasksExecuted: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "tasks_executed_total",
				Help:        "Total number of tasks that finished executing, including panics",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		)),

		TasksPanicked: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "tasks_panicked_total",
				Help:        "Total number of tasks that panicked",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		)),

		TaskExecutionDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "task_duration_seconds",
				Help:        "Time spent executing tasks",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		)),

		TaskQueueWait: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "task_queue_wait_seconds",
				Help:        "Time tasks spent queued before a worker picked them up",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		)),

		// Scheduler Metrics
		SchedulerTriggers: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "scheduler",
				Name:        "triggers_total",
				Help:        "Total number of schedule firings",
				ConstLabels: labels,
			},
			[]string{"scheduler_name", "entry_id"},
		)),

		SchedulerSubmitFailures: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "scheduler",
				Name:        "submit_failures_total",
				Help:        "Total number of schedule firings the pool rejected",
				ConstLabels: labels,
			},
			[]string{"scheduler_name"},
		)),

		// Feed Metrics
		FeedMessages: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "feed",
				Name:        "messages_total",
				Help:        "Total number of messages consumed from a feed and submitted",
				ConstLabels: labels,
			},
			[]string{"feed_name"},
		)),

		FeedErrors: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "feed",
				Name:        "errors_total",
				Help:        "Total number of feed backend errors",
				ConstLabels: labels,
			},
			[]string{"feed_name"},
		)),
	}
}

// register registers c, returning the existing collector if an identical one
// is already registered. Any other registration error panics, as with
// prometheus.MustRegister.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
