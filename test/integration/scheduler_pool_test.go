// Package integration contains integration tests that verify cross-package functionality.
// These tests ensure that different components work together correctly in realistic scenarios.
package integration

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/gopool/internal/testutil"
	"github.com/vnykmshr/gopool/pkg/metrics"
	"github.com/vnykmshr/gopool/pkg/scheduling/scheduler"
	"github.com/vnykmshr/gopool/pkg/scheduling/workerpool"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// TestSchedulerSharesPoolQueue verifies that scheduled tasks and directly
// submitted tasks go through the same FIFO queue of a single-worker pool.
func TestSchedulerSharesPoolQueue(t *testing.T) {
	pool, err := workerpool.NewWithConfig(workerpool.Config{WorkerCount: 1, Logger: quiet})
	testutil.AssertNoError(t, err)

	s, err := scheduler.NewWithConfig(scheduler.Config{Pool: pool, Logger: quiet})
	testutil.AssertNoError(t, err)

	var mu sync.Mutex
	var order []string
	record := func(name string) workerpool.Task {
		return workerpool.TaskFunc(func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		})
	}

	// Hold the only worker so the scheduled task queues behind direct ones.
	release := make(chan struct{})
	held := make(chan struct{})
	testutil.AssertNoError(t, pool.SubmitFunc(func() {
		close(held)
		<-release
	}))
	<-held
	testutil.AssertNoError(t, pool.Submit(record("direct-1")))
	testutil.AssertEqual(t, pool.QueueSize(), 1)

	var triggered int32
	err = s.ScheduleEvery("tick", 10*time.Millisecond, workerpool.TaskFunc(func() {
		if atomic.AddInt32(&triggered, 1) == 1 {
			mu.Lock()
			order = append(order, "scheduled")
			mu.Unlock()
		}
	}))
	testutil.AssertNoError(t, err)
	s.Start()

	// direct-1 plus at least one trigger queued behind it.
	testutil.AssertEventually(t, func() bool { return pool.QueueSize() >= 2 })
	<-s.Stop().Done()

	testutil.AssertNoError(t, pool.Submit(record("direct-2")))
	close(release)
	pool.Shutdown()

	testutil.AssertEqual(t, len(order) >= 3, true)
	testutil.AssertEqual(t, order[0], "direct-1")
	testutil.AssertEqual(t, order[1], "scheduled")
	testutil.AssertEqual(t, order[len(order)-1], "direct-2")
}

// TestInstrumentedPoolWithScheduler verifies that a metrics-enabled pool and
// scheduler report into one Prometheus registry.
func TestInstrumentedPoolWithScheduler(t *testing.T) {
	reg := prometheus.NewRegistry()
	registry := metrics.NewRegistry(reg)

	pool, err := workerpool.NewWithConfigAndMetrics(
		workerpool.Config{WorkerCount: 2, Logger: quiet},
		"integration",
		metrics.Config{Enabled: true, Registry: reg},
	)
	testutil.AssertNoError(t, err)

	s, err := scheduler.NewWithConfig(scheduler.Config{
		Pool:    pool,
		Logger:  quiet,
		Metrics: registry,
		Name:    "integration",
	})
	testutil.AssertNoError(t, err)

	var executed int32
	testutil.AssertNoError(t, s.ScheduleEvery("work", 5*time.Millisecond, workerpool.TaskFunc(func() {
		atomic.AddInt32(&executed, 1)
	})))
	s.Start()

	testutil.AssertEventually(t, func() bool { return atomic.LoadInt32(&executed) >= 5 })
	<-s.Stop().Done()
	pool.Shutdown()

	triggers := promtestutil.ToFloat64(registry.SchedulerTriggers.WithLabelValues("integration", "work"))
	executedMetric := promtestutil.ToFloat64(registry.TasksExecuted.WithLabelValues("integration"))

	// Every trigger reached the pool and every accepted task ran.
	testutil.AssertEqual(t, executedMetric, triggers)
	testutil.AssertEqual(t, float64(atomic.LoadInt32(&executed)), executedMetric)
	testutil.AssertEqual(t, promtestutil.ToFloat64(registry.SchedulerSubmitFailures.WithLabelValues("integration")), 0.0)
}

// TestShutdownOrdering verifies that shutting the pool down under a running
// scheduler is reported as submit failures rather than panics.
func TestShutdownOrdering(t *testing.T) {
	reg := prometheus.NewRegistry()
	registry := metrics.NewRegistry(reg)

	pool, err := workerpool.NewWithConfig(workerpool.Config{WorkerCount: 2, Logger: quiet})
	testutil.AssertNoError(t, err)

	s, err := scheduler.NewWithConfig(scheduler.Config{Pool: pool, Logger: quiet, Metrics: registry, Name: "order"})
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, s.ScheduleEvery("fast", 2*time.Millisecond, workerpool.TaskFunc(func() {})))
	s.Start()

	time.Sleep(20 * time.Millisecond)
	pool.Shutdown()

	testutil.AssertEventually(t, func() bool {
		return promtestutil.ToFloat64(registry.SchedulerSubmitFailures.WithLabelValues("order")) >= 1
	})
	<-s.Stop().Done()

	testutil.AssertEqual(t, errors.Is(pool.SubmitFunc(func() {}), workerpool.ErrPoolClosed), true)
}
