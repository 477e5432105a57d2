// Package metrics provides Prometheus instrumentation for gopool components.
//
// # Quick Start
//
// Use the metrics-enabled constructors:
//
//	pool, err := workerpool.NewWithMetrics(4, "ingest")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":9090", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation, for example in tests:
//
//	registry := prometheus.NewRegistry()
//	pool, err := workerpool.NewWithConfigAndMetrics(
//		workerpool.Config{WorkerCount: 4},
//		"ingest",
//		metrics.Config{Enabled: true, Registry: registry},
//	)
//
// Collectors are reused when several components register on the same
// Prometheus registry, so any number of pools may share one registry as long
// as they use distinct names.
//
// # Available Metrics
//
// Worker pool (label pool_name):
//
//   - gopool_workerpool_size
//   - gopool_workerpool_active_workers
//   - gopool_workerpool_queued_tasks
//   - gopool_workerpool_tasks_submitted_total
//   - gopool_workerpool_tasks_executed_total
//   - gopool_workerpool_tasks_panicked_total
//   - gopool_workerpool_task_duration_seconds
//   - gopool_workerpool_task_queue_wait_seconds
//
// Scheduler (label scheduler_name; triggers also carry entry_id):
//
//   - gopool_scheduler_triggers_total
//   - gopool_scheduler_submit_failures_total
//
// Feed (label feed_name):
//
//   - gopool_feed_messages_total
//   - gopool_feed_errors_total
package metrics
