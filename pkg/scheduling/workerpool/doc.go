/*
Package workerpool provides a fixed-size worker pool for Go applications.

A worker pool manages a fixed number of long-lived worker goroutines that
execute submitted tasks concurrently. Submission is decoupled from execution:
Submit appends the task to an unbounded FIFO queue and returns immediately,
and an idle worker picks it up.

Basic usage:

	pool, err := workerpool.New(4)
	if err != nil {
		log.Fatal(err) // WorkerCount <= 0
	}
	defer pool.Close()

	for i := 1; i <= 8; i++ {
		i := i
		if err := pool.SubmitFunc(func() {
			fmt.Println("task", i)
		}); err != nil {
			log.Printf("Failed to submit: %v", err)
		}
	}

Task Interface:

Tasks implement a simple interface:

	type Task interface {
		Execute()
	}

A task takes no arguments and returns nothing. Whatever it needs is captured
when it is created, and it is the task's own job to report results. The
TaskFunc type adapts a plain function:

	task := workerpool.TaskFunc(func() {
		// Task implementation
	})

Worker Lifecycle:

Each worker runs the same loop:

	WAITING  -- task popped -->  RUNNING  -- task returns or panics -->  WAITING
	WAITING  -- shutdown requested and queue empty -->  EXITING

A waiting worker is parked on a condition variable; an idle pool consumes no
CPU. Workers never skip the queue check between tasks, so a worker always
attempts one more pop before honoring shutdown.

Ordering:

With a single worker, tasks run in submission order. With several workers,
tasks are popped in FIFO order but may complete in any order.

Graceful Shutdown:

Shutdown stops accepting new tasks (Submit returns ErrPoolClosed), lets the
workers drain every task that was already accepted, and returns once all
workers have exited:

	pool.Shutdown() // blocks until every accepted task has run

A running task is never interrupted. Shutdown may be called more than once;
later calls block until the first one has finished. Calling Shutdown from
inside a task deadlocks, because the pool waits for that task's worker.

Error Handling:

Construction validates its configuration and fails fast:

	_, err := workerpool.New(0)
	errors.Is(err, gperrors.ErrInvalidConfiguration) // true

A panicking task is recovered inside the worker, logged through the
configured slog.Logger, counted, and reported to PanicHandler and
OnTaskComplete as a *PanicError. A task that calls runtime.Goexit is
reported as ErrTaskExited and its worker's loop continues on a fresh
goroutine. Either way the worker returns to WAITING, so a faulty task can
never shrink the pool.

Configuration Options:

	config := workerpool.Config{
		WorkerCount: 8,
		Name:        "thumbnails",
		Logger:      slog.New(slog.NewJSONHandler(os.Stderr, nil)),
		PanicHandler: func(workerID int, recovered interface{}) {
			alert(recovered)
		},
		OnTaskComplete: func(workerID int, d time.Duration, err error) {
			log.Printf("worker %d finished a task in %v", workerID, d)
		},
	}
	pool, err := workerpool.NewWithConfig(config)

Monitoring and Metrics:

The pool exposes counters for inspection:

	fmt.Printf("Pool size: %d\n", pool.Size())
	fmt.Printf("Queue size: %d\n", pool.QueueSize())
	fmt.Printf("Active workers: %d\n", pool.ActiveWorkers())
	fmt.Printf("Total submitted: %d\n", pool.TotalSubmitted())
	fmt.Printf("Total completed: %d\n", pool.TotalCompleted())

NewWithMetrics and NewWithConfigAndMetrics return a pool that additionally
publishes Prometheus metrics (see package metrics).

Thread Safety:

All pool operations are safe for concurrent use from multiple goroutines.
State that tasks share with each other or with the submitter is the caller's
responsibility.
*/
package workerpool
