/*
Package gopool provides a fixed-size worker pool for Go applications, with
the pieces needed to feed it in production.

Task Execution (pkg/scheduling):
  - taskqueue: Unbounded FIFO queue with blocking pop and shutdown wake-up
  - workerpool: Fixed set of workers draining a shared task queue
  - scheduler: Cron and interval triggers that submit to a pool

Feeding (pkg/feed):
  - redisfeed: Redis list producer and consumer

Observability (pkg/metrics):
  - Prometheus collectors shared by every component

Example usage:

	import "github.com/vnykmshr/gopool/pkg/scheduling/workerpool"

	pool, err := workerpool.New(4)
	if err != nil {
		return err
	}

	pool.SubmitFunc(func() {
		// Do work
	})

	pool.Shutdown() // runs every queued task, then joins the workers
*/
package gopool
