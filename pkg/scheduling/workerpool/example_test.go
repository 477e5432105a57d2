package workerpool_test

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vnykmshr/gopool/pkg/scheduling/workerpool"
)

// Example demonstrates basic usage of the worker pool
func Example() {
	pool, err := workerpool.New(3)
	if err != nil {
		log.Fatal(err)
	}

	var done sync.WaitGroup
	done.Add(1)
	err = pool.SubmitFunc(func() {
		defer done.Done()
		fmt.Println("Task executed")
	})
	if err != nil {
		log.Printf("Failed to submit task: %v", err)
		return
	}

	// Shutdown drains the queue before returning.
	pool.Shutdown()
	done.Wait()

	// Output: Task executed
}

// Example_fanOut submits many tasks and aggregates their effect.
func Example_fanOut() {
	pool, err := workerpool.New(4)
	if err != nil {
		log.Fatal(err)
	}

	var sum int64
	for i := 1; i <= 100; i++ {
		n := int64(i)
		if err := pool.SubmitFunc(func() {
			atomic.AddInt64(&sum, n)
		}); err != nil {
			log.Fatal(err)
		}
	}

	pool.Shutdown()
	fmt.Println("sum:", atomic.LoadInt64(&sum))
	fmt.Println("completed:", pool.TotalCompleted())

	// Output:
	// sum: 5050
	// completed: 100
}

// Example_configuration shows the hooks available on Config.
func Example_configuration() {
	var panics int32

	pool, err := workerpool.NewWithConfig(workerpool.Config{
		WorkerCount: 2,
		Name:        "example",
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		PanicHandler: func(workerID int, recovered interface{}) {
			atomic.AddInt32(&panics, 1)
		},
		OnTaskComplete: func(workerID int, d time.Duration, err error) {
			if err != nil {
				fmt.Println("task failed:", err)
			}
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	_ = pool.SubmitFunc(func() { panic("bad input") })
	pool.Shutdown()

	fmt.Println("panics:", atomic.LoadInt32(&panics))
	fmt.Println("workers:", pool.Size())

	// Output:
	// task failed: task panicked: bad input
	// panics: 1
	// workers: 2
}

// Example_submitAfterShutdown shows that a stopped pool rejects work.
func Example_submitAfterShutdown() {
	pool, err := workerpool.New(1)
	if err != nil {
		log.Fatal(err)
	}
	pool.Shutdown()

	err = pool.SubmitFunc(func() {})
	fmt.Println(err)

	// Output: worker pool has been shut down: resource is closed
}

// Example_invalidConfiguration shows the error returned for a bad worker count.
func Example_invalidConfiguration() {
	_, err := workerpool.New(0)
	fmt.Println(err)

	// Output: workerpool: invalid WorkerCount=0 (must be positive) - value must be greater than 0
}
