/*
Package taskqueue provides an unbounded, goroutine-safe FIFO queue that hands
work from any number of producers to any number of blocking consumers.

The queue is a monitor: a single mutex guards the underlying slice and a
condition variable parks consumers while the queue is empty. Consumers never
poll.

	q := taskqueue.New[func()]()
	var stop atomic.Bool

	go func() {
		for {
			job, ok := q.WaitAndPop(&stop)
			if !ok {
				return // stop requested and nothing left to drain
			}
			job()
		}
	}()

	q.Push(func() { fmt.Println("hello") })

	stop.Store(true)
	q.WakeAll()

Stop Semantics:

WaitAndPop honors the stop flag only once the queue is empty. Items pushed
before the flag was observed are always handed out, so consumers drain the
queue before they exit.

The stop flag is owned by the caller, not by the queue. After setting it the
caller must call WakeAll so that consumers parked in WaitAndPop re-check their
condition; WakeAll takes the queue mutex, which guarantees no consumer is
between its condition check and its wait when the broadcast happens.
*/
package taskqueue
