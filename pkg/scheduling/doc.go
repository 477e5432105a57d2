/*
Package scheduling provides task queueing and execution primitives.

  - taskqueue: FIFO queue that workers block on
  - workerpool: Fixed worker pool for concurrent task execution
  - scheduler: Time-based triggers feeding a worker pool

Worker Pool:

	pool, _ := workerpool.New(4)
	defer pool.Shutdown()

	pool.SubmitFunc(func() {
		// Do work
	})

Task Scheduler:

	s, _ := scheduler.New(pool)
	s.ScheduleCron("reports", "0 9 * * 1-5", task) // Weekdays at 9 AM
	s.ScheduleEvery("poll", time.Minute, task)
	s.Start()
	defer func() { <-s.Stop().Done() }()

All components are safe for concurrent use.
*/
package scheduling
