/*
Package scheduler triggers worker pool tasks on a schedule.

A Scheduler owns no workers. Each time an entry fires, its task is submitted
to the workerpool.Pool given at construction, so scheduled work shares the
pool's FIFO queue with everything else submitted to it. Timing is driven by
github.com/robfig/cron/v3.

Basic Usage:

	pool, _ := workerpool.New(4)
	defer pool.Shutdown()

	s, _ := scheduler.New(pool)
	s.ScheduleCron("nightly", "0 2 * * *", task)
	s.ScheduleEvery("poll", 30*time.Second, task)

	s.Start()
	defer func() { <-s.Stop().Done() }()

Cron Expressions:

The standard five fields are accepted along with descriptors:

	"0 0-23/2 * * *"  - Every 2 hours
	"30 14 * * 1-5"   - 2:30 PM on weekdays
	"@daily"          - Every day at midnight
	"@every 90s"      - Every 90 seconds

Set Config.WithSeconds to accept an optional leading seconds field.
Expressions are evaluated in Config.Location (time.Local by default).

Entries:

Every entry has a caller-chosen id. Scheduling a second entry under an id
that is in use fails with errors.ErrAlreadyExists. Cancel frees the id. List
reports each entry with its next and previous trigger time.

Shutdown:

Stop halts triggering and returns a context that is done when in-flight
triggers have handed their tasks to the pool. Stop never shuts the pool down:
the caller decides when queued work is drained. A trigger that finds the pool
closed is logged and counted in the scheduler_submit_failures_total metric.
*/
package scheduler
