package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	gperrors "github.com/vnykmshr/gopool/pkg/common/errors"
	"github.com/vnykmshr/gopool/pkg/common/validation"
	"github.com/vnykmshr/gopool/pkg/metrics"
	"github.com/vnykmshr/gopool/pkg/scheduling/workerpool"
)

// DefaultSchedulerName labels logs and metrics when Config.Name is empty.
const DefaultSchedulerName = "default"

// Config holds scheduler configuration.
type Config struct {
	// Pool receives every triggered task. Required.
	Pool workerpool.Pool

	// Location is the time zone cron expressions are evaluated in.
	// Defaults to time.Local.
	Location *time.Location

	// Logger receives scheduler events. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records triggers and submit failures. Nil disables metrics.
	Metrics *metrics.Registry

	// Name labels logs and metrics.
	Name string

	// WithSeconds accepts an optional leading seconds field in cron
	// expressions.
	WithSeconds bool
}

// Entry describes one scheduled task.
type Entry struct {
	ID   string
	Spec string
	Next time.Time
	Prev time.Time
}

// Scheduler triggers tasks on cron or fixed-interval schedules and submits
// them to a worker pool. The pool is owned by the caller: Stop does not shut
// it down.
type Scheduler struct {
	config Config
	logger *slog.Logger
	parser cron.Parser
	cron   *cron.Cron

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	id     string
	spec   string
	cronID cron.EntryID
}

// New creates a scheduler that submits to pool.
func New(pool workerpool.Pool) (*Scheduler, error) {
	return NewWithConfig(Config{Pool: pool})
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(config Config) (*Scheduler, error) {
	if err := validation.ValidateNotNil("scheduler", "Pool", config.Pool); err != nil {
		return nil, err
	}

	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Name == "" {
		config.Name = DefaultSchedulerName
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("scheduler", config.Name)

	parser := standardParser
	if config.WithSeconds {
		parser = secondsParser
	}

	cl := cronLogger{logger: logger}
	return &Scheduler{
		config: config,
		logger: logger,
		parser: parser,
		cron: cron.New(
			cron.WithLocation(config.Location),
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		entries: make(map[string]*entry),
	}, nil
}

// ScheduleCron submits task to the pool every time expr fires.
func (s *Scheduler) ScheduleCron(id, expr string, task workerpool.Task) error {
	if err := validateEntry(id, task); err != nil {
		return err
	}

	schedule, err := s.parser.Parse(expr)
	if err != nil {
		return gperrors.NewValidationError("scheduler", "expr", expr, err.Error()).
			WithHint("use a 5-field cron expression or a descriptor such as @hourly")
	}

	return s.add("ScheduleCron", id, expr, schedule, task)
}

// ScheduleEvery submits task to the pool once per interval, starting one
// interval after the scheduler starts.
func (s *Scheduler) ScheduleEvery(id string, interval time.Duration, task workerpool.Task) error {
	if err := validateEntry(id, task); err != nil {
		return err
	}
	if err := validation.ValidatePositiveDuration("scheduler", "interval", interval); err != nil {
		return err
	}

	return s.add("ScheduleEvery", id, "@every "+interval.String(), constantDelay(interval), task)
}

func validateEntry(id string, task workerpool.Task) error {
	if err := validation.ValidateNotEmpty("scheduler", "id", id); err != nil {
		return err
	}
	return validation.ValidateNotNil("scheduler", "task", task)
}

func (s *Scheduler) add(op, id, spec string, schedule cron.Schedule, task workerpool.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; exists {
		return gperrors.NewOperationError("scheduler", op, gperrors.ErrAlreadyExists).
			WithContext("id=" + id)
	}

	cronID := s.cron.Schedule(schedule, &job{
		scheduler: s,
		id:        id,
		task:      task,
	})
	s.entries[id] = &entry{id: id, spec: spec, cronID: cronID}

	s.logger.Debug("task scheduled", "id", id, "spec", spec)
	return nil
}

// Cancel removes the entry with the given id. It reports whether the entry
// existed. A trigger already handed to the pool still runs.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[id]
	if !exists {
		return false
	}

	s.cron.Remove(e.cronID)
	delete(s.entries, id)

	s.logger.Debug("task cancelled", "id", id)
	return true
}

// List returns all entries ordered by next run time. Next is zero until the
// scheduler has been started.
func (s *Scheduler) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		ce := s.cron.Entry(e.cronID)
		list = append(list, Entry{
			ID:   e.id,
			Spec: e.spec,
			Next: ce.Next,
			Prev: ce.Prev,
		})
	}

	sort.Slice(list, func(i, j int) bool {
		if !list[i].Next.Equal(list[j].Next) {
			return list[i].Next.Before(list[j].Next)
		}
		return list[i].ID < list[j].ID
	})

	return list
}

// ValidateCronExpression reports whether expr is accepted by this scheduler.
func (s *Scheduler) ValidateCronExpression(expr string) error {
	_, err := s.parser.Parse(expr)
	return err
}

// Start begins triggering entries in its own goroutine. Starting a running
// scheduler is a no-op.
func (s *Scheduler) Start() {
	s.cron.Start()

	s.mu.RLock()
	n := len(s.entries)
	s.mu.RUnlock()
	s.logger.Info("scheduler started", "entries", n)
}

// Stop halts triggering. The returned context is done once every in-flight
// trigger has handed its task to the pool.
func (s *Scheduler) Stop() context.Context {
	ctx := s.cron.Stop()
	s.logger.Info("scheduler stopped")
	return ctx
}

// job adapts a workerpool.Task to cron.Job.
type job struct {
	scheduler *Scheduler
	id        string
	task      workerpool.Task
}

func (j *job) Run() {
	s := j.scheduler
	if s.config.Metrics != nil {
		s.config.Metrics.SchedulerTriggers.WithLabelValues(s.config.Name, j.id).Inc()
	}

	if err := s.config.Pool.Submit(j.task); err != nil {
		s.logger.Warn("failed to submit scheduled task", "id", j.id, "error", err)
		if s.config.Metrics != nil {
			s.config.Metrics.SchedulerSubmitFailures.WithLabelValues(s.config.Name).Inc()
		}
	}
}
