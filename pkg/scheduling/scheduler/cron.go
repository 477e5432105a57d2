package scheduler

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	// standardParser accepts "minute hour day month weekday" and descriptors
	// such as @hourly or @every 1m.
	standardParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	// secondsParser additionally accepts an optional leading seconds field.
	secondsParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
)

// ValidateCronExpression validates a standard cron expression without
// scheduling it.
// Examples:
//
//	"0 */2 * * *"     - Every 2 hours
//	"30 14 * * 1-5"   - 2:30 PM on weekdays
//	"0 9 1 * *"       - 9:00 AM on the 1st of every month
//	"@daily"          - Every day at midnight
//	"@every 90s"      - Every 90 seconds
func ValidateCronExpression(expr string) error {
	_, err := standardParser.Parse(expr)
	return err
}

// constantDelay fires at a fixed interval. Unlike cron.Every it keeps
// sub-second precision.
type constantDelay time.Duration

func (d constantDelay) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}

// cronLogger routes cron's internal events to slog. Routine events are
// demoted to debug.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

var _ cron.Logger = cronLogger{}
