package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/vnykmshr/gopool/pkg/feed/redisfeed"
	"github.com/vnykmshr/gopool/pkg/metrics"
	"github.com/vnykmshr/gopool/pkg/scheduling/scheduler"
	"github.com/vnykmshr/gopool/pkg/scheduling/workerpool"
)

func addRedisFlags(cmd *cobra.Command) {
	cmd.Flags().String("redis-addr", "localhost:6379", "Redis server address")
	cmd.Flags().String("key", redisfeed.DefaultKey, "Redis list carrying payloads")
}

func (a *app) newRedisClient(ctx context.Context) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: a.config.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", a.config.RedisAddr, err)
	}
	return rdb, nil
}

func (a *app) feedConfig(rdb *redis.Client) redisfeed.Config {
	config := redisfeed.DefaultConfig()
	config.Client = rdb
	config.Key = a.config.Key
	config.Logger = a.logger
	config.Metrics = a.metrics
	return config
}

func (a *app) consumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Execute payloads from a Redis list until interrupted",
		Long: `consume pops payloads from a Redis list and runs one task per payload.
On SIGINT or SIGTERM it stops popping and drains the tasks already queued.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.consume(ctx)
		},
	}

	addRedisFlags(cmd)
	cmd.Flags().Int("workers", 4, "Number of workers")
	cmd.Flags().Duration("report-every", 30*time.Second, "Log the feed backlog at this interval (0 disables)")
	return cmd
}

func (a *app) consume(ctx context.Context) error {
	rdb, err := a.newRedisClient(ctx)
	if err != nil {
		return err
	}
	defer rdb.Close()

	pool, err := workerpool.NewWithConfigAndMetrics(workerpool.Config{
		WorkerCount: a.config.Workers,
		Name:        "consume",
		Logger:      a.logger,
	}, "consume", metrics.Config{Enabled: true, Registry: a.promRegistry})
	if err != nil {
		return err
	}
	defer pool.Shutdown()

	consumer, err := redisfeed.NewConsumer(a.feedConfig(rdb))
	if err != nil {
		return err
	}

	if a.config.ReportEvery > 0 {
		s, err := a.backlogReporter(pool, consumer)
		if err != nil {
			return err
		}
		s.Start()
		defer func() { <-s.Stop().Done() }()
	}

	return consumer.Run(ctx, pool, func(payload string) {
		a.logger.Info("processing payload", "payload", payload)
	})
}

// backlogReporter schedules a periodic log line with the queue depths of
// the feed and the pool.
func (a *app) backlogReporter(pool workerpool.Pool, consumer *redisfeed.Consumer) (*scheduler.Scheduler, error) {
	s, err := scheduler.NewWithConfig(scheduler.Config{
		Pool:    pool,
		Logger:  a.logger,
		Metrics: a.metrics,
		Name:    "consume",
	})
	if err != nil {
		return nil, err
	}

	err = s.ScheduleEvery("backlog", a.config.ReportEvery, workerpool.TaskFunc(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		pending, err := consumer.Pending(ctx)
		if err != nil {
			a.logger.Warn("backlog check failed", "error", err)
			return
		}
		a.logger.Info("backlog",
			"feed_pending", pending,
			"pool_queued", pool.QueueSize(),
			"pool_active", pool.ActiveWorkers())
	}))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (a *app) pushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push PAYLOAD...",
		Short: "Append payloads to a Redis list for consume",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rdb, err := a.newRedisClient(cmd.Context())
			if err != nil {
				return err
			}
			defer rdb.Close()

			producer, err := redisfeed.NewProducer(a.feedConfig(rdb))
			if err != nil {
				return err
			}
			if err := producer.Push(cmd.Context(), args...); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "pushed %d payloads to %s\n", len(args), a.config.Key)
			return nil
		},
	}

	addRedisFlags(cmd)
	return cmd
}
