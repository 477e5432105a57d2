package redisfeed

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	gperrors "github.com/vnykmshr/gopool/pkg/common/errors"
	"github.com/vnykmshr/gopool/pkg/common/validation"
	"github.com/vnykmshr/gopool/pkg/scheduling/workerpool"
)

// Consumer moves payloads from the head of the feed list into a worker pool.
type Consumer struct {
	config Config
}

// NewConsumer creates a consumer for config.Key.
func NewConsumer(config Config) (*Consumer, error) {
	config, err := newFeedConfig(config)
	if err != nil {
		return nil, err
	}
	return &Consumer{config: config}, nil
}

// Run pops payloads one at a time and submits a task calling handler for
// each. It blocks until ctx is cancelled, in which case it returns nil.
//
// If the pool rejects a task the payload is pushed back to the head of the
// list and the pool's error (workerpool.ErrPoolClosed) is returned. Any
// other Redis failure is returned wrapped in an *errors.OperationError.
func (c *Consumer) Run(ctx context.Context, pool workerpool.Pool, handler func(payload string)) error {
	if err := validation.ValidateNotNil("redisfeed", "pool", pool); err != nil {
		return err
	}
	if handler == nil {
		return gperrors.NewValidationError("redisfeed", "handler", nil, "cannot be nil")
	}

	logger := c.config.Logger
	logger.Info("consumer started", "key", c.config.Key)
	defer logger.Info("consumer stopped", "key", c.config.Key)

	for {
		if ctx.Err() != nil {
			return nil
		}

		res, err := c.config.Client.BLPop(ctx, c.config.PopTimeout, c.config.Key).Result()
		if errors.Is(err, redis.Nil) {
			// Pop timed out on an empty list.
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				// The server may have popped a payload before the reply was abandoned.
				logger.Warn("pop interrupted by cancellation, an in-flight payload may be lost",
					"key", c.config.Key, "error", err)
				return nil
			}
			c.config.countError()
			return gperrors.NewOperationError("redisfeed", "Run", err).WithContext("key=" + c.config.Key)
		}

		// BLPOP replies with the key followed by the value.
		payload := res[len(res)-1]

		err = pool.Submit(workerpool.TaskFunc(func() {
			handler(payload)
		}))
		if err != nil {
			c.requeue(payload)
			logger.Warn("pool rejected payload, stopping consumer", "error", err)
			return err
		}

		if c.config.Metrics != nil {
			c.config.Metrics.FeedMessages.WithLabelValues(c.config.Name).Inc()
		}
	}
}

// requeue returns a popped payload to the head of the list so it is the
// next one delivered.
func (c *Consumer) requeue(payload string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.RedisTimeout)
	defer cancel()

	if err := c.config.Client.LPush(ctx, c.config.Key, payload).Err(); err != nil {
		c.config.countError()
		c.config.Logger.Error("failed to requeue payload", "payload", payload, "error", err)
	}
}

// Pending returns the number of payloads waiting in the list.
func (c *Consumer) Pending(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.RedisTimeout)
	defer cancel()

	n, err := c.config.Client.LLen(ctx, c.config.Key).Result()
	if err != nil {
		c.config.countError()
		return 0, gperrors.NewOperationError("redisfeed", "Pending", err).WithContext("key=" + c.config.Key)
	}
	return n, nil
}
