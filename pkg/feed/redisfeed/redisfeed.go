package redisfeed

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	gperrors "github.com/vnykmshr/gopool/pkg/common/errors"
	"github.com/vnykmshr/gopool/pkg/common/validation"
	"github.com/vnykmshr/gopool/pkg/metrics"
)

// DefaultKey is the Redis list used when Config.Key is empty.
const DefaultKey = "gopool:tasks"

// ListClient is the subset of redis.Cmdable used by the feed.
// *redis.Client, *redis.ClusterClient and redis.UniversalClient satisfy it.
type ListClient interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
}

var _ ListClient = (redis.UniversalClient)(nil)

// Config holds configuration for feed producers and consumers.
type Config struct {
	// Client is the Redis connection. Required.
	Client ListClient

	// Key is the Redis list carrying payloads.
	Key string

	// PopTimeout bounds each blocking pop. The consumer re-checks its
	// context between pops. Defaults to 1s.
	PopTimeout time.Duration

	// RedisTimeout is the timeout for non-blocking Redis operations.
	// Defaults to 500ms.
	RedisTimeout time.Duration

	// Logger receives feed events. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics counts messages and errors. Nil disables metrics.
	Metrics *metrics.Registry

	// Name labels logs and metrics. Defaults to Key.
	Name string
}

// DefaultConfig returns a default feed configuration without a client.
func DefaultConfig() Config {
	return Config{
		Key:          DefaultKey,
		PopTimeout:   time.Second,
		RedisTimeout: 500 * time.Millisecond,
	}
}

// validateConfig validates the feed configuration.
func validateConfig(config Config) error {
	if err := validation.ValidateNotNil("redisfeed", "Client", config.Client); err != nil {
		return err
	}
	if config.PopTimeout < 0 {
		return gperrors.NewValidationError("redisfeed", "PopTimeout", config.PopTimeout, "cannot be negative")
	}
	if config.RedisTimeout < 0 {
		return gperrors.NewValidationError("redisfeed", "RedisTimeout", config.RedisTimeout, "cannot be negative")
	}
	return nil
}

// applyConfigDefaults fills unset fields from DefaultConfig.
func applyConfigDefaults(config Config) Config {
	defaults := DefaultConfig()

	if config.Key == "" {
		config.Key = defaults.Key
	}
	if config.PopTimeout == 0 {
		config.PopTimeout = defaults.PopTimeout
	}
	if config.RedisTimeout == 0 {
		config.RedisTimeout = defaults.RedisTimeout
	}
	if config.Name == "" {
		config.Name = config.Key
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	config.Logger = config.Logger.With("feed", config.Name)

	return config
}

func newFeedConfig(config Config) (Config, error) {
	if err := validateConfig(config); err != nil {
		return Config{}, err
	}
	return applyConfigDefaults(config), nil
}

func (c Config) countError() {
	if c.Metrics != nil {
		c.Metrics.FeedErrors.WithLabelValues(c.Name).Inc()
	}
}
