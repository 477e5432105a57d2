package redisfeed

import (
	"context"

	gperrors "github.com/vnykmshr/gopool/pkg/common/errors"
)

// Producer appends payloads to the tail of the feed list.
type Producer struct {
	config Config
}

// NewProducer creates a producer for config.Key.
func NewProducer(config Config) (*Producer, error) {
	config, err := newFeedConfig(config)
	if err != nil {
		return nil, err
	}
	return &Producer{config: config}, nil
}

// Push appends payloads in order with a single RPUSH.
func (p *Producer) Push(ctx context.Context, payloads ...string) error {
	if len(payloads) == 0 {
		return gperrors.NewValidationError("redisfeed", "payloads", 0, "cannot be empty").
			WithHint("pass at least one payload")
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.RedisTimeout)
	defer cancel()

	values := make([]interface{}, len(payloads))
	for i, payload := range payloads {
		values[i] = payload
	}

	if err := p.config.Client.RPush(ctx, p.config.Key, values...).Err(); err != nil {
		p.config.countError()
		return gperrors.NewOperationError("redisfeed", "Push", err).WithContext("key=" + p.config.Key)
	}

	p.config.Logger.Debug("payloads pushed", "count", len(payloads))
	return nil
}
