package redisfeed

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeList is an in-memory ListClient backed by a single list per key.
type fakeList struct {
	mu     sync.Mutex
	lists  map[string][]string
	notify chan struct{}

	// err, when set, is returned by every command.
	err error
}

func newFakeList() *fakeList {
	return &fakeList{
		lists:  make(map[string][]string),
		notify: make(chan struct{}),
	}
}

func (f *fakeList) failWith(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeList) items(key string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lists[key]...)
}

// wakeLocked releases every blocked BLPop. Caller holds f.mu.
func (f *fakeList) wakeLocked() {
	close(f.notify)
	f.notify = make(chan struct{})
}

func (f *fakeList) BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	key := keys[0]
	for {
		f.mu.Lock()
		if f.err != nil {
			err := f.err
			f.mu.Unlock()
			return redis.NewStringSliceResult(nil, err)
		}
		if list := f.lists[key]; len(list) > 0 {
			value := list[0]
			f.lists[key] = list[1:]
			f.mu.Unlock()
			return redis.NewStringSliceResult([]string{key, value}, nil)
		}
		notify := f.notify
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return redis.NewStringSliceResult(nil, ctx.Err())
		case <-timer.C:
			return redis.NewStringSliceResult(nil, redis.Nil)
		case <-notify:
		}
	}
}

func (f *fakeList) push(key string, head bool, values []interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	for _, v := range values {
		s := v.(string)
		if head {
			f.lists[key] = append([]string{s}, f.lists[key]...)
		} else {
			f.lists[key] = append(f.lists[key], s)
		}
	}
	f.wakeLocked()
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeList) RPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	return f.push(key, false, values)
}

func (f *fakeList) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	return f.push(key, true, values)
}

func (f *fakeList) LLen(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

var _ ListClient = (*fakeList)(nil)
