// Package redisfeed feeds a worker pool from a Redis list.
//
// A Producer appends payloads with RPUSH and a Consumer takes them from the
// head with BLPOP, so payloads reach the pool in the order they were pushed.
// Several consumers in different processes may share one list; each payload
// is delivered to exactly one of them.
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	consumer, _ := redisfeed.NewConsumer(redisfeed.Config{Client: rdb, Key: "jobs"})
//
//	err := consumer.Run(ctx, pool, func(payload string) {
//		process(payload)
//	})
//
// Run returns nil once ctx is cancelled. The pool is left running so the
// caller can drain it with Shutdown.
package redisfeed
