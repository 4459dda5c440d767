package progress

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "playground:progress:"

	fieldAttempts = "attempts"
	fieldCorrect  = "correct"
)

// RedisTracker stores one hash per session so several consoles can share a
// tally. Keys expire after the configured TTL of inactivity.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTracker creates a tracker on client. A zero ttl keeps keys forever.
func NewRedisTracker(client *redis.Client, ttl time.Duration) *RedisTracker {
	return &RedisTracker{client: client, ttl: ttl}
}

func (t *RedisTracker) Record(ctx context.Context, sessionID, exerciseID string, correct bool) error {
	if sessionID == "" || exerciseID == "" {
		return fmt.Errorf("session and exercise ids are required")
	}

	key := SessionKey(sessionID)
	var hit int64
	if correct {
		hit = 1
	}

	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, fieldAttempts, 1)
		pipe.HIncrBy(ctx, key, fieldCorrect, hit)
		pipe.HIncrBy(ctx, key, exerciseField(exerciseID, fieldAttempts), 1)
		pipe.HIncrBy(ctx, key, exerciseField(exerciseID, fieldCorrect), hit)
		if t.ttl > 0 {
			pipe.Expire(ctx, key, t.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("recording progress: %w", err)
	}
	return nil
}

func (t *RedisTracker) Summary(ctx context.Context, sessionID string) (Summary, error) {
	return t.read(ctx, sessionID, fieldAttempts, fieldCorrect)
}

func (t *RedisTracker) Exercise(ctx context.Context, sessionID, exerciseID string) (Summary, error) {
	return t.read(ctx, sessionID,
		exerciseField(exerciseID, fieldAttempts),
		exerciseField(exerciseID, fieldCorrect),
	)
}

func (t *RedisTracker) read(ctx context.Context, sessionID, attemptsField, correctField string) (Summary, error) {
	vals, err := t.client.HMGet(ctx, SessionKey(sessionID), attemptsField, correctField).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Summary{}, fmt.Errorf("reading progress: %w", err)
	}

	var s Summary
	if len(vals) == 2 {
		if s.Attempts, err = toInt(vals[0]); err != nil {
			return Summary{}, err
		}
		if s.Correct, err = toInt(vals[1]); err != nil {
			return Summary{}, err
		}
	}
	return s, nil
}

// SessionKey is the Redis hash holding a session's tally.
func SessionKey(sessionID string) string {
	return keyPrefix + sessionID
}

func exerciseField(exerciseID, field string) string {
	return "ex:" + exerciseID + ":" + field
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing progress counter %q: %w", x, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected progress counter type %T", v)
	}
}
