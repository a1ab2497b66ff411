package retry

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"municipal/internal/payment/models"
)

const DefaultRedisKey = "municipal:payment:retries"

// RedisQueue keeps directives in a sorted set scored by NotBefore in unix
// milliseconds, so several processes can share one queue.
type RedisQueue struct {
	client *redis.Client
	key    string
}

type RedisOption func(*RedisQueue)

func WithKey(key string) RedisOption {
	return func(q *RedisQueue) {
		q.key = key
	}
}

func NewRedisQueue(client *redis.Client, opts ...RedisOption) *RedisQueue {
	q := &RedisQueue{client: client, key: DefaultRedisKey}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	return q
}

// member wraps the directive with a unique token so identical retries do not
// collapse into one sorted-set member.
type member struct {
	Token     string                `json:"token"`
	Directive models.RetryDirective `json:"directive"`
}

func (q *RedisQueue) Schedule(ctx context.Context, d models.RetryDirective) error {
	raw, err := json.Marshal(member{Token: uuid.NewString(), Directive: d})
	if err != nil {
		return fmt.Errorf("marshal retry directive: %w", err)
	}
	err = q.client.ZAdd(ctx, q.key, redis.Z{
		Score:  float64(d.NotBefore.UnixMilli()),
		Member: string(raw),
	}).Err()
	if err != nil {
		return fmt.Errorf("schedule retry: %w", err)
	}
	return nil
}

// Due reads candidates by score and claims each with ZREM. Only the caller
// whose ZREM removed the member gets it, so concurrent workers never run the
// same directive twice.
func (q *RedisQueue) Due(ctx context.Context, now time.Time, limit int) ([]models.RetryDirective, error) {
	candidates, err := q.client.ZRangeArgs(ctx, redis.ZRangeArgs{
		Key:     q.key,
		Start:   "-inf",
		Stop:    strconv.FormatInt(now.UnixMilli(), 10),
		ByScore: true,
		Count:   int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read due retries: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	pipe := q.client.Pipeline()
	removed := make([]*redis.IntCmd, len(candidates))
	for i, c := range candidates {
		removed[i] = pipe.ZRem(ctx, q.key, c)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("claim due retries: %w", err)
	}

	out := make([]models.RetryDirective, 0, len(candidates))
	for i, c := range candidates {
		if removed[i].Val() != 1 {
			continue
		}
		var m member
		if err := json.Unmarshal([]byte(c), &m); err != nil {
			return out, fmt.Errorf("unmarshal retry directive: %w", err)
		}
		out = append(out, m.Directive)
	}
	return out, nil
}

// Len reports how many directives are waiting.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, q.key).Result()
}
