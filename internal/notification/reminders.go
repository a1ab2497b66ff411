package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	id "municipal/pkg/domain"
	"municipal/pkg/requestcontext"
)

const DefaultReminderKey = "municipal:reminders"

// RedisReminderScheduler books one reminder per installment in a sorted set
// scored by the installment's due date in unix milliseconds. Members look
// like "debt:<id>:installment:<n>", so booking the same plan twice is a no-op.
type RedisReminderScheduler struct {
	client *redis.Client
	key    string
}

func NewRedisReminderScheduler(client *redis.Client, key string) *RedisReminderScheduler {
	if key == "" {
		key = DefaultReminderKey
	}
	return &RedisReminderScheduler{client: client, key: key}
}

// Schedule books installments 1..installmentCount a month apart, the first
// one month after the request time.
func (s *RedisReminderScheduler) Schedule(ctx context.Context, debtID id.DebtID, installmentCount int) error {
	if installmentCount <= 0 {
		return nil
	}
	now := requestcontext.Now(ctx)
	pipe := s.client.Pipeline()
	for i := 1; i <= installmentCount; i++ {
		pipe.ZAdd(ctx, s.key, redis.Z{
			Score:  float64(now.AddDate(0, i, 0).UnixMilli()),
			Member: reminderMember(debtID, i),
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("schedule reminders for debt %d: %w", int64(debtID), err)
	}
	return nil
}

// DueBefore lists reminder members due at or before t, earliest first.
func (s *RedisReminderScheduler) DueBefore(ctx context.Context, t time.Time) ([]string, error) {
	return s.client.ZRangeArgs(ctx, redis.ZRangeArgs{
		Key:     s.key,
		Start:   "-inf",
		Stop:    strconv.FormatInt(t.UnixMilli(), 10),
		ByScore: true,
	}).Result()
}

func reminderMember(debtID id.DebtID, installment int) string {
	return fmt.Sprintf("debt:%d:installment:%d", int64(debtID), installment)
}
