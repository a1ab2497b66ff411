package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "municipal/pkg/domain"
	"municipal/pkg/requestcontext"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		p.records = append(p.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestKafkaNotifier(t *testing.T) {
	now := time.Date(2024, 10, 3, 15, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("publishes a keyed JSON record", func(t *testing.T) {
		producer := &fakeProducer{}
		n := NewKafkaNotifier(producer, "citizen-notifications")

		require.NoError(t, n.Notify(ctx, id.CitizenID(1), "Procedure EXP-2024-001234 opened"))
		require.Len(t, producer.records, 1)
		record := producer.records[0]
		assert.Equal(t, "citizen-notifications", record.Topic)
		assert.Equal(t, "1", string(record.Key))

		var msg Message
		require.NoError(t, json.Unmarshal(record.Value, &msg))
		assert.Equal(t, id.CitizenID(1), msg.CitizenID)
		assert.Equal(t, "Procedure EXP-2024-001234 opened", msg.Message)
		assert.Equal(t, now, msg.SentAt)
	})

	t.Run("produce failure is returned", func(t *testing.T) {
		producer := &fakeProducer{err: errors.New("broker unavailable")}
		err := NewKafkaNotifier(producer, "t").Notify(ctx, id.CitizenID(1), "x")
		assert.ErrorContains(t, err, "broker unavailable")
	})
}

func TestLogAdapters(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	require.NoError(t, NewLogNotifier(logger).Notify(context.Background(), id.CitizenID(7), "hello"))
	require.NoError(t, NewLogReminderScheduler(logger).Schedule(context.Background(), id.DebtID(3), 4))

	out := buf.String()
	assert.Contains(t, out, `"citizen_id":7`)
	assert.Contains(t, out, `"installments":4`)
}

func TestReminderMember(t *testing.T) {
	assert.Equal(t, "debt:3:installment:4", reminderMember(id.DebtID(3), 4))
}
