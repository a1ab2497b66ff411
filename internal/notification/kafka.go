package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	id "municipal/pkg/domain"
	"municipal/pkg/requestcontext"
)

// Producer is the slice of *kgo.Client the notifier needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Message is the JSON value published for every notification.
type Message struct {
	CitizenID id.CitizenID `json:"citizen_id"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id,omitempty"`
	SentAt    time.Time    `json:"sent_at"`
}

// KafkaNotifier publishes notifications keyed by citizen id, so one
// citizen's messages stay ordered within a partition.
type KafkaNotifier struct {
	producer Producer
	topic    string
}

func NewKafkaNotifier(producer Producer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

func (n *KafkaNotifier) Notify(ctx context.Context, citizenID id.CitizenID, message string) error {
	value, err := json.Marshal(Message{
		CitizenID: citizenID,
		Message:   message,
		RequestID: requestcontext.RequestID(ctx),
		SentAt:    requestcontext.Now(ctx),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	record := &kgo.Record{
		Topic: n.topic,
		Key:   []byte(strconv.FormatInt(int64(citizenID), 10)),
		Value: value,
	}
	if err := n.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
