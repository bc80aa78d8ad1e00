package outbox

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/segmentio/kafka-go"

	"vcasino_wallet/internal/models"
)

// KafkaSink publishes events to a topic instead of calling the applicant
// directly. Messages are keyed by aggregate id so one wallet's events land on
// one partition and keep their order.
type KafkaSink struct {
	writer *kafka.Writer
}

// NewKafkaSink takes a comma-separated broker list.
func NewKafkaSink(brokers, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (s *KafkaSink) Deliver(ctx context.Context, event models.OutboxEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.AggregateID, 10)),
		Value: value,
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
