package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"

	"stockservice/internal/config"
)

// NewRequestReader builds the consumer-group reader for the request
// topic. Offsets move only through explicit CommitMessages calls, and
// read-committed isolation keeps aborted or in-flight upstream
// transactions invisible.
func NewRequestReader(broker string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          config.RequestTopic,
		GroupID:        config.GroupID,
		IsolationLevel: kafka.ReadCommitted,
		StartOffset:    kafka.FirstOffset,
		MaxWait:        time.Second,
	})
}
