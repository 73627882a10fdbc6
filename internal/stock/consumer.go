package stock

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"stockservice/internal/platform/kafka"
	"stockservice/internal/platform/observability"
)

// ConsumerService runs the request pull loop.
type ConsumerService interface {
	Start(ctx context.Context) error
}

// KafkaConsumerService fetches request messages one at a time and hands
// them to the message handler. Processing is strictly sequential, which
// preserves per-partition order and keeps the transactional publisher
// single-writer. The offset of a message is committed only after the
// handler reports the unit finished — for a find, that means after its
// response transaction committed.
type KafkaConsumerService struct {
	consumer kafka.Consumer
	handler  MessageHandler
	logger   observability.Logger
}

func NewConsumerService(consumer kafka.Consumer, handler MessageHandler, logger observability.Logger) ConsumerService {
	return &KafkaConsumerService{
		consumer: consumer,
		handler:  handler,
		logger:   logger,
	}
}

// Start blocks until the context is canceled, the reader is closed, or
// a unit of work fails. A failed unit returns its error with the offset
// uncommitted, so the message is redelivered when the loop is started
// again. An in-flight unit always finishes before Start returns;
// cancellation is only observed between messages.
func (c *KafkaConsumerService) Start(ctx context.Context) error {
	c.logger.Info("Kafka consumer started. Waiting for messages...")

	// Cancellation interrupts the fetch only. A unit already being
	// processed runs to completion, including its offset commit, so
	// draining never strands a half-finished message.
	unitCtx := context.WithoutCancel(ctx)

	for {
		msg, err := c.consumer.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				c.logger.Info("Context done, draining Kafka read loop.", zap.Error(err))
				break
			}
			c.logger.Error("❌ Error fetching from Kafka", zap.Error(err))
			continue
		}

		if err := c.handler.HandleRequest(unitCtx, msg); err != nil {
			// Offset commits are cumulative per partition, so moving on
			// and committing a later message would acknowledge this one
			// too. Stop instead; after restart the group resumes from
			// the last committed offset and redelivers the failed unit.
			c.logger.Error("❌ Message handling failed, stopping for redelivery",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			return err
		}

		if err := c.consumer.CommitMessages(unitCtx, msg); err != nil {
			// At-least-once: the unit completed but will be redelivered.
			// The find path is idempotent, so repeating it is safe.
			c.logger.Error("❌ Failed to commit offset",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}

	c.logger.Info("Consumer service drained. Shutting down...")
	return nil
}
