package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Consumer fetches request messages without committing their offsets.
// CommitMessages is the explicit acknowledgement; until it is called a
// message remains eligible for redelivery after a restart.
type Consumer interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher hands a response to the broker under a transactional
// contract: the published value is either fully visible to
// read-committed consumers or not visible at all, even across producer
// crash and restart.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error
	Close() error
}
