package kafka

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// TxnProducer is a transactional, idempotent producer session bound to a
// stable transactional id. Transactional sessions are single-writer: the
// mutex keeps one transaction in flight at a time, trading throughput
// for the exactly-once-visible guarantee.
type TxnProducer struct {
	client     *kafka.Client
	transport  *kafka.Transport
	topic      string
	txnID      string
	producerID int
	epoch      int
	partitions []int

	mu sync.Mutex
}

// NewTxnProducer opens the session: it claims a producer id under the
// transactional id, fencing any older instance still holding it, and
// discovers the topic's partitions for keyed routing.
func NewTxnProducer(ctx context.Context, broker, topic, txnID string, txnTimeout time.Duration) (*TxnProducer, error) {
	transport := &kafka.Transport{}
	client := &kafka.Client{
		Addr:      kafka.TCP(broker),
		Transport: transport,
	}

	initResp, err := client.InitProducerID(ctx, &kafka.InitProducerIDRequest{
		Addr:                 client.Addr,
		TransactionalID:      txnID,
		TransactionTimeoutMs: int(txnTimeout.Milliseconds()),
	})
	if err != nil {
		return nil, fmt.Errorf("init producer id: %w", err)
	}
	if initResp.Error != nil {
		return nil, fmt.Errorf("init producer id: %w", initResp.Error)
	}

	meta, err := client.Metadata(ctx, &kafka.MetadataRequest{
		Addr:   client.Addr,
		Topics: []string{topic},
	})
	if err != nil {
		return nil, fmt.Errorf("topic metadata: %w", err)
	}
	var partitions []int
	for _, t := range meta.Topics {
		if t.Name != topic {
			continue
		}
		if t.Error != nil {
			return nil, fmt.Errorf("topic metadata: %w", t.Error)
		}
		for _, p := range t.Partitions {
			partitions = append(partitions, p.ID)
		}
	}
	if len(partitions) == 0 {
		return nil, fmt.Errorf("topic %q has no partitions", topic)
	}

	return &TxnProducer{
		client:     client,
		transport:  transport,
		topic:      topic,
		txnID:      txnID,
		producerID: initResp.Producer.ProducerID,
		epoch:      initResp.Producer.ProducerEpoch,
		partitions: partitions,
	}, nil
}

// Publish runs one full transaction around a single record: add the
// target partition to the transaction, produce, end the transaction
// committed. Any failure along the way aborts the transaction and is
// returned to the caller, which must not commit its consumer offset.
func (p *TxnProducer) Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	partition := p.partitionFor(key)

	if err := p.addPartition(ctx, partition); err != nil {
		return p.abort(ctx, err)
	}

	resp, err := p.client.Produce(ctx, &kafka.ProduceRequest{
		Addr:            p.client.Addr,
		Topic:           p.topic,
		Partition:       partition,
		RequiredAcks:    kafka.RequireAll,
		TransactionalID: p.txnID,
		Records: kafka.NewRecordReader(kafka.Record{
			Key:     kafka.NewBytes(key),
			Value:   kafka.NewBytes(value),
			Headers: headers,
		}),
	})
	if err == nil && resp.Error != nil {
		err = resp.Error
	}
	if err != nil {
		return p.abort(ctx, fmt.Errorf("produce: %w", err))
	}

	return p.endTxn(ctx, true)
}

// Close releases the session's broker connections. The transactional id
// itself stays registered with the broker so the next instance can fence
// this one.
func (p *TxnProducer) Close() error {
	p.transport.CloseIdleConnections()
	return nil
}

func (p *TxnProducer) partitionFor(key []byte) int {
	h := fnv.New32a()
	h.Write(key)
	return p.partitions[int(h.Sum32())%len(p.partitions)]
}

func (p *TxnProducer) addPartition(ctx context.Context, partition int) error {
	resp, err := p.client.AddPartitionsToTxn(ctx, &kafka.AddPartitionsToTxnRequest{
		Addr:            p.client.Addr,
		TransactionalID: p.txnID,
		ProducerID:      p.producerID,
		ProducerEpoch:   p.epoch,
		Topics: map[string][]kafka.AddPartitionToTxn{
			p.topic: {{Partition: partition}},
		},
	})
	if err != nil {
		return fmt.Errorf("add partitions to txn: %w", err)
	}
	for _, parts := range resp.Topics {
		for _, part := range parts {
			if part.Error != nil {
				return fmt.Errorf("add partitions to txn: %w", part.Error)
			}
		}
	}
	return nil
}

// abort ends the transaction uncommitted and reports the underlying cause.
// An abort failure is folded into the returned error; either way the
// caller sees a failed publish.
func (p *TxnProducer) abort(ctx context.Context, cause error) error {
	if err := p.endTxn(ctx, false); err != nil {
		return fmt.Errorf("%w (abort also failed: %v)", cause, err)
	}
	return cause
}

func (p *TxnProducer) endTxn(ctx context.Context, commit bool) error {
	resp, err := p.client.EndTxn(ctx, &kafka.EndTxnRequest{
		Addr:            p.client.Addr,
		TransactionalID: p.txnID,
		ProducerID:      p.producerID,
		ProducerEpoch:   p.epoch,
		Committed:       commit,
	})
	if err == nil && resp.Error != nil {
		err = resp.Error
	}
	if err != nil {
		return fmt.Errorf("end txn (committed=%t): %w", commit, err)
	}
	return nil
}
