package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"stockservice/internal/stock"
)

// RedisStore implements stock.Store on a Redis backend. Values are the
// msgpack encoding of the stock record; the store itself is the
// durability boundary.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping verifies backend connectivity. The coordinator calls it before
// the service starts accepting traffic.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", stock.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (*stock.StockRecord, error) {
	entry, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", stock.ErrStoreUnavailable, err)
	}
	record, err := stock.DecodeRecord(entry)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, record stock.StockRecord) error {
	value, err := stock.EncodeRecord(record)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", stock.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *RedisStore) BatchSet(ctx context.Context, records map[string]stock.StockRecord) error {
	// MSET with no pairs is a protocol error, not a no-op.
	if len(records) == 0 {
		return nil
	}
	pairs := make([]interface{}, 0, len(records)*2)
	for key, record := range records {
		value, err := stock.EncodeRecord(record)
		if err != nil {
			return err
		}
		pairs = append(pairs, key, value)
	}
	if err := r.client.MSet(ctx, pairs...).Err(); err != nil {
		return fmt.Errorf("%w: %v", stock.ErrStoreUnavailable, err)
	}
	return nil
}
