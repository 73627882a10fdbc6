package stock

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// StockRecord is the persisted value for one item: a non-negative stock
// count and a price in currency minor units. The store holds it msgpack
// encoded; the record itself carries no identity, the store key does.
type StockRecord struct {
	Stock int64 `msgpack:"stock"`
	Price int64 `msgpack:"price"`
}

// EncodeRecord serializes a record for storage.
func EncodeRecord(r StockRecord) ([]byte, error) {
	b, err := msgpack.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode stock record: %w", err)
	}
	return b, nil
}

// DecodeRecord is the inverse of EncodeRecord. Malformed input surfaces
// ErrBadRecord; callers treat that as a data-integrity failure, not a
// retryable one.
func DecodeRecord(b []byte) (StockRecord, error) {
	var r StockRecord
	if err := msgpack.Unmarshal(b, &r); err != nil {
		return StockRecord{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	return r, nil
}
