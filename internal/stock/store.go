package stock

import "context"

// Store is the durable key-value boundary for stock records. The backend
// is the durability line; no in-process cache is authoritative.
type Store interface {
	// Get returns (nil, nil) when the key is absent. Backend failures
	// wrap ErrStoreUnavailable; a corrupt stored value wraps ErrBadRecord.
	Get(ctx context.Context, key string) (*StockRecord, error)

	// Set persists one record. Backend failures wrap ErrStoreUnavailable.
	Set(ctx context.Context, key string, r StockRecord) error

	// BatchSet persists all records in one call. A partial apply on the
	// backend is surfaced as ErrStoreUnavailable with no rollback.
	BatchSet(ctx context.Context, records map[string]StockRecord) error
}
