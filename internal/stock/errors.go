package stock

import "errors"

var (
	// ErrStoreUnavailable marks a transport or backend failure of the
	// key-value store. Never retried transparently; the current unit of
	// work is aborted and the failure reported to its boundary.
	ErrStoreUnavailable = errors.New("stock store unavailable")

	// ErrBadRecord marks malformed persisted or wire data. Fatal for the
	// affected unit of work, not retryable by redelivery.
	ErrBadRecord = errors.New("malformed stock data")

	// ErrNotFound reports an absent item. A normal outcome, not a failure.
	ErrNotFound = errors.New("item not found")

	// ErrNegativeStock rejects a mutation that would drive stock below
	// zero. No mutation is applied.
	ErrNegativeStock = errors.New("stock cannot get reduced below zero")

	// ErrPublish marks a failed or aborted response transaction. The
	// consumer must not commit the corresponding offset, forcing
	// redelivery of the whole find/publish unit.
	ErrPublish = errors.New("response publish failed")
)
