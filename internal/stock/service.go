package stock

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockservice/internal/platform/observability"
)

// Service implements the stock operations shared by the HTTP surface and
// the async find pipeline.
//
// Add and Subtract are get-then-set without compare-and-swap: concurrent
// mutations of the same item can lose updates. The backend serializes the
// individual writes; nothing serializes the read-modify-write. Known
// limitation, kept as the service contract.
type Service struct {
	store  Store
	logger observability.Logger
}

func NewService(store Store, logger observability.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create inserts a new item with zero stock and returns its generated id.
func (s *Service) Create(ctx context.Context, price int64) (string, error) {
	key := uuid.New().String()
	if err := s.store.Set(ctx, key, StockRecord{Stock: 0, Price: price}); err != nil {
		return "", err
	}
	s.logger.Info("Item created", zap.String("item_id", key), zap.Int64("price", price))
	return key, nil
}

// BatchInit seeds items under the keys "0".."n-1", all with the same
// starting stock and price.
func (s *Service) BatchInit(ctx context.Context, n int, startingStock, price int64) error {
	records := make(map[string]StockRecord, n)
	for i := 0; i < n; i++ {
		records[strconv.Itoa(i)] = StockRecord{Stock: startingStock, Price: price}
	}
	return s.store.BatchSet(ctx, records)
}

// Add increases an item's stock and returns the new count.
func (s *Service) Add(ctx context.Context, itemID string, amount int64) (int64, error) {
	entry, err := s.store.Get(ctx, itemID)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}
	entry.Stock += amount
	if err := s.store.Set(ctx, itemID, *entry); err != nil {
		return 0, err
	}
	return entry.Stock, nil
}

// Subtract decreases an item's stock and returns the new count. A result
// below zero is rejected before persistence and the stored value is left
// unchanged.
func (s *Service) Subtract(ctx context.Context, itemID string, amount int64) (int64, error) {
	entry, err := s.store.Get(ctx, itemID)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}
	entry.Stock -= amount
	if entry.Stock < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNegativeStock, itemID)
	}
	if err := s.store.Set(ctx, itemID, *entry); err != nil {
		return 0, err
	}
	return entry.Stock, nil
}

// Find is the read-only lookup behind the async pipeline. It performs no
// writes, which keeps redelivered requests safe to repeat.
func (s *Service) Find(ctx context.Context, itemID string) (*StockRecord, error) {
	return s.store.Get(ctx, itemID)
}
