package stock

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Vjossaab/commercify-backend/internal/domain"
	"github.com/Vjossaab/commercify-backend/internal/events"
	"github.com/Vjossaab/commercify-backend/internal/repository"
)

const defaultMaxAttempts = 5

// Store is the slice of the inventory store the guard needs: a read, a
// conditional write keyed on the previously-read stock value, and an
// unconditional write.
type Store interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	UpdateStockIf(ctx context.Context, productID string, expected, next int) error
	SetStock(ctx context.Context, productID string, stock int) error
}

// Guard is the single writer path for a product's stock count. All
// decrements go through the store's conditional-write primitive; there
// is no application-level locking.
type Guard struct {
	store       Store
	emitter     *events.Emitter
	logger      *zap.Logger
	maxAttempts int
}

func NewGuard(store Store, emitter *events.Emitter, logger *zap.Logger, maxAttempts int) *Guard {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Guard{
		store:       store,
		emitter:     emitter,
		logger:      logger,
		maxAttempts: maxAttempts,
	}
}

// CheckAndReserve decrements the product's stock by quantity if enough
// is available, retrying the read-check-write cycle on lost races up to
// maxAttempts before giving up with ErrConflict. On success it returns
// the post-mutation stock value and emits exactly one stock_updates
// event carrying that value.
func (g *Guard) CheckAndReserve(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, domain.ErrInvalidInput
	}

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		product, err := g.store.GetProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return 0, domain.ErrNotFound
			}
			return 0, err
		}

		if quantity > product.Stock {
			return product.Stock, domain.ErrInsufficientStock
		}

		next := product.Stock - quantity
		err = g.store.UpdateStockIf(ctx, productID, product.Stock, next)
		if err == nil {
			g.emitter.StockUpdated(ctx, productID, next)
			return next, nil
		}
		if errors.Is(err, repository.ErrStockChanged) {
			g.logger.Debug("Lost stock reservation race, retrying",
				zap.String("product_id", productID),
				zap.Int("attempt", attempt))
			continue
		}
		if errors.Is(err, repository.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}

	return 0, domain.ErrConflict
}

// Release returns quantity units to the product's stock. It is the
// compensating inverse of CheckAndReserve, used when a multi-line order
// aborts after some lines already reserved.
func (g *Guard) Release(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, domain.ErrInvalidInput
	}

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		product, err := g.store.GetProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return 0, domain.ErrNotFound
			}
			return 0, err
		}

		next := product.Stock + quantity
		err = g.store.UpdateStockIf(ctx, productID, product.Stock, next)
		if err == nil {
			g.emitter.StockUpdated(ctx, productID, next)
			return next, nil
		}
		if errors.Is(err, repository.ErrStockChanged) {
			continue
		}
		if errors.Is(err, repository.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}

	return 0, domain.ErrConflict
}

// SetStock overwrites the stock count with a single unconditional
// document write. Used by direct seller stock edits.
func (g *Guard) SetStock(ctx context.Context, productID string, stock int) error {
	if stock < 0 {
		return domain.ErrInvalidInput
	}

	if err := g.store.SetStock(ctx, productID, stock); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	g.emitter.StockUpdated(ctx, productID, stock)
	return nil
}
