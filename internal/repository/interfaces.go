package repository

import (
	"context"

	"github.com/Vjossaab/commercify-backend/internal/domain"
)

// ProductStore is the inventory document store: single-document reads,
// single-document writes, and one conditional write used as the CAS
// primitive for stock.
type ProductStore interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) (*domain.Product, error)

	// UpdateStockIf writes next only if the stored stock still equals
	// expected. Returns ErrStockChanged when the condition fails.
	UpdateStockIf(ctx context.Context, productID string, expected, next int) error

	// SetStock is a single unconditional write of the stock field.
	SetStock(ctx context.Context, productID string, stock int) error
}

// OrderStore is the order ledger: append-only creation plus status
// mutation.
type OrderStore interface {
	InsertOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}
