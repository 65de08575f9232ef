package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Vjossaab/commercify-backend/internal/domain"
	"github.com/Vjossaab/commercify-backend/internal/repository"
	"github.com/Vjossaab/commercify-backend/internal/stock"
)

// OrderService implements the order commit protocol: reserve every line
// through the stock guard, then persist the order, compensating with
// best-effort releases when any step fails.
type OrderService struct {
	orders   repository.OrderStore
	products repository.ProductStore
	guard    *stock.Guard
	logger   *zap.Logger
}

func NewOrderService(orders repository.OrderStore, products repository.ProductStore, guard *stock.Guard, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		guard:    guard,
		logger:   logger,
	}
}

// CreateOrder reserves each requested line in request order. A failure
// on any line aborts the whole order; lines already reserved are
// released before the original error is returned. Releases are
// best-effort: a release that itself fails is logged as an inventory
// leak and never masks the original error.
func (s *OrderService) CreateOrder(ctx context.Context, caller domain.Identity, req domain.CreateOrderRequest) (*domain.Order, error) {
	if caller.Role != domain.RoleBuyer {
		return nil, domain.ErrUnauthorized
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	var reserved []domain.OrderLine

	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			s.releaseAll(ctx, reserved)
			return nil, domain.ErrInvalidInput
		}

		product, err := s.products.GetProduct(ctx, item.ProductID)
		if err != nil {
			s.releaseAll(ctx, reserved)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, err
		}

		if _, err := s.guard.CheckAndReserve(ctx, item.ProductID, item.Quantity); err != nil {
			s.releaseAll(ctx, reserved)
			return nil, err
		}

		// snapshot name and price at order time
		reserved = append(reserved, domain.OrderLine{
			ProductID:   product.ProductID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			Price:       product.Price,
			Total:       product.Price * float64(item.Quantity),
		})
	}

	var total float64
	for _, line := range reserved {
		total += line.Total
	}

	now := time.Now().UTC()
	order := &domain.Order{
		UserID:    caller.UserID,
		UserEmail: caller.Email,
		Items:     reserved,
		Total:     total,
		Status:    domain.OrderConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orders.InsertOrder(ctx, order); err != nil {
		s.logger.Error("Failed to persist order, releasing reservations",
			zap.String("user_id", caller.UserID),
			zap.Error(err))
		s.releaseAll(ctx, reserved)
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.OrderID),
		zap.String("user_id", order.UserID),
		zap.Int("lines", len(order.Items)),
		zap.Float64("total", order.Total))

	return order, nil
}

// ListOrders returns the caller's own orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, caller domain.Identity, userID string) ([]domain.Order, error) {
	if caller.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	orders, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

// UpdateOrderStatus validates the transition against the status machine
// and applies it. Buyers may only touch their own orders; any seller
// may transition any order. The missing seller-to-product ownership
// check mirrors the upstream system's behavior.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, caller domain.Identity, orderID string, status domain.OrderStatus) error {
	if !status.Valid() {
		return domain.ErrInvalidInput
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	switch caller.Role {
	case domain.RoleBuyer:
		if order.UserID != caller.UserID {
			return domain.ErrUnauthorized
		}
	case domain.RoleSeller:
	default:
		return domain.ErrUnauthorized
	}

	if !order.Status.CanTransitionTo(status) {
		return domain.ErrInvalidInput
	}

	if err := s.orders.UpdateOrderStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", orderID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(status)))

	return nil
}

func (s *OrderService) releaseAll(ctx context.Context, reserved []domain.OrderLine) {
	for _, line := range reserved {
		if _, err := s.guard.Release(ctx, line.ProductID, line.Quantity); err != nil {
			// a failed release leaks reserved stock; make it loud
			s.logger.Error("Failed to release reserved stock",
				zap.String("product_id", line.ProductID),
				zap.Int("quantity", line.Quantity),
				zap.Error(err))
		}
	}
}
