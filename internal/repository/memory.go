package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vjossaab/commercify-backend/internal/domain"
)

// MemoryProductStore implements ProductStore over a mutex-guarded map.
// The conditional stock write has the same lost-race semantics as the
// DynamoDB implementation, so the stock guard behaves identically in
// local mode and in tests.
type MemoryProductStore struct {
	mu sync.RWMutex
	m  map[string]domain.Product
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{m: make(map[string]domain.Product)}
}

func (s *MemoryProductStore) CreateProduct(_ context.Context, product *domain.Product) error {
	if product.ProductID == "" {
		product.ProductID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[product.ProductID] = *product
	return nil
}

func (s *MemoryProductStore) GetProduct(_ context.Context, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[productID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryProductStore) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.m))
	for _, p := range s.m {
		products = append(products, p)
	}
	return products, nil
}

func (s *MemoryProductStore) UpdateProduct(_ context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[productID]
	if !ok {
		return nil, ErrNotFound
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	p.UpdatedAt = time.Now().UTC()

	s.m[productID] = p
	return &p, nil
}

func (s *MemoryProductStore) DeleteProduct(_ context.Context, productID string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[productID]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.m, productID)
	return &p, nil
}

func (s *MemoryProductStore) UpdateStockIf(_ context.Context, productID string, expected, next int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[productID]
	if !ok {
		return ErrNotFound
	}
	if p.Stock != expected {
		return ErrStockChanged
	}

	p.Stock = next
	p.UpdatedAt = time.Now().UTC()
	s.m[productID] = p
	return nil
}

func (s *MemoryProductStore) SetStock(_ context.Context, productID string, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[productID]
	if !ok {
		return ErrNotFound
	}

	p.Stock = stock
	p.UpdatedAt = time.Now().UTC()
	s.m[productID] = p
	return nil
}

// MemoryOrderStore implements OrderStore over a mutex-guarded map.
type MemoryOrderStore struct {
	mu sync.RWMutex
	m  map[string]domain.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{m: make(map[string]domain.Order)}
}

func (s *MemoryOrderStore) InsertOrder(_ context.Context, order *domain.Order) error {
	if order.OrderID == "" {
		order.OrderID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[order.OrderID] = *order
	return nil
}

func (s *MemoryOrderStore) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.m[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (s *MemoryOrderStore) ListOrdersByUser(_ context.Context, userID string) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.Order, 0)
	for _, o := range s.m {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (s *MemoryOrderStore) UpdateOrderStatus(_ context.Context, orderID string, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.m[orderID]
	if !ok {
		return ErrNotFound
	}

	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	s.m[orderID] = o
	return nil
}
