package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Vjossaab/commercify-backend/internal/domain"
	"github.com/Vjossaab/commercify-backend/internal/events"
	"github.com/Vjossaab/commercify-backend/internal/repository"
	"github.com/Vjossaab/commercify-backend/internal/stock"
)

// CatalogService owns product CRUD and direct stock edits. Every
// successful mutation emits a product_updates event; stock changes
// additionally emit a stock_updates event with the post-mutation value.
type CatalogService struct {
	products repository.ProductStore
	guard    *stock.Guard
	emitter  *events.Emitter
	logger   *zap.Logger
}

func NewCatalogService(products repository.ProductStore, guard *stock.Guard, emitter *events.Emitter, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		products: products,
		guard:    guard,
		emitter:  emitter,
		logger:   logger,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.ListProducts(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, caller domain.Identity, req domain.CreateProductRequest) (*domain.Product, error) {
	if caller.Role != domain.RoleSeller {
		return nil, domain.ErrUnauthorized
	}
	if req.Price < 0 || req.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	product := &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Image:       req.Image,
		SellerID:    caller.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		s.logger.Error("Failed to create product",
			zap.String("seller_id", caller.UserID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ProductID),
		zap.String("seller_id", product.SellerID),
		zap.Int("initial_stock", product.Stock))

	s.emitter.ProductChanged(ctx, *product, events.ActionCreated)
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, caller domain.Identity, productID string, req domain.UpdateProductRequest) (*domain.Product, error) {
	if caller.Role != domain.RoleSeller {
		return nil, domain.ErrUnauthorized
	}
	if req.Empty() {
		return nil, domain.ErrInvalidInput
	}
	if req.Price != nil && *req.Price < 0 {
		return nil, domain.ErrInvalidInput
	}
	if req.Stock != nil && *req.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}

	if err := s.authorizeOwner(ctx, caller, productID); err != nil {
		return nil, err
	}

	updated, err := s.products.UpdateProduct(ctx, productID, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if req.Stock != nil {
		s.emitter.StockUpdated(ctx, productID, updated.Stock)
	}
	s.emitter.ProductChanged(ctx, *updated, events.ActionUpdated)

	return updated, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, caller domain.Identity, productID string) error {
	if caller.Role != domain.RoleSeller {
		return domain.ErrUnauthorized
	}

	if err := s.authorizeOwner(ctx, caller, productID); err != nil {
		return err
	}

	deleted, err := s.products.DeleteProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	s.logger.Info("Product deleted",
		zap.String("product_id", productID),
		zap.String("seller_id", caller.UserID))

	s.emitter.ProductChanged(ctx, *deleted, events.ActionDeleted)
	return nil
}

// SetStock is the direct seller stock edit. The write and its
// stock_updates event go through the guard so the path is the same one
// the order commit uses.
func (s *CatalogService) SetStock(ctx context.Context, caller domain.Identity, productID string, newStock int) error {
	if caller.Role != domain.RoleSeller {
		return domain.ErrUnauthorized
	}

	if err := s.authorizeOwner(ctx, caller, productID); err != nil {
		return err
	}

	return s.guard.SetStock(ctx, productID, newStock)
}

func (s *CatalogService) authorizeOwner(ctx context.Context, caller domain.Identity, productID string) error {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	if product.SellerID != caller.UserID {
		return domain.ErrUnauthorized
	}
	return nil
}
