package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go-retreat-store/internal/apperr"
	"go-retreat-store/internal/model"
	"go-retreat-store/internal/repository"

	"gorm.io/gorm"
)

// ProductService manages the catalog and the stock lifecycle: a product is
// active exactly while it has stock, except when an admin hides it.
type ProductService interface {
	ListActive(ctx context.Context) ([]model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, id uint) (*model.Product, error)
	Create(ctx context.Context, req *ProductRequest) (*model.Product, error)
	Update(ctx context.Context, id uint, req *ProductRequest) (*model.Product, error)
	Toggle(ctx context.Context, id uint) (*model.Product, error)
	Delete(ctx context.Context, id uint) error
	SetStock(ctx context.Context, id uint, stock int) (*model.Product, error)
	AdjustStock(ctx context.Context, id uint, delta int) (*model.Product, error)
}

type ProductRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"gt=0,lte=1000000000"`
	Category    string `json:"category" validate:"max=50"`
	Stock       *int   `json:"stock_quantity" validate:"omitempty,gte=0,lte=1000000"`
}

// maxStock matches the stock_quantity bound on ProductRequest
const maxStock = 1000000

type productService struct {
	db            *gorm.DB
	productRepo   repository.ProductRepository
	orderRepo     repository.OrderRepository
	inventoryRepo repository.InventoryRepository
	notifier      Notifier
	cache         ProductCache
	logger        *slog.Logger
}

func NewProductService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	inventoryRepo repository.InventoryRepository,
	notifier Notifier,
	cache ProductCache,
	logger *slog.Logger,
) ProductService {
	return &productService{
		db:            db,
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		inventoryRepo: inventoryRepo,
		notifier:      notifier,
		cache:         cache,
		logger:        logger,
	}
}

func (s *productService) ListActive(ctx context.Context) ([]model.Product, error) {
	version, cacheable := s.cache.Version(ctx)
	if cacheable {
		if products, ok := s.cache.GetActive(ctx, version); ok {
			return products, nil
		}
	}
	products, err := s.productRepo.FindActive(ctx)
	if err != nil {
		return nil, storeErr("Failed to load products", err)
	}
	if cacheable {
		s.cache.SetActive(ctx, version, products)
	}
	return products, nil
}

func (s *productService) ListAll(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, storeErr("Failed to load products", err)
	}
	return products, nil
}

// Get returns one product from the store catalog; hidden products are not found
func (s *productService) Get(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, storeErr("Failed to load product", err)
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, req *ProductRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	stock := 0
	if req.Stock != nil {
		stock = *req.Stock
	}
	category := req.Category
	if category == "" {
		category = "item"
	}
	product := &model.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Category:      category,
		StockQuantity: stock,
		InitialStock:  stock,
		IsActive:      stock > 0,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, storeErr("Failed to create product", err)
	}

	s.changed(ctx, product, "product_created")
	return product, nil
}

func (s *productService) Update(ctx context.Context, id uint, req *ProductRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = s.lock(tx, id)
		if err != nil {
			return err
		}

		product.Name = req.Name
		product.Description = req.Description
		product.Price = req.Price
		if req.Category != "" {
			product.Category = req.Category
		}
		if req.Stock != nil {
			applyStock(product, *req.Stock)
		}
		return s.productRepo.Save(tx, product)
	})
	if err != nil {
		return nil, storeErr("Failed to update product", err)
	}

	s.changed(ctx, product, "product_updated")
	return product, nil
}

// Toggle hides or shows a product. A product without stock cannot be shown.
func (s *productService) Toggle(ctx context.Context, id uint) (*model.Product, error) {
	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = s.lock(tx, id)
		if err != nil {
			return err
		}
		if !product.IsActive && product.StockQuantity <= 0 {
			return apperr.Validation("Cannot activate a product with no stock")
		}
		product.IsActive = !product.IsActive
		return s.productRepo.Save(tx, product)
	})
	if err != nil {
		return nil, storeErr("Failed to toggle product", err)
	}

	s.changed(ctx, product, "product_toggled")
	return product, nil
}

// Delete removes a product nobody has bought or received
func (s *productService) Delete(ctx context.Context, id uint) error {
	orders, err := s.orderRepo.CountByProduct(ctx, id)
	if err != nil {
		return storeErr("Failed to delete product", err)
	}
	held, err := s.inventoryRepo.CountByProduct(ctx, id)
	if err != nil {
		return storeErr("Failed to delete product", err)
	}
	if orders > 0 || held > 0 {
		return apperr.Conflict("Cannot delete a product that has been ordered or donated")
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Product not found")
		}
		return storeErr("Failed to delete product", err)
	}

	s.cache.Invalidate(ctx)
	s.logger.Info("product deleted", "product_id", id)
	return nil
}

// SetStock writes an absolute stock level
func (s *productService) SetStock(ctx context.Context, id uint, stock int) (*model.Product, error) {
	if stock < 0 {
		return nil, apperr.Validation("Stock cannot be negative")
	}
	if stock > maxStock {
		return nil, apperr.Validation(fmt.Sprintf("Stock cannot exceed %d", maxStock))
	}

	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = s.lock(tx, id)
		if err != nil {
			return err
		}
		if err := s.productRepo.SetStock(tx, id, stock); err != nil {
			return err
		}
		applyStock(product, stock)
		return nil
	})
	if err != nil {
		return nil, storeErr("Failed to update stock", err)
	}

	s.changed(ctx, product, "stock_set")
	return product, nil
}

// AdjustStock adds delta (which may be negative) to the current stock
func (s *productService) AdjustStock(ctx context.Context, id uint, delta int) (*model.Product, error) {
	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = s.lock(tx, id)
		if err != nil {
			return err
		}
		if delta > maxStock-product.StockQuantity {
			return apperr.Validation(fmt.Sprintf("Stock cannot exceed %d", maxStock))
		}
		next := product.StockQuantity + delta
		if next < 0 {
			return apperr.Validation("Stock cannot go below zero")
		}
		if err := s.productRepo.SetStock(tx, id, next); err != nil {
			return err
		}
		applyStock(product, next)
		return nil
	})
	if err != nil {
		return nil, storeErr("Failed to adjust stock", err)
	}

	s.changed(ctx, product, "stock_adjusted")
	return product, nil
}

func (s *productService) lock(tx *gorm.DB, id uint) (*model.Product, error) {
	product, err := s.productRepo.LockByID(tx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	return product, err
}

func (s *productService) changed(ctx context.Context, product *model.Product, action string) {
	s.logger.Info("product changed", "action", action, "product_id", product.ID, "stock", product.StockQuantity, "active", product.IsActive)
	s.cache.Invalidate(ctx)
	s.notifier.Publish(EventStockUpdate, stockEvent(product, action))
}

func applyStock(product *model.Product, stock int) {
	product.StockQuantity = stock
	product.IsActive = stock > 0
}
