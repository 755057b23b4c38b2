package repository

import (
	"context"

	"go-retreat-store/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindActive(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	Delete(ctx context.Context, id uint) error
	SeedDefaults(ctx context.Context) error

	// Transactional operations
	LockByID(tx *gorm.DB, id uint) (*model.Product, error)
	Save(tx *gorm.DB, product *model.Product) error
	DecrementStock(tx *gorm.DB, id uint, quantity int) (int, error)
	SetStock(tx *gorm.DB, id uint, stock int) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindActive(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("category, name").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedDefaults inserts the sample catalog when fewer than four products exist
func (r *productRepo) SeedDefaults(ctx context.Context) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count >= int64(len(model.DefaultProducts)) {
		return nil
	}
	for _, p := range model.DefaultProducts {
		product := p
		product.InitialStock = product.StockQuantity
		product.IsActive = product.StockQuantity > 0
		if err := r.db.WithContext(ctx).Where("name = ?", product.Name).FirstOrCreate(&product).Error; err != nil {
			return err
		}
	}
	return nil
}

// LockByID loads the product row with FOR UPDATE so the stock check and
// the decrement that follows see the same row version on Postgres
func (r *productRepo) LockByID(tx *gorm.DB, id uint) (*model.Product, error) {
	var product model.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) Save(tx *gorm.DB, product *model.Product) error {
	return tx.Save(product).Error
}

// DecrementStock removes quantity units if at least that many remain and
// deactivates the product in the same statement when stock reaches zero.
// It returns the remaining stock.
func (r *productRepo) DecrementStock(tx *gorm.DB, id uint, quantity int) (int, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity - ?", quantity),
			"is_active":      gorm.Expr("CASE WHEN stock_quantity - ? <= 0 THEN FALSE ELSE is_active END", quantity),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotApplied
	}

	var stock int
	if err := tx.Model(&model.Product{}).Select("stock_quantity").Where("id = ?", id).Scan(&stock).Error; err != nil {
		return 0, err
	}
	return stock, nil
}

// SetStock writes an absolute stock level; positive stock activates the
// product and zero deactivates it
func (r *productRepo) SetStock(tx *gorm.DB, id uint, stock int) error {
	res := tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_quantity": stock,
			"is_active":      stock > 0,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
