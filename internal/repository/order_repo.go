package repository

import (
	"context"

	"go-retreat-store/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	FindAll(ctx context.Context) ([]model.Order, error)
	FindByUser(ctx context.Context, userID uint) ([]model.Order, error)
	FindByTeam(ctx context.Context, teamID uint) ([]model.Order, error)
	CountByProduct(ctx context.Context, productID uint) (int64, error)
	Verify(ctx context.Context, id uint) error

	Create(tx *gorm.DB, order *model.Order) error
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) FindAll(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).Preload("User").Preload("Team").Preload("Product").
		Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByUser(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).Preload("Product").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByTeam(ctx context.Context, teamID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).Preload("Product").Preload("User").Where("team_id = ?", teamID).
		Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) CountByProduct(ctx context.Context, productID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

func (r *orderRepo) Verify(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"verified": true, "status": model.OrderVerified})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepo) Create(tx *gorm.DB, order *model.Order) error {
	return tx.Omit(clause.Associations).Create(order).Error
}
