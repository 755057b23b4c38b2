package repository

import (
	"context"
	"time"

	"go-retreat-store/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository interface {
	FindByTeam(ctx context.Context, teamID uint) ([]model.TeamInventory, error)
	Movements(ctx context.Context, teamID uint) ([]model.InventoryMovement, error)
	CountByProduct(ctx context.Context, productID uint) (int64, error)

	Add(tx *gorm.DB, teamID, productID uint, quantity int, source model.InventorySource, referenceID *uint) error
}

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db: db}
}

func (r *inventoryRepo) FindByTeam(ctx context.Context, teamID uint) ([]model.TeamInventory, error) {
	var items []model.TeamInventory
	err := r.db.WithContext(ctx).Preload("Product").Where("team_id = ?", teamID).
		Order("obtained_at DESC").Find(&items).Error
	return items, err
}

func (r *inventoryRepo) Movements(ctx context.Context, teamID uint) ([]model.InventoryMovement, error) {
	var moves []model.InventoryMovement
	err := r.db.WithContext(ctx).Where("team_id = ?", teamID).Order("id").Find(&moves).Error
	return moves, err
}

func (r *inventoryRepo) CountByProduct(ctx context.Context, productID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TeamInventory{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

// Add accumulates quantity into the (team, product) row in a single upsert
// and records the contribution as a movement
func (r *inventoryRepo) Add(tx *gorm.DB, teamID, productID uint, quantity int, source model.InventorySource, referenceID *uint) error {
	now := time.Now()
	item := model.TeamInventory{
		TeamID:       teamID,
		ProductID:    productID,
		Quantity:     quantity,
		ObtainedFrom: source,
		ReferenceID:  referenceID,
		ObtainedAt:   now,
	}
	err := tx.Omit("Product").Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "team_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":      gorm.Expr("team_inventory.quantity + excluded.quantity"),
			"obtained_from": gorm.Expr("excluded.obtained_from"),
			"reference_id":  gorm.Expr("excluded.reference_id"),
			"obtained_at":   gorm.Expr("excluded.obtained_at"),
		}),
	}).Create(&item).Error
	if err != nil {
		return err
	}

	return tx.Create(&model.InventoryMovement{
		TeamID:      teamID,
		ProductID:   productID,
		Quantity:    quantity,
		Source:      source,
		ReferenceID: referenceID,
		CreatedAt:   now,
	}).Error
}
