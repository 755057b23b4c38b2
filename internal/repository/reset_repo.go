package repository

import (
	"go-retreat-store/internal/model"

	"gorm.io/gorm"
)

// ResetRepository wipes the event data for a fresh retreat
type ResetRepository interface {
	Reset(tx *gorm.DB) error
}

type resetRepo struct{}

func NewResetRepo() ResetRepository {
	return &resetRepo{}
}

// Reset clears the ledger, orders, codes, inventories and catalog, removes
// every non-admin account, zeroes admin balances and clears team leaders.
// Teams and admin accounts survive.
func (r *resetRepo) Reset(tx *gorm.DB) error {
	// Children before parents
	for _, m := range []interface{}{
		&model.InventoryMovement{},
		&model.TeamInventory{},
		&model.Donation{},
		&model.Transaction{},
		&model.Order{},
		&model.MoneyCode{},
		&model.Product{},
	} {
		if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
			return err
		}
	}

	if err := tx.Model(&model.Team{}).Where("1 = 1").Update("leader_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Where("role <> ?", model.RoleAdmin).Delete(&model.User{}).Error; err != nil {
		return err
	}
	return tx.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Update("balance", 0).Error
}
