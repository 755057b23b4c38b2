package repository

import (
	"context"
	"time"

	"go-retreat-store/internal/model"

	"gorm.io/gorm"
)

type MoneyCodeRepository interface {
	CreateBatch(ctx context.Context, codes []model.MoneyCode) error
	FindAll(ctx context.Context) ([]model.MoneyCode, error)

	Claim(tx *gorm.DB, code string, userID uint, at time.Time) (*model.MoneyCode, error)
}

type moneyCodeRepo struct {
	db *gorm.DB
}

func NewMoneyCodeRepo(db *gorm.DB) MoneyCodeRepository {
	return &moneyCodeRepo{db: db}
}

func (r *moneyCodeRepo) CreateBatch(ctx context.Context, codes []model.MoneyCode) error {
	return r.db.WithContext(ctx).Omit("UsedByUser").CreateInBatches(codes, 100).Error
}

func (r *moneyCodeRepo) FindAll(ctx context.Context) ([]model.MoneyCode, error) {
	var codes []model.MoneyCode
	err := r.db.WithContext(ctx).Preload("UsedByUser").Order("created_at DESC, id DESC").Find(&codes).Error
	return codes, err
}

// Claim marks an unused code as used by userID. A missing or already used
// code returns ErrNotApplied; the guard lives in the WHERE clause so two
// concurrent claims cannot both succeed.
func (r *moneyCodeRepo) Claim(tx *gorm.DB, code string, userID uint, at time.Time) (*model.MoneyCode, error) {
	res := tx.Model(&model.MoneyCode{}).
		Where("code = ? AND used = ?", code, false).
		Updates(map[string]interface{}{
			"used":    true,
			"used_by": userID,
			"used_at": at,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotApplied
	}

	var mc model.MoneyCode
	if err := tx.Where("code = ?", code).First(&mc).Error; err != nil {
		return nil, translate(err)
	}
	return &mc, nil
}
