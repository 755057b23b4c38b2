package repository

import (
	"context"

	"go-retreat-store/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DonationRepository interface {
	FindAll(ctx context.Context) ([]model.Donation, error)
	FindByTeam(ctx context.Context, teamID uint) ([]model.Donation, error)

	Create(tx *gorm.DB, donation *model.Donation) error
}

type donationRepo struct {
	db *gorm.DB
}

func NewDonationRepo(db *gorm.DB) DonationRepository {
	return &donationRepo{db: db}
}

func (r *donationRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Donor").
		Preload("Product").
		Preload("DonorTeam").
		Preload("RecipientTeam").
		Order("created_at DESC, id DESC")
}

func (r *donationRepo) FindAll(ctx context.Context) ([]model.Donation, error) {
	var donations []model.Donation
	err := r.preloaded(ctx).Find(&donations).Error
	return donations, err
}

// FindByTeam returns donations the team sent or received
func (r *donationRepo) FindByTeam(ctx context.Context, teamID uint) ([]model.Donation, error) {
	var donations []model.Donation
	err := r.preloaded(ctx).
		Where("donor_team_id = ? OR recipient_team_id = ?", teamID, teamID).
		Find(&donations).Error
	return donations, err
}

func (r *donationRepo) Create(tx *gorm.DB, donation *model.Donation) error {
	return tx.Omit(clause.Associations).Create(donation).Error
}
