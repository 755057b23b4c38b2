package repository

import (
	"context"

	"go-retreat-store/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	FindByTeam(ctx context.Context, teamID uint) ([]model.User, error)
	UpdateTokenVersion(ctx context.Context, id uint, version string) error
	ClearTokenVersion(ctx context.Context, id uint) error
	UpdatePassword(ctx context.Context, id uint, hashedPassword string) error

	// Transactional operations
	Create(tx *gorm.DB, user *model.User) error
	Delete(tx *gorm.DB, id uint) error
	Save(tx *gorm.DB, user *model.User) error
	LockByID(tx *gorm.DB, id uint) (*model.User, error)
	Debit(tx *gorm.DB, id uint, amount int64) error
	Credit(tx *gorm.DB, id uint, amount int64) error
	Balance(tx *gorm.DB, id uint) (int64, error)
	FindTeamLeader(tx *gorm.DB, teamID uint) (*model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Team").First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Team").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) FindAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Preload("Team").Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *userRepo) FindByTeam(ctx context.Context, teamID uint) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Where("team_id = ?", teamID).Order("username").Find(&users).Error
	return users, err
}

func (r *userRepo) Delete(tx *gorm.DB, id uint) error {
	res := tx.Delete(&model.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) UpdateTokenVersion(ctx context.Context, id uint, version string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"token_version": version, "last_login_at": gorm.Expr("CURRENT_TIMESTAMP")}).Error
}

// ClearTokenVersion ends the current session; no issued token carries an empty version
func (r *userRepo) ClearTokenVersion(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("token_version", "").Error
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password_hash", hashedPassword).Error
}

func (r *userRepo) Create(tx *gorm.DB, user *model.User) error {
	return tx.Create(user).Error
}

func (r *userRepo) Save(tx *gorm.DB, user *model.User) error {
	return tx.Omit("Team").Save(user).Error
}

// LockByID loads the user row with FOR UPDATE (a no-op on SQLite, which serialises writers)
func (r *userRepo) LockByID(tx *gorm.DB, id uint) (*model.User, error) {
	var user model.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Debit subtracts amount only if the balance covers it
func (r *userRepo) Debit(tx *gorm.DB, id uint, amount int64) error {
	res := tx.Model(&model.User{}).
		Where("id = ? AND balance >= ?", id, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotApplied
	}
	return nil
}

func (r *userRepo) Credit(tx *gorm.DB, id uint, amount int64) error {
	res := tx.Model(&model.User{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) Balance(tx *gorm.DB, id uint) (int64, error) {
	var balance int64
	err := tx.Model(&model.User{}).Select("balance").Where("id = ?", id).Scan(&balance).Error
	return balance, err
}

func (r *userRepo) FindTeamLeader(tx *gorm.DB, teamID uint) (*model.User, error) {
	var leader model.User
	err := tx.Where("team_id = ? AND role = ?", teamID, model.RoleTeamLeader).Order("id").First(&leader).Error
	if err != nil {
		return nil, translate(err)
	}
	return &leader, nil
}
