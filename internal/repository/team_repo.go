package repository

import (
	"context"

	"go-retreat-store/internal/model"

	"gorm.io/gorm"
)

type TeamRepository interface {
	FindOthers(ctx context.Context, excludeID *uint) ([]model.Team, error)
	FindByName(ctx context.Context, name string) (*model.Team, error)
	Overview(ctx context.Context) ([]model.TeamOverview, error)
	Rename(ctx context.Context, id uint, name string) error
	SeedDefaults(ctx context.Context) error

	// Transactional operations
	FindByID(tx *gorm.DB, id uint) (*model.Team, error)
	AssignLeader(tx *gorm.DB, teamID, userID uint) error
	ReleaseLeader(tx *gorm.DB, userID uint) error
}

type teamRepo struct {
	db *gorm.DB
}

func NewTeamRepo(db *gorm.DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) FindOthers(ctx context.Context, excludeID *uint) ([]model.Team, error) {
	var teams []model.Team
	q := r.db.WithContext(ctx).Select("id", "name").Order("name")
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	err := q.Find(&teams).Error
	return teams, err
}

func (r *teamRepo) FindByName(ctx context.Context, name string) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&team).Error; err != nil {
		return nil, translate(err)
	}
	return &team, nil
}

func (r *teamRepo) Overview(ctx context.Context) ([]model.TeamOverview, error) {
	var rows []model.TeamOverview
	err := r.db.WithContext(ctx).Raw(`
		SELECT t.id, t.name, t.leader_id,
			COALESCE(l.username, '') AS leader_name,
			(SELECT COUNT(*) FROM users m WHERE m.team_id = t.id) AS member_count
		FROM teams t
		LEFT JOIN users l ON l.id = t.leader_id
		ORDER BY t.name`).Scan(&rows).Error
	return rows, err
}

func (r *teamRepo) Rename(ctx context.Context, id uint, name string) error {
	res := r.db.WithContext(ctx).Model(&model.Team{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *teamRepo) SeedDefaults(ctx context.Context) error {
	for _, name := range model.DefaultTeams {
		team := model.Team{Name: name}
		if err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&team).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *teamRepo) FindByID(tx *gorm.DB, id uint) (*model.Team, error) {
	var team model.Team
	if err := tx.First(&team, id).Error; err != nil {
		return nil, translate(err)
	}
	return &team, nil
}

// AssignLeader demotes the team's current leader(s) and promotes userID
func (r *teamRepo) AssignLeader(tx *gorm.DB, teamID, userID uint) error {
	if err := tx.Model(&model.User{}).
		Where("team_id = ? AND role = ? AND id <> ?", teamID, model.RoleTeamLeader, userID).
		Update("role", model.RoleParticipant).Error; err != nil {
		return err
	}
	if err := tx.Model(&model.User{}).Where("id = ?", userID).Update("role", model.RoleTeamLeader).Error; err != nil {
		return err
	}
	return tx.Model(&model.Team{}).Where("id = ?", teamID).Update("leader_id", userID).Error
}

// ReleaseLeader clears leader_id on every team led by userID
func (r *teamRepo) ReleaseLeader(tx *gorm.DB, userID uint) error {
	return tx.Model(&model.Team{}).Where("leader_id = ?", userID).Update("leader_id", nil).Error
}
