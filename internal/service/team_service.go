package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go-retreat-store/internal/apperr"
	"go-retreat-store/internal/model"
	"go-retreat-store/internal/repository"

	"gorm.io/gorm"
)

type TeamService interface {
	Overview(ctx context.Context) ([]model.TeamOverview, error)
	Members(ctx context.Context, teamID uint) ([]model.UserResponse, error)
	AssignLeader(ctx context.Context, teamID, userID uint) error
	Rename(ctx context.Context, teamID uint, name string) error
}

type teamService struct {
	db       *gorm.DB
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
	logger   *slog.Logger
}

func NewTeamService(db *gorm.DB, teamRepo repository.TeamRepository, userRepo repository.UserRepository, logger *slog.Logger) TeamService {
	return &teamService{db: db, teamRepo: teamRepo, userRepo: userRepo, logger: logger}
}

func (s *teamService) Overview(ctx context.Context) ([]model.TeamOverview, error) {
	teams, err := s.teamRepo.Overview(ctx)
	if err != nil {
		return nil, storeErr("Failed to load teams", err)
	}
	return teams, nil
}

func (s *teamService) Members(ctx context.Context, teamID uint) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindByTeam(ctx, teamID)
	if err != nil {
		return nil, storeErr("Failed to load team members", err)
	}
	members := make([]model.UserResponse, 0, len(users))
	for i := range users {
		members = append(members, users[i].ToResponse())
	}
	return members, nil
}

// AssignLeader makes userID the only leader of teamID, demoting the previous one
func (s *teamService) AssignLeader(ctx context.Context, teamID, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.teamRepo.FindByID(tx, teamID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTeamNotFound
			}
			return err
		}

		user, err := s.userRepo.LockByID(tx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if user.Role == model.RoleAdmin {
			return apperr.Validation("An admin cannot lead a team")
		}
		if user.TeamID == nil || *user.TeamID != teamID {
			return apperr.Validation("User is not a member of this team")
		}

		// a leader moving from another team stops leading it
		if err := s.teamRepo.ReleaseLeader(tx, userID); err != nil {
			return err
		}
		return s.teamRepo.AssignLeader(tx, teamID, userID)
	})
	if err != nil {
		return storeErr("Failed to assign leader", err)
	}

	s.logger.Info("team leader assigned", "team_id", teamID, "user_id", userID)
	return nil
}

func (s *teamService) Rename(ctx context.Context, teamID uint, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Validation("Team name is required")
	}
	if existing, _ := s.teamRepo.FindByName(ctx, name); existing != nil && existing.ID != teamID {
		return ErrTeamNameTaken
	}

	if err := s.teamRepo.Rename(ctx, teamID, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTeamNotFound
		}
		return storeErr("Failed to rename team", err)
	}
	s.logger.Info("team renamed", "team_id", teamID, "name", name)
	return nil
}
