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

type UserService interface {
	CreateUser(ctx context.Context, actor Actor, req *CreateUserRequest) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, actor Actor, id uint, req *UpdateUserRequest) (*model.UserResponse, error)
	DeleteUser(ctx context.Context, id uint) error
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uint) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Username string     `json:"username" validate:"required,min=2,max=100"`
	Password string     `json:"password" validate:"required,min=6"`
	Role     model.Role `json:"role" validate:"required,role"`
	TeamID   *uint      `json:"team_id"`
	Balance  int64      `json:"balance" validate:"gte=-1000000000000,lte=1000000000000"`
}

// UpdateUserRequest changes only the fields that are set
type UpdateUserRequest struct {
	Username  *string     `json:"username,omitempty" validate:"omitempty,min=2,max=100"`
	Password  *string     `json:"password,omitempty" validate:"omitempty,min=6"`
	Role      *model.Role `json:"role,omitempty" validate:"omitempty,role"`
	TeamID    *uint       `json:"team_id,omitempty"`
	ClearTeam bool        `json:"clear_team"`
	Balance   *int64      `json:"balance,omitempty" validate:"omitempty,gte=-1000000000000,lte=1000000000000"`
}

type userService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	teamRepo repository.TeamRepository
	txRepo   repository.TransactionRepository
	logger   *slog.Logger
}

func NewUserService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	teamRepo repository.TeamRepository,
	txRepo repository.TransactionRepository,
	logger *slog.Logger,
) UserService {
	return &userService{
		db:       db,
		userRepo: userRepo,
		teamRepo: teamRepo,
		txRepo:   txRepo,
		logger:   logger,
	}
}

func (s *userService) CreateUser(ctx context.Context, actor Actor, req *CreateUserRequest) (*model.UserResponse, error) {
	// 1. Validate request
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Role == model.RoleTeamLeader && req.TeamID == nil {
		return nil, apperr.Validation("Team leaders must belong to a team")
	}

	// 2. Username must be free
	if existing, _ := s.userRepo.FindByUsername(ctx, req.Username); existing != nil {
		return nil, ErrUsernameTaken
	}

	user := &model.User{
		Username: req.Username,
		Role:     req.Role,
		TeamID:   req.TeamID,
		Balance:  req.Balance,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperr.Internal("Failed to hash password", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 3. Team must exist
		if user.TeamID != nil {
			if _, err := s.teamRepo.FindByID(tx, *user.TeamID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrTeamNotFound
				}
				return err
			}
		}

		if err := s.userRepo.Create(tx, user); err != nil {
			return err
		}

		// 4. Opening balance goes through the ledger
		if user.Balance != 0 {
			if err := s.adjustment(tx, actor, user.ID, user.Balance); err != nil {
				return err
			}
		}

		// 5. A new leader takes over the team
		if user.Role == model.RoleTeamLeader {
			return s.teamRepo.AssignLeader(tx, *user.TeamID, user.ID)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("Failed to create user", err)
	}

	s.logger.Info("user created", "admin", actor.Username, "username", user.Username, "role", user.Role)
	return s.GetUserByID(ctx, user.ID)
}

func (s *userService) UpdateUser(ctx context.Context, actor Actor, id uint, req *UpdateUserRequest) (*model.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Username != nil {
		if existing, _ := s.userRepo.FindByUsername(ctx, *req.Username); existing != nil && existing.ID != id {
			return nil, ErrUsernameTaken
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.LockByID(tx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		wasLeader := user.Role == model.RoleTeamLeader
		oldTeam := user.TeamID

		// 1. Apply changes
		if req.Username != nil {
			user.Username = *req.Username
		}
		if req.Role != nil {
			user.Role = *req.Role
		}
		if req.ClearTeam {
			user.TeamID = nil
		} else if req.TeamID != nil {
			if _, err := s.teamRepo.FindByID(tx, *req.TeamID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrTeamNotFound
				}
				return err
			}
			user.TeamID = req.TeamID
		}
		if req.Password != nil {
			if err := user.SetPassword(*req.Password); err != nil {
				return apperr.Internal("Failed to hash password", err)
			}
		}
		var delta int64
		if req.Balance != nil {
			delta = *req.Balance - user.Balance
			user.Balance = *req.Balance
		}
		if user.Role == model.RoleTeamLeader && user.TeamID == nil {
			return apperr.Validation("Team leaders must belong to a team")
		}

		if err := s.userRepo.Save(tx, user); err != nil {
			return err
		}

		// 2. Balance edits are recorded with their signed delta
		if delta != 0 {
			if err := s.adjustment(tx, actor, user.ID, delta); err != nil {
				return err
			}
		}

		// 3. Keep one leader per team
		teamChanged := !sameTeam(oldTeam, user.TeamID)
		isLeader := user.Role == model.RoleTeamLeader
		if wasLeader && (!isLeader || teamChanged) {
			if err := s.teamRepo.ReleaseLeader(tx, user.ID); err != nil {
				return err
			}
		}
		if isLeader && (!wasLeader || teamChanged) {
			return s.teamRepo.AssignLeader(tx, *user.TeamID, user.ID)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("Failed to update user", err)
	}

	s.logger.Info("user updated", "admin", actor.Username, "user_id", id)
	return s.GetUserByID(ctx, id)
}

// DeleteUser removes a user with no ledger history. Admins are never deleted.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return storeErr("Failed to delete user", err)
	}
	if user.Role == model.RoleAdmin {
		return apperr.Conflict("Cannot delete an admin user")
	}

	count, err := s.txRepo.CountByUser(ctx, id)
	if err != nil {
		return storeErr("Failed to delete user", err)
	}
	if count > 0 {
		return apperr.Conflict("Cannot delete a user with transaction history")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.teamRepo.ReleaseLeader(tx, id); err != nil {
			return err
		}
		return s.userRepo.Delete(tx, id)
	})
	if err != nil {
		return storeErr("Failed to delete user", err)
	}
	s.logger.Info("user deleted", "user_id", id, "username", user.Username)
	return nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, storeErr("Failed to load users", err)
	}

	responses := make([]model.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr("Failed to load user", err)
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) adjustment(tx *gorm.DB, actor Actor, userID uint, delta int64) error {
	return s.txRepo.Append(tx, &model.Transaction{
		UserID:      userID,
		Type:        model.TxAdminAdjustment,
		Amount:      delta,
		Description: fmt.Sprintf("Balance adjusted by %s", actor.Username),
	})
}

func sameTeam(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
