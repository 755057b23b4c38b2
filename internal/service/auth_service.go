package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"go-retreat-store/internal/apperr"
	"go-retreat-store/internal/model"
	"go-retreat-store/internal/repository"
	"go-retreat-store/pkg/jwt"
)

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	ChangePassword(ctx context.Context, actor Actor, req *ChangePasswordRequest) error
	Logout(ctx context.Context, actor Actor) error
	Me(ctx context.Context, actor Actor) (*model.UserResponse, error)
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	logger   *slog.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, logger *slog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	// 1. Find user by username
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr("Login failed", err)
	}

	// 2. Verify password
	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	// 3. Single session: a new token version invalidates older tokens
	version := uuid.NewString()
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, storeErr("Failed to update session", err)
	}

	// 4. Issue token
	token, err := s.tokens.GenerateToken(user.ID, user.Username, string(user.Role), user.TeamID, version)
	if err != nil {
		return nil, apperr.Internal("Failed to generate token", err)
	}

	s.logger.Info("user logged in", "username", user.Username, "role", user.Role)
	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) ChangePassword(ctx context.Context, actor Actor, req *ChangePasswordRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return storeErr("Failed to change password", err)
	}

	if !user.CheckPassword(req.CurrentPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return apperr.Internal("Failed to hash new password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.PasswordHash); err != nil {
		return storeErr("Failed to change password", err)
	}

	s.logger.Info("password changed", "username", user.Username)
	return nil
}

// Logout revokes the caller's token
func (s *authService) Logout(ctx context.Context, actor Actor) error {
	if err := s.userRepo.ClearTokenVersion(ctx, actor.UserID); err != nil {
		return storeErr("Failed to log out", err)
	}
	s.logger.Info("user logged out", "username", actor.Username)
	return nil
}

func (s *authService) Me(ctx context.Context, actor Actor) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr("Failed to load user", err)
	}
	resp := user.ToResponse()
	return &resp, nil
}
