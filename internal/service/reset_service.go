package service

import (
	"context"
	"log/slog"

	"go-retreat-store/internal/repository"

	"gorm.io/gorm"
)

const EventStoreReset = "store_reset"

// ResetService returns the store to its pre-event state
type ResetService interface {
	Reset(ctx context.Context, actor Actor) error
}

type resetService struct {
	db        *gorm.DB
	resetRepo repository.ResetRepository
	notifier  Notifier
	cache     ProductCache
	logger    *slog.Logger
}

func NewResetService(db *gorm.DB, resetRepo repository.ResetRepository, notifier Notifier, cache ProductCache, logger *slog.Logger) ResetService {
	return &resetService{
		db:        db,
		resetRepo: resetRepo,
		notifier:  notifier,
		cache:     cache,
		logger:    logger,
	}
}

func (s *resetService) Reset(ctx context.Context, actor Actor) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.resetRepo.Reset(tx)
	})
	if err != nil {
		return storeErr("Failed to reset store", err)
	}

	s.logger.Warn("store reset", "by", actor.Username)
	s.cache.Invalidate(ctx)
	s.notifier.Publish(EventStoreReset, map[string]interface{}{"by": actor.Username})
	return nil
}
