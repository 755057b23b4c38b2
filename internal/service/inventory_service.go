package service

import (
	"context"

	"go-retreat-store/internal/apperr"
	"go-retreat-store/internal/model"
	"go-retreat-store/internal/repository"

	"gorm.io/gorm"
)

// InventoryService owns team inventory. Credit runs inside the caller's
// transaction so the purchase or donation that produced the goods commits
// or rolls back together with them.
type InventoryService interface {
	Credit(tx *gorm.DB, teamID, productID uint, quantity int, source model.InventorySource, referenceID *uint) error
	TeamInventory(ctx context.Context, teamID uint) ([]model.TeamInventory, error)
	Movements(ctx context.Context, teamID uint) ([]model.InventoryMovement, error)
	ForActor(ctx context.Context, actor Actor) ([]model.TeamInventory, error)
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
}

func NewInventoryService(inventoryRepo repository.InventoryRepository) InventoryService {
	return &inventoryService{inventoryRepo: inventoryRepo}
}

func (s *inventoryService) Credit(tx *gorm.DB, teamID, productID uint, quantity int, source model.InventorySource, referenceID *uint) error {
	if teamID == 0 || productID == 0 {
		return apperr.Validation("Inventory needs a team and a product")
	}
	if quantity <= 0 {
		return apperr.Validation("Quantity must be positive")
	}
	return s.inventoryRepo.Add(tx, teamID, productID, quantity, source, referenceID)
}

func (s *inventoryService) TeamInventory(ctx context.Context, teamID uint) ([]model.TeamInventory, error) {
	items, err := s.inventoryRepo.FindByTeam(ctx, teamID)
	if err != nil {
		return nil, storeErr("Failed to load team inventory", err)
	}
	return items, nil
}

func (s *inventoryService) Movements(ctx context.Context, teamID uint) ([]model.InventoryMovement, error) {
	moves, err := s.inventoryRepo.Movements(ctx, teamID)
	if err != nil {
		return nil, storeErr("Failed to load inventory history", err)
	}
	return moves, nil
}

// ForActor returns the caller's team inventory, empty when the caller has no team
func (s *inventoryService) ForActor(ctx context.Context, actor Actor) ([]model.TeamInventory, error) {
	if actor.TeamID == nil {
		return []model.TeamInventory{}, nil
	}
	return s.TeamInventory(ctx, *actor.TeamID)
}
