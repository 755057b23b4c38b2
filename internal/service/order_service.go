package service

import (
	"context"
	"errors"

	"go-retreat-store/internal/model"
	"go-retreat-store/internal/repository"
)

type OrderService interface {
	ListMine(ctx context.Context, actor Actor) ([]model.Order, error)
	ListTeam(ctx context.Context, actor Actor) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	Verify(ctx context.Context, id uint) error
}

type orderService struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

func (s *orderService) ListMine(ctx context.Context, actor Actor) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUser(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr("Failed to load orders", err)
	}
	return orders, nil
}

func (s *orderService) ListTeam(ctx context.Context, actor Actor) ([]model.Order, error) {
	if actor.TeamID == nil {
		return []model.Order{}, nil
	}
	orders, err := s.orderRepo.FindByTeam(ctx, *actor.TeamID)
	if err != nil {
		return nil, storeErr("Failed to load orders", err)
	}
	return orders, nil
}

func (s *orderService) ListAll(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, storeErr("Failed to load orders", err)
	}
	return orders, nil
}

func (s *orderService) Verify(ctx context.Context, id uint) error {
	if err := s.orderRepo.Verify(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return storeErr("Failed to verify order", err)
	}
	return nil
}
