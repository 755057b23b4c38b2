package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go-retreat-store/internal/model"
	"go-retreat-store/internal/repository"

	"gorm.io/gorm"
)

type DonationService interface {
	Donate(ctx context.Context, actor Actor, req *DonateRequest) (*DonateResult, error)
	RecipientTeams(ctx context.Context, actor Actor) ([]model.Team, error)
	List(ctx context.Context) ([]model.Donation, error)
	ForTeam(ctx context.Context, teamID uint) ([]model.Donation, error)
}

type DonateRequest struct {
	RecipientTeamID uint   `json:"recipient_team_id" validate:"required"`
	ProductID       uint   `json:"product_id" validate:"required"`
	Quantity        int    `json:"quantity" validate:"gt=0"`
	Message         string `json:"message" validate:"max=500"`
}

type DonateResult struct {
	DonationID     uint   `json:"donation_id"`
	NewBalance     int64  `json:"new_balance"`
	TotalCost      int64  `json:"total_cost"`
	RecipientTeam  string `json:"recipient_team"`
	LeaderNotified bool   `json:"leader_notified"`
	RemainingStock int    `json:"remaining_stock"`
	Message        string `json:"message"`
}

type donationService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	teamRepo     repository.TeamRepository
	donationRepo repository.DonationRepository
	txRepo       repository.TransactionRepository
	inventory    InventoryService
	notifier     Notifier
	cache        ProductCache
	logger       *slog.Logger
}

func NewDonationService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	teamRepo repository.TeamRepository,
	donationRepo repository.DonationRepository,
	txRepo repository.TransactionRepository,
	inventory InventoryService,
	notifier Notifier,
	cache ProductCache,
	logger *slog.Logger,
) DonationService {
	return &donationService{
		db:           db,
		productRepo:  productRepo,
		userRepo:     userRepo,
		teamRepo:     teamRepo,
		donationRepo: donationRepo,
		txRepo:       txRepo,
		inventory:    inventory,
		notifier:     notifier,
		cache:        cache,
		logger:       logger,
	}
}

func (s *donationService) Donate(ctx context.Context, actor Actor, req *DonateRequest) (*DonateResult, error) {
	if !actor.CanTrade() {
		return nil, ErrForbiddenTrade
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if actor.TeamID != nil && *actor.TeamID == req.RecipientTeamID {
		return nil, ErrSelfDonation
	}

	var (
		result  DonateResult
		product *model.Product
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the product row
		var err error
		product, err = s.productRepo.LockByID(tx, req.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}
		if !product.IsActive {
			return ErrProductNotFound
		}
		if product.StockQuantity < req.Quantity {
			return ErrInsufficientStock
		}

		totalCost, err := lineTotal(product.Price, req.Quantity)
		if err != nil {
			return err
		}

		// 2. Donor checks against the stored team, not the token
		donor, err := s.userRepo.LockByID(tx, actor.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if donor.TeamID == nil {
			return ErrNoTeam
		}
		if *donor.TeamID == req.RecipientTeamID {
			return ErrSelfDonation
		}
		if donor.Balance < totalCost {
			return ErrInsufficientBalance
		}

		// 3. Recipient team and its leader, if any
		team, err := s.teamRepo.FindByID(tx, req.RecipientTeamID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTeamNotFound
		}
		if err != nil {
			return err
		}
		leader, err := s.userRepo.FindTeamLeader(tx, team.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		// 4. Debit donor
		if err := s.userRepo.Debit(tx, donor.ID, totalCost); err != nil {
			if errors.Is(err, repository.ErrNotApplied) {
				return ErrInsufficientBalance
			}
			return err
		}

		// 5. Stock decrement, deactivating at zero
		remaining, err := s.productRepo.DecrementStock(tx, product.ID, req.Quantity)
		if errors.Is(err, repository.ErrNotApplied) {
			return ErrInsufficientStock
		}
		if err != nil {
			return err
		}

		// 6. Donation record
		donation := &model.Donation{
			DonorID:         donor.ID,
			ProductID:       product.ID,
			Amount:          totalCost,
			Quantity:        req.Quantity,
			Message:         req.Message,
			DonorTeamID:     *donor.TeamID,
			RecipientTeamID: team.ID,
		}
		if leader != nil {
			donation.RecipientID = &leader.ID
		}
		if err := s.donationRepo.Create(tx, donation); err != nil {
			return err
		}

		// 7. Recipient inventory
		if err := s.inventory.Credit(tx, team.ID, product.ID, req.Quantity, model.SourceDonation, &donation.ID); err != nil {
			return err
		}

		// 8. Donor ledger entry
		if err := s.txRepo.Append(tx, &model.Transaction{
			UserID:      donor.ID,
			Type:        model.TxDonationSent,
			Amount:      -totalCost,
			Description: fmt.Sprintf("Donated %d x %s to %s", req.Quantity, product.Name, team.Name),
			ReferenceID: &donation.ID,
		}); err != nil {
			return err
		}

		// 9. Recipient leader entry, best effort inside a savepoint
		notified := false
		if leader != nil {
			err := tx.Transaction(func(sp *gorm.DB) error {
				return s.txRepo.Append(sp, &model.Transaction{
					UserID:      leader.ID,
					Type:        model.TxDonationReceived,
					Amount:      0,
					Description: fmt.Sprintf("Received %d x %s from %s", req.Quantity, product.Name, actor.Username),
					ReferenceID: &donation.ID,
				})
			})
			if err != nil {
				s.logger.Warn("recording received donation failed", "donation_id", donation.ID, "leader_id", leader.ID, "error", err)
			} else {
				notified = true
			}
		}

		balance, err := s.userRepo.Balance(tx, donor.ID)
		if err != nil {
			return err
		}

		product.StockQuantity = remaining
		product.IsActive = remaining > 0
		result = DonateResult{
			DonationID:     donation.ID,
			NewBalance:     balance,
			TotalCost:      totalCost,
			RecipientTeam:  team.Name,
			LeaderNotified: notified,
			RemainingStock: remaining,
			Message:        fmt.Sprintf("Successfully donated %d x %s to %s", req.Quantity, product.Name, team.Name),
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("Donation failed", err)
	}

	s.logger.Info("donation completed",
		"user", actor.Username,
		"product_id", product.ID,
		"quantity", req.Quantity,
		"recipient_team", result.RecipientTeam,
		"total", result.TotalCost,
	)
	s.cache.Invalidate(ctx)
	s.notifier.Publish(EventStockUpdate, stockEvent(product, "donation"))
	s.notifier.Publish(EventBalanceUpdate, balanceEvent(actor.UserID, result.NewBalance, "donation"))
	return &result, nil
}

// RecipientTeams lists every team the caller may donate to
func (s *donationService) RecipientTeams(ctx context.Context, actor Actor) ([]model.Team, error) {
	teams, err := s.teamRepo.FindOthers(ctx, actor.TeamID)
	if err != nil {
		return nil, storeErr("Failed to load teams", err)
	}
	return teams, nil
}

func (s *donationService) List(ctx context.Context) ([]model.Donation, error) {
	donations, err := s.donationRepo.FindAll(ctx)
	if err != nil {
		return nil, storeErr("Failed to load donations", err)
	}
	return donations, nil
}

// ForTeam lists donations the team sent or received
func (s *donationService) ForTeam(ctx context.Context, teamID uint) ([]model.Donation, error) {
	donations, err := s.donationRepo.FindByTeam(ctx, teamID)
	if err != nil {
		return nil, storeErr("Failed to load team donations", err)
	}
	return donations, nil
}
