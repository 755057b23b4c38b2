package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"go-retreat-store/internal/apperr"
	"go-retreat-store/internal/model"
	"go-retreat-store/internal/repository"

	"gorm.io/gorm"
)

type PurchaseService interface {
	Purchase(ctx context.Context, actor Actor, req *PurchaseRequest) (*PurchaseResult, error)
}

type PurchaseRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"gt=0"`
}

type PurchaseResult struct {
	OrderID        uint   `json:"order_id"`
	NewBalance     int64  `json:"new_balance"`
	TotalPrice     int64  `json:"total_price"`
	RemainingStock int    `json:"remaining_stock"`
	SoldOut        bool   `json:"sold_out"`
	Message        string `json:"message"`
}

type purchaseService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	orderRepo   repository.OrderRepository
	txRepo      repository.TransactionRepository
	inventory   InventoryService
	notifier    Notifier
	cache       ProductCache
	logger      *slog.Logger
}

func NewPurchaseService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	txRepo repository.TransactionRepository,
	inventory InventoryService,
	notifier Notifier,
	cache ProductCache,
	logger *slog.Logger,
) PurchaseService {
	return &purchaseService{
		db:          db,
		productRepo: productRepo,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		txRepo:      txRepo,
		inventory:   inventory,
		notifier:    notifier,
		cache:       cache,
		logger:      logger,
	}
}

func (s *purchaseService) Purchase(ctx context.Context, actor Actor, req *PurchaseRequest) (*PurchaseResult, error) {
	if !actor.CanTrade() {
		return nil, ErrForbiddenTrade
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var (
		result  PurchaseResult
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

		totalPrice, err := lineTotal(product.Price, req.Quantity)
		if err != nil {
			return err
		}

		// 2. Buyer must own a team and cover the price
		buyer, err := s.userRepo.LockByID(tx, actor.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if buyer.TeamID == nil {
			return ErrNoTeam
		}
		if buyer.Balance < totalPrice {
			return ErrInsufficientBalance
		}

		// 3. Debit with a floor check in the same statement
		if err := s.userRepo.Debit(tx, buyer.ID, totalPrice); err != nil {
			if errors.Is(err, repository.ErrNotApplied) {
				return ErrInsufficientBalance
			}
			return err
		}

		// 4. Order
		order := &model.Order{
			UserID:     buyer.ID,
			TeamID:     *buyer.TeamID,
			ProductID:  product.ID,
			Quantity:   req.Quantity,
			TotalPrice: totalPrice,
			Status:     model.OrderPending,
		}
		if err := s.orderRepo.Create(tx, order); err != nil {
			return err
		}

		// 5. Ledger entry
		if err := s.txRepo.Append(tx, &model.Transaction{
			UserID:      buyer.ID,
			Type:        model.TxPurchase,
			Amount:      -totalPrice,
			Description: fmt.Sprintf("Purchased %d x %s", req.Quantity, product.Name),
			ReferenceID: &order.ID,
		}); err != nil {
			return err
		}

		// 6. Stock decrement, deactivating at zero
		remaining, err := s.productRepo.DecrementStock(tx, product.ID, req.Quantity)
		if errors.Is(err, repository.ErrNotApplied) {
			return ErrInsufficientStock
		}
		if err != nil {
			return err
		}

		// 7. Team inventory
		if err := s.inventory.Credit(tx, *buyer.TeamID, product.ID, req.Quantity, model.SourcePurchase, &order.ID); err != nil {
			return err
		}

		balance, err := s.userRepo.Balance(tx, buyer.ID)
		if err != nil {
			return err
		}

		product.StockQuantity = remaining
		product.IsActive = remaining > 0
		result = PurchaseResult{
			OrderID:        order.ID,
			NewBalance:     balance,
			TotalPrice:     totalPrice,
			RemainingStock: remaining,
			SoldOut:        remaining <= 0,
			Message:        fmt.Sprintf("Successfully purchased %d x %s", req.Quantity, product.Name),
		}
		if result.SoldOut {
			result.Message += " (now sold out)"
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("Purchase failed", err)
	}

	s.logger.Info("purchase completed",
		"user", actor.Username,
		"product_id", product.ID,
		"quantity", req.Quantity,
		"total", result.TotalPrice,
		"remaining_stock", result.RemainingStock,
	)
	s.cache.Invalidate(ctx)
	s.notifier.Publish(EventStockUpdate, stockEvent(product, "purchase"))
	s.notifier.Publish(EventBalanceUpdate, balanceEvent(actor.UserID, result.NewBalance, "purchase"))
	return &result, nil
}

// lineTotal prices a quantity of one product. A total that does not fit in
// int64 can never be covered by a balance.
func lineTotal(price int64, quantity int) (int64, error) {
	if price <= 0 {
		return 0, apperr.Validation("Product has no valid price")
	}
	if int64(quantity) > math.MaxInt64/price {
		return 0, ErrInsufficientBalance
	}
	return price * int64(quantity), nil
}
