package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-retreat-store/internal/apperr"
	"go-retreat-store/internal/model"
	"go-retreat-store/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxCodesPerBatch = 500

type MoneyCodeService interface {
	Generate(ctx context.Context, actor Actor, req *GenerateCodesRequest) (*GenerateCodesResult, error)
	Redeem(ctx context.Context, actor Actor, code string) (*RedeemResult, error)
	List(ctx context.Context) ([]MoneyCodeView, error)
}

type GenerateCodesRequest struct {
	Amount int64 `json:"amount" validate:"gt=0"`
	Count  int   `json:"count" validate:"gt=0,lte=500"`
}

type GenerateCodesResult struct {
	Codes  []string `json:"codes"`
	Count  int      `json:"count"`
	Amount int64    `json:"amount"`
}

type RedeemResult struct {
	Amount     int64 `json:"amount"`
	NewBalance int64 `json:"new_balance"`
}

// MoneyCodeView is the admin listing row
type MoneyCodeView struct {
	ID         uint       `json:"id"`
	Code       string     `json:"code"`
	Amount     int64      `json:"amount"`
	Used       bool       `json:"used"`
	UsedBy     *uint      `json:"used_by"`
	UsedByName string     `json:"used_by_username,omitempty"`
	UsedAt     *time.Time `json:"used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

type moneyCodeService struct {
	db       *gorm.DB
	codeRepo repository.MoneyCodeRepository
	userRepo repository.UserRepository
	txRepo   repository.TransactionRepository
	notifier Notifier
	logger   *slog.Logger
}

func NewMoneyCodeService(
	db *gorm.DB,
	codeRepo repository.MoneyCodeRepository,
	userRepo repository.UserRepository,
	txRepo repository.TransactionRepository,
	notifier Notifier,
	logger *slog.Logger,
) MoneyCodeService {
	return &moneyCodeService{
		db:       db,
		codeRepo: codeRepo,
		userRepo: userRepo,
		txRepo:   txRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// newCode returns RC<unix millis><6 random hex chars>
func newCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("RC%d%s", now.UnixMilli(), suffix)
}

func (s *moneyCodeService) Generate(ctx context.Context, actor Actor, req *GenerateCodesRequest) (*GenerateCodesResult, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	// 1. Build the batch; duplicate suffixes within one millisecond are drawn again
	now := time.Now()
	seen := make(map[string]struct{}, req.Count)
	codes := make([]string, 0, req.Count)
	rows := make([]model.MoneyCode, 0, req.Count)
	for len(codes) < req.Count {
		code := newCode(now)
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
		rows = append(rows, model.MoneyCode{Code: code, Amount: req.Amount})
	}

	// 2. Single batch write
	if err := s.codeRepo.CreateBatch(ctx, rows); err != nil {
		return nil, storeErr("Failed to generate codes", err)
	}

	s.logger.Info("money codes generated", "admin", actor.Username, "count", len(codes), "amount", req.Amount)
	return &GenerateCodesResult{Codes: codes, Count: len(codes), Amount: req.Amount}, nil
}

func (s *moneyCodeService) Redeem(ctx context.Context, actor Actor, code string) (*RedeemResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.Validation("Code is required")
	}
	if !actor.CanTrade() {
		return nil, ErrForbiddenTrade
	}

	var result RedeemResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Mark the code used; only one caller can flip it
		mc, err := s.codeRepo.Claim(tx, code, actor.UserID, time.Now())
		if errors.Is(err, repository.ErrNotApplied) {
			return ErrInvalidCode
		}
		if err != nil {
			return err
		}

		// 2. Credit the balance in place
		if err := s.userRepo.Credit(tx, actor.UserID, mc.Amount); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		// 3. Ledger entry
		entry := &model.Transaction{
			UserID:      actor.UserID,
			Type:        model.TxEarn,
			Amount:      mc.Amount,
			Description: fmt.Sprintf("Redeemed code: %s", code),
		}
		if err := s.txRepo.Append(tx, entry); err != nil {
			return err
		}

		balance, err := s.userRepo.Balance(tx, actor.UserID)
		if err != nil {
			return err
		}
		result = RedeemResult{Amount: mc.Amount, NewBalance: balance}
		return nil
	})
	if err != nil {
		return nil, storeErr("Failed to redeem code", err)
	}

	s.logger.Info("money code redeemed", "user", actor.Username, "amount", result.Amount, "balance", result.NewBalance)
	s.notifier.Publish(EventBalanceUpdate, balanceEvent(actor.UserID, result.NewBalance, "redeem"))
	return &result, nil
}

func (s *moneyCodeService) List(ctx context.Context) ([]MoneyCodeView, error) {
	codes, err := s.codeRepo.FindAll(ctx)
	if err != nil {
		return nil, storeErr("Failed to load codes", err)
	}

	views := make([]MoneyCodeView, 0, len(codes))
	for _, mc := range codes {
		v := MoneyCodeView{
			ID:        mc.ID,
			Code:      mc.Code,
			Amount:    mc.Amount,
			Used:      mc.Used,
			UsedBy:    mc.UsedBy,
			UsedAt:    mc.UsedAt,
			CreatedAt: mc.CreatedAt,
		}
		if mc.UsedByUser != nil {
			v.UsedByName = mc.UsedByUser.Username
		}
		views = append(views, v)
	}
	return views, nil
}
