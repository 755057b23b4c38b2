package service

import (
	"context"

	"go-retreat-store/internal/model"
)

const (
	EventStockUpdate   = "stock_update"
	EventBalanceUpdate = "balance_update"
)

// Notifier receives events after a transaction has committed
type Notifier interface {
	Publish(event string, payload map[string]interface{})
}

// ProductCache holds the active catalog between changes. Entries are keyed
// by a version that Invalidate advances, so a catalog read before a change
// and stored after it lands under a version nobody reads again.
type ProductCache interface {
	// Version returns the current catalog version; false when the cache is unavailable
	Version(ctx context.Context) (int64, bool)
	GetActive(ctx context.Context, version int64) ([]model.Product, bool)
	SetActive(ctx context.Context, version int64, products []model.Product)
	Invalidate(ctx context.Context)
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, map[string]interface{}) {}

// NoopNotifier discards every event
func NoopNotifier() Notifier { return noopNotifier{} }

type noopCache struct{}

func (noopCache) Version(context.Context) (int64, bool) { return 0, false }
func (noopCache) GetActive(context.Context, int64) ([]model.Product, bool) { return nil, false }
func (noopCache) SetActive(context.Context, int64, []model.Product) {}
func (noopCache) Invalidate(context.Context) {}

// NoopCache never hits
func NoopCache() ProductCache { return noopCache{} }

func stockEvent(product *model.Product, action string) map[string]interface{} {
	return map[string]interface{}{
		"action": action,
		"product": map[string]interface{}{
			"id":        product.ID,
			"name":      product.Name,
			"stock":     product.StockQuantity,
			"is_active": product.IsActive,
		},
	}
}

func balanceEvent(userID uint, balance int64, reason string) map[string]interface{} {
	return map[string]interface{}{
		"user_id": userID,
		"balance": balance,
		"reason":  reason,
	}
}
