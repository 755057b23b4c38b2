package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-retreat-store/internal/model"
)

func TestReset_ClearsEventData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setBalance(t, env.leaderA, 1000)
	env.setBalance(t, env.admin, 300)

	_, err := env.codes.Generate(ctx, actorOf(env.admin), &GenerateCodesRequest{Amount: 100, Count: 2})
	require.NoError(t, err)
	_, err = env.purchases.Purchase(ctx, actorOf(env.leaderA), &PurchaseRequest{ProductID: env.coffee.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = env.donations.Donate(ctx, actorOf(env.leaderA), &DonateRequest{RecipientTeamID: env.teamB.ID, ProductID: env.poster.ID, Quantity: 1})
	require.NoError(t, err)

	err = env.resets.Reset(ctx, actorOf(env.leaderA))
	assert.ErrorIs(t, err, ErrAdminOnly)
	assert.Equal(t, int64(1), env.count(t, &model.Order{}, ""))

	require.NoError(t, env.resets.Reset(ctx, actorOf(env.admin)))

	for _, m := range []interface{}{
		&model.InventoryMovement{}, &model.TeamInventory{}, &model.Donation{},
		&model.Transaction{}, &model.Order{}, &model.MoneyCode{}, &model.Product{},
	} {
		assert.Zero(t, env.count(t, m, ""), "%T not cleared", m)
	}
	assert.Equal(t, int64(1), env.count(t, &model.User{}, ""))
	assert.Zero(t, env.balance(t, env.admin))
	assert.Equal(t, int64(3), env.count(t, &model.Team{}, ""))
	assert.Zero(t, env.count(t, &model.Team{}, "leader_id IS NOT NULL"))
	assert.Equal(t, 1, env.notifier.count(EventStoreReset))
}
