package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-retreat-store/internal/model"
)

// TestRetreatDay walks a leader through redeem, purchase and donation
func TestRetreatDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := actorOf(env.admin)
	leader := actorOf(env.leaderA)

	// admin issues a code worth 500 and leader A redeems it
	gen, err := env.codes.Generate(ctx, admin, &GenerateCodesRequest{Amount: 500, Count: 1})
	require.NoError(t, err)
	redeemed, err := env.codes.Redeem(ctx, leader, gen.Codes[0])
	require.NoError(t, err)
	assert.Equal(t, int64(500), redeemed.NewBalance)

	var mc model.MoneyCode
	require.NoError(t, env.db.Where("code = ?", gen.Codes[0]).First(&mc).Error)
	require.NotNil(t, mc.UsedBy)
	assert.Equal(t, env.leaderA.ID, *mc.UsedBy)

	// two coffees at 200
	bought, err := env.purchases.Purchase(ctx, leader, &PurchaseRequest{ProductID: env.coffee.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(100), bought.NewBalance)
	assert.Equal(t, 8, env.product(t, env.coffee).StockQuantity)
	assert.Equal(t, 2, env.inventoryQty(t, env.teamA, env.coffee))

	// 100 does not cover a souvenir, so top up first
	_, err = env.donations.Donate(ctx, leader, &DonateRequest{RecipientTeamID: env.teamB.ID, ProductID: env.souvenir.ID, Quantity: 1})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	topUp, err := env.codes.Generate(ctx, admin, &GenerateCodesRequest{Amount: 500, Count: 1})
	require.NoError(t, err)
	_, err = env.codes.Redeem(ctx, leader, topUp.Codes[0])
	require.NoError(t, err)
	require.Equal(t, int64(600), env.balance(t, env.leaderA))

	donated, err := env.donations.Donate(ctx, leader, &DonateRequest{RecipientTeamID: env.teamB.ID, ProductID: env.souvenir.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(300), donated.NewBalance)
	assert.Equal(t, 4, env.product(t, env.souvenir).StockQuantity)
	assert.Equal(t, 1, env.inventoryQty(t, env.teamB, env.souvenir))

	var donation model.Donation
	require.NoError(t, env.db.First(&donation, donated.DonationID).Error)
	assert.Equal(t, 1, donation.Quantity)

	// the ledger reconciles with the balance
	var sum int64
	require.NoError(t, env.db.Model(&model.Transaction{}).Where("user_id = ?", env.leaderA.ID).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error)
	assert.Equal(t, env.balance(t, env.leaderA), sum)

	rankings, err := env.rankings.Rankings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A그룹", rankings[0].TeamName)
	assert.Equal(t, int64(1000), rankings[0].TotalEarned)
	assert.Equal(t, 30, rankings[0].DonationScore)
}
