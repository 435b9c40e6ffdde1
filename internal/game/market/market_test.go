package market_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/starseekers/internal/game/cred"
	"github.com/udisondev/starseekers/internal/game/event"
	"github.com/udisondev/starseekers/internal/game/market"
	"github.com/udisondev/starseekers/internal/model"
	"github.com/udisondev/starseekers/internal/testutil"
)

// listClone creates a clone for seller, approves the market and lists it.
func listClone(t *testing.T, f *testutil.Fixture, seller model.Address, price int64) uint64 {
	t.Helper()
	id := f.CreateClone(t, seller)
	f.Clones.SetApprovalForAll(seller, f.Market.Address(), true)
	require.NoError(t, f.Market.List(seller, id, price))
	return id
}

func TestList(t *testing.T) {
	t.Parallel()
	f := testutil.NewWorld(t)

	id := listClone(t, f, testutil.PlayerOne, 1000)

	data, err := f.Facility.CloneData(id)
	require.NoError(t, err)
	assert.True(t, data.ForSale)
	assert.Equal(t, int64(1000), data.Price)

	e, ok := f.Journal.Last()
	require.True(t, ok)
	assert.Equal(t, event.TypeCloneListed, e.Type)
	assert.Equal(t, id, e.Fields["cloneId"])
	assert.Equal(t, int64(1000), e.Fields["price"])
}

func TestListRequiresApproval(t *testing.T) {
	t.Parallel()
	f := testutil.NewWorld(t)

	id := f.CreateClone(t, testutil.PlayerOne)
	err := f.Market.List(testutil.PlayerOne, id, 1000)
	assert.ErrorIs(t, err, market.ErrNotApproved)
}

func TestListOwnerOnly(t *testing.T) {
	t.Parallel()
	f := testutil.NewWorld(t)

	id := f.CreateClone(t, testutil.PlayerOne)
	f.Clones.SetApprovalForAll(testutil.PlayerTwo, f.Market.Address(), true)
	err := f.Market.List(testutil.PlayerTwo, id, 1000)
	assert.ErrorIs(t, err, market.ErrNotOwner)
}

func TestListRejectsTrainingClone(t *testing.T) {
	t.Parallel()
	f := testutil.NewWorld(t)

	skillID := f.AddSkill(t, model.Skill{
		Name: "Comptroller", PrimaryAttribute: model.StatIntelligence,
		SecondaryAttribute: model.StatMemory, Multiplier: 1,
	})
	id := f.CreateClone(t, testutil.PlayerOne)
	_, err := f.Learning.StartLearning(testutil.PlayerOne, id, skillID)
	require.NoError(t, err)

	f.Clones.SetApprovalForAll(testutil.PlayerOne, f.Market.Address(), true)
	assert.ErrorIs(t, f.Market.List(testutil.PlayerOne, id, 1000), market.ErrTraining)
}

func TestCancel(t *testing.T) {
	t.Parallel()
	f := testutil.NewWorld(t)

	id := listClone(t, f, testutil.PlayerOne, 1000)

	assert.ErrorIs(t, f.Market.Cancel(testutil.PlayerTwo, id), market.ErrNotOwner)
	require.NoError(t, f.Market.Cancel(testutil.PlayerOne, id))

	data, err := f.Facility.CloneData(id)
	require.NoError(t, err)
	assert.False(t, data.ForSale)
	assert.Zero(t, data.Price)

	e, ok := f.Journal.Last()
	require.True(t, ok)
	assert.Equal(t, event.TypeCloneListingCancelled, e.Type)

	assert.ErrorIs(t, f.Market.Cancel(testutil.PlayerOne, id), market.ErrNotForSale)
}

func TestBuy(t *testing.T) {
	t.Parallel()
	f := testutil.NewWorld(t)

	id := listClone(t, f, testutil.PlayerOne, 1000)

	// The buyer funds their balance by minting a clone of their own.
	f.CreateClone(t, testutil.PlayerTwo)
	f.Cred.Approve(testutil.PlayerTwo, f.Market.Address(), 10000)

	require.NoError(t, f.Market.Buy(testutil.PlayerTwo, id))

	// 5% tax on 1000: seller nets 950, treasury takes 50.
	assert.Equal(t, int64(10950), f.Cred.BalanceOf(testutil.PlayerOne))
	assert.Equal(t, int64(50), f.Cred.BalanceOf(testutil.Federation))
	assert.Equal(t, int64(9000), f.Cred.BalanceOf(testutil.PlayerTwo))

	owner, err := f.Clones.OwnerOf(id)
	require.NoError(t, err)
	assert.Equal(t, testutil.PlayerTwo, owner)

	data, err := f.Facility.CloneData(id)
	require.NoError(t, err)
	assert.False(t, data.ForSale)
	assert.Zero(t, data.Price)

	e, ok := f.Journal.Last()
	require.True(t, ok)
	assert.Equal(t, event.TypeClonePurchased, e.Type)
	assert.Equal(t, int64(50), e.Fields["tax"])
}

func TestBuyNotForSale(t *testing.T) {
	t.Parallel()
	f := testutil.NewWorld(t)

	id := f.CreateClone(t, testutil.PlayerOne)
	f.CreateClone(t, testutil.PlayerTwo)
	assert.ErrorIs(t, f.Market.Buy(testutil.PlayerTwo, id), market.ErrNotForSale)
}

func TestBuySelfTrade(t *testing.T) {
	t.Parallel()
	f := testutil.NewWorld(t)

	id := listClone(t, f, testutil.PlayerOne, 1000)
	assert.ErrorIs(t, f.Market.Buy(testutil.PlayerOne, id), market.ErrSelfTrade)
}

func TestBuyInsufficientFunds(t *testing.T) {
	t.Parallel()
	f := testutil.NewWorld(t)

	id := listClone(t, f, testutil.PlayerOne, 20000)
	f.CreateClone(t, testutil.PlayerTwo) // balance 10000 < price
	f.Cred.Approve(testutil.PlayerTwo, f.Market.Address(), 30000)

	assert.ErrorIs(t, f.Market.Buy(testutil.PlayerTwo, id), cred.ErrInsufficientFunds)

	// Nothing moved.
	assert.Equal(t, int64(10000), f.Cred.BalanceOf(testutil.PlayerTwo))
	owner, err := f.Clones.OwnerOf(id)
	require.NoError(t, err)
	assert.Equal(t, testutil.PlayerOne, owner)
}

func TestBuyInsufficientAllowance(t *testing.T) {
	t.Parallel()
	f := testutil.NewWorld(t)

	id := listClone(t, f, testutil.PlayerOne, 1000)
	f.CreateClone(t, testutil.PlayerTwo)

	assert.ErrorIs(t, f.Market.Buy(testutil.PlayerTwo, id), cred.ErrInsufficientAllowance)

	f.Cred.Approve(testutil.PlayerTwo, f.Market.Address(), 999)
	assert.ErrorIs(t, f.Market.Buy(testutil.PlayerTwo, id), cred.ErrInsufficientAllowance)
}

func TestBuyRespectsCurrentSalesTax(t *testing.T) {
	t.Parallel()
	f := testutil.NewWorld(t)

	require.NoError(t, f.Registry.SetSalesTax(testutil.Admin, 10))

	id := listClone(t, f, testutil.PlayerOne, 1000)
	f.CreateClone(t, testutil.PlayerTwo)
	f.Cred.Approve(testutil.PlayerTwo, f.Market.Address(), 10000)

	require.NoError(t, f.Market.Buy(testutil.PlayerTwo, id))
	assert.Equal(t, int64(10900), f.Cred.BalanceOf(testutil.PlayerOne))
	assert.Equal(t, int64(100), f.Cred.BalanceOf(testutil.Federation))
}

func TestListedCloneCannotTrain(t *testing.T) {
	t.Parallel()
	f := testutil.NewWorld(t)

	skillID := f.AddSkill(t, model.Skill{
		Name: "Comptroller", PrimaryAttribute: model.StatIntelligence,
		SecondaryAttribute: model.StatMemory, Multiplier: 1,
	})
	id := listClone(t, f, testutil.PlayerOne, 1000)

	_, err := f.Learning.StartLearning(testutil.PlayerOne, id, skillID)
	assert.Error(t, err)

	// Delisting unblocks training.
	require.NoError(t, f.Market.Cancel(testutil.PlayerOne, id))
	_, err = f.Learning.StartLearning(testutil.PlayerOne, id, skillID)
	require.NoError(t, err)
	f.Clock.Advance(601 * time.Second)
	_, err = f.Learning.CompleteLearning(testutil.PlayerOne, id)
	require.NoError(t, err)
}
