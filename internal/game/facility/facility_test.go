package facility_test

import (
	"errors"
	"testing"

	"github.com/udisondev/starseekers/internal/game/event"
	"github.com/udisondev/starseekers/internal/game/facility"
	"github.com/udisondev/starseekers/internal/model"
	"github.com/udisondev/starseekers/internal/testutil"
)

func TestCloneCostInBaseToken(t *testing.T) {
	t.Parallel()

	f := testutil.NewWorld(t)

	// $10.00 clone at $20.00 per token is half a token.
	cost, err := f.Facility.CloneCostInBaseToken()
	if err != nil {
		t.Fatalf("CloneCostInBaseToken() error: %v", err)
	}
	if want := facility.BaseTokenUnits / 2; cost != want {
		t.Errorf("cost = %d; want %d", cost, want)
	}

	// Cost tracks the feed.
	f.Feed.SetPrice(1000)
	cost, err = f.Facility.CloneCostInBaseToken()
	if err != nil {
		t.Fatalf("CloneCostInBaseToken() error: %v", err)
	}
	if want := facility.BaseTokenUnits; cost != want {
		t.Errorf("cost after feed change = %d; want %d", cost, want)
	}
}

func TestCreate(t *testing.T) {
	t.Parallel()

	f := testutil.NewWorld(t)
	cost, err := f.Facility.CloneCostInBaseToken()
	if err != nil {
		t.Fatalf("CloneCostInBaseToken() error: %v", err)
	}

	id, refund, err := f.Facility.Create(testutil.PlayerOne, "https://test.url", cost)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if id != 1 {
		t.Errorf("first clone id = %d; want 1", id)
	}
	if refund != 0 {
		t.Errorf("refund = %d with exact payment; want 0", refund)
	}

	data, err := f.Facility.CloneData(id)
	if err != nil {
		t.Fatalf("CloneData() error: %v", err)
	}
	if data.Owner != testutil.PlayerOne {
		t.Errorf("owner = %s; want %s", data.Owner, testutil.PlayerOne)
	}
	if data.URI != "https://test.url" {
		t.Errorf("uri = %q; want %q", data.URI, "https://test.url")
	}
	if data.ForSale {
		t.Error("new clone marked for sale")
	}
	for i, v := range data.Stats {
		if v != model.DefaultStatValue {
			t.Errorf("stat %s = %d; want %d", model.Stat(i), v, model.DefaultStatValue)
		}
	}

	if got := f.Cred.BalanceOf(testutil.PlayerOne); got != 10000 {
		t.Errorf("starting cred = %d; want 10000", got)
	}
	if got := f.Facility.TreasuryReceived(); got != cost {
		t.Errorf("TreasuryReceived() = %d; want %d", got, cost)
	}

	e, ok := f.Journal.Last()
	if !ok || e.Type != event.TypeCloneCreated {
		t.Fatalf("last event = %+v; want %s", e, event.TypeCloneCreated)
	}
	if e.Fields["cloneId"] != id || e.Fields["owner"] != testutil.PlayerOne {
		t.Errorf("event fields = %v; want cloneId=%d owner=%s", e.Fields, id, testutil.PlayerOne)
	}
}

func TestCreateOverpaymentRefunded(t *testing.T) {
	t.Parallel()

	f := testutil.NewWorld(t)
	cost, err := f.Facility.CloneCostInBaseToken()
	if err != nil {
		t.Fatalf("CloneCostInBaseToken() error: %v", err)
	}

	const surplus = 123456
	_, refund, err := f.Facility.Create(testutil.PlayerOne, "https://test.url", cost+surplus)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if refund != surplus {
		t.Errorf("refund = %d; want %d", refund, surplus)
	}
	if got := f.Facility.TreasuryReceived(); got != cost {
		t.Errorf("TreasuryReceived() = %d; want exactly the cost %d", got, cost)
	}
}

func TestCreateInsufficientPayment(t *testing.T) {
	t.Parallel()

	f := testutil.NewWorld(t)
	cost, err := f.Facility.CloneCostInBaseToken()
	if err != nil {
		t.Fatalf("CloneCostInBaseToken() error: %v", err)
	}

	_, refund, err := f.Facility.Create(testutil.PlayerOne, "https://test.url", cost-1)
	if !errors.Is(err, facility.ErrInsufficientPayment) {
		t.Fatalf("Create() error = %v; want %v", err, facility.ErrInsufficientPayment)
	}
	if refund != cost-1 {
		t.Errorf("failed create must return full payment; refund = %d; want %d", refund, cost-1)
	}
	if f.Clones.Count() != 0 {
		t.Error("clone minted despite failed payment")
	}
	if got := f.Cred.BalanceOf(testutil.PlayerOne); got != 0 {
		t.Errorf("cred granted despite failed payment: %d", got)
	}
}

func TestSequentialIDsNeverReused(t *testing.T) {
	t.Parallel()

	f := testutil.NewWorld(t)
	first := f.CreateClone(t, testutil.PlayerOne)
	second := f.CreateClone(t, testutil.PlayerTwo)
	if first != 1 || second != 2 {
		t.Errorf("ids = %d, %d; want 1, 2", first, second)
	}
}

func TestStatMutationAuthorized(t *testing.T) {
	t.Parallel()

	f := testutil.NewWorld(t)
	id := f.CreateClone(t, testutil.PlayerOne)

	// Owners do not mutate stats directly; only game contracts do.
	err := f.Facility.IncreaseStat(testutil.PlayerOne, id, model.StatMemory, 1)
	if !errors.Is(err, facility.ErrUnauthorized) {
		t.Fatalf("IncreaseStat(owner) error = %v; want %v", err, facility.ErrUnauthorized)
	}

	contract := model.DeriveAddress("test/fake-contract")
	if err := f.Registry.AddContract(testutil.Admin, "Test", contract); err != nil {
		t.Fatalf("AddContract() error: %v", err)
	}
	if err := f.Facility.IncreaseStat(contract, id, model.StatMemory, 3); err != nil {
		t.Fatalf("IncreaseStat() error: %v", err)
	}

	data, err := f.Facility.CloneData(id)
	if err != nil {
		t.Fatalf("CloneData() error: %v", err)
	}
	if got := data.Stats[model.StatMemory]; got != model.DefaultStatValue+3 {
		t.Errorf("memory = %d; want %d", got, model.DefaultStatValue+3)
	}
}

func TestDecreaseStatFloorsAtZero(t *testing.T) {
	t.Parallel()

	f := testutil.NewWorld(t)
	id := f.CreateClone(t, testutil.PlayerOne)
	contract := model.DeriveAddress("test/fake-contract")
	if err := f.Registry.AddContract(testutil.Admin, "Test", contract); err != nil {
		t.Fatalf("AddContract() error: %v", err)
	}

	if err := f.Facility.DecreaseStat(contract, id, model.StatWillpower, 100); err != nil {
		t.Fatalf("DecreaseStat() error: %v", err)
	}
	data, err := f.Facility.CloneData(id)
	if err != nil {
		t.Fatalf("CloneData() error: %v", err)
	}
	if got := data.Stats[model.StatWillpower]; got != 0 {
		t.Errorf("willpower = %d; want 0 (floored)", got)
	}
}

func TestReadsFailForUnminted(t *testing.T) {
	t.Parallel()

	f := testutil.NewWorld(t)
	if _, err := f.Facility.CloneData(7); !errors.Is(err, facility.ErrNotFound) {
		t.Errorf("CloneData(unminted) error = %v; want %v", err, facility.ErrNotFound)
	}
	if _, err := f.Facility.CloneURI(7); !errors.Is(err, facility.ErrNotFound) {
		t.Errorf("CloneURI(unminted) error = %v; want %v", err, facility.ErrNotFound)
	}
}

func TestChangeURI(t *testing.T) {
	t.Parallel()

	f := testutil.NewWorld(t)
	id := f.CreateClone(t, testutil.PlayerOne)
	contract := model.DeriveAddress("test/fake-contract")
	if err := f.Registry.AddContract(testutil.Admin, "Test", contract); err != nil {
		t.Fatalf("AddContract() error: %v", err)
	}

	if err := f.Facility.ChangeURI(testutil.PlayerOne, id, "https://new.url"); !errors.Is(err, facility.ErrUnauthorized) {
		t.Fatalf("ChangeURI(owner) error = %v; want %v", err, facility.ErrUnauthorized)
	}
	if err := f.Facility.ChangeURI(contract, id, "https://new.url"); err != nil {
		t.Fatalf("ChangeURI() error: %v", err)
	}
	uri, err := f.Facility.CloneURI(id)
	if err != nil {
		t.Fatalf("CloneURI() error: %v", err)
	}
	if uri != "https://new.url" {
		t.Errorf("uri = %q; want %q", uri, "https://new.url")
	}
}
