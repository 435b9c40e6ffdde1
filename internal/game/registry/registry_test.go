package registry_test

import (
	"errors"
	"testing"

	"github.com/udisondev/starseekers/internal/game/event"
	"github.com/udisondev/starseekers/internal/game/pricefeed"
	"github.com/udisondev/starseekers/internal/game/registry"
	"github.com/udisondev/starseekers/internal/model"
)

var (
	admin      = model.DeriveAddress("test/admin")
	federation = model.DeriveAddress("test/federation")
	outsider   = model.DeriveAddress("test/outsider")
)

func newRegistry() (*registry.Registry, *event.Journal) {
	journal := event.NewJournal()
	return registry.New(admin, federation, pricefeed.NewStatic(2000), journal), journal
}

func TestAddRemoveContract(t *testing.T) {
	t.Parallel()

	r, journal := newRegistry()
	addr := model.DeriveAddress("contract/Learning")

	if err := r.AddContract(admin, "Learning", addr); err != nil {
		t.Fatalf("AddContract() error: %v", err)
	}
	if !r.IsGameContract(addr) {
		t.Error("IsGameContract() = false after add")
	}
	if got := r.ContractAddress("Learning"); got != addr {
		t.Errorf("ContractAddress() = %s; want %s", got, addr)
	}
	e, _ := journal.Last()
	if e.Type != event.TypeAddContract || e.Fields["name"] != "Learning" {
		t.Errorf("unexpected add event: %+v", e)
	}

	if err := r.RemoveContract(admin, "Learning"); err != nil {
		t.Fatalf("RemoveContract() error: %v", err)
	}
	if r.IsGameContract(addr) {
		t.Error("IsGameContract() = true after remove")
	}
	if got := r.ContractAddress("Learning"); got != model.ZeroAddress {
		t.Errorf("ContractAddress() = %s after remove; want zero", got)
	}
	e, _ = journal.Last()
	if e.Type != event.TypeRemoveContract {
		t.Errorf("last event = %s; want %s", e.Type, event.TypeRemoveContract)
	}
}

func TestRemoveUnknownContractStillEmits(t *testing.T) {
	t.Parallel()

	r, journal := newRegistry()
	if err := r.RemoveContract(admin, "Ghost"); err != nil {
		t.Fatalf("RemoveContract() error: %v", err)
	}
	e, ok := journal.Last()
	if !ok || e.Type != event.TypeRemoveContract {
		t.Fatalf("removal of unknown name must still emit %s", event.TypeRemoveContract)
	}
	if e.Fields["contractAddress"] != model.ZeroAddress {
		t.Errorf("event address = %v; want zero address", e.Fields["contractAddress"])
	}
}

func TestIsGameContractZeroAddress(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry()
	if r.IsGameContract(model.ZeroAddress) {
		t.Error("IsGameContract(zero) = true; want false")
	}
}

func TestAdminOnlyMutators(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry()
	addr := model.DeriveAddress("contract/Learning")

	tests := []struct {
		name string
		call func() error
	}{
		{"AddContract", func() error { return r.AddContract(outsider, "Learning", addr) }},
		{"RemoveContract", func() error { return r.RemoveContract(outsider, "Learning") }},
		{"ChangeAdmin", func() error { return r.ChangeAdmin(outsider, outsider) }},
		{"SetMaintenance", func() error { return r.SetMaintenance(outsider, true) }},
		{"SetSalesTax", func() error { return r.SetSalesTax(outsider, 10) }},
		{"SetFederation", func() error { return r.SetFederation(outsider, outsider) }},
		{"SetStartingCred", func() error { return r.SetStartingCred(outsider, 1) }},
		{"SetPriceFeed", func() error { return r.SetPriceFeed(outsider, pricefeed.NewStatic(1)) }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.call(); !errors.Is(err, registry.ErrAdminOnly) {
				t.Errorf("%s by non-admin error = %v; want %v", tt.name, err, registry.ErrAdminOnly)
			}
		})
	}
}

func TestChangeAdmin(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry()
	if got := r.Admin(); got != admin {
		t.Fatalf("Admin() = %s; want %s", got, admin)
	}
	if err := r.ChangeAdmin(admin, federation); err != nil {
		t.Fatalf("ChangeAdmin() error: %v", err)
	}
	if got := r.Admin(); got != federation {
		t.Errorf("Admin() = %s; want %s", got, federation)
	}
	// The old admin lost the role.
	if err := r.SetSalesTax(admin, 10); !errors.Is(err, registry.ErrAdminOnly) {
		t.Errorf("old admin SetSalesTax() error = %v; want %v", err, registry.ErrAdminOnly)
	}
}

func TestEconomicParameters(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry()
	if got := r.SalesTax(); got != 5 {
		t.Errorf("default SalesTax() = %d; want 5", got)
	}
	if got := r.StartingCred(); got != 10000 {
		t.Errorf("default StartingCred() = %d; want 10000", got)
	}

	if err := r.SetSalesTax(admin, 10); err != nil {
		t.Fatalf("SetSalesTax() error: %v", err)
	}
	if err := r.SetStartingCred(admin, 100000); err != nil {
		t.Fatalf("SetStartingCred() error: %v", err)
	}
	if err := r.SetFederation(admin, outsider); err != nil {
		t.Fatalf("SetFederation() error: %v", err)
	}
	if got := r.SalesTax(); got != 10 {
		t.Errorf("SalesTax() = %d; want 10", got)
	}
	if got := r.StartingCred(); got != 100000 {
		t.Errorf("StartingCred() = %d; want 100000", got)
	}
	if got := r.Federation(); got != outsider {
		t.Errorf("Federation() = %s; want %s", got, outsider)
	}
}

func TestSetSalesTaxRange(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry()

	// A negative tax would make the market debit buyers more than the
	// listed price; anything over 100 would pay out more than was taken.
	for _, percent := range []int32{-1, -100, 101, 1000} {
		if err := r.SetSalesTax(admin, percent); !errors.Is(err, registry.ErrInvalidTax) {
			t.Errorf("SetSalesTax(%d) error = %v; want %v", percent, err, registry.ErrInvalidTax)
		}
	}
	if got := r.SalesTax(); got != 5 {
		t.Errorf("SalesTax() after rejected updates = %d; want 5", got)
	}

	for _, percent := range []int32{0, 100} {
		if err := r.SetSalesTax(admin, percent); err != nil {
			t.Errorf("SetSalesTax(%d) error: %v", percent, err)
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry()
	addr := model.DeriveAddress("contract/Learning")
	if err := r.AddContract(admin, "Learning", addr); err != nil {
		t.Fatalf("AddContract() error: %v", err)
	}
	if err := r.SetMaintenance(admin, true); err != nil {
		t.Fatalf("SetMaintenance() error: %v", err)
	}

	snap := r.Snapshot()

	fresh, _ := newRegistry()
	fresh.Restore(snap)
	if !fresh.IsGameContract(addr) {
		t.Error("restored registry lost contract membership")
	}
	if !fresh.Maintenance() {
		t.Error("restored registry lost maintenance flag")
	}
	if got := fresh.ContractAddress("Learning"); got != addr {
		t.Errorf("restored ContractAddress() = %s; want %s", got, addr)
	}
}
