package market

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/starseekers/internal/game/clone"
	"github.com/udisondev/starseekers/internal/game/cred"
	"github.com/udisondev/starseekers/internal/game/event"
	"github.com/udisondev/starseekers/internal/game/facility"
	"github.com/udisondev/starseekers/internal/game/learning"
	"github.com/udisondev/starseekers/internal/game/registry"
	"github.com/udisondev/starseekers/internal/model"
)

// Market errors.
var (
	ErrNotOwner      = errors.New("clone owner only")
	ErrNotApproved   = errors.New("market not approved")
	ErrNotForSale    = errors.New("clone not for sale")
	ErrAlreadyListed = errors.New("clone already listed")
	ErrSelfTrade     = errors.New("can not purchase own clone")
	ErrTraining      = errors.New("clone is training")
	ErrBadPrice      = errors.New("price must be positive")
	ErrNotFound      = errors.New("clone does not exist")
)

// Market runs the escrow-free clone exchange: owners list and cancel, buyers
// pay in CRED. The clone never leaves its owner until purchase; the market
// only holds a transfer approval.
type Market struct {
	addr    model.Address
	access  *registry.Registry
	clones  *clone.Registry
	fac     *facility.Facility
	ledger  *cred.Ledger
	engine  *learning.Engine
	journal *event.Journal
}

// New creates a market with its own component address. The address must be
// registered as a game contract, approved by sellers, and granted CRED
// allowances by buyers.
func New(addr model.Address, access *registry.Registry, clones *clone.Registry, fac *facility.Facility, ledger *cred.Ledger, engine *learning.Engine, journal *event.Journal) *Market {
	return &Market{
		addr:    addr,
		access:  access,
		clones:  clones,
		fac:     fac,
		ledger:  ledger,
		engine:  engine,
		journal: journal,
	}
}

// Address returns the market's component address.
func (m *Market) Address() model.Address {
	return m.addr
}

// List puts a clone up for sale at the given CRED price. The caller must
// own the clone and must have approved the market on the clone registry; a
// clone mid-training cannot be listed.
func (m *Market) List(caller model.Address, cloneID uint64, price int64) error {
	if price <= 0 {
		return ErrBadPrice
	}
	owner, err := m.clones.OwnerOf(cloneID)
	if err != nil {
		return ErrNotFound
	}
	if owner != caller {
		return ErrNotOwner
	}
	if !m.clones.IsApprovedForAll(owner, m.addr) {
		return ErrNotApproved
	}
	data, err := m.fac.CloneData(cloneID)
	if err != nil {
		return ErrNotFound
	}
	if data.ForSale {
		return ErrAlreadyListed
	}
	if m.engine.LearningState(cloneID).IsLearning {
		return ErrTraining
	}

	if err := m.fac.SetSaleState(m.addr, cloneID, true, price); err != nil {
		return fmt.Errorf("setting sale state: %w", err)
	}

	slog.Info("clone listed", "clone_id", cloneID, "price", price)
	m.journal.Append(event.New(event.TypeCloneListed, map[string]any{
		"cloneId": cloneID, "price": price,
	}))
	return nil
}

// Cancel delists a clone that has not been purchased. Owner only.
func (m *Market) Cancel(caller model.Address, cloneID uint64) error {
	owner, err := m.clones.OwnerOf(cloneID)
	if err != nil {
		return ErrNotFound
	}
	if owner != caller {
		return ErrNotOwner
	}
	data, err := m.fac.CloneData(cloneID)
	if err != nil {
		return ErrNotFound
	}
	if !data.ForSale {
		return ErrNotForSale
	}

	if err := m.fac.SetSaleState(m.addr, cloneID, false, 0); err != nil {
		return fmt.Errorf("clearing sale state: %w", err)
	}

	slog.Info("clone listing cancelled", "clone_id", cloneID)
	m.journal.Append(event.New(event.TypeCloneListingCancelled, map[string]any{
		"cloneId": cloneID,
	}))
	return nil
}

// Buy purchases a listed clone. The price is split between the seller and
// the federation treasury according to the registry's sales tax; ownership
// transfers through the approval the seller granted at listing time.
//
// All preconditions are validated before the first transfer so a failure
// leaves no partial state.
func (m *Market) Buy(caller model.Address, cloneID uint64) error {
	data, err := m.fac.CloneData(cloneID)
	if err != nil {
		return ErrNotFound
	}
	if !data.ForSale {
		return ErrNotForSale
	}
	seller := data.Owner
	if seller == caller {
		return ErrSelfTrade
	}

	price := data.Price
	if m.ledger.BalanceOf(caller) < price {
		return cred.ErrInsufficientFunds
	}
	if m.ledger.Allowance(caller, m.addr) < price {
		return cred.ErrInsufficientAllowance
	}
	if !m.clones.IsApprovedForAll(seller, m.addr) {
		return ErrNotApproved
	}

	tax := price * int64(m.access.SalesTax()) / 100
	if err := m.ledger.TransferFrom(m.addr, caller, seller, price-tax); err != nil {
		return fmt.Errorf("paying seller: %w", err)
	}
	if tax > 0 {
		if err := m.ledger.TransferFrom(m.addr, caller, m.access.Federation(), tax); err != nil {
			return fmt.Errorf("remitting tax: %w", err)
		}
	}
	if err := m.clones.TransferFrom(m.addr, seller, caller, cloneID); err != nil {
		return fmt.Errorf("transferring clone: %w", err)
	}
	if err := m.fac.SetSaleState(m.addr, cloneID, false, 0); err != nil {
		return fmt.Errorf("clearing sale state: %w", err)
	}

	slog.Info("clone purchased",
		"clone_id", cloneID, "seller", seller, "buyer", caller,
		"price", price, "tax", tax)
	m.journal.Append(event.New(event.TypeClonePurchased, map[string]any{
		"cloneId": cloneID, "seller": seller, "buyer": caller,
		"price": price, "tax": tax,
	}))
	return nil
}
