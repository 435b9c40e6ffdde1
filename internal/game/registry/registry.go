package registry

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/udisondev/starseekers/internal/game/event"
	"github.com/udisondev/starseekers/internal/game/pricefeed"
	"github.com/udisondev/starseekers/internal/model"
)

// ErrAdminOnly is returned when a registry mutator is called by anyone but
// the current admin.
var ErrAdminOnly = errors.New("admin only")

// ErrInvalidTax is returned for a sales tax outside 0-100 percent.
var ErrInvalidTax = errors.New("invalid sales tax")

// Default economic parameters, applied at construction until the admin
// tunes them.
const (
	DefaultSalesTax     int32 = 5     // percent
	DefaultStartingCred int64 = 10000 // CRED granted per minted clone
)

// Registry is the central access-control and parameter store. Every other
// component consults it on every state-changing call: admin identity,
// the authorized game-contract set, the maintenance flag and the tunable
// economic parameters all live here.
type Registry struct {
	mu           sync.RWMutex
	admin        model.Address
	federation   model.Address
	contracts    map[string]model.Address
	members      map[model.Address]bool
	maintenance  bool
	salesTax     int32
	startingCred int64
	feed         pricefeed.Feed

	journal *event.Journal
}

// New creates a registry with the given admin, treasury address and price
// feed, and default economic parameters.
func New(admin, federation model.Address, feed pricefeed.Feed, journal *event.Journal) *Registry {
	return &Registry{
		admin:        admin,
		federation:   federation,
		contracts:    make(map[string]model.Address, 8),
		members:      make(map[model.Address]bool, 8),
		salesTax:     DefaultSalesTax,
		startingCred: DefaultStartingCred,
		feed:         feed,
		journal:      journal,
	}
}

func (r *Registry) requireAdmin(caller model.Address) error {
	if caller.IsZero() || caller != r.admin {
		return ErrAdminOnly
	}
	return nil
}

// AddContract registers a game-logic contract address under a name.
// Admin only.
func (r *Registry) AddContract(caller model.Address, name string, addr model.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireAdmin(caller); err != nil {
		return err
	}

	r.contracts[name] = addr
	r.members[addr] = true

	slog.Info("game contract added", "name", name, "address", addr)
	r.journal.Append(event.New(event.TypeAddContract, map[string]any{
		"name": name, "contractAddress": addr,
	}))
	return nil
}

// RemoveContract deregisters the contract stored under name. Removing a name
// that was never added is a no-op that still emits the removal event with a
// zero address.
func (r *Registry) RemoveContract(caller model.Address, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireAdmin(caller); err != nil {
		return err
	}

	addr := r.contracts[name]
	if !addr.IsZero() {
		delete(r.contracts, name)
		delete(r.members, addr)
	}

	slog.Info("game contract removed", "name", name, "address", addr)
	r.journal.Append(event.New(event.TypeRemoveContract, map[string]any{
		"name": name, "contractAddress": addr,
	}))
	return nil
}

// IsGameContract reports whether addr is a currently registered game
// contract. The zero address is never a game contract.
func (r *Registry) IsGameContract(addr model.Address) bool {
	if addr.IsZero() {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.members[addr]
}

// ContractAddress returns the address registered under name, or the zero
// address if the name is unknown.
func (r *Registry) ContractAddress(name string) model.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contracts[name]
}

// ChangeAdmin hands the admin role to a new address. Admin only.
func (r *Registry) ChangeAdmin(caller, newAdmin model.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireAdmin(caller); err != nil {
		return err
	}

	r.admin = newAdmin
	slog.Info("admin changed", "admin", newAdmin)
	r.journal.Append(event.New(event.TypeAdminChanged, map[string]any{
		"admin": newAdmin,
	}))
	return nil
}

// SetMaintenance toggles the global maintenance flag. Admin only.
func (r *Registry) SetMaintenance(caller model.Address, status bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireAdmin(caller); err != nil {
		return err
	}

	r.maintenance = status
	slog.Info("maintenance updated", "status", status)
	r.journal.Append(event.New(event.TypeMaintenanceUpdated, map[string]any{
		"status": status,
	}))
	return nil
}

// SetSalesTax sets the market sales tax in whole percent, 0-100. Admin only.
func (r *Registry) SetSalesTax(caller model.Address, percent int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	if percent < 0 || percent > 100 {
		return ErrInvalidTax
	}

	r.salesTax = percent
	slog.Info("sales tax updated", "percent", percent)
	r.journal.Append(event.New(event.TypeSalesTaxUpdated, map[string]any{
		"amount": percent,
	}))
	return nil
}

// SetFederation sets the treasury address receiving mint fees and market
// tax. Admin only.
func (r *Registry) SetFederation(caller, federation model.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireAdmin(caller); err != nil {
		return err
	}

	r.federation = federation
	slog.Info("federation updated", "federation", federation)
	r.journal.Append(event.New(event.TypeFederationUpdated, map[string]any{
		"federation": federation,
	}))
	return nil
}

// SetStartingCred sets the CRED grant for newly minted clones. Admin only.
func (r *Registry) SetStartingCred(caller model.Address, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireAdmin(caller); err != nil {
		return err
	}

	r.startingCred = amount
	slog.Info("starting cred updated", "amount", amount)
	r.journal.Append(event.New(event.TypeStartingCredUpdated, map[string]any{
		"amount": amount,
	}))
	return nil
}

// SetPriceFeed swaps the base-token price feed. Admin only.
func (r *Registry) SetPriceFeed(caller model.Address, feed pricefeed.Feed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireAdmin(caller); err != nil {
		return err
	}

	r.feed = feed
	slog.Info("price feed updated")
	r.journal.Append(event.New(event.TypePriceFeedUpdated, nil))
	return nil
}

// Admin returns the current admin address.
func (r *Registry) Admin() model.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.admin
}

// Federation returns the treasury address.
func (r *Registry) Federation() model.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.federation
}

// Maintenance reports the global maintenance flag.
func (r *Registry) Maintenance() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maintenance
}

// SalesTax returns the market sales tax in whole percent.
func (r *Registry) SalesTax() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.salesTax
}

// StartingCred returns the CRED grant for newly minted clones.
func (r *Registry) StartingCred() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.startingCred
}

// PriceFeed returns the active base-token price feed.
func (r *Registry) PriceFeed() pricefeed.Feed {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.feed
}

// Snapshot captures the registry's durable state for persistence.
type Snapshot struct {
	Admin        model.Address
	Federation   model.Address
	Maintenance  bool
	SalesTax     int32
	StartingCred int64
	Contracts    map[string]model.Address
}

// Snapshot returns a copy of the durable registry state.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	contracts := make(map[string]model.Address, len(r.contracts))
	for name, addr := range r.contracts {
		contracts[name] = addr
	}
	return Snapshot{
		Admin:        r.admin,
		Federation:   r.federation,
		Maintenance:  r.maintenance,
		SalesTax:     r.salesTax,
		StartingCred: r.startingCred,
		Contracts:    contracts,
	}
}

// Restore replaces the registry state with a previously saved snapshot.
// Used by the persistence layer at boot, before any callers exist.
func (r *Registry) Restore(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admin = s.Admin
	r.federation = s.Federation
	r.maintenance = s.Maintenance
	r.salesTax = s.SalesTax
	r.startingCred = s.StartingCred
	r.contracts = make(map[string]model.Address, len(s.Contracts))
	r.members = make(map[model.Address]bool, len(s.Contracts))
	for name, addr := range s.Contracts {
		r.contracts[name] = addr
		r.members[addr] = true
	}
}
