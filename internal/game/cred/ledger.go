package cred

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/udisondev/starseekers/internal/game/event"
	"github.com/udisondev/starseekers/internal/game/registry"
	"github.com/udisondev/starseekers/internal/model"
)

// Ledger errors.
var (
	ErrUnauthorized          = errors.New("caller is not a game contract")
	ErrInsufficientFunds     = errors.New("not enough CRED")
	ErrInsufficientAllowance = errors.New("improper allowance")
	ErrBadAmount             = errors.New("amount must be positive")
)

// Ledger is the fungible CRED balance ledger. Mint, burn and delegated
// transfers are restricted to registered game contracts; players only move
// their own balance directly or via an explicit allowance.
type Ledger struct {
	mu          sync.RWMutex
	balances    map[model.Address]int64
	allowances  map[model.Address]map[model.Address]int64
	totalSupply int64

	access  *registry.Registry
	journal *event.Journal
}

// NewLedger creates an empty CRED ledger gated by the given access registry.
func NewLedger(access *registry.Registry, journal *event.Journal) *Ledger {
	return &Ledger{
		balances:   make(map[model.Address]int64, 32),
		allowances: make(map[model.Address]map[model.Address]int64, 8),
		access:     access,
		journal:    journal,
	}
}

// BalanceOf returns the CRED balance of owner.
func (l *Ledger) BalanceOf(owner model.Address) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[owner]
}

// TotalSupply returns the total CRED in circulation.
func (l *Ledger) TotalSupply() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalSupply
}

// Mint credits amount to the given address. Game contracts only.
func (l *Ledger) Mint(caller, to model.Address, amount int64) error {
	if !l.access.IsGameContract(caller) {
		return ErrUnauthorized
	}
	if amount <= 0 {
		return ErrBadAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[to] += amount
	l.totalSupply += amount

	slog.Info("cred minted", "to", to, "amount", amount)
	l.journal.Append(event.New(event.TypeCredMinted, map[string]any{
		"to": to, "amount": amount,
	}))
	return nil
}

// Spend burns amount from the named owner, paying for an in-game action.
// Game contracts only.
func (l *Ledger) Spend(caller, owner model.Address, amount int64) error {
	if !l.access.IsGameContract(caller) {
		return ErrUnauthorized
	}
	if amount <= 0 {
		return ErrBadAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[owner] < amount {
		return ErrInsufficientFunds
	}
	l.balances[owner] -= amount
	l.totalSupply -= amount

	slog.Info("cred spent", "owner", owner, "amount", amount)
	l.journal.Append(event.New(event.TypeCredSpent, map[string]any{
		"owner": owner, "amount": amount,
	}))
	return nil
}

// Transfer moves amount from the caller's own balance to another address.
func (l *Ledger) Transfer(owner, to model.Address, amount int64) error {
	if amount <= 0 {
		return ErrBadAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[owner] < amount {
		return ErrInsufficientFunds
	}
	l.balances[owner] -= amount
	l.balances[to] += amount

	l.journal.Append(event.New(event.TypeCredTransferred, map[string]any{
		"from": owner, "to": to, "amount": amount,
	}))
	return nil
}

// Approve authorizes spender to move up to amount of owner's CRED through
// TransferFrom. A new approval replaces any previous one.
func (l *Ledger) Approve(owner, spender model.Address, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	byOwner, ok := l.allowances[owner]
	if !ok {
		byOwner = make(map[model.Address]int64, 2)
		l.allowances[owner] = byOwner
	}
	byOwner[spender] = amount
}

// Allowance returns how much of owner's CRED spender may still move.
func (l *Ledger) Allowance(owner, spender model.Address) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowances[owner][spender]
}

// TransferFrom moves amount from one address to another on behalf of the
// calling game contract, consuming the from-address's allowance for the
// caller. Game contracts only.
func (l *Ledger) TransferFrom(caller, from, to model.Address, amount int64) error {
	if !l.access.IsGameContract(caller) {
		return ErrUnauthorized
	}
	if amount <= 0 {
		return ErrBadAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.allowances[from][caller] < amount {
		return ErrInsufficientAllowance
	}
	if l.balances[from] < amount {
		return ErrInsufficientFunds
	}
	l.allowances[from][caller] -= amount
	l.balances[from] -= amount
	l.balances[to] += amount

	l.journal.Append(event.New(event.TypeCredTransferred, map[string]any{
		"from": from, "to": to, "amount": amount, "spender": caller,
	}))
	return nil
}

// Balances returns a copy of all non-zero balances, for persistence.
func (l *Ledger) Balances() map[model.Address]int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[model.Address]int64, len(l.balances))
	for addr, bal := range l.balances {
		if bal != 0 {
			out[addr] = bal
		}
	}
	return out
}

// RestoreBalances replaces the ledger state with previously saved balances.
// Allowances are transient approvals and are not restored.
func (l *Ledger) RestoreBalances(balances map[model.Address]int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = make(map[model.Address]int64, len(balances))
	l.totalSupply = 0
	for addr, bal := range balances {
		l.balances[addr] = bal
		l.totalSupply += bal
	}
}
