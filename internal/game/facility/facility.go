package facility

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/starseekers/internal/game/clone"
	"github.com/udisondev/starseekers/internal/game/cred"
	"github.com/udisondev/starseekers/internal/game/event"
	"github.com/udisondev/starseekers/internal/game/registry"
	"github.com/udisondev/starseekers/internal/model"
)

// Facility errors.
var (
	ErrUnauthorized        = errors.New("caller is not a game contract")
	ErrNotFound            = errors.New("clone does not exist")
	ErrInsufficientPayment = errors.New("payment below clone cost")
	ErrInvalidStat         = errors.New("stat index out of range")
)

// BaseTokenUnits is the number of base-token units per whole token.
const BaseTokenUnits int64 = 1_000_000_000

// DefaultCloneCostCents is the fiat-denominated clone price: $10.00.
const DefaultCloneCostCents int64 = 1000

// cloneState is the facility-owned game data of one clone. Ownership and
// URI live in the clone registry; this holds stats and sale state.
type cloneState struct {
	stats   model.StatVector
	forSale bool
	price   int64
}

// Facility mints clones against a base-token payment and owns the per-clone
// stat and sale-state storage that gameplay systems mutate through
// authorized hooks.
type Facility struct {
	mu               sync.RWMutex
	states           map[uint64]*cloneState
	costCents        int64
	treasuryReceived int64

	addr    model.Address
	access  *registry.Registry
	clones  *clone.Registry
	ledger  *cred.Ledger
	journal *event.Journal
}

// New creates a facility with its own component address. The address must be
// registered as a game contract before Create can mint.
func New(addr model.Address, access *registry.Registry, clones *clone.Registry, ledger *cred.Ledger, journal *event.Journal) *Facility {
	return &Facility{
		states:    make(map[uint64]*cloneState, 32),
		costCents: DefaultCloneCostCents,
		addr:      addr,
		access:    access,
		clones:    clones,
		ledger:    ledger,
		journal:   journal,
	}
}

// Address returns the facility's component address.
func (f *Facility) Address() model.Address {
	return f.addr
}

// CloneCostInBaseToken converts the fiat clone price into base-token units
// using the active price feed.
func (f *Facility) CloneCostInBaseToken() (int64, error) {
	price, err := f.access.PriceFeed().LatestPrice()
	if err != nil {
		return 0, fmt.Errorf("reading price feed: %w", err)
	}
	return f.costCents * BaseTokenUnits / price, nil
}

// Create mints a new clone for caller against payment in base-token units.
// The exact cost goes to the treasury, any surplus is returned as refund,
// the clone gets default stats and the caller receives the configured
// starting CRED grant.
func (f *Facility) Create(caller model.Address, uri string, payment int64) (cloneID uint64, refund int64, err error) {
	// Checked up front so the clone mint and the CRED grant cannot diverge:
	// both authorize against the same registration.
	if !f.access.IsGameContract(f.addr) {
		return 0, payment, ErrUnauthorized
	}
	cost, err := f.CloneCostInBaseToken()
	if err != nil {
		return 0, 0, err
	}
	if payment < cost {
		return 0, payment, ErrInsufficientPayment
	}

	cloneID, err = f.clones.Mint(f.addr, caller, uri)
	if err != nil {
		return 0, payment, err
	}

	f.mu.Lock()
	f.states[cloneID] = &cloneState{stats: model.DefaultStats()}
	f.treasuryReceived += cost
	f.mu.Unlock()

	if grant := f.access.StartingCred(); grant > 0 {
		if err := f.ledger.Mint(f.addr, caller, grant); err != nil {
			return 0, payment, fmt.Errorf("granting starting cred: %w", err)
		}
	}

	refund = payment - cost
	slog.Info("clone created",
		"clone_id", cloneID, "owner", caller, "cost", cost, "refund", refund)
	f.journal.Append(event.New(event.TypeCloneCreated, map[string]any{
		"cloneId": cloneID, "owner": caller,
	}))
	return cloneID, refund, nil
}

// TreasuryReceived returns the total base-token units forwarded to the
// treasury by clone sales.
func (f *Facility) TreasuryReceived() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.treasuryReceived
}

// CloneData assembles the full public view of a clone. The owner is read
// from the clone registry, which is the single source of truth for it.
func (f *Facility) CloneData(id uint64) (model.CloneData, error) {
	owner, err := f.clones.OwnerOf(id)
	if err != nil {
		return model.CloneData{}, ErrNotFound
	}
	uri, _ := f.clones.TokenURI(id)

	f.mu.RLock()
	defer f.mu.RUnlock()
	st, ok := f.states[id]
	if !ok {
		return model.CloneData{}, ErrNotFound
	}
	return model.CloneData{
		ID:      id,
		Owner:   owner,
		URI:     uri,
		Stats:   st.stats,
		ForSale: st.forSale,
		Price:   st.price,
	}, nil
}

// CloneURI returns the metadata URI of a clone.
func (f *Facility) CloneURI(id uint64) (string, error) {
	uri, err := f.clones.TokenURI(id)
	if err != nil {
		return "", ErrNotFound
	}
	return uri, nil
}

// ChangeURI replaces a clone's metadata URI. Game contracts only: URI
// changes are gameplay outcomes, not direct user actions.
func (f *Facility) ChangeURI(caller model.Address, id uint64, uri string) error {
	if !f.access.IsGameContract(caller) {
		return ErrUnauthorized
	}
	if err := f.clones.SetTokenURI(f.addr, id, uri); err != nil {
		return ErrNotFound
	}
	f.journal.Append(event.New(event.TypeCloneURIChanged, map[string]any{
		"cloneId": id, "uri": uri,
	}))
	return nil
}

// IncreaseStat raises one stat of a clone by delta. Game contracts only.
func (f *Facility) IncreaseStat(caller model.Address, id uint64, stat model.Stat, delta int32) error {
	if !f.access.IsGameContract(caller) {
		return ErrUnauthorized
	}
	if !stat.Valid() || delta < 0 {
		return ErrInvalidStat
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[id]
	if !ok {
		return ErrNotFound
	}
	st.stats[stat] += delta

	f.journal.Append(event.New(event.TypeCloneStatChanged, map[string]any{
		"cloneId": id, "stat": stat.String(), "value": st.stats[stat],
	}))
	return nil
}

// DecreaseStat lowers one stat of a clone by delta, flooring at 0.
// Game contracts only.
func (f *Facility) DecreaseStat(caller model.Address, id uint64, stat model.Stat, delta int32) error {
	if !f.access.IsGameContract(caller) {
		return ErrUnauthorized
	}
	if !stat.Valid() || delta < 0 {
		return ErrInvalidStat
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[id]
	if !ok {
		return ErrNotFound
	}
	st.stats[stat] -= delta
	if st.stats[stat] < 0 {
		st.stats[stat] = 0
	}

	f.journal.Append(event.New(event.TypeCloneStatChanged, map[string]any{
		"cloneId": id, "stat": stat.String(), "value": st.stats[stat],
	}))
	return nil
}

// SetSaleState marks a clone listed or unlisted. Game contracts only: the
// market is the component that writes it.
func (f *Facility) SetSaleState(caller model.Address, id uint64, forSale bool, price int64) error {
	if !f.access.IsGameContract(caller) {
		return ErrUnauthorized
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[id]
	if !ok {
		return ErrNotFound
	}
	st.forSale = forSale
	st.price = price
	return nil
}

// Snapshot captures per-clone game data for persistence.
type Snapshot struct {
	States           map[uint64]model.CloneData // owner/URI fields unused
	TreasuryReceived int64
}

// Snapshot returns a copy of the facility-owned clone data.
func (f *Facility) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	states := make(map[uint64]model.CloneData, len(f.states))
	for id, st := range f.states {
		states[id] = model.CloneData{
			ID:      id,
			Stats:   st.stats,
			ForSale: st.forSale,
			Price:   st.price,
		}
	}
	return Snapshot{States: states, TreasuryReceived: f.treasuryReceived}
}

// Restore replaces facility state with a saved snapshot.
func (f *Facility) Restore(s Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = make(map[uint64]*cloneState, len(s.States))
	for id, data := range s.States {
		f.states[id] = &cloneState{
			stats:   data.Stats,
			forSale: data.ForSale,
			price:   data.Price,
		}
	}
	f.treasuryReceived = s.TreasuryReceived
}
