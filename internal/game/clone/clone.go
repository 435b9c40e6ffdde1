package clone

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/udisondev/starseekers/internal/game/event"
	"github.com/udisondev/starseekers/internal/game/registry"
	"github.com/udisondev/starseekers/internal/model"
)

// Clone registry errors.
var (
	ErrUnauthorized = errors.New("caller is not a game contract")
	ErrNotFound     = errors.New("clone does not exist")
	ErrNotOwner     = errors.New("not clone owner")
	ErrNotApproved  = errors.New("transfer not approved")
)

// Registry owns clone identity: sequential IDs, ownership, metadata URIs and
// operator approvals. Clones are never destroyed; IDs start at 1 and are
// never reused. Mutations other than approvals are restricted to registered
// game contracts.
type Registry struct {
	mu        sync.RWMutex
	nextID    uint64
	owners    map[uint64]model.Address
	uris      map[uint64]string
	approvals map[model.Address]map[model.Address]bool

	access  *registry.Registry
	journal *event.Journal
}

// NewRegistry creates an empty clone registry gated by the access registry.
func NewRegistry(access *registry.Registry, journal *event.Journal) *Registry {
	return &Registry{
		nextID:    1,
		owners:    make(map[uint64]model.Address, 32),
		uris:      make(map[uint64]string, 32),
		approvals: make(map[model.Address]map[model.Address]bool, 8),
		access:    access,
		journal:   journal,
	}
}

// Mint assigns the next clone ID to owner with the given metadata URI.
// Game contracts only.
func (r *Registry) Mint(caller, owner model.Address, uri string) (uint64, error) {
	if !r.access.IsGameContract(caller) {
		return 0, ErrUnauthorized
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.owners[id] = owner
	r.uris[id] = uri

	slog.Info("clone minted", "clone_id", id, "owner", owner)
	return id, nil
}

// OwnerOf returns the owner of the clone.
func (r *Registry) OwnerOf(id uint64) (model.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[id]
	if !ok {
		return model.ZeroAddress, ErrNotFound
	}
	return owner, nil
}

// Exists reports whether the clone has been minted.
func (r *Registry) Exists(id uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.owners[id]
	return ok
}

// Count returns the number of minted clones.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners)
}

// TokenURI returns the metadata URI of the clone.
func (r *Registry) TokenURI(id uint64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.owners[id]; !ok {
		return "", ErrNotFound
	}
	return r.uris[id], nil
}

// SetTokenURI replaces the metadata URI. Game contracts only.
func (r *Registry) SetTokenURI(caller model.Address, id uint64, uri string) error {
	if !r.access.IsGameContract(caller) {
		return ErrUnauthorized
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[id]; !ok {
		return ErrNotFound
	}
	r.uris[id] = uri
	return nil
}

// SetApprovalForAll lets owner grant or revoke operator's right to transfer
// any of their clones. The market requires this before listing.
func (r *Registry) SetApprovalForAll(owner, operator model.Address, approved bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byOwner, ok := r.approvals[owner]
	if !ok {
		byOwner = make(map[model.Address]bool, 2)
		r.approvals[owner] = byOwner
	}
	if approved {
		byOwner[operator] = true
	} else {
		delete(byOwner, operator)
	}
}

// IsApprovedForAll reports whether operator may transfer owner's clones.
func (r *Registry) IsApprovedForAll(owner, operator model.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.approvals[owner][operator]
}

// TransferFrom moves clone ownership from one address to another on behalf
// of the calling game contract. The caller must be approved by the current
// owner, and from must actually own the clone.
func (r *Registry) TransferFrom(caller, from, to model.Address, id uint64) error {
	if !r.access.IsGameContract(caller) {
		return ErrUnauthorized
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[id]
	if !ok {
		return ErrNotFound
	}
	if owner != from {
		return ErrNotOwner
	}
	if !r.approvals[owner][caller] {
		return ErrNotApproved
	}
	r.owners[id] = to

	slog.Info("clone transferred", "clone_id", id, "from", from, "to", to)
	return nil
}

// Snapshot captures identity state for persistence. Approvals are transient
// and excluded.
type Snapshot struct {
	NextID uint64
	Owners map[uint64]model.Address
	URIs   map[uint64]string
}

// Snapshot returns a copy of the durable clone-identity state.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owners := make(map[uint64]model.Address, len(r.owners))
	uris := make(map[uint64]string, len(r.uris))
	for id, owner := range r.owners {
		owners[id] = owner
		uris[id] = r.uris[id]
	}
	return Snapshot{NextID: r.nextID, Owners: owners, URIs: uris}
}

// Restore replaces the clone-identity state with a saved snapshot.
func (r *Registry) Restore(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID = s.NextID
	if r.nextID == 0 {
		r.nextID = 1
	}
	r.owners = make(map[uint64]model.Address, len(s.Owners))
	r.uris = make(map[uint64]string, len(s.Owners))
	for id, owner := range s.Owners {
		r.owners[id] = owner
		r.uris[id] = s.URIs[id]
	}
}
