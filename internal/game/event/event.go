package event

import (
	"sync"
	"time"
)

// Event types emitted by the game components. One type per mutating
// operation, carrying the operation's key arguments for off-chain indexing.
const (
	TypeAddContract           = "AddContract"
	TypeRemoveContract        = "RemoveContract"
	TypeAdminChanged          = "AdminChanged"
	TypeMaintenanceUpdated    = "MaintenanceUpdated"
	TypeSalesTaxUpdated       = "SalesTaxUpdated"
	TypeFederationUpdated     = "FederationUpdated"
	TypeStartingCredUpdated   = "StartingCredUpdated"
	TypePriceFeedUpdated      = "PriceFeedUpdated"
	TypeCredMinted            = "CredMinted"
	TypeCredSpent             = "CredSpent"
	TypeCredTransferred       = "CredTransferred"
	TypeCloneCreated          = "CloneCreated"
	TypeCloneURIChanged       = "CloneUriChanged"
	TypeCloneStatChanged      = "CloneStatChanged"
	TypeSkillAdded            = "SkillAdded"
	TypeSkillRemoved          = "SkillRemoved"
	TypeLearningStateUpdated  = "LearningStateUpdated"
	TypeCloneListed           = "CloneListed"
	TypeCloneListingCancelled = "CloneListingCancelled"
	TypeClonePurchased        = "ClonePurchased"
)

// Event is a domain event produced by a state-changing operation.
// Components never perform I/O themselves; they append events to a Journal
// and the outer layer routes or persists them.
type Event struct {
	Type   string
	At     time.Time
	Fields map[string]any
}

// New builds an event stamped with the current wall-clock time.
func New(typ string, fields map[string]any) Event {
	return Event{Type: typ, At: time.Now(), Fields: fields}
}

// Journal collects domain events in order. Thread-safe.
type Journal struct {
	mu     sync.Mutex
	events []Event
}

// NewJournal returns an empty journal.
func NewJournal() *Journal {
	return &Journal{events: make([]Event, 0, 64)}
}

// Append records an event.
func (j *Journal) Append(e Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
}

// Len returns the number of recorded events.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.events)
}

// Events returns a snapshot of all recorded events.
func (j *Journal) Events() []Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Event, len(j.events))
	copy(out, j.events)
	return out
}

// Drain removes and returns all recorded events, oldest first.
func (j *Journal) Drain() []Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := j.events
	j.events = make([]Event, 0, 64)
	return out
}

// Last returns the most recent event and true, or a zero event and false
// when the journal is empty.
func (j *Journal) Last() (Event, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.events) == 0 {
		return Event{}, false
	}
	return j.events[len(j.events)-1], true
}
