// Package testutil provides shared fixtures for the game economy tests:
// a fully wired world, a manual clock and a settable price feed.
package testutil

import (
	"testing"

	"github.com/udisondev/starseekers/internal/game"
	"github.com/udisondev/starseekers/internal/game/event"
	"github.com/udisondev/starseekers/internal/game/pricefeed"
	"github.com/udisondev/starseekers/internal/model"
)

// Well-known test identities.
var (
	Admin      = model.DeriveAddress("test/admin")
	Federation = model.DeriveAddress("test/federation")
	PlayerOne  = model.DeriveAddress("test/player-one")
	PlayerTwo  = model.DeriveAddress("test/player-two")
)

// DefaultPriceCents is the price feed rate used by test worlds:
// $20.00 per base token, making a $10.00 clone cost half a token.
const DefaultPriceCents int64 = 2000

// Fixture bundles a wired world with the knobs tests turn.
type Fixture struct {
	*game.World
	Clock *Clock
	Feed  *pricefeed.Static
}

// NewWorld builds a wired world with a fake clock and a static price feed.
// The setup's registration events are drained so tests start with an empty
// journal.
func NewWorld(t *testing.T) *Fixture {
	t.Helper()

	clock := NewClock()
	feed := pricefeed.NewStatic(DefaultPriceCents)
	w := game.NewWorld(game.Options{
		Admin:      Admin,
		Federation: Federation,
		Feed:       feed,
		Now:        clock.Now,
	})
	w.Journal.Drain()

	return &Fixture{World: w, Clock: clock, Feed: feed}
}

// CreateClone mints a clone for owner with exact payment and fails the test
// on any error. Returns the new clone ID.
func (f *Fixture) CreateClone(t *testing.T, owner model.Address) uint64 {
	t.Helper()

	cost, err := f.Facility.CloneCostInBaseToken()
	if err != nil {
		t.Fatalf("CloneCostInBaseToken() error: %v", err)
	}
	id, refund, err := f.Facility.Create(owner, "https://test.url", cost)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if refund != 0 {
		t.Fatalf("Create() refund = %d with exact payment; want 0", refund)
	}
	return id
}

// AddSkill stores a skill definition as the admin and returns its ID.
func (f *Fixture) AddSkill(t *testing.T, skill model.Skill) uint32 {
	t.Helper()

	id, err := f.Skills.AddSkill(Admin, skill)
	if err != nil {
		t.Fatalf("AddSkill(%q) error: %v", skill.Name, err)
	}
	return id
}

// LastEvent fails the test unless the journal's newest event has the given
// type, and returns it.
func (f *Fixture) LastEvent(t *testing.T, typ string) event.Event {
	t.Helper()

	e, ok := f.Journal.Last()
	if !ok {
		t.Fatalf("journal empty; want %s event", typ)
	}
	if e.Type != typ {
		t.Fatalf("last event = %s; want %s", e.Type, typ)
	}
	return e
}
