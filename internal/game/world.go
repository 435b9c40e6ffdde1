// Package game wires the Star Seekers economy components together the way
// the on-chain deployment does: every component gets a stable address and is
// registered in the access registry under its contract name.
package game

import (
	"time"

	"github.com/udisondev/starseekers/internal/game/clone"
	"github.com/udisondev/starseekers/internal/game/cred"
	"github.com/udisondev/starseekers/internal/game/event"
	"github.com/udisondev/starseekers/internal/game/facility"
	"github.com/udisondev/starseekers/internal/game/learning"
	"github.com/udisondev/starseekers/internal/game/market"
	"github.com/udisondev/starseekers/internal/game/pricefeed"
	"github.com/udisondev/starseekers/internal/game/registry"
	"github.com/udisondev/starseekers/internal/game/skills"
	"github.com/udisondev/starseekers/internal/model"
)

// Contract names used in the access registry.
const (
	ContractSkills          = "Skills"
	ContractClone           = "Clone"
	ContractCloneMarket     = "CloneMarket"
	ContractCloningFacility = "CloningFacility"
	ContractLearning        = "Learning"
	ContractCred            = "CRED"
)

// Options configures a new world.
type Options struct {
	Admin      model.Address
	Federation model.Address
	Feed       pricefeed.Feed
	Now        func() time.Time // nil means time.Now
}

// World is the fully wired set of economy components sharing one access
// registry and one event journal.
type World struct {
	Journal  *event.Journal
	Registry *registry.Registry
	Cred     *cred.Ledger
	Clones   *clone.Registry
	Skills   *skills.Catalog
	Facility *facility.Facility
	Learning *learning.Engine
	Market   *market.Market
}

// NewWorld constructs and registers all components. The admin performs the
// registrations, so Options.Admin must be the acting administrator.
func NewWorld(opts Options) *World {
	if opts.Feed == nil {
		opts.Feed = pricefeed.NewStatic(2000)
	}

	journal := event.NewJournal()
	access := registry.New(opts.Admin, opts.Federation, opts.Feed, journal)

	ledger := cred.NewLedger(access, journal)
	clones := clone.NewRegistry(access, journal)
	catalog := skills.NewCatalog(access, journal)

	facilityAddr := model.DeriveAddress("contract/" + ContractCloningFacility)
	fac := facility.New(facilityAddr, access, clones, ledger, journal)

	learningAddr := model.DeriveAddress("contract/" + ContractLearning)
	engine := learning.NewEngine(learningAddr, access, fac, catalog, journal, opts.Now)

	marketAddr := model.DeriveAddress("contract/" + ContractCloneMarket)
	mkt := market.New(marketAddr, access, clones, fac, ledger, engine, journal)

	// Registration mirrors the deployment sequence: components that call
	// authorized hooks must be game contracts before first use.
	admin := opts.Admin
	_ = access.AddContract(admin, ContractSkills, model.DeriveAddress("contract/"+ContractSkills))
	_ = access.AddContract(admin, ContractClone, model.DeriveAddress("contract/"+ContractClone))
	_ = access.AddContract(admin, ContractCred, model.DeriveAddress("contract/"+ContractCred))
	_ = access.AddContract(admin, ContractCloningFacility, facilityAddr)
	_ = access.AddContract(admin, ContractLearning, learningAddr)
	_ = access.AddContract(admin, ContractCloneMarket, marketAddr)

	return &World{
		Journal:  journal,
		Registry: access,
		Cred:     ledger,
		Clones:   clones,
		Skills:   catalog,
		Facility: fac,
		Learning: engine,
		Market:   mkt,
	}
}
