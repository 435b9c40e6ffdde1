package learning

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/starseekers/internal/game/event"
	"github.com/udisondev/starseekers/internal/game/facility"
	"github.com/udisondev/starseekers/internal/game/registry"
	"github.com/udisondev/starseekers/internal/game/skills"
	"github.com/udisondev/starseekers/internal/model"
)

// Training engine errors.
var (
	ErrNotOwner         = errors.New("clone owner only")
	ErrMaintenance      = errors.New("game is in maintenance")
	ErrForSale          = errors.New("clone is listed for sale")
	ErrInvalidSkill     = errors.New("skill does not exist")
	ErrAlreadyTraining  = errors.New("clone is already training")
	ErrNotTraining      = errors.New("clone is not training")
	ErrNotFinished      = errors.New("training not finished")
	ErrDependencyNotMet = errors.New("dependent skill must be level 5 before training")
)

// Accrual arithmetic. The rate is fixed so that a clone with the default
// primary stat of 10 earns 31.25 points per second: 600 seconds of training
// at multiplier 1 banks exactly 18750 points, one full level.
const (
	// BasePointsPerLevel is the cost of one level at multiplier 1, scaled
	// by the multiplier and the level being trained.
	BasePointsPerLevel int64 = 18750

	// rateNum/rateDen give points per second per point of primary stat.
	rateNum int64 = 25
	rateDen int64 = 8

	// DependencyLevel is the level a dependency skill must reach before a
	// dependent skill unlocks.
	DependencyLevel int32 = 5
)

// Engine is the per-clone skill-training state machine. A clone is Idle or
// Training exactly one skill; experience accrues from elapsed time and the
// skill's primary attribute stat, and survives early stops in the
// per-clone-per-skill learning log.
type Engine struct {
	mu     sync.RWMutex
	states map[uint64]model.LearningState
	logs   map[uint64]map[uint32]*model.LearningLog

	addr     model.Address
	access   *registry.Registry
	facility *facility.Facility
	catalog  *skills.Catalog
	journal  *event.Journal
	now      func() time.Time
}

// NewEngine creates a training engine. now supplies the clock; pass
// time.Now outside tests.
func NewEngine(addr model.Address, access *registry.Registry, fac *facility.Facility, catalog *skills.Catalog, journal *event.Journal, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		states:   make(map[uint64]model.LearningState, 32),
		logs:     make(map[uint64]map[uint32]*model.LearningLog, 32),
		addr:     addr,
		access:   access,
		facility: fac,
		catalog:  catalog,
		journal:  journal,
		now:      now,
	}
}

// Address returns the engine's component address.
func (e *Engine) Address() model.Address {
	return e.addr
}

// pointsNeeded is the total points required to finish the level currently
// being trained.
func pointsNeeded(level, multiplier int32) int64 {
	if multiplier < 1 {
		multiplier = 1
	}
	return BasePointsPerLevel * int64(multiplier) * int64(level+1)
}

// pointsFor converts elapsed training seconds into points at the given
// primary stat. Integer arithmetic keeps the calibration exact.
func pointsFor(elapsedSeconds int64, stat int32) int64 {
	if stat < 1 {
		stat = 1
	}
	return elapsedSeconds * rateNum * int64(stat) / rateDen
}

// durationFor is the training time needed to earn remaining points at the
// given primary stat, rounded up to whole seconds.
func durationFor(remaining int64, stat int32) time.Duration {
	if remaining <= 0 {
		return 0
	}
	if stat < 1 {
		stat = 1
	}
	num := remaining * rateDen
	den := rateNum * int64(stat)
	secs := (num + den - 1) / den
	return time.Duration(secs) * time.Second
}

// checkClone runs the shared preconditions: caller owns the clone, the game
// is not in maintenance and the clone is not listed for sale. Returns the
// clone data for further checks.
func (e *Engine) checkClone(caller model.Address, cloneID uint64) (model.CloneData, error) {
	data, err := e.facility.CloneData(cloneID)
	if err != nil {
		return model.CloneData{}, err
	}
	if data.Owner != caller {
		return model.CloneData{}, ErrNotOwner
	}
	if e.access.Maintenance() {
		return model.CloneData{}, ErrMaintenance
	}
	if data.ForSale {
		return model.CloneData{}, ErrForSale
	}
	return data, nil
}

func (e *Engine) log(cloneID uint64, skillID uint32) *model.LearningLog {
	bySkill, ok := e.logs[cloneID]
	if !ok {
		bySkill = make(map[uint32]*model.LearningLog, 4)
		e.logs[cloneID] = bySkill
	}
	entry, ok := bySkill[skillID]
	if !ok {
		entry = &model.LearningLog{}
		bySkill[skillID] = entry
	}
	return entry
}

// StartLearning moves the clone from Idle to Training the given skill.
// Progress resumes at the stored skill level, and points banked by an
// earlier stop shorten the remaining duration.
func (e *Engine) StartLearning(caller model.Address, cloneID uint64, skillID uint32) (model.LearningState, error) {
	data, err := e.checkClone(caller, cloneID)
	if err != nil {
		return model.LearningState{}, err
	}

	skill := e.catalog.SkillByID(skillID)
	if skill.IsZero() {
		return model.LearningState{}, ErrInvalidSkill
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.states[cloneID].IsLearning {
		return model.LearningState{}, ErrAlreadyTraining
	}
	if skill.Dependency {
		dep := e.log(cloneID, skill.DependencyID)
		if dep.SkillLevel < DependencyLevel {
			return model.LearningState{}, ErrDependencyNotMet
		}
	}

	entry := e.log(cloneID, skillID)
	need := pointsNeeded(entry.SkillLevel, skill.Multiplier)
	remaining := need - entry.LearningPoints
	stat := data.Stats[skill.PrimaryAttribute]

	start := e.now()
	state := model.LearningState{
		Learning:   skillID,
		IsLearning: true,
		StartTime:  start,
		EndTime:    start.Add(durationFor(remaining, stat)),
	}
	e.states[cloneID] = state

	slog.Info("training started",
		"clone_id", cloneID, "skill_id", skillID,
		"level", entry.SkillLevel, "ends_at", state.EndTime)
	e.emitState(cloneID, state)
	return state, nil
}

// CompleteLearning finishes the active training once its end time has
// passed: the skill gains exactly one level, banked points reset to 0, the
// skill's primary attribute stat grows by one and the clone returns to Idle.
func (e *Engine) CompleteLearning(caller model.Address, cloneID uint64) (model.LearningState, error) {
	if _, err := e.checkClone(caller, cloneID); err != nil {
		return model.LearningState{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.states[cloneID]
	if !state.IsLearning {
		return model.LearningState{}, ErrNotTraining
	}
	if e.now().Before(state.EndTime) {
		return model.LearningState{}, ErrNotFinished
	}

	skillID := state.Learning
	entry := e.log(cloneID, skillID)
	entry.SkillLevel++
	entry.LearningPoints = 0

	idle := model.LearningState{}
	e.states[cloneID] = idle

	// Training outcome: the trained attribute improves. The facility hook
	// authorizes the engine as a game contract.
	skill := e.catalog.SkillByID(skillID)
	if skill.ID != 0 {
		if err := e.facility.IncreaseStat(e.addr, cloneID, skill.PrimaryAttribute, 1); err != nil {
			slog.Error("training stat bump failed",
				"clone_id", cloneID, "skill_id", skillID, "err", err)
		}
	}

	slog.Info("training completed",
		"clone_id", cloneID, "skill_id", skillID, "level", entry.SkillLevel)
	e.emitState(cloneID, idle)
	return idle, nil
}

// StopLearning aborts the active training early, banking points for the
// elapsed share of the planned window. The skill level never changes here.
func (e *Engine) StopLearning(caller model.Address, cloneID uint64) (model.LearningState, error) {
	data, err := e.checkClone(caller, cloneID)
	if err != nil {
		return model.LearningState{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.states[cloneID]
	if !state.IsLearning {
		return model.LearningState{}, ErrNotTraining
	}

	skill := e.catalog.SkillByID(state.Learning)
	entry := e.log(cloneID, state.Learning)

	until := e.now()
	if until.After(state.EndTime) {
		until = state.EndTime
	}
	elapsed := int64(until.Sub(state.StartTime) / time.Second)
	if elapsed > 0 {
		stat := data.Stats[skill.PrimaryAttribute]
		entry.LearningPoints += pointsFor(elapsed, stat)
		if need := pointsNeeded(entry.SkillLevel, skill.Multiplier); entry.LearningPoints > need {
			entry.LearningPoints = need
		}
	}

	idle := model.LearningState{}
	e.states[cloneID] = idle

	slog.Info("training stopped",
		"clone_id", cloneID, "skill_id", state.Learning,
		"points", entry.LearningPoints)
	e.emitState(cloneID, idle)
	return idle, nil
}

// LearningState returns the clone's current training slot.
func (e *Engine) LearningState(cloneID uint64) model.LearningState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.states[cloneID]
}

// LearningLog returns the clone's accumulated progress in one skill.
func (e *Engine) LearningLog(cloneID uint64, skillID uint32) model.LearningLog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if entry, ok := e.logs[cloneID][skillID]; ok {
		return *entry
	}
	return model.LearningLog{}
}

func (e *Engine) emitState(cloneID uint64, state model.LearningState) {
	e.journal.Append(event.New(event.TypeLearningStateUpdated, map[string]any{
		"cloneId":    cloneID,
		"learning":   state.Learning,
		"isLearning": state.IsLearning,
		"startTime":  state.StartTime,
		"endTime":    state.EndTime,
	}))
}

// Snapshot captures training state and logs for persistence.
type Snapshot struct {
	States map[uint64]model.LearningState
	Logs   map[uint64]map[uint32]model.LearningLog
}

// Snapshot returns a copy of all training state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	states := make(map[uint64]model.LearningState, len(e.states))
	for id, st := range e.states {
		if st.IsLearning {
			states[id] = st
		}
	}
	logs := make(map[uint64]map[uint32]model.LearningLog, len(e.logs))
	for id, bySkill := range e.logs {
		entryCopy := make(map[uint32]model.LearningLog, len(bySkill))
		for skillID, entry := range bySkill {
			entryCopy[skillID] = *entry
		}
		logs[id] = entryCopy
	}
	return Snapshot{States: states, Logs: logs}
}

// Restore replaces training state with a saved snapshot.
func (e *Engine) Restore(s Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.states = make(map[uint64]model.LearningState, len(s.States))
	for id, st := range s.States {
		e.states[id] = st
	}
	e.logs = make(map[uint64]map[uint32]*model.LearningLog, len(s.Logs))
	for id, bySkill := range s.Logs {
		entries := make(map[uint32]*model.LearningLog, len(bySkill))
		for skillID, entry := range bySkill {
			cp := entry
			entries[skillID] = &cp
		}
		e.logs[id] = entries
	}
}
