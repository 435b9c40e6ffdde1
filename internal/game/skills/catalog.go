package skills

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/udisondev/starseekers/internal/game/event"
	"github.com/udisondev/starseekers/internal/game/registry"
	"github.com/udisondev/starseekers/internal/model"
)

// ErrInvalidAttribute is returned when a skill definition references a stat
// outside the clone stat vector.
var ErrInvalidAttribute = errors.New("invalid skill attribute")

// Catalog is the admin-curated registry of skill definitions, addressable by
// ID and by name. IDs are assigned sequentially starting at 1; 0 stays free
// as the no-dependency sentinel.
//
// Removal only clears the name index: the record stays retrievable by ID
// with a blanked name, so learning logs that reference the ID keep working.
type Catalog struct {
	mu     sync.RWMutex
	nextID uint32
	byID   map[uint32]model.Skill
	byName map[string]uint32

	access  *registry.Registry
	journal *event.Journal
}

// NewCatalog creates an empty skill catalog gated by the access registry.
func NewCatalog(access *registry.Registry, journal *event.Journal) *Catalog {
	return &Catalog{
		nextID:  1,
		byID:    make(map[uint32]model.Skill, 32),
		byName:  make(map[string]uint32, 32),
		access:  access,
		journal: journal,
	}
}

// AddSkill stores a new skill definition and returns its assigned ID.
// Whatever ID the caller supplied is overwritten. Both training attributes
// must index a real stat; the engine indexes the stat vector with them.
// Admin only.
func (c *Catalog) AddSkill(caller model.Address, skill model.Skill) (uint32, error) {
	if caller != c.access.Admin() {
		return 0, registry.ErrAdminOnly
	}
	if !skill.PrimaryAttribute.Valid() || !skill.SecondaryAttribute.Valid() {
		return 0, ErrInvalidAttribute
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	skill.ID = c.nextID
	c.nextID++
	c.byID[skill.ID] = skill
	c.byName[skill.Name] = skill.ID

	slog.Info("skill added", "skill_id", skill.ID, "name", skill.Name)
	c.journal.Append(event.New(event.TypeSkillAdded, map[string]any{
		"skillId": skill.ID, "name": skill.Name,
	}))
	return skill.ID, nil
}

// RemoveSkill clears the name index for the skill and blanks the stored
// record's name. The record itself stays addressable by ID. Admin only.
func (c *Catalog) RemoveSkill(caller model.Address, id uint32) error {
	if caller != c.access.Admin() {
		return registry.ErrAdminOnly
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	skill, ok := c.byID[id]
	if ok {
		delete(c.byName, skill.Name)
		skill.Name = ""
		c.byID[id] = skill
	}

	slog.Info("skill removed", "skill_id", id)
	c.journal.Append(event.New(event.TypeSkillRemoved, map[string]any{
		"skillId": id,
	}))
	return nil
}

// SkillByID returns the skill stored under id, or a zero-valued skill when
// absent. Callers check Skill.IsZero, not an error.
func (c *Catalog) SkillByID(id uint32) model.Skill {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID[id]
}

// SkillByName returns the skill indexed under name, or a zero-valued skill
// when the name is unknown or was removed.
func (c *Catalog) SkillByName(name string) model.Skill {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byName[name]
	if !ok {
		return model.Skill{}
	}
	return c.byID[id]
}

// Count returns the number of stored skill records, removed ones included.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// Snapshot returns all stored skill records and the next ID, for
// persistence.
func (c *Catalog) Snapshot() (skills []model.Skill, nextID uint32) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	skills = make([]model.Skill, 0, len(c.byID))
	for _, s := range c.byID {
		skills = append(skills, s)
	}
	return skills, c.nextID
}

// Restore replaces the catalog content with saved records. Records with a
// blanked name are kept out of the name index, preserving removal semantics.
func (c *Catalog) Restore(skills []model.Skill, nextID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = make(map[uint32]model.Skill, len(skills))
	c.byName = make(map[string]uint32, len(skills))
	maxID := uint32(0)
	for _, s := range skills {
		c.byID[s.ID] = s
		if s.Name != "" {
			c.byName[s.Name] = s.ID
		}
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	c.nextID = nextID
	if c.nextID <= maxID {
		c.nextID = maxID + 1
	}
	if c.nextID == 0 {
		c.nextID = 1
	}
}
