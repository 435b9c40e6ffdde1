// Package data loads game seed files. The skill seed is a YAML catalog
// applied once on first boot; afterwards the admin manages skills in-game.
package data

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/starseekers/internal/game/skills"
	"github.com/udisondev/starseekers/internal/model"
)

type skillSeed struct {
	Name               string `yaml:"name"`
	PrimaryAttribute   string `yaml:"primary_attribute"`
	SecondaryAttribute string `yaml:"secondary_attribute"`
	Multiplier         int32  `yaml:"multiplier"`
	Icon               string `yaml:"icon"`
	// Name of another skill in this file that must reach level 5 first.
	DependsOn string `yaml:"depends_on"`
}

type skillSeedFile struct {
	Skills []skillSeed `yaml:"skills"`
}

// SeedSkills reads the YAML seed at path and adds every skill to the catalog
// as admin. Skills whose name is already in the catalog are skipped, so
// re-running a seed is safe. Dependencies are resolved by name, so a skill
// must appear after the skill it depends on. Returns the number of skills
// added.
func SeedSkills(path string, catalog *skills.Catalog, admin model.Address) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading skill seed %s: %w", path, err)
	}

	var file skillSeedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("parsing skill seed %s: %w", path, err)
	}

	added := 0
	for _, seed := range file.Skills {
		if existing := catalog.SkillByName(seed.Name); existing.ID != model.NoDependency {
			slog.Debug("skill already in catalog, skipping", "name", seed.Name, "id", existing.ID)
			continue
		}
		skill, err := seedToSkill(seed, catalog)
		if err != nil {
			return added, fmt.Errorf("skill %q: %w", seed.Name, err)
		}
		id, err := catalog.AddSkill(admin, skill)
		if err != nil {
			return added, fmt.Errorf("adding skill %q: %w", seed.Name, err)
		}
		slog.Debug("seeded skill", "id", id, "name", seed.Name)
		added++
	}
	return added, nil
}

func seedToSkill(seed skillSeed, catalog *skills.Catalog) (model.Skill, error) {
	if seed.Name == "" {
		return model.Skill{}, fmt.Errorf("missing name")
	}
	primary, err := parseStat(seed.PrimaryAttribute)
	if err != nil {
		return model.Skill{}, err
	}
	secondary, err := parseStat(seed.SecondaryAttribute)
	if err != nil {
		return model.Skill{}, err
	}
	multiplier := seed.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	skill := model.Skill{
		Name:               seed.Name,
		PrimaryAttribute:   primary,
		SecondaryAttribute: secondary,
		Multiplier:         multiplier,
		Icon:               seed.Icon,
	}
	if seed.DependsOn != "" {
		dep := catalog.SkillByName(seed.DependsOn)
		if dep.ID == model.NoDependency {
			return model.Skill{}, fmt.Errorf("depends on unknown skill %q", seed.DependsOn)
		}
		skill.Dependency = true
		skill.DependencyID = dep.ID
	}
	return skill, nil
}

func parseStat(name string) (model.Stat, error) {
	switch name {
	case "intelligence":
		return model.StatIntelligence, nil
	case "memory":
		return model.StatMemory, nil
	case "perception":
		return model.StatPerception, nil
	case "willpower":
		return model.StatWillpower, nil
	case "charisma":
		return model.StatCharisma, nil
	default:
		return 0, fmt.Errorf("unknown attribute %q", name)
	}
}
