package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/udisondev/starseekers/internal/game/event"
	"github.com/udisondev/starseekers/internal/game/pricefeed"
	"github.com/udisondev/starseekers/internal/game/registry"
	"github.com/udisondev/starseekers/internal/game/skills"
	"github.com/udisondev/starseekers/internal/model"
)

const seedYAML = `skills:
  - name: Astrogation
    primary_attribute: intelligence
    secondary_attribute: perception
    multiplier: 1
    icon: astrogation.png
  - name: Jump Navigation
    primary_attribute: intelligence
    secondary_attribute: memory
    multiplier: 2
    depends_on: Astrogation
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skills.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing seed file: %v", err)
	}
	return path
}

func newCatalog(admin model.Address) *skills.Catalog {
	journal := event.NewJournal()
	federation := model.DeriveAddress("test/federation")
	access := registry.New(admin, federation, pricefeed.NewStatic(2000), journal)
	return skills.NewCatalog(access, journal)
}

func TestSeedSkills(t *testing.T) {
	t.Parallel()

	admin := model.DeriveAddress("test/admin")
	catalog := newCatalog(admin)

	added, err := SeedSkills(writeSeed(t, seedYAML), catalog, admin)
	if err != nil {
		t.Fatalf("SeedSkills() error: %v", err)
	}
	if added != 2 {
		t.Fatalf("SeedSkills() added = %d; want 2", added)
	}

	base := catalog.SkillByName("Astrogation")
	if base.ID == 0 {
		t.Fatal("Astrogation not in catalog")
	}
	if base.PrimaryAttribute != model.StatIntelligence || base.SecondaryAttribute != model.StatPerception {
		t.Errorf("Astrogation attributes = %v/%v", base.PrimaryAttribute, base.SecondaryAttribute)
	}

	dep := catalog.SkillByName("Jump Navigation")
	if !dep.Dependency || dep.DependencyID != base.ID {
		t.Errorf("Jump Navigation dependency = %v/%d; want true/%d", dep.Dependency, dep.DependencyID, base.ID)
	}
	if dep.Multiplier != 2 {
		t.Errorf("Jump Navigation multiplier = %d; want 2", dep.Multiplier)
	}
}

func TestSeedSkillsIdempotent(t *testing.T) {
	t.Parallel()

	admin := model.DeriveAddress("test/admin")
	catalog := newCatalog(admin)
	path := writeSeed(t, seedYAML)

	if _, err := SeedSkills(path, catalog, admin); err != nil {
		t.Fatalf("first SeedSkills() error: %v", err)
	}
	added, err := SeedSkills(path, catalog, admin)
	if err != nil {
		t.Fatalf("second SeedSkills() error: %v", err)
	}
	if added != 0 {
		t.Errorf("second SeedSkills() added = %d; want 0", added)
	}
	if got := catalog.Count(); got != 2 {
		t.Errorf("catalog count = %d; want 2", got)
	}
}

func TestSeedSkillsErrors(t *testing.T) {
	t.Parallel()

	admin := model.DeriveAddress("test/admin")

	tests := []struct {
		name string
		yaml string
	}{
		{"unknown attribute", "skills:\n  - name: Bad\n    primary_attribute: luck\n    secondary_attribute: memory\n"},
		{"unknown dependency", "skills:\n  - name: Orphan\n    primary_attribute: memory\n    secondary_attribute: charisma\n    depends_on: Missing\n"},
		{"missing name", "skills:\n  - primary_attribute: memory\n    secondary_attribute: charisma\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			catalog := newCatalog(admin)
			if _, err := SeedSkills(writeSeed(t, tt.yaml), catalog, admin); err == nil {
				t.Error("SeedSkills() succeeded; want error")
			}
		})
	}
}
