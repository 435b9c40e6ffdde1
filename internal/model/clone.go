package model

// Stat indexes into a clone's stat vector. Skills reference stats by index
// as their primary/secondary training attributes.
type Stat int32

const (
	StatIntelligence Stat = iota
	StatMemory
	StatPerception
	StatWillpower
	StatCharisma

	NumStats = 5
)

// DefaultStatValue is the value every stat starts at when a clone is minted.
const DefaultStatValue = 10

var statNames = [NumStats]string{
	"intelligence", "memory", "perception", "willpower", "charisma",
}

// String returns the stat name, or "unknown" for an out-of-range index.
func (s Stat) String() string {
	if s < 0 || s >= NumStats {
		return "unknown"
	}
	return statNames[s]
}

// Valid reports whether the stat index is in range.
func (s Stat) Valid() bool {
	return s >= 0 && s < NumStats
}

// StatVector holds a clone's named integer stats. Values floor at 0.
type StatVector [NumStats]int32

// DefaultStats returns a fresh stat vector for a newly minted clone.
func DefaultStats() StatVector {
	var v StatVector
	for i := range v {
		v[i] = DefaultStatValue
	}
	return v
}

// CloneData is the full public view of a clone: identity, ownership,
// metadata, stats and sale state.
type CloneData struct {
	ID      uint64
	Owner   Address
	URI     string
	Stats   StatVector
	ForSale bool
	Price   int64
}
