package model

// NoDependency is the dependency sentinel: skill IDs start at 1, so a
// DependencyID of 0 always means "none".
const NoDependency uint32 = 0

// Skill is an admin-defined trainable capability. Name is a unique secondary
// lookup key; removal blanks the name but keeps the record addressable by ID.
type Skill struct {
	ID                 uint32
	Name               string
	PrimaryAttribute   Stat
	SecondaryAttribute Stat
	Dependency         bool
	DependencyID       uint32
	Multiplier         int32
	Icon               string
}

// IsZero reports whether the skill is the absent-record sentinel returned by
// catalog lookups that find nothing.
func (s Skill) IsZero() bool {
	return s.ID == 0 && s.Name == ""
}
