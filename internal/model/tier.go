package model

// GroupID identifies a group/role on the social platform.
type GroupID string

// Level is an applied permission level. LevelNone is below every configured
// tier; higher values outrank lower ones.
type Level int

// LevelNone is the implicit level for players with no matching group.
const LevelNone Level = 0

// Tier is one configured permission tier. A tier with no groups is disabled
// and can never be granted.
type Tier struct {
	Name   string
	Level  Level
	Groups []GroupID
}

// Matches reports whether the tier's group set intersects the membership.
func (t Tier) Matches(membership []GroupID) bool {
	for _, g := range t.Groups {
		for _, m := range membership {
			if g == m {
				return true
			}
		}
	}
	return false
}

// TierMap is the ordered tier configuration, lowest tier first.
type TierMap struct {
	Tiers []Tier
}

// HighestFirst returns the tiers ordered from highest level to lowest.
func (tm TierMap) HighestFirst() []Tier {
	out := make([]Tier, len(tm.Tiers))
	copy(out, tm.Tiers)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// NameOf returns the configured name for a level, or "none".
func (tm TierMap) NameOf(level Level) string {
	for _, t := range tm.Tiers {
		if t.Level == level {
			return t.Name
		}
	}
	return "none"
}
