package analytics

import "strings"

// MuscleGroup is one of the six canonical groups analytics report on.
// GroupOther collects unmapped names; it is tracked but never emitted.
type MuscleGroup string

const (
	GroupChest     MuscleGroup = "Chest"
	GroupBack      MuscleGroup = "Back"
	GroupShoulders MuscleGroup = "Shoulders"
	GroupArms      MuscleGroup = "Arms"
	GroupLegs      MuscleGroup = "Legs"
	GroupCore      MuscleGroup = "Core"
	GroupOther     MuscleGroup = "Other"
)

// CanonicalGroups is the fixed emission order for muscle-group analytics.
var CanonicalGroups = []MuscleGroup{
	GroupChest, GroupBack, GroupShoulders, GroupArms, GroupLegs, GroupCore,
}

// muscleSynonyms maps raw muscle names (as stored on catalog or custom
// exercises) onto canonical groups. Lookup is case-insensitive.
var muscleSynonyms = map[string]MuscleGroup{
	"chest":       GroupChest,
	"pecs":        GroupChest,
	"pectorals":   GroupChest,
	"upper chest": GroupChest,
	"lower chest": GroupChest,

	"back":       GroupBack,
	"lats":       GroupBack,
	"latissimus": GroupBack,
	"traps":      GroupBack,
	"trapezius":  GroupBack,
	"rhomboids":  GroupBack,
	"lower back": GroupBack,
	"upper back": GroupBack,
	"erectors":   GroupBack,

	"shoulders":   GroupShoulders,
	"delts":       GroupShoulders,
	"deltoids":    GroupShoulders,
	"front delts": GroupShoulders,
	"side delts":  GroupShoulders,
	"rear delts":  GroupShoulders,

	"arms":       GroupArms,
	"biceps":     GroupArms,
	"triceps":    GroupArms,
	"forearms":   GroupArms,
	"brachialis": GroupArms,

	"legs":        GroupLegs,
	"quads":       GroupLegs,
	"quadriceps":  GroupLegs,
	"hamstrings":  GroupLegs,
	"glutes":      GroupLegs,
	"calves":      GroupLegs,
	"adductors":   GroupLegs,
	"abductors":   GroupLegs,
	"hip flexors": GroupLegs,

	"core":       GroupCore,
	"abs":        GroupCore,
	"abdominals": GroupCore,
	"obliques":   GroupCore,
}

// canonicalGroup maps a raw muscle name onto its canonical group,
// falling back to GroupOther for unmapped names.
func canonicalGroup(raw string) MuscleGroup {
	if g, ok := muscleSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return g
	}
	return GroupOther
}
