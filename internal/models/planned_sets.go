package models

import (
	"strconv"
	"strings"
)

// PlannedSetsKind tags the parsed form of a routine's free-text sets field.
type PlannedSetsKind int

const (
	PlannedFixed PlannedSetsKind = iota // plain integer: "3"
	PlannedRange                        // "3-4", "3–4"
	PlannedText                         // anything else: "AMRAP", "To failure", ""
)

// PlannedSets is the tagged value parsed from a sets/reps free-text field.
// Raw always preserves the original text for display.
type PlannedSets struct {
	Kind PlannedSetsKind
	N    int // Fixed
	Lo   int // Range
	Hi   int // Range
	Raw  string
}

// ParsePlannedSets parses a free-text sets field. Only a plain integer
// yields PlannedFixed; ranges keep their bounds but do not drive placeholder
// counts, and everything else falls through to PlannedText.
func ParsePlannedSets(raw string) PlannedSets {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return PlannedSets{Kind: PlannedFixed, N: n, Raw: raw}
	}

	for _, sep := range []string{"-", "–"} {
		lo, hi, ok := strings.Cut(s, sep)
		if !ok {
			continue
		}
		nLo, errLo := strconv.Atoi(strings.TrimSpace(lo))
		nHi, errHi := strconv.Atoi(strings.TrimSpace(hi))
		if errLo == nil && errHi == nil && nLo > 0 && nHi >= nLo {
			return PlannedSets{Kind: PlannedRange, Lo: nLo, Hi: nHi, Raw: raw}
		}
	}

	return PlannedSets{Kind: PlannedText, Raw: raw}
}

// Count returns the placeholder set count: the fixed value when present,
// otherwise def.
func (p PlannedSets) Count(def int) int {
	if p.Kind == PlannedFixed {
		return p.N
	}
	return def
}
