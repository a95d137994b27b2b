package models

import "strings"

// Phase tags a season stage. The vocabulary is fixed; free-text and legacy
// labels normalize onto it via a case-insensitive synonym table.
type Phase string

const (
	PhasePreparation Phase = "preparation"
	PhaseBuild       Phase = "build"
	PhasePeak        Phase = "peak"
)

// Phases lists the canonical tags in season order.
var Phases = []Phase{PhasePreparation, PhaseBuild, PhasePeak}

var phaseSynonyms = map[Phase][]string{
	PhasePreparation: {"preparation", "prep", "pre", "pre season", "preseason", "pre-season"},
	PhaseBuild:       {"build", "mid", "mid season", "midseason", "mid-season"},
	PhasePeak:        {"peak", "before", "before tournament", "before-tournament"},
}

// NormalizePhase resolves a raw label to a canonical phase. Unrecognized
// input defaults to preparation; this is informational grouping, not a
// security boundary.
func NormalizePhase(raw string) Phase {
	needle := strings.ToLower(strings.TrimSpace(raw))
	for phase, syns := range phaseSynonyms {
		for _, s := range syns {
			if needle == s {
				return phase
			}
		}
	}
	return PhasePreparation
}

// Valid returns true when the phase is one of the canonical tags.
func (p Phase) Valid() bool {
	switch p {
	case PhasePreparation, PhaseBuild, PhasePeak:
		return true
	default:
		return false
	}
}
