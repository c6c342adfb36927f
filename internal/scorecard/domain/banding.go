package domain

import "math"

// KPI status bands. A definition with no recorded entry for the period is
// "missing", reported as its own band rather than folded into off_target.
const (
	StatusOnTarget  = "on_target"
	StatusAtRisk    = "at_risk"
	StatusOffTarget = "off_target"
	StatusMissing   = "missing"
)

// atRiskTolerancePct is the adverse-variance band, in percentage points,
// inside which a KPI counts as at-risk instead of off-target.
const atRiskTolerancePct = 10.0

// Classify bands an actual value against its target. Variance is
// direction-aware: for "above" targets a shortfall is adverse, for "below"
// targets an overshoot is. Non-adverse variance is always on_target.
func Classify(direction string, target, actual float64) string {
	if target == 0 {
		switch {
		case actual == 0:
			return StatusOnTarget
		case direction == DirectionBelow:
			if actual < 0 {
				return StatusOnTarget
			}
			return StatusOffTarget
		default:
			if actual > 0 {
				return StatusOnTarget
			}
			return StatusOffTarget
		}
	}

	// The denominator must stay positive: dividing by a negative target
	// would flip the sign of the variance and invert the banding.
	var adversePct float64
	if direction == DirectionBelow {
		adversePct = (actual - target) / math.Abs(target) * 100
	} else {
		adversePct = (target - actual) / math.Abs(target) * 100
	}
	switch {
	case adversePct <= 0:
		return StatusOnTarget
	case adversePct <= atRiskTolerancePct:
		return StatusAtRisk
	default:
		return StatusOffTarget
	}
}

// ClassifyEntry bands a definition's entry, treating an absent entry as
// missing.
func ClassifyEntry(definition KPIDefinition, entry *KPIEntry) string {
	if entry == nil {
		return StatusMissing
	}
	return Classify(definition.TargetDirection, definition.TargetValue, entry.Value)
}
