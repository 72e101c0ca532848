package absence

import "github.com/shopspring/decimal"

// =============================================================================
// RISK CLASSIFICATION - Fixed thresholds of the 180-day rolling cap
// =============================================================================

// CapDays is the rolling absence cap: at or past 180 days in any trailing
// 365-day window, continuous residence is broken.
const CapDays = 180

// Classification thresholds. These are constants of the policy, not
// configuration: a jurisdiction with different numbers is a different
// policy, not a parameter.
const (
	ThresholdCaution = 120
	ThresholdAmber   = 150
	ThresholdRed     = 170
)

// RiskLevel is an ordered severity scale for a rolling absence total.
type RiskLevel int

const (
	RiskSafe RiskLevel = iota
	RiskCaution
	RiskAmber
	RiskRed
	RiskBreach
)

func (r RiskLevel) String() string {
	switch r {
	case RiskBreach:
		return "BREACH"
	case RiskRed:
		return "RED"
	case RiskAmber:
		return "AMBER"
	case RiskCaution:
		return "CAUTION"
	default:
		return "SAFE"
	}
}

// Classify maps an absence-day count to its risk level. The thresholds
// partition the non-negative integers: every count maps to exactly one
// level.
func Classify(days int) RiskLevel {
	switch {
	case days >= CapDays:
		return RiskBreach
	case days >= ThresholdRed:
		return RiskRed
	case days >= ThresholdAmber:
		return RiskAmber
	case days >= ThresholdCaution:
		return RiskCaution
	default:
		return RiskSafe
	}
}

// Buffer returns the travel days still available before breaching the cap,
// clamped at zero.
func Buffer(current int) int {
	if current >= CapDays {
		return 0
	}
	return CapDays - current
}

// =============================================================================
// RISK BUFFER INDEX - Composite 0-100 safety score
// =============================================================================

// BufferIndex computes the Risk Buffer Index: a 0-100 score combining the
// current rolling total with committed future travel. 100 is maximal safety,
// 0 means at or past the cap. Monotonically non-increasing in both inputs.
// Decimal arithmetic keeps the rounding exact.
func BufferIndex(current, futurePlanned int) int {
	remaining := decimal.NewFromInt(int64(CapDays - current - futurePlanned))
	score := remaining.
		Div(decimal.NewFromInt(CapDays)).
		Mul(decimal.NewFromInt(100)).
		Round(0)

	idx := int(score.IntPart())
	if idx < 0 {
		return 0
	}
	if idx > 100 {
		return 100
	}
	return idx
}
