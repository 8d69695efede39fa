package autotune

import "math"

const (
	// A sample is only an informative probe of the gains when the pilot is
	// demanding at least this fraction of the maximum configured rate.
	demandThreshold = 0.75

	// Firmware decimal-gain scaling: FF and I gains are stored scaled by
	// these factors relative to their physical values.
	ffGainScale    = 31.0
	iGainScale     = 4.0
	levelGainScale = 6.56
)

// FixedWingLimits bounds the fixed-wing law's gain steps.
type FixedWingLimits struct {
	OvershootDwellMs  uint32  // minimum dwell before a decrease
	UndershootDwellMs uint32  // minimum dwell before an increase
	DecreasePercent   float64 // FF step down on overshoot exit
	IncreasePercent   float64 // FF step up on undershoot exit
	MinFF             float64
	MaxFF             float64
	MinI              float64
	MaxI              float64
}

func DefaultFixedWingLimits() FixedWingLimits {
	return FixedWingLimits{
		OvershootDwellMs:  100,
		UndershootDwellMs: 200,
		DecreasePercent:   8,
		IncreasePercent:   5,
		MinFF:             10,
		MaxFF:             200,
		MinI:              1,
		MaxI:              50,
	}
}

// FixedWingLaw adjusts the feed-forward gain in fixed percentage steps on
// regime transitions. The undershoot dwell floor is larger than the
// overshoot floor: increases are cautious, decreases are fast.
type FixedWingLaw struct {
	profile Profile
	limits  FixedWingLimits
}

func NewFixedWingLaw(profile Profile, limits FixedWingLimits) *FixedWingLaw {
	return &FixedWingLaw{profile: profile, limits: limits}
}

func (l *FixedWingLaw) Update(axis Axis, state *AxisState, sample Sample, nowMs uint32) bool {
	absDesired := math.Abs(sample.DesiredRate)
	maxDesiredRate := l.profile.MaxRate(axis)

	// In angle-stabilized flight the attitude loop never asks for more than
	// inclination error times its gain, so on pitch and roll tune against
	// that ceiling when it is the lower one.
	if axis == AxisRoll || axis == AxisPitch {
		maxRateInAngleMode := l.profile.MaxInclination(axis) * l.profile.LevelGain() / levelGainScale
		if maxRateInAngleMode < maxDesiredRate {
			maxDesiredRate = maxRateInAngleMode
		}
	}

	// A clipped output means any undershoot may be the limit's fault, not
	// the gain's. Latched until the next regime change.
	if math.Abs(sample.Output) >= l.profile.OutputLimit() {
		state.Saturated = true
	}

	var next Regime
	switch {
	case absDesired < demandThreshold*maxDesiredRate:
		next = RegimeTooLow
	case math.Abs(sample.AchievedRate) > absDesired:
		next = RegimeOvershoot
	default:
		next = RegimeUndershoot
	}

	if next == state.Regime {
		return false
	}

	// Act on the regime being exited; the dwell floors keep single noisy
	// samples from moving the gains.
	dwellMs := nowMs - state.EnteredAt
	updated := false

	switch state.Regime {
	case RegimeTooLow:
		// No decision possible from a low-demand dwell.
	case RegimeOvershoot:
		if dwellMs >= l.limits.OvershootDwellMs {
			state.Gains.FF *= (100 - l.limits.DecreasePercent) / 100
			if state.Gains.FF < l.limits.MinFF {
				state.Gains.FF = l.limits.MinFF
			}
			updated = true
		}
	case RegimeUndershoot:
		if dwellMs >= l.limits.UndershootDwellMs && !state.Saturated {
			state.Gains.FF *= (100 + l.limits.IncreasePercent) / 100
			if state.Gains.FF > l.limits.MaxFF {
				state.Gains.FF = l.limits.MaxFF
			}
			updated = true
		}
	}

	if updated {
		state.Gains.P = state.Gains.FF * 0.1

		// Scale I so the integral term reaches the feed-forward term's
		// contribution after one second.
		gainI := (state.Gains.FF / ffGainScale) * 1.0 * iGainScale
		state.Gains.I = clampf(gainI, l.limits.MinI, l.limits.MaxI)
	}

	state.Regime = next
	state.EnteredAt = nowMs
	state.Saturated = false

	return updated
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
