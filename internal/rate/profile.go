package rate

import (
	"fmt"

	"github.com/san-kum/ratetune/internal/autotune"
)

// Profile is the control-rate profile: configured maximum rates per axis
// plus the attitude-loop limits the autotune law reads for pitch and roll.
type Profile struct {
	maxRates       [autotune.AxisCount]float64 // deg/s
	maxInclination [autotune.AxisCount]float64 // deg, pitch/roll
	levelGain      float64
	sumLimit       float64
}

// DefaultProfile mirrors a conservative fixed-wing setup.
func DefaultProfile() *Profile {
	return &Profile{
		maxRates:       [autotune.AxisCount]float64{200, 150, 90},
		maxInclination: [autotune.AxisCount]float64{30, 30, 0},
		levelGain:      20,
		sumLimit:       500,
	}
}

func NewProfile(maxRates, maxInclination [autotune.AxisCount]float64, levelGain, sumLimit float64) (*Profile, error) {
	for axis := autotune.AxisRoll; axis < autotune.AxisCount; axis++ {
		if maxRates[axis] <= 0 {
			return nil, fmt.Errorf("rate: max rate for %s must be positive, got %f", axis, maxRates[axis])
		}
	}
	if sumLimit <= 0 {
		return nil, fmt.Errorf("rate: output limit must be positive, got %f", sumLimit)
	}
	return &Profile{
		maxRates:       maxRates,
		maxInclination: maxInclination,
		levelGain:      levelGain,
		sumLimit:       sumLimit,
	}, nil
}

func (p *Profile) MaxRate(axis autotune.Axis) float64 { return p.maxRates[axis] }

func (p *Profile) MaxInclination(axis autotune.Axis) float64 { return p.maxInclination[axis] }

func (p *Profile) LevelGain() float64 { return p.levelGain }

func (p *Profile) OutputLimit() float64 { return p.sumLimit }
