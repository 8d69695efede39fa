package physics

import (
	"fmt"

	"github.com/san-kum/ratetune/internal/dynamo"
)

// FixedWing models three-axis rotational dynamics of a fixed-wing airframe
// as first-order rate responses to normalized surface deflections.
//
// State: [p q r] body rates in deg/s. Control: [aileron elevator rudder]
// in [-1, 1]. Per axis: rateDot = power*u - damping*rate. Steady-state rate
// for full deflection is power/damping.
type FixedWing struct {
	RollPower, PitchPower, YawPower       float64 // deg/s^2 per unit deflection
	RollDamping, PitchDamping, YawDamping float64 // 1/s
}

// NewFixedWing returns a responsive sport airframe.
func NewFixedWing() *FixedWing {
	return &FixedWing{
		RollPower:    900,
		PitchPower:   500,
		YawPower:     250,
		RollDamping:  4.0,
		PitchDamping: 3.5,
		YawDamping:   2.5,
	}
}

// NewTrainer returns a heavily damped, underpowered airframe. Useful for
// driving the tuner into its undershoot/saturation regimes.
func NewTrainer() *FixedWing {
	return &FixedWing{
		RollPower:    400,
		PitchPower:   250,
		YawPower:     120,
		RollDamping:  6.0,
		PitchDamping: 5.0,
		YawDamping:   4.0,
	}
}

func (f *FixedWing) StateDim() int   { return 3 }
func (f *FixedWing) ControlDim() int { return 3 }

func (f *FixedWing) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	var a [3]float64
	if len(u) >= 3 {
		a[0], a[1], a[2] = u[0], u[1], u[2]
	}

	for i := range a {
		a[i] = clamp(a[i], -1, 1)
	}

	return dynamo.State{
		f.RollPower*a[0] - f.RollDamping*x[0],
		f.PitchPower*a[1] - f.PitchDamping*x[1],
		f.YawPower*a[2] - f.YawDamping*x[2],
	}
}

func (f *FixedWing) GetParams() map[string]float64 {
	return map[string]float64{
		"roll_power":    f.RollPower,
		"pitch_power":   f.PitchPower,
		"yaw_power":     f.YawPower,
		"roll_damping":  f.RollDamping,
		"pitch_damping": f.PitchDamping,
		"yaw_damping":   f.YawDamping,
	}
}

func (f *FixedWing) SetParam(name string, value float64) error {
	switch name {
	case "roll_power":
		f.RollPower = value
	case "pitch_power":
		f.PitchPower = value
	case "yaw_power":
		f.YawPower = value
	case "roll_damping":
		f.RollDamping = value
	case "pitch_damping":
		f.PitchDamping = value
	case "yaw_damping":
		f.YawDamping = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
