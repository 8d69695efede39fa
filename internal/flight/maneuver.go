package flight

import (
	"math"

	"github.com/san-kum/ratetune/internal/autotune"
)

// Maneuver is a scripted stick program: commanded rates per axis over time.
// Tuning only makes decisions when the command exceeds 75% of the
// configured maximum rate, so useful maneuvers command near the limits.
type Maneuver interface {
	Name() string
	Rates(t float64) [autotune.AxisCount]float64
}

// Doublet alternates full positive and negative rate commands with the
// given half-period. The classic excitation input for response tuning.
type Doublet struct {
	Amplitudes [autotune.AxisCount]float64 // deg/s
	HalfPeriod float64                     // s
}

func NewDoublet(amplitudes [autotune.AxisCount]float64, halfPeriod float64) *Doublet {
	return &Doublet{Amplitudes: amplitudes, HalfPeriod: halfPeriod}
}

func (d *Doublet) Name() string { return "doublet" }

func (d *Doublet) Rates(t float64) [autotune.AxisCount]float64 {
	sign := 1.0
	if int(t/d.HalfPeriod)%2 == 1 {
		sign = -1.0
	}

	var rates [autotune.AxisCount]float64
	for axis := range rates {
		rates[axis] = sign * d.Amplitudes[axis]
	}
	return rates
}

// Step commands zero until At, then holds the full amplitudes.
type Step struct {
	Amplitudes [autotune.AxisCount]float64
	At         float64
}

func NewStep(amplitudes [autotune.AxisCount]float64, at float64) *Step {
	return &Step{Amplitudes: amplitudes, At: at}
}

func (s *Step) Name() string { return "step" }

func (s *Step) Rates(t float64) [autotune.AxisCount]float64 {
	if t < s.At {
		return [autotune.AxisCount]float64{}
	}
	return s.Amplitudes
}

// Sine commands sinusoidal rates. Spends part of each cycle below the
// decision threshold, exercising the TOO_LOW regime.
type Sine struct {
	Amplitudes [autotune.AxisCount]float64
	Frequency  float64 // Hz
}

func NewSine(amplitudes [autotune.AxisCount]float64, frequency float64) *Sine {
	return &Sine{Amplitudes: amplitudes, Frequency: frequency}
}

func (s *Sine) Name() string { return "sine" }

func (s *Sine) Rates(t float64) [autotune.AxisCount]float64 {
	v := math.Sin(2 * math.Pi * s.Frequency * t)

	var rates [autotune.AxisCount]float64
	for axis := range rates {
		rates[axis] = v * s.Amplitudes[axis]
	}
	return rates
}
