package metrics

import (
	"math"

	"github.com/san-kum/ratetune/internal/dynamo"
)

// Saturation is the fraction of ticks with any surface command pinned at
// full deflection. High values mean the airframe, not the gains, limits
// tracking.
type Saturation struct {
	name      string
	saturated int
	samples   int
}

func NewSaturation() *Saturation {
	return &Saturation{name: "saturation"}
}

func (m *Saturation) Name() string {
	return m.name
}

func (m *Saturation) Observe(x dynamo.State, u dynamo.Control, t float64) {
	m.samples++
	for _, v := range u {
		if math.Abs(v) >= 1.0 {
			m.saturated++
			break
		}
	}
}

func (m *Saturation) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.saturated) / float64(m.samples)
}

func (m *Saturation) Reset() {
	m.saturated = 0
	m.samples = 0
}
