package metrics

import (
	"math"

	"github.com/san-kum/ratetune/internal/dynamo"
	"github.com/san-kum/ratetune/internal/flight"
)

// Tracking is the RMS error between commanded and achieved rates across
// all axes. The headline figure of merit for a tuning flight.
type Tracking struct {
	name     string
	maneuver flight.Maneuver
	sumSq    float64
	samples  int
}

func NewTracking(maneuver flight.Maneuver) *Tracking {
	return &Tracking{
		name:     "tracking_rms",
		maneuver: maneuver,
	}
}

func (m *Tracking) Name() string {
	return m.name
}

func (m *Tracking) Observe(x dynamo.State, u dynamo.Control, t float64) {
	desired := m.maneuver.Rates(t)
	for axis, want := range desired {
		if axis >= len(x) {
			break
		}
		err := want - x[axis]
		m.sumSq += err * err
		m.samples++
	}
}

func (m *Tracking) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *Tracking) Reset() {
	m.sumSq = 0
	m.samples = 0
}
