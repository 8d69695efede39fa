package autotune

type Axis int

const (
	AxisRoll Axis = iota
	AxisPitch
	AxisYaw
	AxisCount
)

func (a Axis) String() string {
	switch a {
	case AxisRoll:
		return "roll"
	case AxisPitch:
		return "pitch"
	case AxisYaw:
		return "yaw"
	}
	return "unknown"
}

// Regime classifies the most recent control response on one axis.
type Regime uint8

const (
	// RegimeTooLow: demand is below the decision threshold, the response is
	// not an informative probe of the gains.
	RegimeTooLow Regime = iota
	// RegimeUndershoot: achieved rate fell short of the commanded rate.
	RegimeUndershoot
	// RegimeOvershoot: achieved rate exceeded the commanded rate.
	RegimeOvershoot
)

func (r Regime) String() string {
	switch r {
	case RegimeTooLow:
		return "TOO_LOW"
	case RegimeUndershoot:
		return "UNDERSHOOT"
	case RegimeOvershoot:
		return "OVERSHOOT"
	}
	return "UNSUPPORTED"
}

// Gains holds one axis' rate-controller gains in firmware decimal units.
// FF is the feed-forward gain, historically stored in the D slot.
type Gains struct {
	P  float64
	I  float64
	FF float64
}

// AxisState is the per-axis tuning state. EnteredAt and Saturated are
// axis-local and never read across axes.
type AxisState struct {
	Regime    Regime
	EnteredAt uint32 // ms, when Regime last changed
	Saturated bool   // sticky until the next regime change
	Gains     Gains
}

// GainSet is a full snapshot of all axes' gains.
type GainSet [AxisCount]Gains

// Clock supplies monotonic milliseconds. Deltas are computed with uint32
// subtraction, which stays correct across counter wraparound.
type Clock interface {
	Millis() uint32
}

// Bank is the live rate-controller gain configuration. Apply writes a full
// gain set and schedules the controller to reload it before next use.
type Bank interface {
	Gains(axis Axis) Gains
	Apply(gains GainSet)
}

// Profile supplies the configured limits the law classifies against.
type Profile interface {
	// MaxRate is the configured maximum commanded rate for the axis, deg/s.
	MaxRate(axis Axis) float64
	// MaxInclination is the maximum attitude inclination in degrees.
	// Meaningful for pitch and roll only.
	MaxInclination(axis Axis) float64
	// LevelGain is the attitude-loop proportional gain in firmware units.
	LevelGain() float64
	// OutputLimit is the rate controller's output saturation magnitude.
	OutputLimit() float64
}
