package autotune

// Sample is one control-loop tick's observation of a single axis.
type Sample struct {
	DesiredRate  float64 // commanded rotational rate, deg/s, signed
	AchievedRate float64 // measured rotational rate, deg/s, signed
	Output       float64 // raw rate-controller output this tick
}

// Law is a per-axis tuning law. Update classifies the sample, applies the
// law's gain-step policy to state and reports whether the axis gains
// changed. Implementations must not retain state across calls beyond what
// they store in state itself.
type Law interface {
	Update(axis Axis, state *AxisState, sample Sample, nowMs uint32) bool
}
