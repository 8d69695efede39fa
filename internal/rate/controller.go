package rate

import (
	"math"

	"github.com/san-kum/ratetune/internal/autotune"
)

// Decimal gain units to physical coefficients. The stored P and FF gains
// divide by the same factor; I divides by its own.
const (
	pGainScale  = 31.0
	iGainScale  = 4.0
	ffGainScale = 31.0
)

type axisCoeff struct {
	kP, kI, kFF float64
	integrator  float64
	itermLimit  float64
}

// Controller is the per-axis rate PID+FF loop. It consumes gains from the
// Bank, picking up pushed values at the start of the next tick.
type Controller struct {
	bank    *Bank
	profile *Profile
	axes    [autotune.AxisCount]axisCoeff
}

func NewController(bank *Bank, profile *Profile) *Controller {
	c := &Controller{bank: bank, profile: profile}
	for axis := range c.axes {
		c.axes[axis].itermLimit = profile.OutputLimit() * 0.4
	}
	c.reload()
	return c
}

// BeginTick picks up a pending gain reload. Call once per control-loop
// iteration before the per-axis updates.
func (c *Controller) BeginTick() {
	if c.bank.TakeReload() {
		c.reload()
	}
}

// Update runs one axis' rate loop for one tick and returns the raw
// controller output, constrained to the profile's output limit.
func (c *Controller) Update(axis autotune.Axis, desiredDps, achievedDps, dt float64) float64 {
	ax := &c.axes[axis]
	rateErr := desiredDps - achievedDps

	ax.integrator += ax.kI * rateErr * dt
	ax.integrator = clampf(ax.integrator, -ax.itermLimit, ax.itermLimit)

	out := ax.kP*rateErr + ax.kFF*desiredDps + ax.integrator
	return clampf(out, -c.profile.OutputLimit(), c.profile.OutputLimit())
}

// Saturated reports whether the given output sits at the limit.
func (c *Controller) Saturated(output float64) bool {
	return math.Abs(output) >= c.profile.OutputLimit()
}

// Reset clears the per-axis integrators.
func (c *Controller) Reset() {
	for axis := range c.axes {
		c.axes[axis].integrator = 0
	}
}

func (c *Controller) reload() {
	for axis := autotune.AxisRoll; axis < autotune.AxisCount; axis++ {
		g := c.bank.Gains(axis)
		c.axes[axis].kP = g.P / pGainScale
		c.axes[axis].kI = g.I / iGainScale
		c.axes[axis].kFF = g.FF / ffGainScale
	}
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
