package flight

import (
	"github.com/san-kum/ratetune/internal/autotune"
	"github.com/san-kum/ratetune/internal/dynamo"
	"github.com/san-kum/ratetune/internal/rate"
)

// loopClock maps simulation time onto the firmware's millisecond counter.
type loopClock struct {
	ms uint32
}

func (c *loopClock) Millis() uint32 { return c.ms }

func (c *loopClock) set(t float64) { c.ms = uint32(t * 1000) }

// Record is one tick's tuning telemetry.
type Record struct {
	Time    float64
	Status  autotune.Status
	Gains   autotune.GainSet
	Regimes [autotune.AxisCount]autotune.Regime
	Desired [autotune.AxisCount]float64
}

// Options configures a tuning flight.
type Options struct {
	Profile  *rate.Profile
	Gains    autotune.GainSet // initial live gains
	Limits   autotune.FixedWingLimits
	Maneuver Maneuver
	Dt       float64
	Engage   float64 // autotune requested from this time, seconds
	Release  float64 // autotune released at this time; 0 means never
}

// Harness wires the maneuver, rate controller and autotune session into a
// single dynamo.Controller: each Compute call is one control-loop tick.
// As a dynamo.Observer it records per-tick tuning telemetry.
type Harness struct {
	opts    Options
	clock   *loopClock
	bank    *rate.Bank
	ctrl    *rate.Controller
	session *autotune.Session
	records []Record
}

func NewHarness(opts Options) *Harness {
	clock := &loopClock{}
	bank := rate.NewBank(opts.Gains)
	ctrl := rate.NewController(bank, opts.Profile)
	law := autotune.NewFixedWingLaw(opts.Profile, opts.Limits)
	session := autotune.NewSession(clock, bank, law)

	return &Harness{
		opts:    opts,
		clock:   clock,
		bank:    bank,
		ctrl:    ctrl,
		session: session,
		records: make([]Record, 0, 1024),
	}
}

// Compute runs one control-loop tick: session update, gain reload pickup,
// then the per-axis rate loop feeding the tuner. Surface commands are the
// controller outputs normalized by the output limit.
func (h *Harness) Compute(x dynamo.State, t float64) dynamo.Control {
	h.clock.set(t)

	requested := t >= h.opts.Engage && (h.opts.Release <= 0 || t < h.opts.Release)
	h.session.Update(requested, true)
	h.ctrl.BeginTick()

	desired := h.opts.Maneuver.Rates(t)
	limit := h.opts.Profile.OutputLimit()

	u := make(dynamo.Control, autotune.AxisCount)
	for axis := autotune.AxisRoll; axis < autotune.AxisCount; axis++ {
		achieved := 0.0
		if int(axis) < len(x) {
			achieved = x[axis]
		}

		out := h.ctrl.Update(axis, desired[axis], achieved, h.opts.Dt)
		h.session.UpdateAxis(axis, desired[axis], achieved, out)
		u[axis] = out / limit
	}

	return u
}

// OnStep records tuning telemetry for the tick that just ran.
func (h *Harness) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	rec := Record{
		Time:    t,
		Status:  h.session.Status(),
		Desired: h.opts.Maneuver.Rates(t),
	}

	states := h.session.AxisStates()
	for axis := autotune.AxisRoll; axis < autotune.AxisCount; axis++ {
		if h.session.Active() {
			rec.Gains[axis] = states[axis].Gains
			rec.Regimes[axis] = states[axis].Regime
		} else {
			rec.Gains[axis] = h.bank.Gains(axis)
		}
	}

	h.records = append(h.records, rec)
}

func (h *Harness) Session() *autotune.Session { return h.session }

func (h *Harness) Bank() *rate.Bank { return h.bank }

// Records returns the telemetry collected so far.
func (h *Harness) Records() []Record { return h.records }

// FinalGains returns the live controller's gains after the run.
func (h *Harness) FinalGains() autotune.GainSet {
	var set autotune.GainSet
	for axis := autotune.AxisRoll; axis < autotune.AxisCount; axis++ {
		set[axis] = h.bank.Gains(axis)
	}
	return set
}
