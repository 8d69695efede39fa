package flight

import (
	"context"
	"testing"

	"github.com/san-kum/ratetune/internal/autotune"
	"github.com/san-kum/ratetune/internal/dynamo"
	"github.com/san-kum/ratetune/internal/integrators"
	"github.com/san-kum/ratetune/internal/physics"
	"github.com/san-kum/ratetune/internal/rate"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	profile := rate.DefaultProfile()
	return Options{
		Profile: profile,
		Gains: autotune.GainSet{
			{P: 25, I: 35, FF: 40},
			{P: 20, I: 35, FF: 40},
			{P: 50, I: 45, FF: 40},
		},
		Limits:   autotune.DefaultFixedWingLimits(),
		Maneuver: NewDoublet([autotune.AxisCount]float64{180, 135, 81}, 1.5),
		Dt:       0.002,
		Engage:   0.5,
	}
}

func runFlight(t *testing.T, opts Options, duration float64) *Harness {
	t.Helper()
	h := NewHarness(opts)
	sim := dynamo.New(physics.NewFixedWing(), integrators.NewRK4(), h)
	sim.AddObserver(h)

	cfg := dynamo.Config{Dt: opts.Dt, Duration: duration, ValidateState: true}
	result, err := sim.Run(context.Background(), dynamo.State{0, 0, 0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("simulation errors: %v", result.Errors)
	}
	return h
}

func TestHarnessEngagesSession(t *testing.T) {
	opts := testOptions(t)
	h := runFlight(t, opts, 2.0)

	if !h.Session().Active() {
		t.Error("session should be active after the engage time")
	}

	records := h.Records()
	if len(records) == 0 {
		t.Fatal("expected telemetry records")
	}
	if records[0].Status != autotune.StatusInactive {
		t.Error("session must start inactive before the engage time")
	}
	last := records[len(records)-1]
	if last.Status != autotune.StatusActive {
		t.Error("session must be active at the end")
	}
}

func TestHarnessReleaseRestores(t *testing.T) {
	opts := testOptions(t)
	opts.Release = 3.0
	h := runFlight(t, opts, 4.0)

	if h.Session().Active() {
		t.Error("session must deactivate after release")
	}

	// The live gains after release equal the last committed snapshot.
	saved := h.Session().SavedGains()
	if h.FinalGains() != saved {
		t.Errorf("final gains %+v != saved snapshot %+v", h.FinalGains(), saved)
	}
}

func TestHarnessTunesTowardTracking(t *testing.T) {
	opts := testOptions(t)
	h := runFlight(t, opts, 30.0)

	records := h.Records()
	first := records[0].Gains[autotune.AxisRoll].FF
	last := records[len(records)-1].Gains[autotune.AxisRoll].FF

	if first == last {
		t.Error("expected the tuner to move the roll FF gain over a long flight")
	}

	// Derived gain relation holds whenever the tuner has acted.
	finalGains := h.FinalGains()
	for axis := autotune.AxisRoll; axis < autotune.AxisCount; axis++ {
		g := finalGains[axis]
		if g.FF < 10 || g.FF > 200 {
			t.Errorf("%s: FF %f outside clamp range", axis, g.FF)
		}
	}
}

func TestRegistryLookups(t *testing.T) {
	r := NewRegistry()

	if _, err := r.GetAirframe("sport"); err != nil {
		t.Errorf("sport airframe missing: %v", err)
	}
	if _, err := r.GetAirframe("bathtub"); err == nil {
		t.Error("expected error for unknown airframe")
	}

	profile := rate.DefaultProfile()
	m, err := r.GetManeuver("doublet", profile, map[string]float64{})
	if err != nil {
		t.Fatalf("doublet missing: %v", err)
	}

	rates := m.Rates(0)
	if rates[autotune.AxisRoll] < 0.75*profile.MaxRate(autotune.AxisRoll) {
		t.Error("default doublet amplitude must clear the decision threshold")
	}
}

func TestDoubletAlternates(t *testing.T) {
	d := NewDoublet([autotune.AxisCount]float64{100, 100, 100}, 1.0)

	if d.Rates(0.5)[0] <= 0 {
		t.Error("first half-period must be positive")
	}
	if d.Rates(1.5)[0] >= 0 {
		t.Error("second half-period must be negative")
	}
}
