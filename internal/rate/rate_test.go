package rate

import (
	"math"
	"testing"

	"github.com/san-kum/ratetune/internal/autotune"
)

func testGains() autotune.GainSet {
	return autotune.GainSet{
		{P: 25, I: 35, FF: 10},
		{P: 20, I: 35, FF: 10},
		{P: 50, I: 45, FF: 0},
	}
}

func TestBankApplySchedulesReload(t *testing.T) {
	b := NewBank(testGains())
	b.TakeReload() // consume the initial reload

	if b.TakeReload() {
		t.Fatal("reload flag must clear after take")
	}

	gains := testGains()
	gains[autotune.AxisRoll].FF = 42
	b.Apply(gains)

	if !b.TakeReload() {
		t.Error("apply must schedule a reload")
	}
	if b.Gains(autotune.AxisRoll).FF != 42 {
		t.Errorf("expected FF 42, got %f", b.Gains(autotune.AxisRoll).FF)
	}
}

func TestControllerPicksUpPushedGains(t *testing.T) {
	b := NewBank(testGains())
	c := NewController(b, DefaultProfile())

	before := c.Update(autotune.AxisRoll, 100, 100, 0.002)

	gains := testGains()
	gains[autotune.AxisRoll].FF = 100
	b.Apply(gains)
	c.BeginTick()
	c.Reset()

	after := c.Update(autotune.AxisRoll, 100, 100, 0.002)

	// Zero rate error: output is the pure feed-forward term, which must
	// have grown with FF.
	if after <= before {
		t.Errorf("expected larger FF contribution after push: before=%f after=%f", before, after)
	}
}

func TestControllerOutputClamped(t *testing.T) {
	gains := testGains()
	gains[autotune.AxisRoll] = autotune.Gains{P: 200, I: 0, FF: 200}
	b := NewBank(gains)
	c := NewController(b, DefaultProfile())

	out := c.Update(autotune.AxisRoll, 600, -600, 0.002)
	if out > 500 {
		t.Errorf("output must clamp at 500, got %f", out)
	}
	if !c.Saturated(out) {
		t.Error("clamped output must report saturated")
	}
}

func TestControllerFeedForwardSign(t *testing.T) {
	b := NewBank(testGains())
	c := NewController(b, DefaultProfile())

	pos := c.Update(autotune.AxisPitch, 100, 100, 0.002)
	c.Reset()
	neg := c.Update(autotune.AxisPitch, -100, -100, 0.002)

	if pos <= 0 || neg >= 0 {
		t.Errorf("feed-forward must follow command sign: pos=%f neg=%f", pos, neg)
	}
}

func TestProfileRejectsNonPositiveRates(t *testing.T) {
	_, err := NewProfile(
		[autotune.AxisCount]float64{200, 0, 90},
		[autotune.AxisCount]float64{30, 30, 0},
		20, 500,
	)
	if err == nil {
		t.Error("expected error for zero max rate")
	}

	_, err = NewProfile(
		[autotune.AxisCount]float64{200, 150, 90},
		[autotune.AxisCount]float64{30, 30, 0},
		20, -1,
	)
	if err == nil {
		t.Error("expected error for negative output limit")
	}
}

func TestIntegratorClamped(t *testing.T) {
	b := NewBank(testGains())
	c := NewController(b, DefaultProfile())

	// Persistent large error winds the integrator into its clamp, not to
	// infinity.
	var out float64
	for i := 0; i < 100000; i++ {
		out = c.Update(autotune.AxisRoll, 150, 0, 0.002)
	}
	if math.IsInf(out, 0) || math.IsNaN(out) {
		t.Fatal("integrator diverged")
	}
	if out > 500 {
		t.Errorf("output must stay within the limit, got %f", out)
	}
}
