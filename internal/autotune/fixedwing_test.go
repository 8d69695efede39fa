package autotune

import (
	"math"
	"testing"
)

type fakeClock struct {
	ms uint32
}

func (c *fakeClock) Millis() uint32 { return c.ms }

type fakeProfile struct {
	maxRates    [AxisCount]float64
	inclination [AxisCount]float64
	levelGain   float64
	outputLimit float64
}

func newFakeProfile() *fakeProfile {
	return &fakeProfile{
		maxRates:    [AxisCount]float64{200, 150, 150},
		inclination: [AxisCount]float64{60, 60, 0},
		levelGain:   60,
		outputLimit: 500,
	}
}

func (p *fakeProfile) MaxRate(axis Axis) float64        { return p.maxRates[axis] }
func (p *fakeProfile) MaxInclination(axis Axis) float64 { return p.inclination[axis] }
func (p *fakeProfile) LevelGain() float64               { return p.levelGain }
func (p *fakeProfile) OutputLimit() float64             { return p.outputLimit }

func TestClassifyOvershoot(t *testing.T) {
	law := NewFixedWingLaw(newFakeProfile(), DefaultFixedWingLimits())

	st := AxisState{Regime: RegimeTooLow, Gains: Gains{FF: 50}}
	updated := law.Update(AxisYaw, &st, Sample{DesiredRate: 120, AchievedRate: 130}, 0)

	if st.Regime != RegimeOvershoot {
		t.Errorf("expected OVERSHOOT, got %s", st.Regime)
	}
	if updated {
		t.Error("exiting TOO_LOW should not change gains")
	}
}

func TestClassifyTooLow(t *testing.T) {
	law := NewFixedWingLaw(newFakeProfile(), DefaultFixedWingLimits())

	// 50 deg/s is below 75% of the 150 deg/s yaw limit; achieved rate must
	// not matter.
	for _, achieved := range []float64{0, 49, 200} {
		st := AxisState{Regime: RegimeUndershoot, Gains: Gains{FF: 50}}
		law.Update(AxisYaw, &st, Sample{DesiredRate: 50, AchievedRate: achieved}, 300)

		if st.Regime != RegimeTooLow {
			t.Errorf("achieved=%.0f: expected TOO_LOW, got %s", achieved, st.Regime)
		}
	}
}

func TestClassifyUndershoot(t *testing.T) {
	law := NewFixedWingLaw(newFakeProfile(), DefaultFixedWingLimits())

	st := AxisState{Regime: RegimeTooLow, Gains: Gains{FF: 50}}
	law.Update(AxisYaw, &st, Sample{DesiredRate: 120, AchievedRate: 100}, 0)

	if st.Regime != RegimeUndershoot {
		t.Errorf("expected UNDERSHOOT, got %s", st.Regime)
	}
}

func TestAngleModeCeiling(t *testing.T) {
	profile := newFakeProfile()
	profile.maxRates[AxisPitch] = 500
	profile.inclination[AxisPitch] = 30
	profile.levelGain = 20

	law := NewFixedWingLaw(profile, DefaultFixedWingLimits())

	// Angle-mode ceiling is 30*20/6.56 = 91.46 deg/s, far below the
	// configured 500. 80 deg/s clears 75% of the ceiling, so the sample is
	// judged rather than discarded as TOO_LOW.
	st := AxisState{Regime: RegimeTooLow, Gains: Gains{FF: 50}}
	law.Update(AxisPitch, &st, Sample{DesiredRate: 80, AchievedRate: 60}, 0)

	if st.Regime != RegimeUndershoot {
		t.Errorf("expected UNDERSHOOT against angle-mode ceiling, got %s", st.Regime)
	}

	// Yaw has no angle-mode ceiling: the same demand against 500 deg/s is
	// too low to judge.
	profile.maxRates[AxisYaw] = 500
	st = AxisState{Regime: RegimeUndershoot, Gains: Gains{FF: 50}}
	law.Update(AxisYaw, &st, Sample{DesiredRate: 80, AchievedRate: 60}, 0)

	if st.Regime != RegimeTooLow {
		t.Errorf("expected TOO_LOW on yaw, got %s", st.Regime)
	}
}

func TestOvershootExitDecreasesFF(t *testing.T) {
	law := NewFixedWingLaw(newFakeProfile(), DefaultFixedWingLimits())

	st := AxisState{Regime: RegimeOvershoot, EnteredAt: 0, Gains: Gains{FF: 50}}
	updated := law.Update(AxisYaw, &st, Sample{DesiredRate: 120, AchievedRate: 100}, 150)

	if !updated {
		t.Fatal("expected gains update after 150ms overshoot dwell")
	}
	if math.Abs(st.Gains.FF-46.0) > 1e-9 {
		t.Errorf("expected FF 46, got %f", st.Gains.FF)
	}
	if math.Abs(st.Gains.P-4.6) > 1e-9 {
		t.Errorf("expected P 4.6, got %f", st.Gains.P)
	}
}

func TestUndershootExitIncreasesFF(t *testing.T) {
	law := NewFixedWingLaw(newFakeProfile(), DefaultFixedWingLimits())

	st := AxisState{Regime: RegimeUndershoot, EnteredAt: 0, Gains: Gains{FF: 190}}
	updated := law.Update(AxisYaw, &st, Sample{DesiredRate: 100, AchievedRate: 120}, 250)

	if !updated {
		t.Fatal("expected gains update after 250ms undershoot dwell")
	}
	if math.Abs(st.Gains.FF-199.5) > 1e-9 {
		t.Errorf("expected FF 199.5, got %f", st.Gains.FF)
	}
}

func TestDwellDamping(t *testing.T) {
	law := NewFixedWingLaw(newFakeProfile(), DefaultFixedWingLimits())

	// 50ms in overshoot is under the 100ms floor.
	st := AxisState{Regime: RegimeOvershoot, EnteredAt: 0, Gains: Gains{FF: 50}}
	if law.Update(AxisYaw, &st, Sample{DesiredRate: 120, AchievedRate: 100}, 50) {
		t.Error("overshoot exit under dwell floor must not change gains")
	}
	if st.Gains.FF != 50 {
		t.Errorf("FF changed to %f", st.Gains.FF)
	}
	if st.Regime != RegimeUndershoot {
		t.Error("regime must still transition")
	}

	// 150ms in undershoot is under the 200ms floor.
	st = AxisState{Regime: RegimeUndershoot, EnteredAt: 0, Gains: Gains{FF: 50}}
	if law.Update(AxisYaw, &st, Sample{DesiredRate: 100, AchievedRate: 120}, 150) {
		t.Error("undershoot exit under dwell floor must not change gains")
	}
	if st.Gains.FF != 50 {
		t.Errorf("FF changed to %f", st.Gains.FF)
	}
}

func TestSaturationGuard(t *testing.T) {
	law := NewFixedWingLaw(newFakeProfile(), DefaultFixedWingLimits())

	// Output hits the limit while undershooting: the flag latches without a
	// regime change.
	st := AxisState{Regime: RegimeUndershoot, EnteredAt: 0, Gains: Gains{FF: 50}}
	if law.Update(AxisYaw, &st, Sample{DesiredRate: 120, AchievedRate: 100, Output: 600}, 100) {
		t.Fatal("no regime change expected")
	}
	if !st.Saturated {
		t.Fatal("expected saturation latch at output >= limit")
	}

	// The undershoot exit satisfies the dwell floor, but the saturated flag
	// blocks the increase.
	if law.Update(AxisYaw, &st, Sample{DesiredRate: 100, AchievedRate: 120}, 250) {
		t.Error("saturated undershoot exit must not increase FF")
	}
	if st.Gains.FF != 50 {
		t.Errorf("FF changed to %f", st.Gains.FF)
	}
	if st.Saturated {
		t.Error("saturation flag must clear on regime change")
	}
}

func TestClampIdempotence(t *testing.T) {
	law := NewFixedWingLaw(newFakeProfile(), DefaultFixedWingLimits())

	// Repeated decreases at the floor stay at the floor.
	st := AxisState{Regime: RegimeOvershoot, EnteredAt: 0, Gains: Gains{FF: 10}}
	for i := 0; i < 3; i++ {
		now := uint32(200 * (i + 1))
		law.Update(AxisYaw, &st, Sample{DesiredRate: 120, AchievedRate: 100}, now)
		st.Regime = RegimeOvershoot
		st.EnteredAt = now
	}
	if st.Gains.FF != 10 {
		t.Errorf("expected FF pinned at floor 10, got %f", st.Gains.FF)
	}

	// Symmetric at the ceiling.
	st = AxisState{Regime: RegimeUndershoot, EnteredAt: 0, Gains: Gains{FF: 200}}
	for i := 0; i < 3; i++ {
		now := uint32(300 * (i + 1))
		law.Update(AxisYaw, &st, Sample{DesiredRate: 100, AchievedRate: 120}, now)
		st.Regime = RegimeUndershoot
		st.EnteredAt = now
	}
	if st.Gains.FF != 200 {
		t.Errorf("expected FF pinned at ceiling 200, got %f", st.Gains.FF)
	}
}

func TestGainDerivation(t *testing.T) {
	law := NewFixedWingLaw(newFakeProfile(), DefaultFixedWingLimits())

	st := AxisState{Regime: RegimeUndershoot, EnteredAt: 0, Gains: Gains{FF: 100}}
	law.Update(AxisYaw, &st, Sample{DesiredRate: 100, AchievedRate: 120}, 250)

	if math.Abs(st.Gains.P-st.Gains.FF*0.1) > 1e-9 {
		t.Errorf("P must be 10%% of FF: P=%f FF=%f", st.Gains.P, st.Gains.FF)
	}
	wantI := st.Gains.FF / 31.0 * 4.0
	if math.Abs(st.Gains.I-wantI) > 1e-9 {
		t.Errorf("expected I %f, got %f", wantI, st.Gains.I)
	}
}

func TestGainDerivationClampsI(t *testing.T) {
	limits := DefaultFixedWingLimits()
	limits.MaxI = 20

	law := NewFixedWingLaw(newFakeProfile(), limits)

	st := AxisState{Regime: RegimeUndershoot, EnteredAt: 0, Gains: Gains{FF: 190}}
	law.Update(AxisYaw, &st, Sample{DesiredRate: 100, AchievedRate: 120}, 250)

	if st.Gains.I != 20 {
		t.Errorf("expected I clamped to 20, got %f", st.Gains.I)
	}
}

func TestDwellWraparound(t *testing.T) {
	law := NewFixedWingLaw(newFakeProfile(), DefaultFixedWingLimits())

	// The millisecond counter wraps between regime entry and exit; uint32
	// subtraction still yields the true 150ms dwell.
	enteredAt := ^uint32(0) - 49
	st := AxisState{Regime: RegimeOvershoot, EnteredAt: enteredAt, Gains: Gains{FF: 50}}
	updated := law.Update(AxisYaw, &st, Sample{DesiredRate: 120, AchievedRate: 100}, 100)

	if !updated {
		t.Fatal("expected gains update across counter wraparound")
	}
	if math.Abs(st.Gains.FF-46.0) > 1e-9 {
		t.Errorf("expected FF 46, got %f", st.Gains.FF)
	}
}
