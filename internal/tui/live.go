package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/san-kum/ratetune/internal/autotune"
	"github.com/san-kum/ratetune/internal/dynamo"
	"github.com/san-kum/ratetune/internal/flight"
)

const (
	width       = 70
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer draws a terminal dashboard for a tuning flight: per-axis
// desired vs achieved rate bars, the tuner's regime, and the live gains.
// It drops frames to hold the requested rate; the simulation runs much
// faster than a terminal can paint.
type LiveRenderer struct {
	harness   *flight.Harness
	frameRate int
	lastFrame time.Time
}

func NewLiveRenderer(harness *flight.Harness, frameRate int) *LiveRenderer {
	return &LiveRenderer{harness: harness, frameRate: frameRate}
}

func (r *LiveRenderer) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.render(x, u, t)
}

func (r *LiveRenderer) render(x dynamo.State, u dynamo.Control, t float64) {
	session := r.harness.Session()
	states := session.AxisStates()

	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  autotune %s  t=%.2fs\n", session.Status(), t))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	records := r.harness.Records()
	var desired [autotune.AxisCount]float64
	if len(records) > 0 {
		desired = records[len(records)-1].Desired
	}

	for axis := autotune.AxisRoll; axis < autotune.AxisCount; axis++ {
		achieved := 0.0
		if int(axis) < len(x) {
			achieved = x[axis]
		}

		b.WriteString(fmt.Sprintf("  %-5s cmd %7.1f %s\n", axis, desired[axis], rateBar(desired[axis])))
		b.WriteString(fmt.Sprintf("        act %7.1f %s\n", achieved, rateBar(achieved)))

		g := r.harness.Bank().Gains(axis)
		line := fmt.Sprintf("        P=%5.1f I=%5.1f FF=%6.1f", g.P, g.I, g.FF)
		if session.Active() {
			line += fmt.Sprintf("  %s", states[axis].Regime)
			if states[axis].Saturated {
				line += " SAT"
			}
		}
		b.WriteString(line + "\n\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	surf := "  surfaces "
	for i, v := range u {
		if i >= int(autotune.AxisCount) {
			break
		}
		surf += fmt.Sprintf("u%d=%+.2f ", i, v)
	}
	b.WriteString(surf + "\n")

	fmt.Print(b.String())
}

// rateBar renders a signed rate on a fixed scale of 300 deg/s full span.
func rateBar(v float64) string {
	const half = 20
	const scale = 300.0

	n := int(math.Abs(v) / scale * half)
	if n > half {
		n = half
	}

	bar := make([]rune, 2*half+1)
	for i := range bar {
		bar[i] = '.'
	}
	bar[half] = '|'

	if v >= 0 {
		for i := 1; i <= n; i++ {
			bar[half+i] = '#'
		}
	} else {
		for i := 1; i <= n; i++ {
			bar[half-i] = '#'
		}
	}
	return string(bar)
}

func (r *LiveRenderer) Start() { fmt.Print(hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Print(showCursor) }
