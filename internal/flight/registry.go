package flight

import (
	"fmt"

	"github.com/san-kum/ratetune/internal/autotune"
	"github.com/san-kum/ratetune/internal/dynamo"
	"github.com/san-kum/ratetune/internal/integrators"
	"github.com/san-kum/ratetune/internal/physics"
	"github.com/san-kum/ratetune/internal/rate"
)

type Registry struct {
	airframes   map[string]func() dynamo.System
	integrators map[string]func() dynamo.Integrator
	maneuvers   map[string]func(profile *rate.Profile, params map[string]float64) Maneuver
}

func NewRegistry() *Registry {
	r := &Registry{
		airframes:   make(map[string]func() dynamo.System),
		integrators: make(map[string]func() dynamo.Integrator),
		maneuvers:   make(map[string]func(*rate.Profile, map[string]float64) Maneuver),
	}

	r.airframes["sport"] = func() dynamo.System { return physics.NewFixedWing() }
	r.airframes["trainer"] = func() dynamo.System { return physics.NewTrainer() }

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }

	r.maneuvers["doublet"] = func(profile *rate.Profile, params map[string]float64) Maneuver {
		half := params["half_period"]
		if half == 0 {
			half = 1.5
		}
		return NewDoublet(fullAmplitudes(profile, params), half)
	}
	r.maneuvers["step"] = func(profile *rate.Profile, params map[string]float64) Maneuver {
		at := params["at"]
		if at == 0 {
			at = 1.0
		}
		return NewStep(fullAmplitudes(profile, params), at)
	}
	r.maneuvers["sine"] = func(profile *rate.Profile, params map[string]float64) Maneuver {
		freq := params["frequency"]
		if freq == 0 {
			freq = 0.25
		}
		return NewSine(fullAmplitudes(profile, params), freq)
	}

	return r
}

// fullAmplitudes scales the profile's maximum rates so the command clears
// the tuner's 75% decision threshold.
func fullAmplitudes(profile *rate.Profile, params map[string]float64) [autotune.AxisCount]float64 {
	scale := params["amplitude"]
	if scale == 0 {
		scale = 0.9
	}

	var amps [autotune.AxisCount]float64
	for axis := autotune.AxisRoll; axis < autotune.AxisCount; axis++ {
		amps[axis] = scale * profile.MaxRate(axis)
	}
	return amps
}

func (r *Registry) GetAirframe(name string) (dynamo.System, error) {
	fn, ok := r.airframes[name]
	if !ok {
		return nil, fmt.Errorf("unknown airframe: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetManeuver(name string, profile *rate.Profile, params map[string]float64) (Maneuver, error) {
	fn, ok := r.maneuvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown maneuver: %s", name)
	}
	return fn(profile, params), nil
}

func (r *Registry) ListAirframes() []string {
	names := make([]string, 0, len(r.airframes))
	for name := range r.airframes {
		names = append(names, name)
	}
	return names
}

func (r *Registry) ListManeuvers() []string {
	names := make([]string, 0, len(r.maneuvers))
	for name := range r.maneuvers {
		names = append(names, name)
	}
	return names
}
