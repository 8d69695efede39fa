package optim

import (
	"context"

	"github.com/san-kum/ratetune/internal/config"
	"github.com/san-kum/ratetune/internal/dynamo"
	"github.com/san-kum/ratetune/internal/flight"
	"github.com/san-kum/ratetune/internal/metrics"
)

// SeedSearch sweeps initial FF seeds on all axes and returns the seed with
// the best post-flight tracking. Each grid point is a full tuning flight.
func SeedSearch(ctx context.Context, registry *flight.Registry, cfg *config.Config, airframe string, ffSeeds []float64) (float64, float64, error) {
	search := NewGridSearch([]string{"ff"}, [][]float64{ffSeeds})

	buildRun := func(params map[string]float64) (*dynamo.Result, error) {
		dyn, err := registry.GetAirframe(airframe)
		if err != nil {
			return nil, err
		}
		integ, err := registry.GetIntegrator(cfg.Integrator)
		if err != nil {
			return nil, err
		}
		profile, err := cfg.BuildProfile()
		if err != nil {
			return nil, err
		}
		maneuver, err := registry.GetManeuver(cfg.Maneuver, profile, cfg.ManeuverParams())
		if err != nil {
			return nil, err
		}

		gains := cfg.BuildGains()
		for axis := range gains {
			gains[axis].FF = params["ff"]
			gains[axis].P = params["ff"] * 0.1
		}

		h := flight.NewHarness(flight.Options{
			Profile:  profile,
			Gains:    gains,
			Limits:   cfg.BuildLimits(),
			Maneuver: maneuver,
			Dt:       cfg.Dt,
			Engage:   cfg.Engage,
			Release:  cfg.Release,
		})

		sim := dynamo.New(dyn, integ, h)
		sim.AddObserver(h)
		sim.AddMetric(metrics.NewTracking(maneuver))

		return sim.Run(ctx, dynamo.State{0, 0, 0}, dynamo.Config{
			Dt:            cfg.Dt,
			Duration:      cfg.Duration,
			ValidateState: true,
		})
	}

	bestParams, bestVal, err := search.Search(ctx, buildRun, "tracking_rms")
	if err != nil {
		return 0, 0, err
	}
	if bestParams == nil {
		return 0, bestVal, nil
	}
	return bestParams["ff"], bestVal, nil
}
