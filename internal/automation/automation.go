package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ratetune/internal/autotune"
	"github.com/san-kum/ratetune/internal/config"
	"github.com/san-kum/ratetune/internal/dynamo"
	"github.com/san-kum/ratetune/internal/flight"
	"github.com/san-kum/ratetune/internal/metrics"
)

// Scenario defines a scripted sequence of tuning flights.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single tuning flight in a scenario.
type ScenarioStep struct {
	Airframe   string             `yaml:"airframe"`
	Integrator string             `yaml:"integrator"`
	Maneuver   string             `yaml:"maneuver"`
	Duration   float64            `yaml:"duration"`
	Dt         float64            `yaml:"dt"`
	Engage     float64            `yaml:"engage"`
	Release    float64            `yaml:"release"`
	Params     map[string]float64 `yaml:"params"`
}

// StepResult pairs a step's simulation result with its final gains.
type StepResult struct {
	Step       ScenarioStep
	Result     *dynamo.Result
	FinalGains autotune.GainSet
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// RunScenario executes all steps. Gains carry over between steps: each
// step's tuned result seeds the next flight, mimicking repeated tuning
// passes on the same airframe.
func RunScenario(ctx context.Context, scenario *Scenario, registry *flight.Registry, cfg *config.Config) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	gains := cfg.BuildGains()

	for i, step := range scenario.Steps {
		fmt.Printf("running step %d/%d: %s/%s\n", i+1, len(scenario.Steps), step.Airframe, step.Maneuver)

		dyn, err := registry.GetAirframe(step.Airframe)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		if t, ok := dyn.(dynamo.Configurable); ok {
			for k, v := range step.Params {
				if err := t.SetParam(k, v); err != nil {
					continue
				}
			}
		}

		integName := step.Integrator
		if integName == "" {
			integName = "rk4"
		}
		integ, err := registry.GetIntegrator(integName)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		profile, err := cfg.BuildProfile()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		maneuver, err := registry.GetManeuver(step.Maneuver, profile, step.Params)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		dt := step.Dt
		if dt == 0 {
			dt = cfg.Dt
		}
		duration := step.Duration
		if duration == 0 {
			duration = cfg.Duration
		}

		h := flight.NewHarness(flight.Options{
			Profile:  profile,
			Gains:    gains,
			Limits:   cfg.BuildLimits(),
			Maneuver: maneuver,
			Dt:       dt,
			Engage:   step.Engage,
			Release:  step.Release,
		})

		sim := dynamo.New(dyn, integ, h)
		sim.AddObserver(h)
		sim.AddMetric(metrics.NewTracking(maneuver))
		sim.AddMetric(metrics.NewSaturation())

		result, err := sim.Run(ctx, dynamo.State{0, 0, 0}, dynamo.Config{
			Dt:            dt,
			Duration:      duration,
			ValidateState: true,
		})
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		gains = h.FinalGains()
		results = append(results, StepResult{Step: step, Result: result, FinalGains: gains})
	}

	return results, nil
}
