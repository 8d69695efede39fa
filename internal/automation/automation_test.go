package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/ratetune/internal/config"
	"github.com/san-kum/ratetune/internal/flight"
)

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")

	yaml := `name: two-pass
description: tune sport then refine
steps:
  - airframe: sport
    maneuver: doublet
    duration: 5
    engage: 0.5
  - airframe: sport
    maneuver: sine
    duration: 5
    engage: 0.5
    params:
      frequency: 0.5
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if scenario.Name != "two-pass" {
		t.Errorf("expected name 'two-pass', got '%s'", scenario.Name)
	}
	if len(scenario.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(scenario.Steps))
	}
	if scenario.Steps[1].Params["frequency"] != 0.5 {
		t.Errorf("expected frequency param 0.5, got %f", scenario.Steps[1].Params["frequency"])
	}
}

func TestRunScenarioCarriesGains(t *testing.T) {
	scenario := &Scenario{
		Name: "carryover",
		Steps: []ScenarioStep{
			{Airframe: "sport", Maneuver: "doublet", Duration: 8, Engage: 0.5},
			{Airframe: "sport", Maneuver: "doublet", Duration: 2, Engage: 0.5},
		},
	}

	cfg := config.DefaultConfig()
	registry := flight.NewRegistry()

	results, err := RunScenario(context.Background(), scenario, registry, cfg)
	if err != nil {
		t.Fatalf("scenario failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 step results, got %d", len(results))
	}

	if results[0].Result.StepsTaken == 0 {
		t.Error("first step took no simulation steps")
	}
	if _, ok := results[0].Result.Metrics["tracking_rms"]; !ok {
		t.Error("expected tracking_rms metric on step result")
	}

	for i, res := range results {
		for _, g := range res.FinalGains {
			if g.FF < 0 {
				t.Errorf("step %d: negative FF %f", i, g.FF)
			}
		}
	}
}

func TestRunScenarioUnknownAirframe(t *testing.T) {
	scenario := &Scenario{
		Steps: []ScenarioStep{{Airframe: "glider", Maneuver: "doublet", Duration: 1}},
	}

	_, err := RunScenario(context.Background(), scenario, flight.NewRegistry(), config.DefaultConfig())
	if err == nil {
		t.Error("expected error for unknown airframe")
	}
}
