package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ratetune/internal/autotune"
	"github.com/san-kum/ratetune/internal/rate"
)

const (
	DefaultDt       = 0.002
	DefaultDuration = 60.0
	DefaultEngage   = 1.0
)

type Config struct {
	Airframe   string         `yaml:"airframe"`
	Integrator string         `yaml:"integrator"`
	Maneuver   string         `yaml:"maneuver"`
	Dt         float64        `yaml:"dt"`
	Duration   float64        `yaml:"duration"`
	Seed       int64          `yaml:"seed"`
	Engage     float64        `yaml:"engage"`
	Release    float64        `yaml:"release"`
	Profile    ProfileConfig  `yaml:"profile"`
	Gains      GainsConfig    `yaml:"gains"`
	Limits     LimitsConfig   `yaml:"limits"`
	Maneuvers  ManeuverConfig `yaml:"maneuver_params"`
}

type ProfileConfig struct {
	MaxRollRate    float64 `yaml:"max_roll_rate"`   // deg/s
	MaxPitchRate   float64 `yaml:"max_pitch_rate"`  // deg/s
	MaxYawRate     float64 `yaml:"max_yaw_rate"`    // deg/s
	MaxInclination float64 `yaml:"max_inclination"` // deg, pitch and roll
	LevelGain      float64 `yaml:"level_gain"`
	OutputLimit    float64 `yaml:"output_limit"`
}

type AxisGains struct {
	P  float64 `yaml:"p"`
	I  float64 `yaml:"i"`
	FF float64 `yaml:"ff"`
}

type GainsConfig struct {
	Roll  AxisGains `yaml:"roll"`
	Pitch AxisGains `yaml:"pitch"`
	Yaw   AxisGains `yaml:"yaw"`
}

type LimitsConfig struct {
	OvershootDwellMs  uint32  `yaml:"overshoot_dwell_ms"`
	UndershootDwellMs uint32  `yaml:"undershoot_dwell_ms"`
	DecreasePercent   float64 `yaml:"decrease_percent"`
	IncreasePercent   float64 `yaml:"increase_percent"`
	MinFF             float64 `yaml:"min_ff"`
	MaxFF             float64 `yaml:"max_ff"`
}

type ManeuverConfig struct {
	Amplitude  float64 `yaml:"amplitude"` // fraction of max rate
	HalfPeriod float64 `yaml:"half_period"`
	Frequency  float64 `yaml:"frequency"`
	At         float64 `yaml:"at"`
}

func DefaultConfig() *Config {
	return &Config{
		Airframe:   "sport",
		Integrator: "rk4",
		Maneuver:   "doublet",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Engage:     DefaultEngage,
		Profile: ProfileConfig{
			MaxRollRate:    200,
			MaxPitchRate:   150,
			MaxYawRate:     90,
			MaxInclination: 30,
			LevelGain:      20,
			OutputLimit:    500,
		},
		Gains: GainsConfig{
			Roll:  AxisGains{P: 25, I: 35, FF: 40},
			Pitch: AxisGains{P: 20, I: 35, FF: 40},
			Yaw:   AxisGains{P: 50, I: 45, FF: 40},
		},
		Limits: LimitsConfig{
			OvershootDwellMs:  100,
			UndershootDwellMs: 200,
			DecreasePercent:   8,
			IncreasePercent:   5,
			MinFF:             10,
			MaxFF:             200,
		},
		Maneuvers: ManeuverConfig{
			Amplitude:  0.9,
			HalfPeriod: 1.5,
			Frequency:  0.25,
			At:         1.0,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configuration the tuner's classification math cannot
// work against.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %f", c.Duration)
	}
	if c.Profile.MaxRollRate <= 0 || c.Profile.MaxPitchRate <= 0 || c.Profile.MaxYawRate <= 0 {
		return fmt.Errorf("config: max rates must be positive")
	}
	if c.Profile.OutputLimit <= 0 {
		return fmt.Errorf("config: output limit must be positive, got %f", c.Profile.OutputLimit)
	}
	return nil
}

// BuildProfile converts the profile section into a rate.Profile.
func (c *Config) BuildProfile() (*rate.Profile, error) {
	return rate.NewProfile(
		[autotune.AxisCount]float64{c.Profile.MaxRollRate, c.Profile.MaxPitchRate, c.Profile.MaxYawRate},
		[autotune.AxisCount]float64{c.Profile.MaxInclination, c.Profile.MaxInclination, 0},
		c.Profile.LevelGain,
		c.Profile.OutputLimit,
	)
}

// BuildGains converts the gains section into an autotune.GainSet.
func (c *Config) BuildGains() autotune.GainSet {
	conv := func(g AxisGains) autotune.Gains {
		return autotune.Gains{P: g.P, I: g.I, FF: g.FF}
	}
	return autotune.GainSet{conv(c.Gains.Roll), conv(c.Gains.Pitch), conv(c.Gains.Yaw)}
}

// BuildLimits converts the limits section into fixed-wing law limits.
// Zero-valued fields fall back to the defaults.
func (c *Config) BuildLimits() autotune.FixedWingLimits {
	limits := autotune.DefaultFixedWingLimits()
	if c.Limits.OvershootDwellMs > 0 {
		limits.OvershootDwellMs = c.Limits.OvershootDwellMs
	}
	if c.Limits.UndershootDwellMs > 0 {
		limits.UndershootDwellMs = c.Limits.UndershootDwellMs
	}
	if c.Limits.DecreasePercent > 0 {
		limits.DecreasePercent = c.Limits.DecreasePercent
	}
	if c.Limits.IncreasePercent > 0 {
		limits.IncreasePercent = c.Limits.IncreasePercent
	}
	if c.Limits.MinFF > 0 {
		limits.MinFF = c.Limits.MinFF
	}
	if c.Limits.MaxFF > 0 {
		limits.MaxFF = c.Limits.MaxFF
	}
	return limits
}

// ManeuverParams flattens the maneuver section for the registry.
func (c *Config) ManeuverParams() map[string]float64 {
	return map[string]float64{
		"amplitude":   c.Maneuvers.Amplitude,
		"half_period": c.Maneuvers.HalfPeriod,
		"frequency":   c.Maneuvers.Frequency,
		"at":          c.Maneuvers.At,
	}
}
