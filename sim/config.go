package sim

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Break is a pause taken once per route, Offset into the route. The vehicle
// drives back to the depot for it.
type Break struct {
	Offset   time.Duration `yaml:"after"`
	Duration time.Duration `yaml:"duration"`
}

// Config groups the simulation parameters that describe fixed municipality
// processes. Loaded from YAML via LoadConfig(path).
type Config struct {
	Start             time.Time     `yaml:"start"`               // simulation epoch
	TimePerContainer  time.Duration `yaml:"time_per_container"`  // dwell time per serviced container
	ShiftPlanSchedule string        `yaml:"shift_plan_schedule"` // standard 5-field cron expression
	VolumeRange       []float64     `yaml:"volume_range"`        // [min, max] deposit volume, in liters
	Breaks            []Break       `yaml:"breaks"`
}

// DefaultConfig returns the municipality's current process parameters:
// shift planning at 07:00, three minutes per container, deposits of 30-65 liters.
func DefaultConfig() Config {
	return Config{
		Start:             time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		TimePerContainer:  3 * time.Minute,
		ShiftPlanSchedule: "0 7 * * *",
		VolumeRange:       []float64{30, 65},
	}
}

// LoadConfig reads a YAML config file. Fields absent from the file keep
// their DefaultConfig values. Unknown fields are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config for values the simulator cannot work with.
func (c Config) Validate() error {
	if c.TimePerContainer < 0 {
		return fmt.Errorf("time_per_container must be non-negative, got %s", c.TimePerContainer)
	}
	if len(c.VolumeRange) != 2 {
		return fmt.Errorf("volume_range must have exactly two values, got %d", len(c.VolumeRange))
	}
	if c.VolumeRange[0] < 0 || c.VolumeRange[0] > c.VolumeRange[1] {
		return fmt.Errorf("volume_range must satisfy 0 <= min <= max, got %v", c.VolumeRange)
	}
	if _, err := c.ShiftSchedule(); err != nil {
		return err
	}
	for i, b := range c.Breaks {
		if b.Offset < 0 || b.Duration < 0 {
			return fmt.Errorf("break %d: offset and duration must be non-negative", i)
		}
		if i > 0 && b.Offset < c.Breaks[i-1].Offset {
			return fmt.Errorf("break %d: breaks must be listed in order of offset", i)
		}
	}
	if c.Start.IsZero() {
		logrus.Warnf("config start time is unset; arrivals and shift plans start at %s", c.Start)
	}
	return nil
}

// ShiftSchedule parses ShiftPlanSchedule.
func (c Config) ShiftSchedule() (cron.Schedule, error) {
	sched, err := cron.ParseStandard(c.ShiftPlanSchedule)
	if err != nil {
		return nil, fmt.Errorf("invalid shift_plan_schedule %q: %w", c.ShiftPlanSchedule, err)
	}
	return sched, nil
}
