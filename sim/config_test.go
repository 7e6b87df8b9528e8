package sim

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3*time.Minute, cfg.TimePerContainer)
	assert.Empty(t, cfg.Breaks)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
start: 2024-03-04T00:00:00Z
time_per_container: 5m
breaks:
  - after: 2h
    duration: 30m
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), cfg.Start.UTC())
	assert.Equal(t, 5*time.Minute, cfg.TimePerContainer)
	assert.Equal(t, []Break{{Offset: 2 * time.Hour, Duration: 30 * time.Minute}}, cfg.Breaks)
	// untouched fields keep their defaults
	assert.Equal(t, "0 7 * * *", cfg.ShiftPlanSchedule)
	assert.Equal(t, []float64{30, 65}, cfg.VolumeRange)
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", "shift_plan_every: 7h\n"},
		{"bad cron", "shift_plan_schedule: every morning\n"},
		{"volume range length", "volume_range: [30]\n"},
		{"inverted volume range", "volume_range: [65, 30]\n"},
		{"negative dwell", "time_per_container: -1m\n"},
		{"unordered breaks", "breaks:\n  - {after: 3h, duration: 10m}\n  - {after: 1h, duration: 10m}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestShiftSchedule_NextMorning(t *testing.T) {
	sched, err := DefaultConfig().ShiftSchedule()
	require.NoError(t, err)
	next := sched.Next(time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.January, 2, 7, 0, 0, 0, time.UTC), next)
}
