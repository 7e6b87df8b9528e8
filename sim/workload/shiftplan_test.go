package workload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastesim/waste-sim/sim"
)

func TestShiftPlans_DailyAtSeven(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Start = start

	events, err := ShiftPlans(cfg, 72*time.Hour)
	require.NoError(t, err)

	require.Len(t, events, 3)
	for day, ev := range events {
		_, ok := ev.(*sim.ShiftPlanEvent)
		require.True(t, ok)
		assert.Equal(t, start.Add(time.Duration(day)*24*time.Hour+7*time.Hour), ev.Timestamp())
	}
}

func TestShiftPlans_HorizonIsInclusive(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Start = start

	events, err := ShiftPlans(cfg, 7*time.Hour)
	require.NoError(t, err)
	require.Len(t, events, 1)

	events, err = ShiftPlans(cfg, 7*time.Hour-time.Minute)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestShiftPlans_StartOnScheduleIsIncluded(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Start = start.Add(7 * time.Hour)
	cfg.ShiftPlanSchedule = "0 7,13 * * 1-5"

	events, err := ShiftPlans(cfg, 24*time.Hour)
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, cfg.Start, events[0].Timestamp())
	assert.Equal(t, cfg.Start.Add(6*time.Hour), events[1].Timestamp())
	assert.Equal(t, cfg.Start.Add(24*time.Hour), events[2].Timestamp())
}

func TestShiftPlans_InvalidSchedule(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.ShiftPlanSchedule = "every morning"
	_, err := ShiftPlans(cfg, time.Hour)
	assert.Error(t, err)
}
