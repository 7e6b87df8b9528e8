package workload

import (
	"fmt"
	"time"

	"github.com/wastesim/waste-sim/sim"
)

// ShiftPlans returns a ShiftPlanEvent for every moment of cfg's cron schedule
// in [cfg.Start, cfg.Start + horizon].
func ShiftPlans(cfg sim.Config, horizon time.Duration) ([]sim.Event, error) {
	sched, err := cfg.ShiftSchedule()
	if err != nil {
		return nil, fmt.Errorf("shift plans: %w", err)
	}
	end := cfg.Start.Add(horizon)

	var events []sim.Event
	// cron schedules only return times strictly after their argument.
	for at := sched.Next(cfg.Start.Add(-time.Second)); !at.IsZero() && !at.After(end); at = sched.Next(at) {
		events = append(events, sim.NewShiftPlanEvent(at))
	}
	return events, nil
}

// Initial returns the complete initial event set for a run: all arrivals and
// all shift plans up to the horizon.
func Initial(s *sim.Simulator, horizon time.Duration) ([]sim.Event, error) {
	plans, err := ShiftPlans(s.Config, horizon)
	if err != nil {
		return nil, err
	}
	arrivals := Arrivals(s.RNG.ForSubsystem(sim.SubsystemArrivals), s.Containers, s.Config, horizon)
	return append(arrivals, plans...), nil
}
