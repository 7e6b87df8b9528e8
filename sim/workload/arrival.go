// Package workload generates the initial event set of a simulation run:
// deposits at every container and the recurring shift-plan moments, up to a
// horizon. The kernel itself enforces no horizon.
package workload

import (
	"math/rand"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wastesim/waste-sim/sim"
)

// ArrivalTimes samples deposit times at container c in [from, until).
// Arrivals follow a Poisson process whose rate (per hour) is piecewise
// constant over clock hours, taken from c.Rates. Since inter-arrival times
// are memoryless, sampling restarts at every hour boundary.
func ArrivalTimes(rng *rand.Rand, c *sim.Container, from, until time.Time) []time.Time {
	var times []time.Time
	for slot := from; slot.Before(until); {
		slotEnd := slot.Truncate(time.Hour).Add(time.Hour)
		if slotEnd.After(until) {
			slotEnd = until
		}
		rate := c.Rates[slot.Hour()]
		if rate > 0 {
			at := slot
			for {
				// Compare in hours: for tiny rates the gap overflows a Duration.
				gap := rng.ExpFloat64() / rate
				if gap >= slotEnd.Sub(at).Hours() {
					break
				}
				at = at.Add(time.Duration(gap * float64(time.Hour)))
				if !at.Before(slotEnd) {
					break
				}
				times = append(times, at)
			}
		}
		slot = slotEnd
	}
	return times
}

// Arrivals generates ArrivalEvents for every container over
// [cfg.Start, cfg.Start + horizon). Volumes are uniform over cfg.VolumeRange.
// Containers are sampled in catalog order from a single stream, so a fixed
// seed reproduces the same events. The result is sorted by time.
func Arrivals(rng *rand.Rand, containers []*sim.Container, cfg sim.Config, horizon time.Duration) []sim.Event {
	from := cfg.Start
	until := from.Add(horizon)
	lo, hi := cfg.VolumeRange[0], cfg.VolumeRange[1]

	var events []sim.Event
	for _, c := range containers {
		for _, at := range ArrivalTimes(rng, c, from, until) {
			volume := lo + rng.Float64()*(hi-lo)
			events = append(events, sim.NewArrivalEvent(at, c, volume))
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp().Before(events[j].Timestamp())
	})

	logrus.Infof("Generated %d arrivals at %d containers over %s", len(events), len(containers), horizon)
	return events
}
