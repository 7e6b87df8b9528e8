package strategy

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/wastesim/waste-sim/sim"
)

// Greedy visits the containers with the most deposits since their last
// service first. Containers without deposits are skipped.
type Greedy struct {
	PerRoute int
}

// Plan implements sim.Strategy.
func (g *Greedy) Plan(s *sim.Simulator, ev *sim.ShiftPlanEvent) ([]*sim.Route, error) {
	var candidates []int
	for i, c := range s.Containers {
		if c.NumArrivals > 0 {
			candidates = append(candidates, i)
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return s.Containers[candidates[a]].NumArrivals > s.Containers[candidates[b]].NumArrivals
	})

	var routes []*sim.Route
	for _, v := range s.Vehicles {
		if len(candidates) == 0 {
			break
		}
		n := min(g.PerRoute, len(candidates))
		routes = append(routes, sim.NewRoute(candidates[:n], v, ev.Timestamp()))
		candidates = candidates[n:]
	}
	logrus.Debugf("greedy: %d routes, %d containers left waiting", len(routes), len(candidates))
	return routes, nil
}
