package strategy

import (
	"github.com/sirupsen/logrus"

	"github.com/wastesim/waste-sim/sim"
)

// Random gives every vehicle up to PerRoute containers drawn uniformly at
// random. No container is visited by two vehicles in the same shift.
type Random struct {
	PerRoute int
}

// Plan implements sim.Strategy.
func (r *Random) Plan(s *sim.Simulator, ev *sim.ShiftPlanEvent) ([]*sim.Route, error) {
	rng := s.RNG.ForSubsystem(sim.SubsystemStrategy)
	order := rng.Perm(len(s.Containers))

	var routes []*sim.Route
	for _, v := range s.Vehicles {
		if len(order) == 0 {
			break
		}
		n := min(r.PerRoute, len(order))
		routes = append(routes, sim.NewRoute(order[:n], v, ev.Timestamp()))
		order = order[n:]
	}
	logrus.Debugf("random: %d routes at %s", len(routes), ev.Timestamp().Format("2006-01-02 15:04"))
	return routes, nil
}
