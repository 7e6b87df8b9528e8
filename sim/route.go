package sim

import (
	"fmt"
	"time"
)

// Route is an ordered visit plan for a single vehicle, created by a Strategy
// in response to a ShiftPlanEvent. Plan holds container indices into
// Simulator.Containers; the depot is implicit at the start and end.
type Route struct {
	Plan      []int
	Vehicle   *Vehicle
	StartTime time.Time
}

// NewRoute creates a route. The plan slice is copied.
func NewRoute(plan []int, vehicle *Vehicle, start time.Time) *Route {
	return &Route{
		Plan:      append([]int(nil), plan...),
		Vehicle:   vehicle,
		StartTime: start,
	}
}

func (r *Route) String() string {
	name := "<nil>"
	if r.Vehicle != nil {
		name = r.Vehicle.Name
	}
	return fmt.Sprintf("Route(vehicle=%s, start=%s, plan=%v)", name, r.StartTime.Format(time.DateTime), r.Plan)
}
