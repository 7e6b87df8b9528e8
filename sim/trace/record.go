// Package trace records a simulation run in memory. A Recorder is a
// sim.Store that keeps every sealed event and route, for tests and for dry
// runs that should not touch a database.
package trace

import (
	"fmt"

	"github.com/wastesim/waste-sim/sim"
)

// RouteRecord captures a stored route with its assigned identifier.
type RouteRecord struct {
	ID      int64
	Vehicle string
	Plan    []int
}

// Recorder collects sealed events and routes in processing order.
type Recorder struct {
	Events []sim.SealedEvent
	Routes []RouteRecord
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Events: make([]sim.SealedEvent, 0),
		Routes: make([]RouteRecord, 0),
	}
}

// StoreEvent appends a sealed event.
func (r *Recorder) StoreEvent(ev sim.SealedEvent) error {
	r.Events = append(r.Events, ev)
	return nil
}

// StoreRoute appends a route. Identifiers are 1, 2, 3, ... in storing order.
func (r *Recorder) StoreRoute(route *sim.Route) (int64, error) {
	if route.Vehicle == nil {
		return 0, fmt.Errorf("store route: no vehicle")
	}
	id := int64(len(r.Routes) + 1)
	r.Routes = append(r.Routes, RouteRecord{
		ID:      id,
		Vehicle: route.Vehicle.Name,
		Plan:    append([]int(nil), route.Plan...),
	})
	return id, nil
}

// Services returns the recorded service events.
func (r *Recorder) Services() []sim.SealedService {
	var out []sim.SealedService
	for _, ev := range r.Events {
		if s, ok := ev.(sim.SealedService); ok {
			out = append(out, s)
		}
	}
	return out
}
