// sim/simulator.go
package sim

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// Depot is the matrix location of the depot. Container i sits at location i + 1.
const Depot = 0

// Store durably records sealed events and routes. Only sealed records are
// accepted: a live event cannot be persisted.
type Store interface {
	// StoreEvent records a sealed event.
	StoreEvent(ev SealedEvent) error
	// StoreRoute records a route and returns its identifier, which must be positive.
	StoreRoute(route *Route) (int64, error)
}

// Strategy produces the routes to drive in response to a shift-plan event.
// It may read simulator state but must not advance time or mutate containers.
type Strategy interface {
	Plan(sim *Simulator, event *ShiftPlanEvent) ([]*Route, error)
}

// StrategyFunc adapts a plain function to the Strategy interface.
type StrategyFunc func(sim *Simulator, event *ShiftPlanEvent) ([]*Route, error)

// Plan implements Strategy.
func (f StrategyFunc) Plan(sim *Simulator, event *ShiftPlanEvent) ([]*Route, error) {
	return f(sim, event)
}

// Simulator holds the static simulation environment and runs the event loop.
// The clock and the event queue belong to the Simulator instance, so separate
// simulators may run concurrently; a single Simulator must not.
type Simulator struct {
	Distances  *mat.Dense // meters, indexed by location
	Durations  *mat.Dense // seconds, indexed by location
	Containers []*Container
	Vehicles   []*Vehicle
	RNG        *PartitionedRNG
	Config     Config

	clock  time.Time
	events *EventQueue
}

// NewSimulator validates the environment and creates a Simulator. Both
// matrices must be square with one row for the depot plus one per container.
func NewSimulator(rng *PartitionedRNG, distances, durations *mat.Dense, containers []*Container, vehicles []*Vehicle, cfg Config) (*Simulator, error) {
	if rng == nil {
		return nil, fmt.Errorf("simulator: RNG must not be nil")
	}
	if distances == nil || durations == nil {
		return nil, fmt.Errorf("simulator: distance and duration matrices must not be nil")
	}
	n := len(containers) + 1
	for name, m := range map[string]*mat.Dense{"distance": distances, "duration": durations} {
		if r, c := m.Dims(); r != n || c != n {
			return nil, fmt.Errorf("simulator: %s matrix is %dx%d, want %dx%d", name, r, c, n, n)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}
	if len(vehicles) == 0 {
		logrus.Warnf("simulator: no vehicles; no container will ever be serviced")
	}
	return &Simulator{
		Distances:  distances,
		Durations:  durations,
		Containers: containers,
		Vehicles:   vehicles,
		RNG:        rng,
		Config:     cfg,
		events:     NewEventQueue(),
	}, nil
}

// Now returns the current simulation time.
func (sim *Simulator) Now() time.Time {
	return sim.clock
}

// Pending returns the number of events still queued in the current run.
func (sim *Simulator) Pending() int {
	return sim.events.Len()
}

// LocationOf returns the matrix location of the container at index idx.
func LocationOf(idx int) int {
	return idx + 1
}

// TravelTime returns the driving time between two matrix locations.
func (sim *Simulator) TravelTime(from, to int) time.Duration {
	return time.Duration(sim.Durations.At(from, to) * float64(time.Second))
}

// Run seeds the event queue with events and processes it until empty.
// Every popped event is sealed and stored before it changes any entity.
// The run aborts on the first causality or integrity violation, or when the
// store or the strategy fails.
func (sim *Simulator) Run(store Store, strategy Strategy, events []Event) error {
	sim.clock = time.Time{}
	sim.events = NewEventQueue()
	for _, ev := range events {
		sim.events.Push(ev)
	}
	logrus.Infof("Starting simulation with %d initial events, %d containers, %d vehicles",
		len(events), len(sim.Containers), len(sim.Vehicles))

	processed := 0
	for !sim.events.IsEmpty() {
		ev, seq := sim.events.Pop()

		if ev.Timestamp().Before(sim.clock) {
			err := fmt.Errorf("%w: %s is before current time %s", ErrCausality, ev, fmtTime(sim.clock))
			logrus.Error(err)
			return err
		}
		sim.clock = ev.Timestamp()

		// Seal first: the stored record must show entity state as of now,
		// independent of whatever happens to the referenced entities later.
		if err := store.StoreEvent(ev.seal(seq)); err != nil {
			err = fmt.Errorf("store %s: %w", ev, err)
			logrus.Error(err)
			return err
		}

		if err := sim.dispatch(ev, store, strategy); err != nil {
			logrus.Error(err)
			return err
		}
		processed++
	}

	logrus.Infof("Simulation ended at %s after %d events", fmtTime(sim.clock), processed)
	return nil
}

func (sim *Simulator) dispatch(ev Event, store Store, strategy Strategy) error {
	switch e := ev.(type) {
	case *ArrivalEvent:
		e.Container.Arrive(e.Volume)
		logrus.Debugf("Arrival at %s at t = %s.", e.Container.Name, fmtTime(sim.clock))
	case *ServiceEvent:
		e.Container.Service()
		logrus.Debugf("Service at %s at t = %s.", e.Container.Name, fmtTime(sim.clock))
	case *ShiftPlanEvent:
		logrus.Infof("Generating shift plan at t = %s.", fmtTime(e.Timestamp()))
		routes, err := strategy.Plan(sim, e)
		if err != nil {
			return fmt.Errorf("strategy at %s: %w", fmtTime(sim.clock), err)
		}
		for _, route := range routes {
			if err := sim.scheduleRoute(route, store); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
	return nil
}

// scheduleRoute persists route and pushes one ServiceEvent per planned stop.
// Service times start from the current clock and accumulate travel time from
// the previous stop (the depot, initially) plus the dwell time per container.
func (sim *Simulator) scheduleRoute(route *Route, store Store) error {
	if err := sim.checkRoute(route); err != nil {
		return err
	}
	id, err := store.StoreRoute(route)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRouteNotStored, route, err)
	}
	if id <= 0 {
		return fmt.Errorf("%w: %s: got id %d", ErrRouteNotStored, route, id)
	}

	start := sim.clock
	at := start
	prev := Depot
	breaks := sim.Config.Breaks
	nextBreak := 0

	for _, idx := range route.Plan {
		loc := LocationOf(idx)

		afterBreak := false
		for nextBreak < len(breaks) && !at.Before(start.Add(breaks[nextBreak].Offset)) {
			at = at.Add(sim.TravelTime(prev, Depot)).Add(breaks[nextBreak].Duration)
			prev = Depot
			afterBreak = true
			nextBreak++
		}

		at = at.Add(sim.TravelTime(prev, loc))
		ev := NewServiceEvent(at, id, sim.Containers[idx], route.Vehicle, loc)
		ev.AfterBreak = afterBreak
		sim.events.Push(ev)
		at = at.Add(sim.Config.TimePerContainer)
		prev = loc
	}

	logrus.Debugf("Route %d for %s: %d stops, back at depot around %s",
		id, route.Vehicle.Name, len(route.Plan), fmtTime(at.Add(sim.TravelTime(prev, Depot))))
	return nil
}

func (sim *Simulator) checkRoute(route *Route) error {
	if route == nil || route.Vehicle == nil {
		return fmt.Errorf("%w: route without vehicle", ErrInvalidRoute)
	}
	for _, idx := range route.Plan {
		if idx < 0 || idx >= len(sim.Containers) {
			return fmt.Errorf("%w: %s visits unknown container index %d", ErrInvalidRoute, route, idx)
		}
	}
	return nil
}
