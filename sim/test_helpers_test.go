package sim

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var t0 = time.Date(2024, time.March, 4, 7, 0, 0, 0, time.UTC)

// recordingStore keeps sealed events and routes in memory.
type recordingStore struct {
	events   []SealedEvent
	routes   []*Route
	routeIDs []int64
	routeErr error
	eventErr error
	zeroID   bool
}

func (s *recordingStore) StoreEvent(ev SealedEvent) error {
	if s.eventErr != nil {
		return s.eventErr
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingStore) StoreRoute(r *Route) (int64, error) {
	if s.routeErr != nil {
		return 0, s.routeErr
	}
	if s.zeroID {
		return 0, nil
	}
	s.routes = append(s.routes, r)
	id := int64(len(s.routes))
	s.routeIDs = append(s.routeIDs, id)
	return id, nil
}

func (s *recordingStore) services() []SealedService {
	var out []SealedService
	for _, ev := range s.events {
		if svc, ok := ev.(SealedService); ok {
			out = append(out, svc)
		}
	}
	return out
}

var errStoreDown = errors.New("store down")

// fixedStrategy returns the same routes on every shift plan, and records when it was called.
type fixedStrategy struct {
	plans  [][]int
	calls  []time.Time
	queued []int
}

func (f *fixedStrategy) Plan(sim *Simulator, ev *ShiftPlanEvent) ([]*Route, error) {
	f.calls = append(f.calls, sim.Now())
	f.queued = append(f.queued, sim.Pending())
	var routes []*Route
	for i, plan := range f.plans {
		routes = append(routes, NewRoute(plan, sim.Vehicles[i%len(sim.Vehicles)], ev.Timestamp()))
	}
	return routes, nil
}

var nullStrategy = StrategyFunc(func(*Simulator, *ShiftPlanEvent) ([]*Route, error) { return nil, nil })

func flatRates(r float64) []float64 {
	rates := make([]float64, HoursInDay)
	for i := range rates {
		rates[i] = r
	}
	return rates
}

// newTestSimulator builds a simulator with n containers and the given
// (n+1)x(n+1) duration matrix, in seconds. Distances equal durations.
func newTestSimulator(t *testing.T, durations [][]float64, cfg Config) *Simulator {
	t.Helper()
	n := len(durations)
	data := make([]float64, 0, n*n)
	for _, row := range durations {
		require.Len(t, row, n)
		data = append(data, row...)
	}
	containers := make([]*Container, n-1)
	for i := range containers {
		c, err := NewContainer(string(rune('A'+i)), flatRates(1), 100, Location{})
		require.NoError(t, err)
		containers[i] = c
	}
	vehicles := []*Vehicle{{Name: "V", Capacity: 1000}}
	sim, err := NewSimulator(NewPartitionedRNG(1), mat.NewDense(n, n, data), mat.NewDense(n, n, data), containers, vehicles, cfg)
	require.NoError(t, err)
	return sim
}
