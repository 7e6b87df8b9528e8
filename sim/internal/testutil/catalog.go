// Package testutil provides shared test fixtures for the waste-sim packages:
// a small container and vehicle catalog with matching distance and duration
// matrices.
package testutil

import (
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/wastesim/waste-sim/sim"
)

// Start is the simulation epoch used by fixtures (a Monday).
var Start = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Catalog is a static simulation environment.
type Catalog struct {
	Containers []*sim.Container
	Vehicles   []*sim.Vehicle
	Distances  *mat.Dense // meters
	Durations  *mat.Dense // seconds
}

// SmallCatalog returns three containers on a line east of the depot, 1 km
// apart, and two vehicles. Driving 1 km takes two minutes.
//
//	depot(0) -- c0(1) -- c1(2) -- c2(3)
func SmallCatalog(t *testing.T) Catalog {
	t.Helper()

	names := []string{"Grote Markt", "Vismarkt", "Zuiderdiep"}
	rates := []float64{2, 1, 0.5}
	containers := make([]*sim.Container, len(names))
	for i, name := range names {
		hourly := make([]float64, sim.HoursInDay)
		for h := range hourly {
			hourly[h] = rates[i]
		}
		c, err := sim.NewContainer(name, hourly, 5000, sim.Location{Lat: 53.2, Lon: 6.56 + 0.01*float64(i)})
		if err != nil {
			t.Fatalf("fixture container %s: %v", name, err)
		}
		containers[i] = c
	}

	n := len(containers) + 1
	distances := mat.NewDense(n, n, nil)
	durations := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			km := float64(i - j)
			if km < 0 {
				km = -km
			}
			distances.Set(i, j, 1000*km)
			durations.Set(i, j, 120*km)
		}
	}

	return Catalog{
		Containers: containers,
		Vehicles: []*sim.Vehicle{
			{Name: "truck-1", Capacity: 20000},
			{Name: "truck-2", Capacity: 20000},
		},
		Distances: distances,
		Durations: durations,
	}
}

// Config returns the default config starting at Start.
func Config() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Start = Start
	return cfg
}

// Simulator builds a simulator over the catalog.
func (c Catalog) Simulator(t *testing.T, seed int64, cfg sim.Config) *sim.Simulator {
	t.Helper()
	s, err := sim.NewSimulator(sim.NewPartitionedRNG(seed), c.Distances, c.Durations, c.Containers, c.Vehicles, cfg)
	if err != nil {
		t.Fatalf("fixture simulator: %v", err)
	}
	return s
}
