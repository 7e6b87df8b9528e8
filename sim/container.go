// Defines the Container struct that models an underground waste container.
// Tracks the number of arrivals and the volume deposited since the last service.

package sim

import (
	"fmt"
	"math"
	"time"
)

// HoursInDay is the number of clock hours covered by a container's rate profile.
const HoursInDay = 24

// Location is a (latitude, longitude) pair.
type Location struct {
	Lat float64
	Lon float64
}

// Container models an underground container. Arrivals and services are the
// only operations changing NumArrivals and Volume, and both are applied by the
// Simulator while dispatching events.
type Container struct {
	Name             string
	Rates            [HoursInDay]float64 // arrival rates per clock hour [0 - 23]
	Capacity         float64             // in liters
	CorrectionFactor float64             // municipality's capacity correction factor
	Location         Location
	TWLate           time.Duration // late time window bound, as an offset from midnight

	NumArrivals int     // arrivals since last service
	Volume      float64 // current volume in liters
}

// NewContainer creates a container with the given hourly rates and capacity.
// The correction factor defaults to 1 and the late time window to the end of the day.
func NewContainer(name string, rates []float64, capacity float64, loc Location) (*Container, error) {
	if len(rates) != HoursInDay {
		return nil, fmt.Errorf("container %s: expected %d hourly rates, got %d", name, HoursInDay, len(rates))
	}
	for h, r := range rates {
		if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("container %s: rate at hour %d must be finite and non-negative, got %v", name, h, r)
		}
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("container %s: capacity must be positive, got %v", name, capacity)
	}
	c := &Container{
		Name:             name,
		Capacity:         capacity,
		CorrectionFactor: 1.0,
		Location:         loc,
		TWLate:           HoursInDay*time.Hour - time.Nanosecond,
	}
	copy(c.Rates[:], rates)
	return c, nil
}

// CorrectedCapacity returns the capacity with the correction factor applied.
func (c *Container) CorrectedCapacity() float64 {
	return c.CorrectionFactor * c.Capacity
}

// Arrive registers a deposit of the given volume.
func (c *Container) Arrive(volume float64) {
	c.NumArrivals++
	c.Volume += volume
}

// Service empties the container.
func (c *Container) Service() {
	c.NumArrivals = 0
	c.Volume = 0.0
}

func (c *Container) String() string {
	return fmt.Sprintf("Container(name=%s, num_arrivals=%d, capacity=%v)", c.Name, c.NumArrivals, c.Capacity)
}
