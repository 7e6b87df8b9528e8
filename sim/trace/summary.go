package trace

import "github.com/wastesim/waste-sim/sim"

// Summary aggregates statistics from a Recorder.
type Summary struct {
	Arrivals      int            `json:"arrivals"`
	Services      int            `json:"services"`
	ShiftPlans    int            `json:"shift_plans"`
	Routes        int            `json:"routes"`
	ArrivalVolume float64        `json:"arrival_volume"`
	ServedVolume  float64        `json:"served_volume"`
	ServicesByVeh map[string]int `json:"services_by_vehicle"`
	Overflowing   int            `json:"overflowing_services"` // served with more volume than capacity
	LastEvent     string         `json:"last_event,omitempty"`
}

// Summarize computes aggregate statistics from a Recorder. capacities maps
// container names to capacity and may be nil, in which case overflows are
// not counted. Safe for a nil Recorder.
func Summarize(r *Recorder, capacities map[string]float64) *Summary {
	s := &Summary{ServicesByVeh: make(map[string]int)}
	if r == nil {
		return s
	}

	for _, ev := range r.Events {
		switch e := ev.(type) {
		case sim.SealedArrival:
			s.Arrivals++
			s.ArrivalVolume += e.Volume
		case sim.SealedService:
			s.Services++
			s.ServedVolume += e.Volume
			s.ServicesByVeh[e.Vehicle]++
			if c, ok := capacities[e.Container]; ok && e.Volume > c {
				s.Overflowing++
			}
		case sim.SealedShiftPlan:
			s.ShiftPlans++
		}
	}
	s.Routes = len(r.Routes)
	if n := len(r.Events); n > 0 {
		s.LastEvent = r.Events[n-1].Timestamp().Format("2006-01-02 15:04:05")
	}
	return s
}

// Capacities maps container names to their capacity.
func Capacities(containers []*sim.Container) map[string]float64 {
	out := make(map[string]float64, len(containers))
	for _, c := range containers {
		out[c.Name] = c.Capacity
	}
	return out
}
