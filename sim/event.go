package sim

import (
	"fmt"
	"time"
)

// Event is a live simulation event. The set of kinds is closed: ArrivalEvent,
// ServiceEvent and ShiftPlanEvent. Live events reference shared, mutable
// entities; the Simulator seals each event into a SealedEvent right after it
// is popped, and only the sealed record is ever persisted.
type Event interface {
	Timestamp() time.Time
	fmt.Stringer

	// seal snapshots the values this event shows, as of now. Called once,
	// by the Simulator, before persistence and before dispatch.
	seal(seq int64) SealedEvent
}

// SealedEvent is an immutable record of a processed event. It holds values
// only, so later mutation of containers or vehicles cannot change it.
type SealedEvent interface {
	Timestamp() time.Time
	Sequence() int64
	sealed()
}

// ArrivalEvent represents a deposit of waste into a container.
type ArrivalEvent struct {
	time      time.Time
	Container *Container
	Volume    float64 // in liters
}

// NewArrivalEvent creates an arrival at time t of the given volume.
func NewArrivalEvent(t time.Time, container *Container, volume float64) *ArrivalEvent {
	return &ArrivalEvent{time: t, Container: container, Volume: volume}
}

// Timestamp returns the scheduled time of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() time.Time {
	return e.time
}

func (e *ArrivalEvent) String() string {
	return fmt.Sprintf("ArrivalEvent(time=%s, container=%s, volume=%.2f)", fmtTime(e.time), e.Container.Name, e.Volume)
}

func (e *ArrivalEvent) seal(seq int64) SealedEvent {
	return SealedArrival{
		Seq:       seq,
		Time:      e.time,
		Container: e.Container.Name,
		Volume:    e.Volume,
	}
}

// ServiceEvent represents a vehicle emptying a container as part of a route.
type ServiceEvent struct {
	time       time.Time
	RouteID    int64
	Container  *Container
	Vehicle    *Vehicle
	Location   int  // matrix index of the container
	AfterBreak bool // the vehicle returned to the depot for a break before this stop
}

// NewServiceEvent creates a service of container by vehicle at time t, as part
// of route routeID. location is the container's matrix index, see LocationOf.
func NewServiceEvent(t time.Time, routeID int64, container *Container, vehicle *Vehicle, location int) *ServiceEvent {
	return &ServiceEvent{time: t, RouteID: routeID, Container: container, Vehicle: vehicle, Location: location}
}

// Timestamp returns the scheduled time of the ServiceEvent.
func (e *ServiceEvent) Timestamp() time.Time {
	return e.time
}

func (e *ServiceEvent) String() string {
	return fmt.Sprintf("ServiceEvent(time=%s, route=%d, container=%s, vehicle=%s)",
		fmtTime(e.time), e.RouteID, e.Container.Name, e.Vehicle.Name)
}

func (e *ServiceEvent) seal(seq int64) SealedEvent {
	return SealedService{
		Seq:         seq,
		Time:        e.time,
		RouteID:     e.RouteID,
		Container:   e.Container.Name,
		Location:    e.Location,
		Vehicle:     e.Vehicle.Name,
		NumArrivals: e.Container.NumArrivals,
		Volume:      e.Container.Volume,
		AfterBreak:  e.AfterBreak,
	}
}

// ShiftPlanEvent is the recurring moment at which the Strategy plans routes.
type ShiftPlanEvent struct {
	time time.Time
}

// NewShiftPlanEvent creates a shift-plan event at time t.
func NewShiftPlanEvent(t time.Time) *ShiftPlanEvent {
	return &ShiftPlanEvent{time: t}
}

// Timestamp returns the scheduled time of the ShiftPlanEvent.
func (e *ShiftPlanEvent) Timestamp() time.Time {
	return e.time
}

func (e *ShiftPlanEvent) String() string {
	return fmt.Sprintf("ShiftPlanEvent(time=%s)", fmtTime(e.time))
}

func (e *ShiftPlanEvent) seal(seq int64) SealedEvent {
	return SealedShiftPlan{Seq: seq, Time: e.time}
}

// SealedArrival is the persisted record of an ArrivalEvent.
type SealedArrival struct {
	Seq       int64
	Time      time.Time
	Container string
	Volume    float64
}

func (s SealedArrival) Timestamp() time.Time { return s.Time }
func (s SealedArrival) Sequence() int64      { return s.Seq }
func (SealedArrival) sealed()                {}

// SealedService is the persisted record of a ServiceEvent. NumArrivals and
// Volume are the container's counters just before it was emptied.
type SealedService struct {
	Seq         int64
	Time        time.Time
	RouteID     int64
	Container   string
	Location    int
	Vehicle     string
	NumArrivals int
	Volume      float64
	AfterBreak  bool
}

func (s SealedService) Timestamp() time.Time { return s.Time }
func (s SealedService) Sequence() int64      { return s.Seq }
func (SealedService) sealed()                {}

// SealedShiftPlan is the persisted record of a ShiftPlanEvent.
type SealedShiftPlan struct {
	Seq  int64
	Time time.Time
}

func (s SealedShiftPlan) Timestamp() time.Time { return s.Time }
func (s SealedShiftPlan) Sequence() int64      { return s.Seq }
func (SealedShiftPlan) sealed()                {}

func fmtTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
