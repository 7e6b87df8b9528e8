// Package sim provides the discrete-event simulation kernel for waste-sim.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - container.go: Container state and its two mutations (Arrive, Service)
//   - event.go: Live events (Arrival, Service, ShiftPlan) and their sealed records
//   - queue.go: The (timestamp, sequence) ordered event queue
//   - simulator.go: The event loop, causality check, and route expansion
//
// # Architecture
//
// The sim package defines the entities, events and the two collaborator
// interfaces; implementations live in sub-packages:
//   - sim/store/: SQLite catalog loading and result recording
//   - sim/strategy/: Routing strategies (null, random, greedy)
//   - sim/workload/: Initial arrival and shift-plan events up to a horizon
//   - sim/measures/: Performance measures over a result database
//   - sim/trace/: In-memory recording of a run
//
// # Key Interfaces
//
//   - Store: persists sealed events and routes; only sealed records are accepted
//   - Strategy: turns a shift-plan event into vehicle routes
package sim
