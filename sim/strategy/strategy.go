// Package strategy provides the routing strategies that answer shift-plan
// events. Strategies only read simulator state; they never advance the clock
// or touch container counters.
package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wastesim/waste-sim/sim"
)

// Options configures the built-in strategies.
type Options struct {
	// ContainersPerRoute caps the number of stops per vehicle and shift.
	ContainersPerRoute int
}

// DefaultOptions returns the options used by the CLI when no flag is set.
func DefaultOptions() Options {
	return Options{ContainersPerRoute: 10}
}

// validStrategies is the set of recognized strategy names.
var validStrategies = map[string]bool{"null": true, "random": true, "greedy": true}

// IsValid returns true if name is a recognized strategy.
func IsValid(name string) bool { return validStrategies[name] }

// ValidNames returns the recognized strategy names, sorted.
func ValidNames() []string {
	names := make([]string, 0, len(validStrategies))
	for n := range validStrategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New creates the strategy registered under name.
func New(name string, opts Options) (sim.Strategy, error) {
	if !IsValid(name) {
		return nil, fmt.Errorf("unknown strategy %q; valid: %s", name, strings.Join(ValidNames(), ", "))
	}
	if name != "null" && opts.ContainersPerRoute <= 0 {
		return nil, fmt.Errorf("strategy %s: containers per route must be positive, got %d", name, opts.ContainersPerRoute)
	}
	switch name {
	case "null":
		return Null{}, nil
	case "random":
		return &Random{PerRoute: opts.ContainersPerRoute}, nil
	case "greedy":
		return &Greedy{PerRoute: opts.ContainersPerRoute}, nil
	default:
		panic(fmt.Sprintf("unhandled strategy %q", name))
	}
}

// Null never plans a route.
type Null struct{}

// Plan implements sim.Strategy.
func (Null) Plan(*sim.Simulator, *sim.ShiftPlanEvent) ([]*sim.Route, error) {
	return nil, nil
}
