package sim

import "errors"

var (
	// ErrCausality is returned when a popped event is earlier than the simulation clock.
	ErrCausality = errors.New("event precedes simulation clock")

	// ErrRouteNotStored is returned when a route could not be persisted or yielded no identifier.
	ErrRouteNotStored = errors.New("route was not assigned an identifier")

	// ErrUnknownEvent is returned when an event kind outside the closed event set is dispatched.
	ErrUnknownEvent = errors.New("unhandled event kind")

	// ErrInvalidRoute is returned when a strategy produces a route without a
	// vehicle or visiting a container index outside the catalog.
	ErrInvalidRoute = errors.New("invalid route")
)
