package measures

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/wastesim/waste-sim/sim"
)

// AvgRouteDistance returns the mean distance driven per stored route: from
// the depot past every serviced location in service order and back. A
// service flagged as after a break adds the detour through the depot. Routes
// without services count as zero; with no routes the result is 0.
func AvgRouteDistance(q Querier, distances *mat.Dense) (float64, error) {
	var numRoutes int
	if err := q.QueryRow(`SELECT COUNT(*) FROM routes`).Scan(&numRoutes); err != nil {
		return 0, fmt.Errorf("avg route distance: %w", err)
	}
	if numRoutes == 0 {
		return 0, nil
	}

	rows, err := q.Query(`SELECT id_route, location, after_break
		FROM service_events
		ORDER BY id_route, time, seq`)
	if err != nil {
		return 0, fmt.Errorf("avg route distance: %w", err)
	}
	defer rows.Close()

	var (
		total float64
		route int64 = -1
		prev        = sim.Depot
	)
	for rows.Next() {
		var (
			id         int64
			loc        int
			afterBreak bool
		)
		if err := rows.Scan(&id, &loc, &afterBreak); err != nil {
			return 0, fmt.Errorf("avg route distance: %w", err)
		}
		if id != route {
			total += distances.At(prev, sim.Depot)
			route, prev = id, sim.Depot
		}
		if afterBreak {
			total += distances.At(prev, sim.Depot)
			prev = sim.Depot
		}
		total += distances.At(prev, loc)
		prev = loc
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("avg route distance: %w", err)
	}
	total += distances.At(prev, sim.Depot)

	return total / float64(numRoutes), nil
}
