// Package measures computes performance measures over a stored run. All
// measures read the result database written by package store, with the
// source catalog attached.
package measures

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/wastesim/waste-sim/sim"
	"github.com/wastesim/waste-sim/sim/store"
)

// Querier is the read side of a result database.
type Querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Report bundles every measure of a run.
type Report struct {
	ServiceLevel    float64             `json:"avg_service_level"`
	ArrivalsPerHour [sim.HoursInDay]int `json:"num_arrivals_per_hour"`
	RouteDistance   float64             `json:"avg_route_distance"`
	Services        int                 `json:"num_services"`
}

// Compute evaluates all measures. Services before after are excluded from
// the service level.
func Compute(q Querier, after time.Time, distances *mat.Dense) (*Report, error) {
	var (
		r   Report
		err error
	)
	if r.ServiceLevel, err = AvgServiceLevel(q, after); err != nil {
		return nil, err
	}
	if r.ArrivalsPerHour, err = NumArrivalsPerHour(q); err != nil {
		return nil, err
	}
	if r.RouteDistance, err = AvgRouteDistance(q, distances); err != nil {
		return nil, err
	}
	if r.Services, err = NumServices(q); err != nil {
		return nil, err
	}
	return &r, nil
}

// AvgServiceLevel returns the fraction of services after the given time at
// which the container held no more than its capacity. It is 1 when there
// were no such services.
func AvgServiceLevel(q Querier, after time.Time) (float64, error) {
	var level sql.NullFloat64
	err := q.QueryRow(`SELECT AVG(se.volume <= c.capacity)
		FROM service_events AS se
			INNER JOIN source.containers AS c ON se.container = c.name
		WHERE se.time > ?`, after.Format(store.TimeLayout)).Scan(&level)
	if err != nil {
		return 0, fmt.Errorf("avg service level: %w", err)
	}
	if !level.Valid {
		return 1, nil
	}
	return level.Float64, nil
}

// NumArrivalsPerHour counts arrivals by hour of the day.
func NumArrivalsPerHour(q Querier) ([sim.HoursInDay]int, error) {
	var counts [sim.HoursInDay]int
	rows, err := q.Query(`SELECT strftime('%H', time) AS hour, COUNT(*)
		FROM arrival_events
		GROUP BY hour`)
	if err != nil {
		return counts, fmt.Errorf("arrivals per hour: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			hour string
			n    int
		)
		if err := rows.Scan(&hour, &n); err != nil {
			return counts, fmt.Errorf("arrivals per hour: %w", err)
		}
		h, err := strconv.Atoi(hour)
		if err != nil || h < 0 || h >= sim.HoursInDay {
			return counts, fmt.Errorf("arrivals per hour: bad hour %q", hour)
		}
		counts[h] = n
	}
	return counts, rows.Err()
}

// NumServices counts service events.
func NumServices(q Querier) (int, error) {
	var n int
	if err := q.QueryRow(`SELECT COUNT(*) FROM service_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("num services: %w", err)
	}
	return n, nil
}
