package store

import (
	"database/sql"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/wastesim/waste-sim/sim"
)

const clockLayout = "15:04:05"

// InitSource creates the catalog tables in the attached source database.
func (d *Database) InitSource() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS source.containers (
			name TEXT PRIMARY KEY,
			capacity REAL NOT NULL,
			correction_factor REAL NOT NULL DEFAULT 1.0,
			tw_late TEXT NOT NULL DEFAULT '23:59:59',
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			id_location INTEGER UNIQUE NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS source.arrival_rates (
			container TEXT NOT NULL REFERENCES containers (name),
			hour INTEGER NOT NULL,
			rate REAL NOT NULL,
			PRIMARY KEY (container, hour)
		);`,
		`CREATE TABLE IF NOT EXISTS source.vehicles (
			name TEXT PRIMARY KEY,
			capacity REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS source.distances (
			from_location INTEGER NOT NULL,
			to_location INTEGER NOT NULL,
			distance REAL NOT NULL,
			PRIMARY KEY (from_location, to_location)
		);`,
		`CREATE TABLE IF NOT EXISTS source.durations (
			from_location INTEGER NOT NULL,
			to_location INTEGER NOT NULL,
			duration REAL NOT NULL,
			PRIMARY KEY (from_location, to_location)
		);`,
	}
	return d.execAll("init source", statements)
}

// WriteCatalog writes containers, vehicles and both matrices to the source
// database. Container i is written at location i + 1.
func (d *Database) WriteCatalog(containers []*sim.Container, vehicles []*sim.Vehicle, distances, durations *mat.Dense) error {
	if err := d.InitSource(); err != nil {
		return err
	}

	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("write catalog: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, c := range containers {
		tw := time.Time{}.Add(c.TWLate).Format(clockLayout)
		if _, err := tx.Exec(`INSERT INTO source.containers
			(name, capacity, correction_factor, tw_late, latitude, longitude, id_location)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.Name, c.Capacity, c.CorrectionFactor, tw, c.Location.Lat, c.Location.Lon, sim.LocationOf(i)); err != nil {
			return fmt.Errorf("write catalog: container %s: %w", c.Name, err)
		}
		for hour, rate := range c.Rates {
			if _, err := tx.Exec(`INSERT INTO source.arrival_rates (container, hour, rate) VALUES (?, ?, ?)`,
				c.Name, hour, rate); err != nil {
				return fmt.Errorf("write catalog: rates of %s: %w", c.Name, err)
			}
		}
	}
	for _, v := range vehicles {
		if _, err := tx.Exec(`INSERT INTO source.vehicles (name, capacity) VALUES (?, ?)`, v.Name, v.Capacity); err != nil {
			return fmt.Errorf("write catalog: vehicle %s: %w", v.Name, err)
		}
	}
	for _, m := range []struct {
		table, column string
		data          *mat.Dense
	}{
		{"distances", "distance", distances},
		{"durations", "duration", durations},
	} {
		r, c := m.data.Dims()
		query := fmt.Sprintf(`INSERT INTO source.%s (from_location, to_location, %s) VALUES (?, ?, ?)`, m.table, m.column)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if _, err := tx.Exec(query, i, j, m.data.At(i, j)); err != nil {
					return fmt.Errorf("write catalog: %s: %w", m.table, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write catalog: commit: %w", err)
	}
	return nil
}

// Containers loads the container catalog, ordered by location. Locations must
// run 1, 2, ..., n so that container i sits at location i + 1.
func (d *Database) Containers() ([]*sim.Container, error) {
	rates, err := d.arrivalRates()
	if err != nil {
		return nil, err
	}

	rows, err := d.Query(`SELECT name, capacity, correction_factor, tw_late, latitude, longitude, id_location
		FROM source.containers ORDER BY id_location`)
	if err != nil {
		return nil, fmt.Errorf("load containers: %w", err)
	}
	defer rows.Close()

	var containers []*sim.Container
	for rows.Next() {
		var (
			name, twLate         string
			capacity, correction float64
			lat, lon             float64
			location             int
		)
		if err := rows.Scan(&name, &capacity, &correction, &twLate, &lat, &lon, &location); err != nil {
			return nil, fmt.Errorf("load containers: %w", err)
		}
		if want := sim.LocationOf(len(containers)); location != want {
			return nil, fmt.Errorf("load containers: %s has location %d, want %d", name, location, want)
		}
		c, err := sim.NewContainer(name, rates[name], capacity, sim.Location{Lat: lat, Lon: lon})
		if err != nil {
			return nil, fmt.Errorf("load containers: %w", err)
		}
		tw, err := time.Parse(clockLayout, twLate)
		if err != nil {
			return nil, fmt.Errorf("load containers: tw_late of %s: %w", name, err)
		}
		c.TWLate = tw.Sub(time.Date(tw.Year(), tw.Month(), tw.Day(), 0, 0, 0, 0, tw.Location()))
		c.CorrectionFactor = correction
		containers = append(containers, c)
	}
	return containers, rows.Err()
}

func (d *Database) arrivalRates() (map[string][]float64, error) {
	rows, err := d.Query(`SELECT container, hour, rate FROM source.arrival_rates ORDER BY container, hour`)
	if err != nil {
		return nil, fmt.Errorf("load arrival rates: %w", err)
	}
	defer rows.Close()

	rates := make(map[string][]float64)
	for rows.Next() {
		var (
			name string
			hour int
			rate float64
		)
		if err := rows.Scan(&name, &hour, &rate); err != nil {
			return nil, fmt.Errorf("load arrival rates: %w", err)
		}
		if hour < 0 || hour >= sim.HoursInDay {
			return nil, fmt.Errorf("load arrival rates: %s has hour %d", name, hour)
		}
		if rates[name] == nil {
			rates[name] = make([]float64, sim.HoursInDay)
		}
		rates[name][hour] = rate
	}
	return rates, rows.Err()
}

// Vehicles loads the vehicle catalog.
func (d *Database) Vehicles() ([]*sim.Vehicle, error) {
	rows, err := d.Query(`SELECT name, capacity FROM source.vehicles ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*sim.Vehicle
	for rows.Next() {
		v := &sim.Vehicle{}
		if err := rows.Scan(&v.Name, &v.Capacity); err != nil {
			return nil, fmt.Errorf("load vehicles: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// Distances loads the distance matrix, in meters.
func (d *Database) Distances() (*mat.Dense, error) {
	return d.matrix("distances", "distance")
}

// Durations loads the duration matrix, in seconds.
func (d *Database) Durations() (*mat.Dense, error) {
	return d.matrix("durations", "duration")
}

func (d *Database) matrix(table, column string) (*mat.Dense, error) {
	var n sql.NullInt64
	if err := d.QueryRow(fmt.Sprintf(`SELECT MAX(MAX(from_location), MAX(to_location)) + 1 FROM source.%s`, table)).Scan(&n); err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	if !n.Valid || n.Int64 == 0 {
		return nil, fmt.Errorf("load %s: table is empty", table)
	}

	rows, err := d.Query(fmt.Sprintf(`SELECT from_location, to_location, %s FROM source.%s`, column, table))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()

	size := int(n.Int64)
	m := mat.NewDense(size, size, nil)
	for rows.Next() {
		var (
			from, to int
			value    float64
		)
		if err := rows.Scan(&from, &to, &value); err != nil {
			return nil, fmt.Errorf("load %s: %w", table, err)
		}
		if from < 0 || to < 0 {
			return nil, fmt.Errorf("load %s: negative location (%d, %d)", table, from, to)
		}
		m.Set(from, to, value)
	}
	return m, rows.Err()
}
