// Package store persists a simulation run to SQLite. The result database
// records every sealed event and every route; the static catalog
// (containers, vehicles, distance and duration matrices) is read from a
// source database attached under the schema name "source".
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/wastesim/waste-sim/sim"
)

// TimeLayout is the text format of all times stored by this package.
const TimeLayout = "2006-01-02 15:04:05.000"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Database is the result database with the source database attached.
// It implements sim.Store. Event records are buffered and written in
// batches; call Flush or Close before reading them back.
type Database struct {
	*sql.DB

	batchSize int
	arrivals  []sim.SealedArrival
	services  []sim.SealedService
	plans     []sim.SealedShiftPlan
}

// Create creates a new result database at resPath and attaches srcPath.
// It refuses to overwrite an existing result file.
func Create(srcPath, resPath string) (*Database, error) {
	if resPath != MemoryPath {
		if _, err := os.Stat(resPath); err == nil {
			return nil, fmt.Errorf("create results: file %s already exists", resPath)
		}
	}
	d, err := open(srcPath, resPath)
	if err != nil {
		return nil, err
	}
	if err := d.initResults(); err != nil {
		_ = d.DB.Close()
		return nil, err
	}
	logrus.Infof("Database created for results: %s", resPath)
	return d, nil
}

// Open opens an existing result database at resPath and attaches srcPath.
func Open(srcPath, resPath string) (*Database, error) {
	if _, err := os.Stat(resPath); err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	return open(srcPath, resPath)
}

func open(srcPath, resPath string) (*Database, error) {
	if srcPath != MemoryPath {
		if _, err := os.Stat(srcPath); err != nil {
			return nil, fmt.Errorf("open source: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", resPath)
	if err != nil {
		return nil, fmt.Errorf("open results %s: %w", resPath, err)
	}
	// ATTACH and in-memory databases are per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open results %s: %w", resPath, err)
	}
	if _, err := db.Exec(`ATTACH DATABASE ? AS source`, srcPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("attach source %s: %w", srcPath, err)
	}

	return &Database{DB: db, batchSize: 10000}, nil
}

func (d *Database) initResults() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS arrival_events (
			seq INTEGER NOT NULL,
			time TEXT NOT NULL,
			container TEXT NOT NULL,
			volume REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS service_events (
			seq INTEGER NOT NULL,
			time TEXT NOT NULL,
			id_route INTEGER NOT NULL REFERENCES routes (id_route),
			container TEXT NOT NULL,
			location INTEGER NOT NULL,
			vehicle TEXT NOT NULL,
			num_arrivals INTEGER NOT NULL,
			volume REAL NOT NULL,
			after_break INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS shift_plan_events (
			seq INTEGER NOT NULL,
			time TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS routes (
			id_route INTEGER PRIMARY KEY AUTOINCREMENT,
			vehicle TEXT NOT NULL,
			start_time TEXT NOT NULL,
			plan TEXT NOT NULL
		);`,
	}
	return d.execAll("init results", statements)
}

func (d *Database) execAll(what string, statements []string) error {
	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", what, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%s: %w", what, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", what, err)
	}
	return nil
}

// StoreEvent buffers a sealed event for writing.
func (d *Database) StoreEvent(ev sim.SealedEvent) error {
	switch e := ev.(type) {
	case sim.SealedArrival:
		d.arrivals = append(d.arrivals, e)
	case sim.SealedService:
		d.services = append(d.services, e)
	case sim.SealedShiftPlan:
		d.plans = append(d.plans, e)
	default:
		return fmt.Errorf("store event: unsupported record %T", ev)
	}
	if len(d.arrivals)+len(d.services)+len(d.plans) >= d.batchSize {
		return d.Flush()
	}
	return nil
}

// StoreRoute writes a route immediately and returns its identifier.
func (d *Database) StoreRoute(route *sim.Route) (int64, error) {
	plan, err := json.Marshal(route.Plan)
	if err != nil {
		return 0, fmt.Errorf("store route: %w", err)
	}
	res, err := d.Exec(`INSERT INTO routes (vehicle, start_time, plan) VALUES (?, ?, ?)`,
		route.Vehicle.Name, route.StartTime.Format(TimeLayout), string(plan))
	if err != nil {
		return 0, fmt.Errorf("store route: %w", err)
	}
	return res.LastInsertId()
}

// Flush writes all buffered event records in a single transaction.
func (d *Database) Flush() error {
	if len(d.arrivals)+len(d.services)+len(d.plans) == 0 {
		return nil
	}

	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("flush: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertAll(tx, `INSERT INTO arrival_events (seq, time, container, volume) VALUES (?, ?, ?, ?)`,
		d.arrivals, func(e sim.SealedArrival) []any {
			return []any{e.Seq, e.Time.Format(TimeLayout), e.Container, e.Volume}
		}); err != nil {
		return err
	}
	if err := insertAll(tx, `INSERT INTO service_events
		(seq, time, id_route, container, location, vehicle, num_arrivals, volume, after_break)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.services, func(e sim.SealedService) []any {
			return []any{e.Seq, e.Time.Format(TimeLayout), e.RouteID, e.Container, e.Location,
				e.Vehicle, e.NumArrivals, e.Volume, e.AfterBreak}
		}); err != nil {
		return err
	}
	if err := insertAll(tx, `INSERT INTO shift_plan_events (seq, time) VALUES (?, ?)`,
		d.plans, func(e sim.SealedShiftPlan) []any {
			return []any{e.Seq, e.Time.Format(TimeLayout)}
		}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("flush: commit: %w", err)
	}
	logrus.Debugf("Flushed %d arrival, %d service and %d shift plan records",
		len(d.arrivals), len(d.services), len(d.plans))

	d.arrivals = d.arrivals[:0]
	d.services = d.services[:0]
	d.plans = d.plans[:0]
	return nil
}

func insertAll[T any](tx *sql.Tx, query string, records []T, args func(T) []any) error {
	if len(records) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("flush: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(args(r)...); err != nil {
			return fmt.Errorf("flush: insert: %w", err)
		}
	}
	return nil
}

// Close flushes buffered records and closes the database.
func (d *Database) Close() error {
	return errors.Join(d.Flush(), d.DB.Close())
}

// ParseTime parses a time stored by this package.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}
