package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastesim/waste-sim/sim/store"
	"github.com/wastesim/waste-sim/sim/trace"
)

// writeSource creates a source catalog file with three containers on a line
// and two vehicles.
func writeSource(t *testing.T, dir string) string {
	t.Helper()
	src := filepath.Join(dir, "source.db")
	require.NoError(t, os.WriteFile(src, nil, 0o644))

	db, err := store.Create(src, filepath.Join(dir, "scratch.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.InitSource())
	_, err = db.Exec(`INSERT INTO source.vehicles (name, capacity) VALUES ('truck-1', 20000), ('truck-2', 20000)`)
	require.NoError(t, err)
	for i, name := range []string{"Grote Markt", "Vismarkt", "Zuiderdiep"} {
		_, err = db.Exec(`INSERT INTO source.containers (name, capacity, latitude, longitude, id_location)
			VALUES (?, 5000, 53.2, 6.56, ?)`, name, i+1)
		require.NoError(t, err)
		for h := 0; h < 24; h++ {
			_, err = db.Exec(`INSERT INTO source.arrival_rates (container, hour, rate) VALUES (?, ?, 1.5)`, name, h)
			require.NoError(t, err)
		}
	}
	for from := 0; from < 4; from++ {
		for to := 0; to < 4; to++ {
			km := float64(from - to)
			if km < 0 {
				km = -km
			}
			_, err = db.Exec(`INSERT INTO source.distances VALUES (?, ?, ?)`, from, to, 1000*km)
			require.NoError(t, err)
			_, err = db.Exec(`INSERT INTO source.durations VALUES (?, ?, ?)`, from, to, 120*km)
			require.NoError(t, err)
		}
	}
	return src
}

func defaultRun() runOptions {
	return runOptions{Seed: 42, Horizon: 48 * time.Hour, Strategy: "greedy", ContainersPerRoute: 10}
}

func TestRunSimulation_WritesResults(t *testing.T) {
	// GIVEN a source catalog and a fresh result database
	dir := t.TempDir()
	src := writeSource(t, dir)
	res := filepath.Join(dir, "results.db")
	db, err := store.Create(src, res)
	require.NoError(t, err)

	// WHEN two days are simulated with the greedy strategy
	var out bytes.Buffer
	require.NoError(t, runSimulation(db, defaultRun(), &out))
	require.NoError(t, db.Close())

	// THEN the reopened results hold arrivals, two shift plans and routes
	reopened, err := store.Open(src, res)
	require.NoError(t, err)
	defer reopened.Close()

	var arrivals, plans, services int
	require.NoError(t, reopened.QueryRow(`SELECT COUNT(*) FROM arrival_events`).Scan(&arrivals))
	require.NoError(t, reopened.QueryRow(`SELECT COUNT(*) FROM shift_plan_events`).Scan(&plans))
	require.NoError(t, reopened.QueryRow(`SELECT COUNT(*) FROM service_events`).Scan(&services))
	assert.Positive(t, arrivals)
	assert.Equal(t, 2, plans)
	assert.Positive(t, services)
	assert.Empty(t, out.String(), "only dry runs print a summary")

	// AND the measures command can report on them
	var report bytes.Buffer
	require.NoError(t, printMeasures(reopened, time.Time{}, &report))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(report.Bytes(), &decoded))
	assert.Equal(t, float64(services), decoded["num_services"])
	assert.Contains(t, decoded, "avg_route_distance")
}

func TestRunSimulation_DryRunPrintsSummary(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir)
	db, err := store.Create(src, store.MemoryPath)
	require.NoError(t, err)
	defer db.Close()

	opts := defaultRun()
	opts.DryRun = true
	var out bytes.Buffer
	require.NoError(t, runSimulation(db, opts, &out))

	var s trace.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &s))
	assert.Equal(t, 2, s.ShiftPlans)
	assert.Positive(t, s.Arrivals)

	var stored int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM arrival_events`).Scan(&stored))
	assert.Zero(t, stored, "dry run must not write records")
}

func TestRunSimulation_SameSeedSameSummary(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir)
	summary := func(seed int64) string {
		db, err := store.Create(src, store.MemoryPath)
		require.NoError(t, err)
		defer db.Close()
		opts := defaultRun()
		opts.DryRun, opts.Seed, opts.Strategy = true, seed, "random"
		var out bytes.Buffer
		require.NoError(t, runSimulation(db, opts, &out))
		return out.String()
	}
	assert.Equal(t, summary(7), summary(7))
}

func TestRunSimulation_InvalidOptions(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir)
	badConfig := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badConfig, []byte("shift_plan_every: 7h\n"), 0o644))

	tests := []struct {
		name   string
		modify func(*runOptions)
	}{
		{"zero horizon", func(o *runOptions) { o.Horizon = 0 }},
		{"unknown strategy", func(o *runOptions) { o.Strategy = "cheapest" }},
		{"no stops per route", func(o *runOptions) { o.ContainersPerRoute = 0 }},
		{"unknown config key", func(o *runOptions) { o.ConfigPath = badConfig }},
		{"missing config", func(o *runOptions) { o.ConfigPath = filepath.Join(dir, "missing.yaml") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := store.Create(src, store.MemoryPath)
			require.NoError(t, err)
			defer db.Close()

			opts := defaultRun()
			tt.modify(&opts)
			assert.Error(t, runSimulation(db, opts, &bytes.Buffer{}))
		})
	}
}

func TestResolve(t *testing.T) {
	t.Setenv(envSrcDB, "from-env.db")
	assert.Equal(t, "flag.db", resolve("flag.db", envSrcDB, "fallback.db"))
	assert.Equal(t, "from-env.db", resolve("", envSrcDB, "fallback.db"))

	t.Setenv(envSrcDB, "")
	assert.Equal(t, "fallback.db", resolve("", envSrcDB, "fallback.db"))
}

func TestParseAfter(t *testing.T) {
	got, err := parseAfter("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = parseAfter("2024-01-08")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC), got)

	got, err = parseAfter("2024-01-08 07:30:00")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Hour())

	_, err = parseAfter("next monday")
	assert.Error(t, err)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["measures"])

	f := runCmd.Flags().Lookup("horizon")
	require.NotNil(t, f)
	assert.Equal(t, "168", f.DefValue)
}
