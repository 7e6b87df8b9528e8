package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/wastesim/waste-sim/sim"
	"github.com/wastesim/waste-sim/sim/store"
	"github.com/wastesim/waste-sim/sim/strategy"
	"github.com/wastesim/waste-sim/sim/trace"
	"github.com/wastesim/waste-sim/sim/workload"
)

const (
	envSrcDB = "WASTE_SRC_DB" // source catalog path
	envResDB = "WASTE_RES_DB" // result database path

	// dryRun as --res-db keeps all records in memory and prints a summary.
	dryRun = "none"
)

var (
	// CLI flags shared by run and measures
	srcDB    string // Source catalog database
	resDB    string // Result database
	logLevel string // Log verbosity level

	// CLI flags for run
	seed               int64  // Seed for arrival generation and random strategies
	horizonHours       int    // Simulated hours from the configured start
	strategyName       string // Routing strategy
	containersPerRoute int    // Maximum stops per route
	configPath         string // YAML simulation config
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "waste-sim",
	Short: "Discrete-event simulator for waste container collection",
}

// runOptions holds the resolved inputs of a single run.
type runOptions struct {
	Seed               int64
	Horizon            time.Duration
	Strategy           string
	ContainersPerRoute int
	ConfigPath         string
	DryRun             bool
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate container arrivals and collection routes",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		loadEnv()

		src := resolve(srcDB, envSrcDB, "waste.db")
		res := resolve(resDB, envResDB, fmt.Sprintf("waste_results_%s.db", xid.New().String()))
		opts := runOptions{
			Seed:               seed,
			Horizon:            time.Duration(horizonHours) * time.Hour,
			Strategy:           strategyName,
			ContainersPerRoute: containersPerRoute,
			ConfigPath:         configPath,
			DryRun:             res == dryRun,
		}
		if opts.DryRun {
			res = store.MemoryPath
		}

		db, err := store.Create(src, res)
		if err != nil {
			fatalf("Cannot create results: %v", err)
		}
		// Records of a failed run are flushed too, up to the failing event.
		atexit.Register(func() {
			if err := db.Close(); err != nil {
				logrus.Errorf("Closing results: %v", err)
			}
		})

		if err := runSimulation(db, opts, cmd.OutOrStdout()); err != nil {
			fatalf("Simulation failed: %v", err)
		}
		if !opts.DryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", res)
		}
		logrus.Info("Simulation complete.")
	},
}

// runSimulation runs the simulation over the catalog in db's source database.
// Records go to db, or to memory for a dry run, whose summary is printed to out.
func runSimulation(db *store.Database, o runOptions, out io.Writer) error {
	if o.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %s", o.Horizon)
	}
	cfg := sim.DefaultConfig()
	if o.ConfigPath != "" {
		var err error
		if cfg, err = sim.LoadConfig(o.ConfigPath); err != nil {
			return err
		}
	}
	strat, err := strategy.New(o.Strategy, strategy.Options{ContainersPerRoute: o.ContainersPerRoute})
	if err != nil {
		return err
	}

	s, err := newSimulator(db, o.Seed, cfg)
	if err != nil {
		return err
	}
	events, err := workload.Initial(s, o.Horizon)
	if err != nil {
		return err
	}

	logrus.Infof("Running %s strategy over %s with seed %d", o.Strategy, o.Horizon, o.Seed)
	if !o.DryRun {
		return s.Run(db, strat, events)
	}
	rec := trace.NewRecorder()
	if err := s.Run(rec, strat, events); err != nil {
		return err
	}
	return printJSON(out, trace.Summarize(rec, trace.Capacities(s.Containers)))
}

// newSimulator builds a simulator over the catalog in db's source database.
func newSimulator(db *store.Database, seed int64, cfg sim.Config) (*sim.Simulator, error) {
	containers, err := db.Containers()
	if err != nil {
		return nil, err
	}
	vehicles, err := db.Vehicles()
	if err != nil {
		return nil, err
	}
	distances, err := db.Distances()
	if err != nil {
		return nil, err
	}
	durations, err := db.Durations()
	if err != nil {
		return nil, err
	}
	return sim.NewSimulator(sim.NewPartitionedRNG(seed), distances, durations, containers, vehicles, cfg)
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadEnv reads a .env file from the working directory, if present.
// Variables already set in the environment take precedence.
func loadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("Ignoring .env: %v", err)
	}
}

// resolve returns the flag value if set, else the environment variable, else
// the fallback.
func resolve(flag, env, fallback string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fatalf logs and exits after running the registered exit handlers.
func fatalf(format string, args ...any) {
	logrus.Errorf(format, args...)
	atexit.Exit(1)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&srcDB, "src-db", "", "Source catalog database (default $"+envSrcDB+" or waste.db)")
	runCmd.Flags().StringVar(&resDB, "res-db", "", "Result database, or \"none\" for a dry run (default $"+envResDB+" or a generated name)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for arrival generation and random strategies")
	runCmd.Flags().IntVar(&horizonHours, "horizon", 24*7, "Simulation horizon (in hours)")
	runCmd.Flags().StringVar(&strategyName, "strategy", "greedy", "Routing strategy (greedy, null, random)")
	runCmd.Flags().IntVar(&containersPerRoute, "containers-per-route", strategy.DefaultOptions().ContainersPerRoute, "Maximum containers per route")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML simulation config (defaults apply when empty)")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Attach `run` and `measures` as subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(measuresCmd)
}
