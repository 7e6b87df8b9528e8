package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wastesim/waste-sim/sim/measures"
	"github.com/wastesim/waste-sim/sim/store"
)

var after string // Only services after this time count towards the service level

// afterLayouts are the accepted formats of --after.
var afterLayouts = []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}

// measuresCmd computes performance measures of a stored run
var measuresCmd = &cobra.Command{
	Use:   "measures",
	Short: "Compute performance measures of a stored run",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		loadEnv()

		src := resolve(srcDB, envSrcDB, "waste.db")
		res := resolve(resDB, envResDB, "")
		if res == "" {
			fatalf("No result database given; set --res-db or $%s", envResDB)
		}
		since, err := parseAfter(after)
		if err != nil {
			fatalf("Invalid --after: %v", err)
		}

		db, err := store.Open(src, res)
		if err != nil {
			fatalf("Cannot open results: %v", err)
		}
		defer db.Close()

		if err := printMeasures(db, since, cmd.OutOrStdout()); err != nil {
			fatalf("Computing measures: %v", err)
		}
	},
}

func printMeasures(db *store.Database, since time.Time, out io.Writer) error {
	distances, err := db.Distances()
	if err != nil {
		return err
	}
	report, err := measures.Compute(db, since, distances)
	if err != nil {
		return err
	}
	logrus.Debugf("Measures over services after %s", since.Format(store.TimeLayout))
	return printJSON(out, report)
}

// parseAfter parses --after; the empty string means all services count.
func parseAfter(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range afterLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q matches none of %v", s, afterLayouts)
}

func init() {
	measuresCmd.Flags().StringVar(&srcDB, "src-db", "", "Source catalog database (default $"+envSrcDB+" or waste.db)")
	measuresCmd.Flags().StringVar(&resDB, "res-db", "", "Result database of the run (default $"+envResDB+")")
	measuresCmd.Flags().StringVar(&after, "after", "", "Only count services after this time, e.g. 2024-01-08")
	measuresCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
}
