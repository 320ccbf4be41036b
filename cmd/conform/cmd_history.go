package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mughalk/csc301-a2/internal/history"
)

var historyFlags struct {
	driver string
	dsn    string
	limit  int
	runID  string
}

// conform history — inspect recorded runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs, or the case results of one run",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(historyFlags.driver, historyFlags.dsn)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		defer w.Flush()

		if historyFlags.runID != "" {
			results, err := store.ResultsFor(historyFlags.runID)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "CASE\tRESULT\tSTATUS\tREASONS")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Name, r.Status, r.HTTPStatus, r.Reasons)
			}
			return nil
		}

		runs, err := store.RecentRuns(historyFlags.limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "RUN\tSERVICE\tTARGET\tPASS\tFAIL\tSKIPPED\tSTARTED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				r.RunID, r.Service, r.Target, r.Pass, r.Fail, r.Skipped,
				r.StartedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	fl := historyCmd.Flags()
	fl.StringVar(&historyFlags.driver, "history-driver", "sqlite", "history database driver")
	fl.StringVar(&historyFlags.dsn, "history-dsn", "", "history database DSN")
	fl.IntVar(&historyFlags.limit, "limit", 20, "number of runs to list")
	fl.StringVar(&historyFlags.runID, "run", "", "show case results for one run id")
}
