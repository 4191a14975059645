package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/consultores-turismo/str-insights/internal/geodata"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Report how neighborhood names join against boundary geometries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initDataEnv(cmd.Context())
		if err != nil {
			return err
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		formatMatchReports(os.Stdout, env.Reports, verbose)
		return nil
	},
}

func formatMatchReports(out io.Writer, reports []geodata.MatchReport, verbose bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CITY\tAGGREGATES\tBOUNDARIES\tMATCHED\tUNMATCHED")
	_, _ = fmt.Fprintln(w, "----\t----------\t----------\t-------\t---------")
	for _, r := range reports {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n",
			r.City, r.AggregateTotal, r.BoundaryTotal, r.Matched, len(r.UnmatchedAggregates))
	}
	_ = w.Flush()

	if !verbose {
		return
	}
	for _, r := range reports {
		if len(r.UnmatchedAggregates) == 0 && len(r.UnmatchedBoundaries) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(out, "\n%s:\n", r.City)
		for _, name := range r.UnmatchedAggregates {
			_, _ = fmt.Fprintf(out, "  dataset-only: %s\n", name)
		}
		for _, name := range r.UnmatchedBoundaries {
			_, _ = fmt.Fprintf(out, "  boundary-only: %s\n", name)
		}
	}
}

func init() {
	matchCmd.Flags().Bool("verbose", false, "list every unmatched name")
	rootCmd.AddCommand(matchCmd)
}
