package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/consultores-turismo/str-insights/internal/metrics"
	"github.com/consultores-turismo/str-insights/internal/model"
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Run the full aggregation pass and print the headline summary",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initDataEnv(ctx)
		if err != nil {
			return err
		}

		formatSummary(os.Stdout, env)

		noSave, _ := cmd.Flags().GetBool("no-save")
		if noSave {
			return nil
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		summaryJSON, err := json.Marshal(env.Summary)
		if err != nil {
			return eris.Wrap(err, "compute: marshal summary")
		}
		snap := &model.Snapshot{
			Cities:         cfg.Cities,
			TotalListings:  len(env.Listings),
			DroppedRows:    env.Drops.Total(),
			UnmatchedNames: env.Unmatched,
			Summary:        summaryJSON,
		}
		if err := st.SaveSnapshot(ctx, snap); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "\nSnapshot saved: %s\n", snap.ID)
		return nil
	},
}

func formatSummary(out io.Writer, env *dataEnv) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "METRIC\tVALUE\tSOURCE")
	_, _ = fmt.Fprintln(w, "------\t-----\t------")

	rows := []struct {
		name   string
		metric metrics.Metric
		format string
	}{
		{"Total listings", env.Summary.TotalListings, "%.0f"},
		{"Mean price (EUR/night)", env.Summary.MeanPrice, "%.2f"},
		{"Critical neighborhoods", env.Summary.CriticalCount, "%.0f"},
		{"Overall entire-home ratio (%)", env.Summary.OverallRatioPct, "%.1f"},
		{"Mean occupancy (%)", env.Summary.MeanOccupancyPct, "%.1f"},
		{"Economic impact (MEUR/yr)", env.Summary.EconomicImpactMEUR, "%.1f"},
	}
	for _, r := range rows {
		source := "computed"
		if r.metric.Fallback {
			source = "fallback"
		}
		_, _ = fmt.Fprintf(w, "%s\t"+r.format+"\t%s\n", r.name, r.metric.Value, source)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CITY\tLISTINGS\tBARRIOS\tRATIO%\tMEAN_PRICE\tLEVEL\tACTION")
	_, _ = fmt.Fprintln(w, "----\t--------\t-------\t------\t----------\t-----\t------")
	for _, c := range env.Result.Cities {
		rec := metrics.Recommend(c)
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%.1f\t%.2f\t%s\t%s\n",
			c.City, c.TotalListings, c.BarriosCount,
			c.RatioEntireHomePct, c.MeanPrice, rec.Level, rec.Action)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nRows dropped during cleaning: %d  (missing fields %d, unparsable price %d, non-positive %d, outlier %d)\n",
		env.Drops.Total(), env.Drops.MissingFields, env.Drops.UnparsablePrice,
		env.Drops.NonPositive, env.Drops.PriceOutlier)
}

func init() {
	computeCmd.Flags().Bool("no-save", false, "skip writing a snapshot to the store")
	rootCmd.AddCommand(computeCmd)
}
