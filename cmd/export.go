package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/consultores-turismo/str-insights/internal/export"
	"github.com/consultores-turismo/str-insights/internal/metrics"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered neighborhood table as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initDataEnv(cmd.Context())
		if err != nil {
			return err
		}

		city, _ := cmd.Flags().GetString("city")
		minRatio, _ := cmd.Flags().GetFloat64("min-ratio")
		tier, _ := cmd.Flags().GetString("tier")
		outPath, _ := cmd.Flags().GetString("out")

		rows := export.Apply(env.Result.Neighborhoods, export.Filter{
			City:     city,
			MinRatio: minRatio,
			Tier:     metrics.Tier(tier),
		})

		out := os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return eris.Wrap(err, "export: create output file")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		if err := export.Write(out, rows); err != nil {
			return err
		}
		if outPath != "" {
			fmt.Fprintf(os.Stderr, "Wrote %d rows to %s\n", len(rows), outPath)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("city", "", "only this city")
	exportCmd.Flags().Float64("min-ratio", 0, "minimum entire-home ratio percent")
	exportCmd.Flags().String("tier", "", "only this saturation tier (CRITICAL, HIGH, MODERATE, SUSTAINABLE)")
	exportCmd.Flags().String("out", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
