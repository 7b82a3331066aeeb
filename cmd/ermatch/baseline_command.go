package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newBaselineCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "baseline",
		Short: "Run the lexical similarity baseline with a threshold sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			p, err := ctx.newPipeline(store)
			if err != nil {
				return err
			}

			report, err := p.RunBaseline(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSection(out, "Lexical baseline")
			fmt.Fprintf(out, "Run:       %s\n", report.RunID)
			fmt.Fprintf(out, "Gold:      %d positives, %d negatives\n", report.Positives, report.Negatives)
			fmt.Fprintf(out, "Scoring:   %d pairs, %.6fs avg latency, %.1f pairs/s\n",
				report.ScoredPairs, report.AvgLatencySeconds, report.ThroughputPairsPerSec)
			fmt.Fprintln(out)

			rows := make([][]string, 0, len(report.Rows))
			for _, row := range report.Rows {
				rows = append(rows, []string{
					strconv.FormatFloat(row.Threshold, 'f', 2, 64),
					formatFloat(row.Precision),
					formatFloat(row.Recall),
					formatFloat(row.F1),
					strconv.Itoa(row.Predicted),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Threshold", "Precision", "Recall", "F1", "Predicted"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Best: threshold %.2f (precision %s, recall %s, f1 %s)\n",
				report.Best.Threshold,
				formatFloat(report.Best.Precision),
				formatFloat(report.Best.Recall),
				formatFloat(report.Best.F1),
			)
			return nil
		},
	}
}
