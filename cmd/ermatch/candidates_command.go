package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

func newCandidatesCommand(ctx *commandContext) *cobra.Command {
	var retrievalOnly bool

	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Generate ranked candidate pairs for every source record",
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

			report, err := p.RunCandidates(cmd.Context(), retrievalOnly)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.RetrievalOnly {
				printSection(out, "Candidate generation (retrieval only)")
			} else {
				printSection(out, "Candidate generation (blocking + retrieval)")
			}
			fmt.Fprintf(out, "Run:        %s\n", report.RunID)
			fmt.Fprintf(out, "Sources:    %d\n", report.Sources)
			fmt.Fprintf(out, "Pairs:      %d\n", report.Pairs)
			if !report.RetrievalOnly {
				fmt.Fprintf(out, "Block keys: %d\n", report.BlockingKeys)
			}
			fmt.Fprintln(out)

			cutoffs := make([]int, 0, len(report.RecallAtK))
			for k := range report.RecallAtK {
				cutoffs = append(cutoffs, k)
			}
			sort.Ints(cutoffs)
			rows := make([][]string, 0, len(cutoffs))
			for _, k := range cutoffs {
				rows = append(rows, []string{
					strconv.Itoa(k),
					formatFloat(report.RecallAtK[k]),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"K", "Recall@K"},
				rows,
				[]columnAlignment{alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&retrievalOnly, "retrieval-only", false, "Skip blocking and rank the full target corpus")
	return cmd
}
