package main

import (
	"fmt"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/logging"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/verifier"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var candidatesRunID string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Gate candidate pairs and verify the uncertain band with the LLM",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireLLM(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			cache, err := verifier.OpenCache(cfg.Paths.CachePath, logging.NewComponentLogger(logger, "verifier-cache"))
			if err != nil {
				return err
			}
			defer cache.Close()

			llm := cfg.GetLLM()
			client := verifier.NewClient(verifier.ClientConfig{
				APIKey:         llm.APIKey,
				BaseURL:        llm.BaseURL,
				Model:          llm.Model,
				TimeoutSeconds: llm.TimeoutSeconds,
			})
			v := verifier.New(client, cache, logging.NewComponentLogger(logger, "verifier"))

			p, err := ctx.newPipeline(store)
			if err != nil {
				return err
			}

			report, err := p.RunVerify(signalCtx, v, candidatesRunID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSection(out, "Gated verification")
			fmt.Fprintf(out, "Run:            %s\n", report.RunID)
			fmt.Fprintf(out, "Candidates run: %s\n", report.CandidatesRunID)
			fmt.Fprintf(out, "Pairs:          %d\n", report.Total)
			fmt.Fprintf(out, "Auto matched:   %d\n", report.AutoMatched)
			fmt.Fprintf(out, "Auto rejected:  %d\n", report.AutoRejected)
			fmt.Fprintf(out, "Escalated:      %d (%s of pairs)\n", report.Escalated, formatPercent(report.EscalationRate()))
			if report.VerifierFailures > 0 {
				fmt.Fprintf(out, "Failures:       %d escalations downgraded to no_match\n", report.VerifierFailures)
			}
			fmt.Fprintf(out, "Final matches:  %d\n", report.Matches)
			fmt.Fprintf(out, "Verifier:       %d calls, %d cache hits, %d tokens\n",
				report.Verifier.Calls, report.Verifier.CacheHits, report.Verifier.Tokens)
			fmt.Fprintln(out)

			fmt.Fprintln(out, renderTable(
				[]string{"Metric", "Value"},
				[][]string{
					{"Precision", formatFloat(report.Metrics.Precision)},
					{"Recall", formatFloat(report.Metrics.Recall)},
					{"F1", formatFloat(report.Metrics.F1)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))

			cutoffs := make([]int, 0, len(report.RecallAtKVerified))
			for k := range report.RecallAtKVerified {
				cutoffs = append(cutoffs, k)
			}
			sort.Ints(cutoffs)
			rows := make([][]string, 0, len(cutoffs))
			for _, k := range cutoffs {
				rows = append(rows, []string{
					strconv.Itoa(k),
					formatFloat(report.RecallAtKVerified[k]),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"K", "Verified recall@K"},
				rows,
				[]columnAlignment{alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&candidatesRunID, "candidates-run", "", "Candidates run to verify (defaults to the most recent)")
	return cmd
}
