package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/logging"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/verifier"
)

func newDirectCommand(ctx *commandContext) *cobra.Command {
	var blockThreshold float64

	cmd := &cobra.Command{
		Use:   "direct",
		Short: "Run the LLM-direct baseline over the gold pairs",
		Long: "Skips the confidence gate: every gold pair whose similarity clears the\n" +
			"block threshold is sent to the LLM, giving the verifier's upper bound\n" +
			"and its cost.",
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
			if cmd.Flags().Changed("block-threshold") {
				cfg.Direct.BlockThreshold = blockThreshold
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

			report, err := p.RunDirect(signalCtx, v)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSection(out, "LLM-direct baseline")
			fmt.Fprintf(out, "Run:            %s\n", report.RunID)
			fmt.Fprintf(out, "Gold:           %d positives, %d negatives\n", report.Positives, report.Negatives)
			fmt.Fprintf(out, "Block:          similarity >= %.2f kept %d pairs\n", report.BlockThreshold, report.Candidates)
			if report.VerifierFailures > 0 {
				fmt.Fprintf(out, "Failures:       %d pairs downgraded to no_match\n", report.VerifierFailures)
			}
			fmt.Fprintf(out, "Final matches:  %d\n", report.Matches)
			fmt.Fprintf(out, "Verifier:       %d calls, %d cache hits, %d tokens\n",
				report.Verifier.Calls, report.Verifier.CacheHits, report.Verifier.Tokens)
			fmt.Fprintf(out, "Latency:        %.3fs avg, %.2f pairs/s\n",
				report.AvgLatencySeconds, report.ThroughputPairsPerSec)
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
			return nil
		},
	}

	cmd.Flags().Float64Var(&blockThreshold, "block-threshold", 0, "Similarity floor for sending a pair to the LLM (defaults from config)")
	return cmd
}
