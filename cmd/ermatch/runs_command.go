package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/results"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and export recorded runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsExportCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			const stampLayout = "2006-01-02 15:04:05"
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				completed := "running"
				if run.CompletedAt != nil {
					completed = run.CompletedAt.Local().Format(stampLayout)
				}
				rows = append(rows, []string{
					run.ID,
					run.Kind,
					run.CreatedAt.Local().Format(stampLayout),
					completed,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Kind", "Started", "Completed"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newRunsExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Export a run's pairs as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runID := strings.TrimSpace(args[0])
			run, err := store.GetRun(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", runID)
			}

			target := strings.TrimSpace(outPath)
			if target == "" {
				name := fmt.Sprintf("%s-%s-%s.csv", run.Kind, run.CreatedAt.Format("20060102-150405"), shortID(run.ID))
				target = filepath.Join(cfg.Paths.ExportDir, name)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create export directory: %w", err)
			}

			file, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer file.Close()

			switch run.Kind {
			case results.RunCandidates:
				err = store.ExportCandidatesCSV(cmd.Context(), run.ID, file)
			case results.RunVerify, results.RunDirect:
				err = store.ExportFinalLabelsCSV(cmd.Context(), run.ID, file)
			default:
				return fmt.Errorf("run %s is a %s run; only candidates, verify, and direct runs export pairs", runID, run.Kind)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s run %s to %s\n", run.Kind, run.ID, target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination CSV path (defaults into the export directory)")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
