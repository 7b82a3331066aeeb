package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/logging"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/verifier"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the verifier cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func openVerifierCache(ctx *commandContext) (*verifier.Cache, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	return verifier.OpenCache(cfg.Paths.CachePath, logging.NewComponentLogger(logger, "verifier-cache"))
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show verifier cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openVerifierCache(ctx)
			if err != nil {
				return err
			}
			defer cache.Close()

			cfg, _ := ctx.ensureConfig()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:    %s\n", cfg.Paths.CachePath)
			fmt.Fprintf(out, "Entries: %d\n", cache.Count())
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached verification results",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to clear the cache without --force; cached verdicts cost LLM calls to rebuild")
			}

			cache, err := openVerifierCache(ctx)
			if err != nil {
				return err
			}
			defer cache.Close()

			entries := cache.Count()
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached results\n", entries)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm deletion of cached results")
	return cmd
}
