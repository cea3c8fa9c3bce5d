package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"reward-admin/internal/audit"
	"reward-admin/internal/config"
	"reward-admin/internal/database"
	"reward-admin/internal/logger"
	"reward-admin/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		personnelID uint
		workers     int
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Recalculate derived personnel profile fields",
		Long: `Recalculates service months, reward totals, contribution scores and
medal eligibility for every personnel record, or for a single one with --id.
Uses the same configuration as the API server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			zl, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = zl.Sync() }()

			db, err := database.Open(cfg.DBDriver, cfg.DBDSN, cfg.DBPool, zl)
			if err != nil {
				return err
			}

			if workers <= 0 {
				workers = cfg.Recalc.Workers
			}
			svc := service.NewRecalcService(db, audit.NewLogger(db, zl), zl, workers)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if personnelID != 0 {
				profile, err := svc.RecalculateOne(ctx, personnelID)
				if err != nil {
					return err
				}
				return report(cmd, asJSON, profile, fmt.Sprintf("personnel %d recalculated", personnelID))
			}
			return recalculateAll(ctx, cmd, svc, asJSON, zl)
		},
	}

	cmd.Flags().UintVar(&personnelID, "id", 0, "recalculate a single personnel record")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (default RECALC_WORKERS)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func recalculateAll(ctx context.Context, cmd *cobra.Command, svc *service.RecalcService, asJSON bool, zl *zap.Logger) error {
	res, err := svc.RecalculateAll(ctx, "cli", 0)
	if err != nil {
		return err
	}
	summary := fmt.Sprintf("run %d: %d recalculated, %d failed", res.RunID, res.SuccessCount, len(res.Errors))
	if err := report(cmd, asJSON, res, summary); err != nil {
		return err
	}
	if !asJSON {
		for _, e := range res.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "  personnel %d: %s\n", e.PersonnelID, e.Error)
		}
	}
	if len(res.Errors) > 0 {
		zl.Warn("recalculation finished with errors", zap.Int("errors", len(res.Errors)))
	}
	return nil
}

func report(cmd *cobra.Command, asJSON bool, v interface{}, summary string) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), summary)
	return err
}
