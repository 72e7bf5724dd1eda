package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/app"
	"github.com/spec-kit/patient-flow/internal/auth"
	"github.com/spec-kit/patient-flow/internal/config"
	"github.com/spec-kit/patient-flow/internal/observability"
	"github.com/spec-kit/patient-flow/internal/persistence"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "flowctl",
		Short:         "Operator tooling for the patient flow service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(predictCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations to the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx := cmd.Context()
			pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
			if err != nil {
				return err
			}
			defer pg.Close()
			if !pg.Enabled() {
				return errors.New("POSTGRES_DSN is required for migrate")
			}

			if dir == "" {
				dir = cfg.Postgres.MigrationsDir
			}
			applied, err := persistence.RunMigrations(ctx, pg.Pool, dir, logger)
			if err != nil {
				return err
			}
			for _, name := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			}
			return nil
		},
	}
	cmd.Flags().String("dir", "", "migrations directory (defaults to POSTGRES_MIGRATIONS_DIR)")
	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the store contents with a fresh synthetic data set",
		RunE: func(cmd *cobra.Command, args []string) error {
			withPredictions, _ := cmd.Flags().GetBool("predictions")

			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				generated, err := c.Simulation.GenerateSyntheticData(ctx)
				if err != nil {
					return err
				}
				summary := map[string]int{
					"patients":  generated.Patients,
					"events":    generated.Events,
					"staff":     generated.Staff,
					"resources": generated.Resources,
				}
				if withPredictions {
					regenerated, err := c.Predictions.Regenerate(ctx)
					if err != nil {
						return err
					}
					summary["predictions"] = regenerated.Predictions
					summary["recommendations"] = regenerated.Recommendations
					summary["alerts"] = regenerated.Alerts
				}
				return printJSON(cmd, summary)
			})
		},
	}
	cmd.Flags().Bool("predictions", true, "also regenerate predictions, recommendations and alerts")
	return cmd
}

func predictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict",
		Short: "Regenerate bottleneck predictions, recommendations and alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				result, err := c.Predictions.Regenerate(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
}

func snapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Capture one department metrics row per department",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				rows, err := c.Snapshots.CaptureSnapshot(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, rows)
			})
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for AUTH_OPERATOR_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, _ := cmd.Flags().GetInt("cost")
			hash, err := auth.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().Int("cost", 0, "bcrypt cost (0 uses the library default)")
	return cmd
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func withContainer(ctx context.Context, fn func(context.Context, *app.Container) error) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if !c.Postgres.Enabled() {
		logger.Warn("no POSTGRES_DSN configured; results are discarded when flowctl exits")
	}
	c.Notifications.RegisterHandlers()

	return fn(ctx, c)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
