// Package cli implements the portal command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/portalbi/dashboard-portal/internal/app"
	"github.com/portalbi/dashboard-portal/internal/pkg/config"
	"github.com/portalbi/dashboard-portal/pkg/logger"
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	return newRootCmd(version, commit, date).Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portal",
		Short: "Role-based dashboard portal",
		Long: `Portal serves embedded BI dashboards to authenticated users. Each account
holds one role and each dashboard lists the roles allowed to open it.

Configuration is read from the environment (PORT, JWT_SECRET, STORE_DRIVER,
SESSION_DRIVER, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCmd(version))
	cmd.AddCommand(newVersionCmd(version, commit, date))
	cmd.AddCommand(newAccountsCmd())
	cmd.AddCommand(newDashboardsCmd())

	return cmd
}

// setup loads the configuration and initialises the process logger.
func setup(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, logger.OrNop(), err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "dashboard-portal",
	})
	return cfg, log, nil
}

// openApp assembles the portal for one-shot commands, logging warnings and
// above only.
func openApp(cmd *cobra.Command) (*app.App, error) {
	ctx := cmd.Context()
	cfg, log, err := setup(ctx)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, log.Level(zerolog.WarnLevel))
	if err != nil {
		return nil, fmt.Errorf("open portal: %w", err)
	}
	return a, nil
}
