package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
	"github.com/portalbi/dashboard-portal/internal/infrastructure/catalog"
	"github.com/portalbi/dashboard-portal/internal/pkg/config"
)

func newDashboardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboards",
		Short: "Inspect the dashboard catalog",
	}

	cmd.AddCommand(newDashboardsListCmd())

	return cmd
}

func newDashboardsListCmd() *cobra.Command {
	var (
		role       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List dashboards, optionally only those a role may open",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			var cat *domain.Catalog
			if cfg.DashboardsFile != "" {
				cat, err = catalog.Load(cfg.DashboardsFile)
			} else {
				cat, err = catalog.Default()
			}
			if err != nil {
				return err
			}

			dashboards := cat.All()
			if role != "" {
				r, err := domain.ParseRole(role)
				if err != nil {
					return err
				}
				allowed := dashboards[:0]
				for _, d := range dashboards {
					if d.Allows(r) {
						allowed = append(allowed, d)
					}
				}
				dashboards = allowed
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(dashboards)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tROLES\tCONFIGURED")
			for _, d := range dashboards {
				roles := make([]string, 0, len(d.Roles))
				for _, r := range d.Roles {
					roles = append(roles, string(r))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", d.ID, d.Title, strings.Join(roles, ","), d.Configured())
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Only show dashboards this role may open")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
