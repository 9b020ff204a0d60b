package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
	"github.com/portalbi/dashboard-portal/internal/core/ports"
)

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage portal accounts",
		Long: `List, create and delete accounts directly against the configured store.
Only useful with a persistent STORE_DRIVER (sqlite or mongo).`,
	}

	cmd.AddCommand(newAccountsListCmd())
	cmd.AddCommand(newAccountsCreateCmd())
	cmd.AddCommand(newAccountsDeleteCmd())

	return cmd
}

// ---------- accounts list ----------

func newAccountsListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			accounts, err := a.Accounts.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(accounts)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tROLE")
			for _, p := range accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Username, p.Name, p.Role.Label())
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// ---------- accounts create ----------

func newAccountsCreateCmd() *cobra.Command {
	var (
		username string
		name     string
		role     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new account",
		Example: `  portal accounts create --username ana --name "Ana Souza" --role financeiro
  portal accounts create --username root --name Root --role admin --password secret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			if password == "" {
				if password, err = promptPassword(); err != nil {
					return err
				}
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			p, err := a.Accounts.CreateAccount(cmd.Context(), ports.CreateAccountInput{
				Username: username,
				Name:     name,
				Role:     r,
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created account %q (%s) with id %s\n", p.Username, p.Role.Label(), p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login name (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&role, "role", "", "One of pecas, comercial, financeiro, gerente, admin (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("role")

	return cmd
}

// ---------- accounts delete ----------

func newAccountsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Long:  "Delete an account and end its sessions. The last admin account cannot be deleted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			if err := a.Accounts.DeleteAccount(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %s\n", args[0])
			return nil
		},
	}

	return cmd
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	fmt.Print("Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	fmt.Println()

	if string(pwBytes) != string(confirmBytes) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pwBytes), nil
}
