package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/townworks/townledger/internal/auth"
)

// NewUserCommand creates the user command.
func NewUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage portal accounts",
		Long: `Manage the accounts used to sign in to the web portal.

Admin accounts can register residents, record payments, and manage
funds; regular accounts get read-only access to every report.`,
		Example: `  # Create a read-only account (prompts for a password)
  townledger user add clerk

  # Create an admin account
  townledger user add registrar --role admin

  # Rotate a password
  townledger user set-password clerk`,
	}

	cmd.AddCommand(newUserAddCommand())
	cmd.AddCommand(newUserSetPasswordCommand())
	cmd.AddCommand(newUserSetRoleCommand())
	cmd.AddCommand(newUserListCommand())

	return cmd
}

func newUserAddCommand() *cobra.Command {
	var role string
	var password string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a portal account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if !auth.ValidRole(role) {
				return fmt.Errorf("invalid role %q (want %s or %s)", role, auth.RoleAdmin, auth.RoleUser)
			}

			pw, err := resolvePassword(cmd, password, true)
			if err != nil {
				return err
			}

			if _, err := cc.Auth.CreateAccount(cmd.Context(), args[0], pw, role); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s account %q\n", role, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", auth.RoleUser, "Account role (admin or user)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")

	return cmd
}

func newUserSetPasswordCommand() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "set-password <username>",
		Short: "Change an account's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			pw, err := resolvePassword(cmd, password, true)
			if err != nil {
				return err
			}

			if err := cc.Auth.SetPassword(cmd.Context(), args[0], pw); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated password for %q\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "New password (prompted when omitted)")

	return cmd
}

func newUserSetRoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <username> <role>",
		Short: "Change an account's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cc.Auth.SetRole(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set role of %q to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newUserListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List portal accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			accounts, err := cc.Auth.Accounts(cmd.Context())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Username", "Role"})
			for _, a := range accounts {
				t.AppendRow(table.Row{a.Username, a.Role})
			}
			t.Render()
			return nil
		},
	}
}

// resolvePassword returns the flag value when set, otherwise prompts.
// On a terminal the prompt hides input and, when confirm is set, asks
// twice; piped stdin reads a single line instead.
func resolvePassword(cmd *cobra.Command, flagValue string, confirm bool) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	first, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if confirm {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Confirm password: ")
		second, err := term.ReadPassword(fd)
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		if string(first) != string(second) {
			return "", fmt.Errorf("passwords do not match")
		}
	}

	return string(first), nil
}
