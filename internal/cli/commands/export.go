package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/townworks/townledger/internal/ledger"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export ledger data as CSV",
		Long: `Export residents, a monthly billing sheet, or a defaulter report
as CSV. Output goes to stdout unless --output names a file.`,
		Example: `  # Export the resident registry
  townledger export residents --output registry.csv

  # Export one month's billing sheet
  townledger export bills 2026-08

  # Export defaulters for a whole year
  townledger export defaulters --year 2026`,
	}

	cmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "Write to a file instead of stdout")

	cmd.AddCommand(newExportResidentsCommand(&outputPath))
	cmd.AddCommand(newExportBillsCommand(&outputPath))
	cmd.AddCommand(newExportDefaultersCommand(&outputPath))

	return cmd
}

// exportTo resolves the export destination and runs fn against it.
func exportTo(cmd *cobra.Command, outputPath string, fn func(w io.Writer) error) error {
	if outputPath == "" {
		return fn(cmd.OutOrStdout())
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outputPath)
	return nil
}

func newExportResidentsCommand(outputPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "residents",
		Short: "Export the resident registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return exportTo(cmd, *outputPath, func(w io.Writer) error {
				return cc.Ledger.ExportResidents(cmd.Context(), w)
			})
		},
	}
}

func newExportBillsCommand(outputPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bills <month>",
		Short: "Export one month's billing sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return exportTo(cmd, *outputPath, func(w io.Writer) error {
				return cc.Ledger.ExportBillingSheet(cmd.Context(), w, args[0])
			})
		},
	}
}

func newExportDefaultersCommand(outputPath *string) *cobra.Command {
	var month, year, services string

	cmd := &cobra.Command{
		Use:   "defaulters",
		Short: "Export a defaulter report",
		Long: `Export the houses with pending dues for one month (--month) or a
whole year (--year). Use --services to restrict the report to a subset
of water, security, and sanitation.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			scope, err := ledger.ParseScope(month, year)
			if err != nil {
				return err
			}

			return exportTo(cmd, *outputPath, func(w io.Writer) error {
				return cc.Ledger.ExportDefaulters(cmd.Context(), w, scope, splitServices(services))
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Billing month (YYYY-MM)")
	cmd.Flags().StringVar(&year, "year", "", "Billing year (YYYY)")
	cmd.Flags().StringVar(&services, "services", "", "Comma-separated services to include")

	return cmd
}

// splitServices parses a comma-separated service list. Empty means all.
func splitServices(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	services := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			services = append(services, p)
		}
	}
	return services
}
