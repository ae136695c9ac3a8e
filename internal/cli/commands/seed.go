package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import registry data from CSV files",
		Long: `Import residents or bills into the ledger from CSV files.

Residents import the whole file or nothing: every row is validated
before any house is registered. Bills reference houses by number, so
import residents first.`,
		Example: `  # Import the resident registry
  townledger seed residents registry.csv

  # Import recorded payments
  townledger seed bills payments.csv`,
	}

	cmd.AddCommand(newSeedResidentsCommand())
	cmd.AddCommand(newSeedBillsCommand())

	return cmd
}

func newSeedResidentsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "residents <file>",
		Short: "Import residents from a CSV file",
		Long: `Import residents from a CSV file.

Expected columns: house_no, street_name, owner_name, owner_cnic,
owner_phone, is_rent, lessee_name, lessee_cnic, lessee_phone, floors,
water, security, sanitation. Each imported house gets one family per
floor, headed by the occupant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()

			n, err := cc.Ledger.ImportResidents(cmd.Context(), "cli", f)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d residents from %s\n", n, args[0])
			return nil
		},
	}
}

func newSeedBillsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bills <file>",
		Short: "Import recorded bill payments from a CSV file",
		Long: `Import bill payments from a CSV file.

Expected columns: house_no, month, water_paid, security_paid,
sanitation_paid. Months use the YYYY-MM form. Rows for unknown houses
fail the import.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()

			n, err := cc.Ledger.ImportBills(cmd.Context(), "cli", f)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bill rows from %s\n", n, args[0])
			return nil
		},
	}
}
