package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/townworks/townledger/internal/ledger"
)

// NewDefaultersCommand creates the defaulters command.
func NewDefaultersCommand() *cobra.Command {
	var month, year, services, format string

	cmd := &cobra.Command{
		Use:   "defaulters",
		Short: "Report houses with pending dues",
		Long: `Report the houses that still owe dues for one month (--month) or a
whole year (--year). Exactly one of the two must be given.

Use --services to restrict the report to a subset of water, security,
and sanitation.`,
		Example: `  # Who still owes for August?
  townledger defaulters --month 2026-08

  # Year-to-date water defaulters
  townledger defaulters --year 2026 --services water

  # Machine-readable output
  townledger defaulters --month 2026-08 --format json`,
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
			svcList := splitServices(services)

			if format == "csv" {
				return cc.Ledger.ExportDefaulters(cmd.Context(), cmd.OutOrStdout(), scope, svcList)
			}

			rows, err := cc.Ledger.Defaulters(cmd.Context(), scope, svcList)
			if err != nil {
				return err
			}

			if format == "json" {
				return renderDefaultersJSON(cmd, scope, rows)
			}
			renderDefaultersTable(cmd, scope, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Billing month (YYYY-MM)")
	cmd.Flags().StringVar(&year, "year", "", "Billing year (YYYY)")
	cmd.Flags().StringVar(&services, "services", "", "Comma-separated services to include")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, csv")

	return cmd
}

func renderDefaultersTable(cmd *cobra.Command, scope ledger.DefaulterScope, rows []ledger.Defaulter) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Defaulters for %s\n", scope.Label())

	if len(rows) == 0 {
		_, _ = fmt.Fprintln(out, "All dues settled.")
		return
	}

	// Comma-grouped rupee amounts read better in office printouts.
	p := message.NewPrinter(language.English)
	rupees := func(n int64) string {
		return p.Sprintf("%d", n)
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"House", "Street", "Owner", "Water", "Security", "Sanitation", "Total"})

	var total int64
	for _, d := range rows {
		t.AppendRow(table.Row{
			d.Resident.HouseNo,
			d.Resident.StreetName,
			d.Resident.OwnerName,
			rupees(d.WaterPending),
			rupees(d.SecurityPending),
			rupees(d.SanitationPending),
			rupees(d.TotalPending),
		})
		total += d.TotalPending
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Outstanding", rupees(total)})
	t.Render()

	_, _ = fmt.Fprintf(out, "(%d houses)\n", len(rows))
}

// defaulterLine is the JSON shape of one report row.
type defaulterLine struct {
	HouseNo           string `json:"house_no"`
	StreetName        string `json:"street_name"`
	OwnerName         string `json:"owner_name"`
	WaterPending      int64  `json:"water_pending"`
	SecurityPending   int64  `json:"security_pending"`
	SanitationPending int64  `json:"sanitation_pending"`
	TotalPending      int64  `json:"total_pending"`
}

func renderDefaultersJSON(cmd *cobra.Command, scope ledger.DefaulterScope, rows []ledger.Defaulter) error {
	lines := make([]defaulterLine, 0, len(rows))
	for _, d := range rows {
		lines = append(lines, defaulterLine{
			HouseNo:           d.Resident.HouseNo,
			StreetName:        d.Resident.StreetName,
			OwnerName:         d.Resident.OwnerName,
			WaterPending:      d.WaterPending,
			SecurityPending:   d.SecurityPending,
			SanitationPending: d.SanitationPending,
			TotalPending:      d.TotalPending,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Scope string          `json:"scope"`
		Rows  []defaulterLine `json:"rows"`
	}{Scope: scope.Label(), Rows: lines})
}
