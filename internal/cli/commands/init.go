package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/townworks/townledger/internal/auth"
	"github.com/townworks/townledger/internal/cli/config"
	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/store"
)

// initFileConfig is the shape of the scaffolded townledger.yaml.
type initFileConfig struct {
	Database string `yaml:"database"`
	Serve    struct {
		Port     int  `yaml:"port"`
		AutoOpen bool `yaml:"auto_open"`
		Watch    bool `yaml:"watch"`
	} `yaml:"serve"`
	Dues struct {
		Water      int64 `yaml:"water"`
		Security   int64 `yaml:"security"`
		Sanitation int64 `yaml:"sanitation"`
	} `yaml:"dues"`
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool
	var adminPassword string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new townledger office",
		Long: `Initialize a new townledger office with a configuration file, the
ledger database, and an admin account.

This creates:
  - townledger.yaml configuration file
  - townledger.db ledger database with the full schema applied
  - an admin account for the web portal

Use --example to also seed a handful of sample residents and bills for
trying the portal out.`,
		Example: `  # Initialize in the current directory
  townledger init --admin-password <password>

  # Initialize in a new directory with sample data
  townledger init town-office --example

  # Force overwrite existing config
  townledger init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force, example, adminPassword)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Seed sample residents and bills")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "Password for the admin account (generated when omitted)")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force, example bool, adminPassword string) error {
	out := cmd.OutOrStdout()

	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "townledger.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("townledger.yaml already exists. Use --force to overwrite")
	}

	var fileCfg initFileConfig
	fileCfg.Database = config.DefaultDatabase
	fileCfg.Serve.Port = config.DefaultPort
	fileCfg.Serve.AutoOpen = true
	fileCfg.Serve.Watch = true
	fileCfg.Dues.Water = config.DefaultWaterDue
	fileCfg.Dues.Security = config.DefaultSecurityDue
	fileCfg.Dues.Sanitation = config.DefaultSanitationDue

	content, err := yaml.Marshal(fileCfg)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	_, _ = fmt.Fprintf(out, "Created %s\n", configPath)

	logger := config.GetLogger(cmd.Context())
	st := store.NewSQLiteStore(logger)
	dbPath := filepath.Join(dir, fileCfg.Database)
	if err := st.Open(dbPath); err != nil {
		return fmt.Errorf("failed to open ledger database: %w", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate ledger database: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Created %s\n", dbPath)

	ctx := cmd.Context()

	generated := adminPassword == ""
	if generated {
		adminPassword = generateSessionSecret()[:16]
	}
	mgr := auth.NewManager(st)
	if _, err := mgr.CreateAccount(ctx, "admin", adminPassword, auth.RoleAdmin); err != nil {
		if !errors.Is(err, store.ErrUserExists) {
			return fmt.Errorf("failed to create admin account: %w", err)
		}
		_, _ = fmt.Fprintln(out, "Admin account already exists, leaving it untouched")
	} else if generated {
		_, _ = fmt.Fprintf(out, "Created admin account (password: %s)\n", adminPassword)
	} else {
		_, _ = fmt.Fprintln(out, "Created admin account")
	}

	if example {
		if err := seedExample(ctx, st, out); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(out, "")
	_, _ = fmt.Fprintln(out, "Town office initialized!")
	_, _ = fmt.Fprintln(out, "")
	_, _ = fmt.Fprintln(out, "Next steps:")
	_, _ = fmt.Fprintln(out, "  townledger user add <name>      Create staff accounts")
	_, _ = fmt.Fprintln(out, "  townledger seed residents <csv> Import the resident registry")
	_, _ = fmt.Fprintln(out, "  townledger serve                Start the web portal")

	return nil
}

const exampleResidentsCSV = `house_no,street_name,owner_name,owner_cnic,owner_phone,is_rent,lessee_name,lessee_cnic,lessee_phone,floors,water,security,sanitation
A-1,Ali Road,Ahmed Khan,35202-1234567-1,0300-1234567,no,,,,1,yes,yes,yes
A-2,Ali Road,Bilal Ahmed,35202-2345678-2,0301-2345678,yes,Salman Tariq,35202-3456789-3,0302-3456789,2,yes,yes,no
B-1,Habib Road,Farooq Malik,35202-4567890-4,0303-4567890,no,,,,1,yes,no,yes
`

const exampleBillsCSV = `house_no,month,water_paid,security_paid,sanitation_paid
A-1,%s,500,500,1000
A-2,%s,500,0,0
`

// seedExample imports a small sample registry with one month of bills.
func seedExample(ctx context.Context, st *store.SQLiteStore, out io.Writer) error {
	svc := ledger.NewService(st, ledger.Config{}, nil)

	residents := exampleResidentsCSV
	n, err := svc.ImportResidents(ctx, "init", strings.NewReader(residents))
	if err != nil {
		return fmt.Errorf("failed to seed sample residents: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Seeded %d sample residents\n", n)

	month := ledger.CurrentMonth(time.Now())
	bills := fmt.Sprintf(exampleBillsCSV, month, month)
	n, err = svc.ImportBills(ctx, "init", strings.NewReader(bills))
	if err != nil {
		return fmt.Errorf("failed to seed sample bills: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Seeded %d sample bills for %s\n", n, month)

	return nil
}
