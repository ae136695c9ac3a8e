package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, DefaultDatabase), cfg.Database)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.SessionSecret)

	serve := cfg.GetServeConfig()
	assert.Equal(t, DefaultPort, serve.Port)
	assert.True(t, serve.AutoOpen)
	assert.True(t, serve.Watch)

	dues := cfg.GetDues()
	assert.Equal(t, int64(DefaultWaterDue), dues.Water)
	assert.Equal(t, int64(DefaultSecurityDue), dues.Security)
	assert.Equal(t, int64(DefaultSanitationDue), dues.Sanitation)

	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	content := `
database: ledger/town.db
verbose: true
serve:
  port: 9000
  auto_open: false
dues:
  water: 600
  security: 400
  sanitation: 1200
streets:
  - Main Road
  - Street 1
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "townledger.yaml"), []byte(content), 0600))

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "ledger", "town.db"), cfg.Database)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 9000, cfg.GetServeConfig().Port)
	assert.False(t, cfg.GetServeConfig().AutoOpen)
	assert.Equal(t, int64(600), cfg.GetDues().Water)
	assert.Equal(t, int64(1200), cfg.GetDues().Sanitation)
	assert.Equal(t, []string{"Main Road", "Street 1"}, cfg.Streets)
	assert.NotEmpty(t, GetConfigFileUsed())
}

func TestLoadConfig_UpwardSearch(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "townledger.yaml"), []byte("database: town.db\n"), 0600))

	nested := filepath.Join(tmpDir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))
	chdir(t, nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	// The config file anchors the database path to its own directory.
	assert.Equal(t, filepath.Join(tmpDir, "town.db"), cfg.Database)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())

	t.Setenv("TOWNLEDGER_SESSION_SECRET", "from-env")
	t.Setenv("TOWNLEDGER_VERBOSE", "true")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.SessionSecret)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_FlagOverride(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	t.Setenv("TOWNLEDGER_DATABASE", "env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database", "", "")
	flags.Bool("verbose", false, "")
	require.NoError(t, flags.Set("database", "flag.db"))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	// Flags beat env vars, and flag paths resolve against CWD.
	assert.Equal(t, filepath.Join(tmpDir, "flag.db"), cfg.Database)
}

func TestLoadConfig_MemoryDatabaseUnresolved(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())

	t.Setenv("TOWNLEDGER_DATABASE", ":memory:")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Database)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantErr   bool
		errSubstr string
	}{
		{
			name: "valid defaults",
			cfg:  Config{Database: "townledger.db"},
		},
		{
			name:      "missing database",
			cfg:       Config{},
			wantErr:   true,
			errSubstr: "database path is required",
		},
		{
			name:      "port out of range",
			cfg:       Config{Database: "x.db", Serve: &ServeConfig{Port: 70000}},
			wantErr:   true,
			errSubstr: "out of range",
		},
		{
			name:      "negative dues",
			cfg:       Config{Database: "x.db", Dues: &DuesConfig{Water: -1}},
			wantErr:   true,
			errSubstr: "dues",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetLogger_Fallback(t *testing.T) {
	logger := GetLogger(t.Context())
	require.NotNil(t, logger)
}
