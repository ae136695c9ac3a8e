package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townworks/townledger/internal/store"
)

func runInitCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewInitCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name     string
		setupDir func(t *testing.T, dir string)
		args     []string
		wantErr  bool
	}{
		{
			name: "init empty directory",
			args: []string{"--admin-password", "admintest"},
		},
		{
			name: "init existing config without force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "townledger.yaml"), []byte("existing"), 0600)
			},
			args:    []string{"--admin-password", "admintest"},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "townledger.yaml"), []byte("existing"), 0600)
			},
			args: []string{"--force", "--admin-password", "admintest"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			oldWd, _ := os.Getwd()
			require.NoError(t, os.Chdir(tmpDir))
			defer func() { _ = os.Chdir(oldWd) }()

			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			_, err := runInitCommand(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			for _, f := range []string{"townledger.yaml", "townledger.db"} {
				_, err := os.Stat(filepath.Join(tmpDir, f))
				assert.False(t, os.IsNotExist(err), "expected file %q to exist", f)
			}
		})
	}
}

func TestInitCommandMetadata(t *testing.T) {
	cmd := NewInitCommand()

	assert.Equal(t, "init [directory]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("force"), "--force flag should exist")
	assert.NotNil(t, cmd.Flags().Lookup("example"), "--example flag should exist")
}

func TestInitCreatesValidConfig(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := runInitCommand(t, tmpDir, "--admin-password", "admintest")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(tmpDir, "townledger.yaml"))
	require.NoError(t, err, "failed to read townledger.yaml")

	expectedContents := []string{
		"database: townledger.db",
		"port: 8742",
		"water: 500",
		"sanitation: 1000",
	}

	for _, expected := range expectedContents {
		assert.Contains(t, string(content), expected, "config should contain %q", expected)
	}
}

func TestInitCreatesAdminAccount(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := runInitCommand(t, tmpDir, "--admin-password", "admintest")
	require.NoError(t, err)

	st := store.NewSQLiteStore(nil)
	require.NoError(t, st.Open(filepath.Join(tmpDir, "townledger.db")))
	defer func() { _ = st.Close() }()

	user, err := st.GetUser(t.Context(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)
}

func TestInitExampleSeedsLedger(t *testing.T) {
	tmpDir := t.TempDir()

	output, err := runInitCommand(t, tmpDir, "--example", "--admin-password", "admintest")
	require.NoError(t, err)
	assert.Contains(t, output, "Seeded 3 sample residents")
	// Sample bills land in the current billing month.
	assert.Contains(t, output, "Seeded 2 sample bills for "+time.Now().Format("2006-01"))

	st := store.NewSQLiteStore(nil)
	require.NoError(t, st.Open(filepath.Join(tmpDir, "townledger.db")))
	defer func() { _ = st.Close() }()

	residents, err := st.ListResidents(t.Context(), store.ResidentFilter{})
	require.NoError(t, err)
	assert.Len(t, residents, 3)
}

func TestInitIdempotentAdmin(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := runInitCommand(t, tmpDir, "--admin-password", "admintest")
	require.NoError(t, err)

	// Second run with --force keeps the existing admin account.
	output, err := runInitCommand(t, tmpDir, "--force", "--admin-password", "newpassword")
	require.NoError(t, err)
	assert.Contains(t, output, "already exists")
}
