package commands

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townworks/townledger/internal/store"
)

// setupTestDB creates a ledger database with the full schema and two
// registered houses.
func setupTestDB(t *testing.T, path string) {
	t.Helper()

	st := store.NewSQLiteStore(nil)
	require.NoError(t, st.Open(path))
	defer func() { _ = st.Close() }()
	require.NoError(t, st.Migrate())

	ctx := context.Background()
	for _, houseNo := range []string{"A-1", "A-2"} {
		r := &store.Resident{
			HouseNo:    houseNo,
			StreetName: "Ali Road",
			OwnerName:  "Ahmed Khan",
			OwnerCNIC:  "35202-1234567-1",
			OwnerPhone: "0300-1234567",
			Floors:     1,
		}
		families := []store.Family{
			{Floor: 1, HeadName: "Ahmed Khan", HeadCNIC: "35202-1234567-1", HeadPhone: "0300-1234567"},
		}
		_, err := st.CreateResident(ctx, r, families)
		require.NoError(t, err)
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "townledger.db")
	setupTestDB(t, dbPath)

	db, err := openLedgerDBReadOnly(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestQueryCommand_Tables(t *testing.T) {
	db := openTestDB(t)

	buf := new(bytes.Buffer)
	err := listTablesFromDB(context.Background(), buf, db, "table")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "residents")
	assert.Contains(t, output, "bills")
	assert.Contains(t, output, "funds")
	assert.Contains(t, output, "users")
	assert.NotContains(t, output, "goose_db_version")
}

func TestQueryCommand_Schema(t *testing.T) {
	db := openTestDB(t)

	buf := new(bytes.Buffer)
	err := showSchemaFromDB(context.Background(), buf, db, "residents", "table")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Table: residents")
	assert.Contains(t, output, "house_no")
	assert.Contains(t, output, "street_name")
}

func TestQueryCommand_SchemaNotFound(t *testing.T) {
	db := openTestDB(t)

	buf := new(bytes.Buffer)
	err := showSchemaFromDB(context.Background(), buf, db, "nonexistent_table", "table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestQueryCommand_SchemaJSON(t *testing.T) {
	db := openTestDB(t)

	buf := new(bytes.Buffer)
	err := showSchemaFromDB(context.Background(), buf, db, "bills", "json")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, `"name": "bills"`)
	assert.Contains(t, output, `"columns"`)
}

func queryResidents(t *testing.T, db *sql.DB) *sql.Rows {
	t.Helper()
	rows, err := db.QueryContext(context.Background(),
		"SELECT house_no, street_name FROM residents ORDER BY house_no")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rows.Close() })
	return rows
}

func TestRenderResults_Table(t *testing.T) {
	db := openTestDB(t)
	rows := queryResidents(t, db)

	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, rows, "table"))

	output := buf.String()
	assert.Contains(t, output, "A-1")
	assert.Contains(t, output, "A-2")
	assert.Contains(t, output, "(2 rows)")
}

func TestRenderResults_JSON(t *testing.T) {
	db := openTestDB(t)
	rows := queryResidents(t, db)

	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, rows, "json"))

	output := buf.String()
	assert.Contains(t, output, `"house_no"`)
	assert.Contains(t, output, `"A-1"`)
}

func TestRenderResults_CSV(t *testing.T) {
	db := openTestDB(t)
	rows := queryResidents(t, db)

	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, rows, "csv"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // header + 2 rows
	assert.Equal(t, "house_no,street_name", lines[0])
	assert.Equal(t, "A-1,Ali Road", lines[1])
}

func TestRenderResults_Markdown(t *testing.T) {
	db := openTestDB(t)
	rows := queryResidents(t, db)

	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, rows, "md"))

	output := buf.String()
	assert.Contains(t, output, "| house_no | street_name |")
	assert.Contains(t, output, "| --- | --- |")
	assert.Contains(t, output, "| A-1 | Ali Road |")
}

func TestRenderResults_Empty(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.QueryContext(context.Background(), "SELECT * FROM residents WHERE 1=0")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	buf := new(bytes.Buffer)
	require.NoError(t, renderResults(buf, rows, "table"))
	assert.Contains(t, buf.String(), "(0 rows)")
}

func TestNewQueryCommand(t *testing.T) {
	cmd := NewQueryCommand()
	assert.Equal(t, "query", cmd.Use[:5])
	assert.NotNil(t, cmd.RunE)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "tables")
	assert.Contains(t, names, "schema")
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		input    any
		expected string
	}{
		{nil, "NULL"},
		{"hello", "hello"},
		{42, "42"},
		{3.14, "3.14"},
		{true, "true"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatValue(tt.input))
	}
}

func TestEscapeCSV(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "simple"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, escapeCSV(tt.input))
	}
}
