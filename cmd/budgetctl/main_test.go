package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seedMemory(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `[
		{"user_id":"demo","type":"income","amount":1000,"date":"2024-01-01"},
		{"user_id":"demo","type":"expense","category":"Food & Dining","amount":150,"date":"2024-01-02"},
		{"user_id":"demo","type":"expense","category":"Food & Dining","amount":50,"date":"2024-01-03"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("MEMORY_SEED_FILE", path)
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, "budgetctl", root.Use)
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"migrate", "summary", "categories", "resync"})
}

func TestCategoriesCommand(t *testing.T) {
	out, err := run(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Rent/Mortgage")
	assert.Contains(t, out, "Food & Dining")
	assert.Contains(t, out, "12")
}

func TestSummaryCommand(t *testing.T) {
	seedMemory(t)

	out, err := run(t, "summary", "--user", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Transactions: 3")
	assert.Contains(t, out, "Income:       1000.00")
	assert.Contains(t, out, "Expenses:     200.00")
	assert.Contains(t, out, "Net balance:  800.00")
	assert.Contains(t, out, "Food & Dining")
	assert.Contains(t, out, "100.0%")

	_, err = run(t, "summary")
	assert.EqualError(t, err, "--user is required")
}

func TestResyncCommand(t *testing.T) {
	seedMemory(t)

	out, err := run(t, "resync", "--user", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "exported 3 transactions for demo")
}

func TestMigrateCommand(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	_, err := run(t, "migrate", "up")
	assert.Error(t, err)

	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "budget.db"))

	out, err := run(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite schema is up to date")

	out, err = run(t, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "(dirty: false)")
	assert.NotContains(t, out, "version 0 ")
}
