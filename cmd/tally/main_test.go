package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/ofx"
	"github.com/Veraticus/tally/internal/storage"
)

const starbucksCSV = `date,description,amount
2024-01-01,STARBUCKS #123,-5.25
2024-01-01,STARBUCKS 0123,-5.25
2024-01-02,CC PAYMENT,5.25
`

// useTestConfig points the commands at a database under a temp dir.
func useTestConfig(t *testing.T) *config.Config {
	t.Helper()
	v := newDefaultViper()
	v.Set("rules.database", filepath.Join(t.TempDir(), "tally.db"))
	cfg, err := config.Load(v)
	require.NoError(t, err)

	appConfig = cfg
	t.Cleanup(func() { appConfig = nil })
	return cfg
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func openTestDB(t *testing.T, cfg *config.Config) *storage.SQLiteStorage {
	t.Helper()
	db, err := initStorage(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func readExport(t *testing.T, data string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	return records
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	names := make(map[string]*cobra.Command)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = sub
	}
	for _, want := range []string{"process", "rules", "patterns", "history", "version"} {
		assert.Contains(t, names, want)
	}

	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.Equal(t, "info", cmd.PersistentFlags().Lookup("log-level").DefValue)
	assert.Equal(t, "console", cmd.PersistentFlags().Lookup("log-format").DefValue)
}

func TestProcessCmd_Flags(t *testing.T) {
	cmd := processCmd()

	for _, name := range []string{"out", "summary", "reviews", "no-progress"} {
		assert.NotNil(t, cmd.Flag(name), name)
	}
	assert.Equal(t, "o", cmd.Flag("out").Shorthand)
	assert.Error(t, cmd.Args(cmd, nil))
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := versionCmd()
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)
	assert.Equal(t, "tally dev\n", out.String())
}

func TestRunProcess_StarbucksScenario(t *testing.T) {
	cfg := useTestConfig(t)
	input := writeInput(t, "stmt.csv", starbucksCSV)

	var stdout, stderr bytes.Buffer
	opts := processOptions{files: []string{input}, summary: true, record: true}
	require.NoError(t, runProcess(context.Background(), cfg, opts, &stdout, &stderr))

	records := readExport(t, stdout.String())
	require.Len(t, records, 3, "header plus two kept rows")

	byID := make(map[string][]string)
	for _, rec := range records[1:] {
		byID[rec[4]] = rec
	}
	require.Contains(t, byID, "stmt.csv:2")
	require.Contains(t, byID, "stmt.csv:4")
	assert.NotContains(t, byID, "stmt.csv:3")

	assert.Equal(t, "Coffee/Dining", byID["stmt.csv:2"][5])
	assert.Equal(t, "Transfer/Payment", byID["stmt.csv:4"][5])
	assert.NotEmpty(t, byID["stmt.csv:2"][8], "representative carries its duplicate group")
	assert.Equal(t, byID["stmt.csv:2"][9], byID["stmt.csv:4"][9], "payment is linked to the purchase")

	assert.Contains(t, stderr.String(), "Summary")
	assert.Contains(t, stderr.String(), "Coffee/Dining")

	runs, err := openTestDB(t, cfg).RecentRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{"stmt.csv"}, runs[0].Sources)
	assert.Equal(t, 3, runs[0].Transactions)
	assert.Equal(t, 1, runs[0].Suppressed)
	assert.Equal(t, 1, runs[0].Cycles)
}

func TestRunProcess_RulesTakePrecedence(t *testing.T) {
	cfg := useTestConfig(t)
	input := writeInput(t, "stmt.csv", starbucksCSV)

	db := openTestDB(t, cfg)
	var out bytes.Buffer
	require.NoError(t, addRule(context.Background(), db, "STARBUCKS #999", "Treats", &out))
	assert.Contains(t, out.String(), `"starbucks" now maps to Treats`)

	var stdout bytes.Buffer
	opts := processOptions{files: []string{input}}
	require.NoError(t, runProcess(context.Background(), cfg, opts, &stdout, &bytes.Buffer{}))

	records := readExport(t, stdout.String())
	assert.Equal(t, "Treats", records[1][5])
	assert.Equal(t, "RULE", records[1][7])
	assert.Equal(t, "1.0000", records[1][6])
}

func TestRunProcess_OutFile(t *testing.T) {
	cfg := useTestConfig(t)
	input := writeInput(t, "stmt.csv", starbucksCSV)
	outPath := filepath.Join(t.TempDir(), "exports", "2024.csv")

	var stdout bytes.Buffer
	opts := processOptions{files: []string{input}, out: outPath}
	require.NoError(t, runProcess(context.Background(), cfg, opts, &stdout, &bytes.Buffer{}))
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Len(t, readExport(t, string(data)), 3)

	runs, err := openTestDB(t, cfg).RecentRuns(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs, "runs are only recorded when asked")
}

func TestRunProcess_Cancelled(t *testing.T) {
	cfg := useTestConfig(t)
	input := writeInput(t, "stmt.csv", starbucksCSV)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runProcess(ctx, cfg, processOptions{files: []string{input}}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseStatement(t *testing.T) {
	parser := ofx.NewParser()

	txns, err := parseStatement(context.Background(), parser, strings.NewReader(starbucksCSV), "/tmp/Jan.CSV")
	require.NoError(t, err)
	assert.Len(t, txns, 3)
	assert.Equal(t, "Jan.CSV:2", txns[0].RawID)

	_, err = parseStatement(context.Background(), parser, strings.NewReader(""), "notes.txt")
	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.qfx", "b.qfx", "c.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	files, err := expandInputs([]string{filepath.Join(dir, "*.qfx"), filepath.Join(dir, "c.csv")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.qfx"),
		filepath.Join(dir, "b.qfx"),
		filepath.Join(dir, "c.csv"),
	}, files)

	_, err = expandInputs([]string{filepath.Join(dir, "*.ofx")})
	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)
}
