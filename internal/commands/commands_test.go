package commands_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketledger/pocketledger/internal/commands"
	"github.com/pocketledger/pocketledger/internal/ledger"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "pocketledger-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "pocketledger")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/pocketledger")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

// runLedger runs the binary in dir and returns stdout. Stderr carries logs
// and is folded into the error on failure.
func runLedger(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "POCKETLEDGER_LOG_LEVEL=warn")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return stdout.String(), &runError{err: err, stderr: stderr.String()}
	}
	return stdout.String(), nil
}

type runError struct {
	err    error
	stderr string
}

func (e *runError) Error() string { return e.err.Error() + ": " + e.stderr }

func initLedger(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runLedger(t, dir, "init", "--name", "Anna", "--currency", "EUR")
	require.NoError(t, err)
	return dir
}

func TestInit_CreatesLayout(t *testing.T) {
	dir := initLedger(t)

	data, err := os.ReadFile(filepath.Join(dir, "pocketledger.yaml"))
	require.NoError(t, err)
	contents := string(data)
	assert.Contains(t, contents, "name: Anna")
	assert.Contains(t, contents, "currency: EUR")

	for _, p := range []string{filepath.Join("data", "ledger.db"), "inbox"} {
		_, err := os.Stat(filepath.Join(dir, p))
		assert.NoError(t, err, "%s should exist", p)
	}
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	dir := initLedger(t)
	_, err := runLedger(t, dir, "init")
	require.Error(t, err)
}

func TestInit_RejectsBadCurrency(t *testing.T) {
	_, err := runLedger(t, t.TempDir(), "init", "--currency", "euro")
	require.Error(t, err)
}

func TestTx_AddListEditDelete(t *testing.T) {
	dir := initLedger(t)

	out, err := runLedger(t, dir, "tx", "add", "--title", "Lunch", "--amount", "450", "--category", "Food")
	require.NoError(t, err)
	assert.Contains(t, out, "Added #1 Lunch")
	assert.Contains(t, out, "Achievement unlocked:")
	assert.Contains(t, out, "First expense")

	out, err = runLedger(t, dir, "tx", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Lunch")
	assert.Contains(t, out, "-450.00 EUR")

	_, err = runLedger(t, dir, "tx", "edit", "1", "--amount", "500")
	require.NoError(t, err)

	out, err = runLedger(t, dir, "balance")
	require.NoError(t, err)
	assert.Contains(t, out, "-500.00 EUR")

	_, err = runLedger(t, dir, "tx", "delete", "1")
	require.NoError(t, err)
	_, err = runLedger(t, dir, "tx", "delete", "1")
	require.NoError(t, err, "deleting twice is not an error")

	out, err = runLedger(t, dir, "tx", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions yet.")
}

func TestTx_AddRejectsInvalid(t *testing.T) {
	dir := initLedger(t)

	_, err := runLedger(t, dir, "tx", "add", "--title", "Refund", "--amount", "-5")
	require.Error(t, err)

	_, err = runLedger(t, dir, "tx", "add", "--title", "Gift", "--amount", "5", "--kind", "transfer")
	require.Error(t, err)

	_, err = runLedger(t, dir, "tx", "add", "--amount", "5")
	require.Error(t, err, "title is required")

	out, err := runLedger(t, dir, "tx", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions yet.")
}

func TestTx_UnknownCategoryFallsBack(t *testing.T) {
	dir := initLedger(t)

	out, err := runLedger(t, dir, "tx", "add", "--title", "Bonus", "--amount", "100", "--kind", "income", "--category", "Lottery")
	require.NoError(t, err)
	assert.Contains(t, out, "Other Income")
}

func TestCategories_AddAndList(t *testing.T) {
	dir := initLedger(t)

	out, err := runLedger(t, dir, "categories", "add", "Pets", "--color", "#123456")
	require.NoError(t, err)
	assert.Contains(t, out, "Created category")

	out, err = runLedger(t, dir, "categories", "list", "--kind", "expense")
	require.NoError(t, err)
	assert.Contains(t, out, "Pets")
	assert.Contains(t, out, "#123456")
	assert.NotContains(t, out, "Salary")
}

func TestReports(t *testing.T) {
	dir := initLedger(t)

	for _, args := range [][]string{
		{"tx", "add", "--title", "Rent", "--amount", "800", "--category", "Housing", "--importance", "high"},
		{"tx", "add", "--title", "Cinema", "--amount", "200", "--category", "Entertainment", "--importance", "low"},
		{"tx", "add", "--title", "Pay", "--amount", "3000", "--kind", "income", "--category", "Salary"},
	} {
		_, err := runLedger(t, dir, args...)
		require.NoError(t, err, strings.Join(args, " "))
	}

	out, err := runLedger(t, dir, "stats")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Housing"), strings.Index(out, "Entertainment"))

	out, err = runLedger(t, dir, "summary", "--cut", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Expenses: 1000.00 EUR")
	assert.Contains(t, out, "Low-importance share: 20.0%")
	assert.Contains(t, out, "Savings plan")
	assert.Contains(t, out, "Target: 900.00 EUR")

	out, err = runLedger(t, dir, "bars", "--days", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "3000.00 EUR")

	out, err = runLedger(t, dir, "chart", "--days", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "1000.00 EUR")

	_, err = runLedger(t, dir, "bars", "--days", "0")
	require.Error(t, err)
}

func TestProfileAndAchievements(t *testing.T) {
	dir := initLedger(t)

	out, err := runLedger(t, dir, "profile", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[A] Anna")
	assert.Contains(t, out, "Friendliness: 0.50 over 0 messages")

	_, err = runLedger(t, dir, "profile", "set", "--name", "Boris")
	require.NoError(t, err)

	out, err = runLedger(t, dir, "chat-ack", "--friendliness", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello, assistant")

	out, err = runLedger(t, dir, "chat-ack")
	require.NoError(t, err)
	assert.NotContains(t, out, "Achievement unlocked:")

	out, err = runLedger(t, dir, "profile", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[B] Boris")
	assert.Contains(t, out, "Friendliness: 1.00 over 1 messages")

	out, err = runLedger(t, dir, "achievements")
	require.NoError(t, err)
	assert.Contains(t, out, "Big spender")
	assert.Contains(t, out, "locked")
}

func TestIngest_InboxAndExport(t *testing.T) {
	dir := initLedger(t)

	extraction := `{"transactions": [
		{"type": "expense", "title": "Taxi", "amount": 320, "category": "Transport", "confidence": 0.95},
		{"type": "expense", "title": "Guess", "amount": 10, "category": "Food", "confidence": 0.1}
	], "warnings": ["check the taxi fare"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inbox", "chat.json"), []byte(extraction), 0o644))

	out, err := runLedger(t, dir, "ingest")
	require.NoError(t, err)
	assert.Contains(t, out, "chat.json: 1 added, 1 skipped, 0 rejected")
	assert.Contains(t, out, "check the taxi fare")

	_, err = os.Stat(filepath.Join(dir, "inbox", "processed", "chat.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "data", "ingest-log.csv"))
	require.NoError(t, err)

	out, err = runLedger(t, dir, "ingest")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to ingest.")

	exportPath := filepath.Join(dir, "export.csv")
	_, err = runLedger(t, dir, "export", exportPath)
	require.NoError(t, err)

	f, err := os.Open(exportPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := ledger.ReadCSV(f)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Taxi", rows[0].Transaction.Title)
	assert.Equal(t, "Transport", rows[0].Category)

	// Re-import the export into a fresh ledger.
	other := initLedger(t)
	out, err = runLedger(t, other, "ingest", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "export.csv: 1 added")
}

func TestLogLevelFlagReachesServices(t *testing.T) {
	dir := initLedger(t)
	t.Setenv("POCKETLEDGER_LOG_FORMAT", "json")

	var stdout, stderr bytes.Buffer
	root := commands.NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{
		"--config", filepath.Join(dir, "pocketledger.yaml"),
		"--log-level", "debug",
		"tx", "add", "--title", "Tea", "--amount", "5",
	})
	require.NoError(t, root.Execute())

	assert.Contains(t, stdout.String(), "Added #")
	logs := stderr.String()
	assert.Contains(t, logs, `"component":"ledger"`)
	assert.Contains(t, logs, `"message":"transaction added"`)
	assert.Contains(t, logs, `"level":"debug"`)
}
