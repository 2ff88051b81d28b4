package commands

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/importlog"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
)

func runTally(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// newWorkspace initializes a workspace in a temp dir and returns its root.
func newWorkspace(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runTally(t, append([]string{"init", dir}, extra...)...)
	require.NoError(t, err)
	return dir
}

func stage(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join("../../testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(root, "import", name), data, 0o644))
	}
}

func ledgerRows(t *testing.T, root string) []model.CategorizedTransaction {
	t.Helper()
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	require.NoError(t, err)
	store, err := ledger.Open(cfg.Ledger.Backend, config.Resolve(root, cfg.Ledger.Path))
	require.NoError(t, err)
	defer store.Close()
	txns, err := store.All(t.Context())
	require.NoError(t, err)
	return txns
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := newWorkspace(t)

	for _, d := range []string{"accounts", "rules", "ledger", "logs", "import", filepath.Join("import", "processed")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
	for _, f := range []string{"tally.yaml", "rules/global-rules.yaml", "rules/user-rules.yaml", "accounts/own-accounts.csv", ".gitignore"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "file %s should exist", f)
	}

	data, err := os.ReadFile(filepath.Join(dir, "rules", "global-rules.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "pattern: Netflix")

	data, err = os.ReadFile(filepath.Join(dir, "accounts", "own-accounts.csv"))
	require.NoError(t, err)
	assert.Equal(t, "account_number,name,currency,description\n", string(data))
}

func TestInit_Twice(t *testing.T) {
	dir := newWorkspace(t)
	_, err := runTally(t, "init", dir)
	assert.ErrorContains(t, err, "already exists")
}

func TestInit_SQLiteBackend(t *testing.T) {
	dir := newWorkspace(t, "--backend", "sqlite")

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Ledger.Backend)
	assert.Equal(t, "ledger/tally.db", cfg.Ledger.Path)
}

func TestCommands_RequireWorkspace(t *testing.T) {
	_, err := runTally(t, "-C", t.TempDir(), "batches", "list")
	assert.ErrorContains(t, err, "not a tally workspace")
}

func TestImport_FromImportDir(t *testing.T) {
	dir := newWorkspace(t)
	stage(t, dir, "cs_current.csv", "rb_current.csv", "unknown.csv")

	out, err := runTally(t, "-C", dir, "import")
	require.NoError(t, err)
	assert.Contains(t, out, "8 new, 0 duplicates, 1 errors")
	assert.Contains(t, out, "unknown.csv")

	txns := ledgerRows(t, dir)
	require.Len(t, txns, 8)
	batch := txns[0].BatchID
	for _, txn := range txns {
		assert.Equal(t, batch, txn.BatchID)
		assert.NotEmpty(t, txn.ID)
	}

	// Readable statements move to processed, the unknown one stays.
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "cs_current.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "import", "unknown.csv"))
	assert.NoError(t, err)

	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, importlog.ActionImport, entries[0].Action)
	assert.Equal(t, batch, entries[0].BatchID)
	assert.Equal(t, 8, entries[0].TransactionCount)
}

func TestImport_Idempotent(t *testing.T) {
	dir := newWorkspace(t)
	file := filepath.Join("../../testdata", "rb_current.csv")

	_, err := runTally(t, "-C", dir, "import", file)
	require.NoError(t, err)

	out, err := runTally(t, "-C", dir, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "No new transactions: 4 duplicates")
	assert.Len(t, ledgerRows(t, dir), 4)

	// Explicit files are never moved.
	_, err = os.Stat(file)
	assert.NoError(t, err)
}

func TestImport_DryRun(t *testing.T) {
	dir := newWorkspace(t)
	stage(t, dir, "rb_card.csv")

	out, err := runTally(t, "-C", dir, "import", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run: 2 new")
	assert.Contains(t, out, "Shell Praha")
	assert.Empty(t, ledgerRows(t, dir))

	_, err = os.Stat(filepath.Join(dir, "import", "rb_card.csv"))
	assert.NoError(t, err, "dry run leaves the import dir alone")
}

func TestImport_NothingReadable(t *testing.T) {
	dir := newWorkspace(t)
	stage(t, dir, "unknown.csv")

	out, err := runTally(t, "-C", dir, "import")
	require.Error(t, err)
	assert.Contains(t, out, "unknown format")
	assert.Contains(t, out, "Supported formats: CS, RB_CUR, RB_CC, CHASE")
}

func TestImport_EmptyDir(t *testing.T) {
	dir := newWorkspace(t)
	out, err := runTally(t, "-C", dir, "import")
	require.NoError(t, err)
	assert.Contains(t, out, "No statement files")
}

func TestImport_SQLiteFromEnv(t *testing.T) {
	dir := newWorkspace(t)
	t.Setenv("TALLY_LEDGER_BACKEND", "sqlite")
	t.Setenv("TALLY_LEDGER_PATH", filepath.Join(dir, "ledger", "env.db"))

	_, err := runTally(t, "-C", dir, "import", "../../testdata/chase_checking.csv")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "ledger", "env.db"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "ledger", "transactions.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestBatches_ListAndDelete(t *testing.T) {
	dir := newWorkspace(t)
	_, err := runTally(t, "-C", dir, "import", "../../testdata/cs_current.csv")
	require.NoError(t, err)
	_, err = runTally(t, "-C", dir, "import", "../../testdata/rb_current.csv")
	require.NoError(t, err)

	out, err := runTally(t, "-C", dir, "batches", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "BATCH")
	assert.Contains(t, lines[0], "CREATED")

	first := ledgerRows(t, dir)[0].BatchID
	out, err = runTally(t, "-C", dir, "batches", "delete", first)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted batch "+first+" (4 transactions)")

	for _, txn := range ledgerRows(t, dir) {
		assert.NotEqual(t, first, txn.BatchID)
	}

	_, err = runTally(t, "-C", dir, "batches", "delete", first)
	assert.ErrorContains(t, err, "not found")

	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, importlog.ActionDeleteBatch, entries[2].Action)

	out, err = runTally(t, "-C", dir, "batches", "log")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[3], importlog.ActionDeleteBatch)
	assert.Contains(t, lines[3], first)
	assert.Contains(t, lines[1], "cs_current.csv")
}

func TestBatches_LogEmpty(t *testing.T) {
	dir := newWorkspace(t)
	out, err := runTally(t, "-C", dir, "batches", "log")
	require.NoError(t, err)
	assert.Contains(t, out, "No imports recorded")
}

func TestRules_AddListTest(t *testing.T) {
	dir := newWorkspace(t)

	out, err := runTally(t, "-C", dir, "rules", "test", "--", "Netflix.com", "-259,00")
	require.NoError(t, err)
	assert.Contains(t, out, "Subscriptions (Expense) via global")

	_, err = runTally(t, "-C", dir, "rules", "add", "ACME", "Salary", "--type", "income", "--direction", "positive")
	require.NoError(t, err)
	_, err = runTally(t, "-C", dir, "rules", "add", "ACME", "Salary", "--type", "income", "--direction", "positive")
	assert.ErrorContains(t, err, "already exists")
	_, err = runTally(t, "-C", dir, "rules", "add", "X", "Y", "--type", "bogus")
	assert.Error(t, err)

	out, err = runTally(t, "-C", dir, "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ACME")
	assert.Contains(t, out, "positive")

	out, err = runTally(t, "-C", dir, "rules", "test", "ACME s.r.o.", "45 000,00")
	require.NoError(t, err)
	assert.Contains(t, out, `Salary (Income) via user rule "ACME"`)

	out, err = runTally(t, "-C", dir, "rules", "test", "--", "ACME s.r.o.", "-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Uncategorized (Expense) via default")

	out, err = runTally(t, "-C", dir, "rules", "list", "--global")
	require.NoError(t, err)
	assert.Contains(t, out, "Trading 212")
}

func TestRules_Suggest(t *testing.T) {
	dir := newWorkspace(t)

	out, err := runTally(t, "-C", dir, "rules", "suggest")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing uncategorized")

	_, err = runTally(t, "-C", dir, "import", "../../testdata/chase_checking.csv")
	require.NoError(t, err)

	out, err = runTally(t, "-C", dir, "rules", "suggest")
	require.NoError(t, err)
	assert.Contains(t, out, "AWS SERVICES")
}

func TestAccounts_InternalTransfer(t *testing.T) {
	dir := newWorkspace(t)

	out, err := runTally(t, "-C", dir, "accounts", "add", "2001234567/2010", "--name", "Savings")
	require.NoError(t, err)
	assert.Contains(t, out, "Fio banka")

	_, err = runTally(t, "-C", dir, "accounts", "add", "2001234567/2010")
	assert.Error(t, err)

	out, err = runTally(t, "-C", dir, "accounts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Savings")

	_, err = runTally(t, "-C", dir, "import", "../../testdata/cs_current.csv")
	require.NoError(t, err)

	txns := ledgerRows(t, dir)
	require.Len(t, txns, 4)
	assert.Equal(t, model.CategoryInternalTransfer, txns[2].Category)
	assert.Equal(t, model.TypeTransfer, txns[2].Type)
}

func TestImport_GitAutoCommit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := newWorkspace(t, "--git")

	_, err := runTally(t, "-C", dir, "import", "../../testdata/rb_card.csv")
	require.NoError(t, err)

	log := exec.Command("git", "log", "--format=%s")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "import: Import_")
	assert.Contains(t, lines[1], "init: initialize tally workspace")
}
