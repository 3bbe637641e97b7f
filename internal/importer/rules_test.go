package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
)

func TestLoadRulesDefaults(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)

	typ, ok := rules.TypeRules().Lookup("Deposit")
	require.True(t, ok)
	assert.Equal(t, enums.TransactionTypeIncome, typ)

	typ, ok = rules.TypeRules().Lookup("WITHDRAWAL")
	require.True(t, ok)
	assert.Equal(t, enums.TransactionTypeExpense, typ)

	_, ok = rules.TypeRules().Lookup("Transfer")
	assert.False(t, ok)

	assert.True(t, rules.IsIgnored("Opening Balance Equity"))
	assert.True(t, rules.IsIgnored("  OPENING BALANCE EQUITY  "))
	assert.False(t, rules.IsIgnored("Chase Checking"))
	assert.False(t, rules.IsIgnored(""))
}

func TestLoadRulesFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `type_hints:
  venmo cashout: income
  deposit: expense
ignored_labels:
  - Suspense
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	typ, ok := rules.TypeRules().Lookup("Venmo Cashout")
	require.True(t, ok)
	assert.Equal(t, enums.TransactionTypeIncome, typ)

	// a hint named in the file replaces the default target
	typ, ok = rules.TypeRules().Lookup("deposit")
	require.True(t, ok)
	assert.Equal(t, enums.TransactionTypeExpense, typ)

	// defaults the file does not mention survive
	typ, ok = rules.TypeRules().Lookup("check")
	require.True(t, ok)
	assert.Equal(t, enums.TransactionTypeExpense, typ)

	assert.True(t, rules.IsIgnored("suspense"))
	assert.True(t, rules.IsIgnored("Opening Balance Equity"))
}

func TestLoadRulesRejectsBadHints(t *testing.T) {
	dir := t.TempDir()

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("type_hints:\n  pos: spending\n"), 0o600))
	_, err := LoadRules(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pos")

	transfer := filepath.Join(dir, "transfer.yaml")
	require.NoError(t, os.WriteFile(transfer, []byte("type_hints:\n  wire: transfer\n"), 0o600))
	_, err = LoadRules(transfer)
	require.Error(t, err)
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
