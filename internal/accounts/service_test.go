package accounts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/errors"
)

func TestServiceBalances(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, 0.5)
	require.NoError(t, err)
	scope := uuid.NewString()

	checking := newAccount(t, db, scope, "Chase Checking", enums.AccountTypeChecking)
	card := newAccount(t, db, scope, "Amex Card", enums.AccountTypeCreditCard)
	house := newAccount(t, db, scope, "Beach House", enums.AccountTypeOther)
	override := decimal.RequireFromString("250000")
	require.NoError(t, db.Model(house).Update("market_value_override", override).Error)

	newTransaction(t, db, scope, &checking.ID, "100.00", enums.TransactionTypeTransfer)
	newTransaction(t, db, scope, &checking.ID, "-30.50", enums.TransactionTypeTransfer)
	// a charge stores positive on the liability side; owed money reads negative
	newTransaction(t, db, scope, &card.ID, "120.00", enums.TransactionTypeTransfer)
	newTransaction(t, db, scope, &card.ID, "-50.00", enums.TransactionTypeTransfer)
	newTransaction(t, db, scope, &house.ID, "1.00", enums.TransactionTypeTransfer)

	balances, err := svc.Balances(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, balances, 3)

	byName := map[string]decimal.Decimal{}
	for _, ab := range balances {
		byName[ab.Account.Name] = ab.Balance
	}
	assert.True(t, byName["Chase Checking"].Equal(decimal.RequireFromString("69.50")))
	assert.True(t, byName["Amex Card"].Equal(decimal.RequireFromString("-70.00")), "card balance %s", byName["Amex Card"])
	assert.True(t, byName["Beach House"].Equal(override), "override must replace the computed balance")
}

func TestServiceAddAlias(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, 0.5)
	require.NoError(t, err)
	scope := uuid.NewString()

	checking := newAccount(t, db, scope, "Chase Checking", enums.AccountTypeChecking)
	savings := newAccount(t, db, scope, "Ally Savings", enums.AccountTypeSavings)

	updated, err := svc.AddAlias(context.Background(), scope, checking.ID, "Chase Checking x1234")
	require.NoError(t, err)
	assert.Contains(t, updated.RawLabelAliases, "Chase Checking x1234")

	// mapped labels stay unique across accounts
	_, err = svc.AddAlias(context.Background(), scope, savings.ID, "chase checking X1234")
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeConflict, appErr.Code())

	// re-adding to the same account is a no-op
	again, err := svc.AddAlias(context.Background(), scope, checking.ID, "CHASE CHECKING x1234")
	require.NoError(t, err)
	assert.Len(t, again.RawLabelAliases, 1)

	_, err = svc.AddAlias(context.Background(), scope, uuid.New(), "Orphan Label")
	require.Error(t, err)
}

func TestServiceRemoveAlias(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, 0.5)
	require.NoError(t, err)
	scope := uuid.NewString()

	account := newAccount(t, db, scope, "Chase Checking", enums.AccountTypeChecking)
	require.NoError(t, repo.UpdateAliases(context.Background(), account.ID, pq.StringArray{"CHK", "Old Label"}))

	updated, err := svc.RemoveAlias(context.Background(), scope, account.ID, "old label")
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"CHK"}, updated.RawLabelAliases)

	_, err = svc.RemoveAlias(context.Background(), scope, account.ID, "never mapped")
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeNotFound, appErr.Code())
}

func TestServiceCreate(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, 0.5)
	require.NoError(t, err)
	scope := uuid.NewString()

	created, err := svc.Create(context.Background(), scope, CreateInput{
		Name:        "  Chase Checking  ",
		AccountType: enums.AccountTypeChecking,
	})
	require.NoError(t, err)
	assert.Equal(t, "Chase Checking", created.Name)
	assert.Equal(t, enums.AccountTypeChecking, created.AccountType)
	assert.True(t, created.IsActive)
	assert.NotEqual(t, uuid.Nil, created.ID)

	_, err = svc.Create(context.Background(), scope, CreateInput{
		Name:        "chase checking",
		AccountType: enums.AccountTypeSavings,
	})
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeConflict, appErr.Code())

	_, err = svc.Create(context.Background(), scope, CreateInput{Name: "   ", AccountType: enums.AccountTypeChecking})
	require.Error(t, err)
	appErr = errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeValidation, appErr.Code())

	_, err = svc.Create(context.Background(), scope, CreateInput{Name: "Castle", AccountType: enums.AccountType("castle")})
	require.Error(t, err)
	appErr = errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeValidation, appErr.Code())
}

func TestServiceUpdate(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, 0.5)
	require.NoError(t, err)
	scope := uuid.NewString()

	account := newAccount(t, db, scope, "Beach House", enums.AccountTypeOther)
	newAccount(t, db, scope, "Ally Savings", enums.AccountTypeSavings)

	name := "Beach House LLC"
	typ := enums.AccountTypeInvestment
	inactive := false
	override := decimal.RequireFromString("250000")
	updated, err := svc.Update(context.Background(), scope, account.ID, UpdateInput{
		Name:                &name,
		AccountType:         &typ,
		IsActive:            &inactive,
		MarketValueOverride: &override,
	})
	require.NoError(t, err)
	assert.Equal(t, "Beach House LLC", updated.Name)
	assert.Equal(t, enums.AccountTypeInvestment, updated.AccountType)
	assert.False(t, updated.IsActive)
	require.NotNil(t, updated.MarketValueOverride)
	assert.True(t, updated.MarketValueOverride.Equal(override))

	cleared, err := svc.Update(context.Background(), scope, account.ID, UpdateInput{ClearOverride: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.MarketValueOverride)

	found, err := repo.FindByID(context.Background(), scope, account.ID)
	require.NoError(t, err)
	assert.Nil(t, found.MarketValueOverride)
	assert.Equal(t, "Beach House LLC", found.Name)

	_, err = svc.Update(context.Background(), scope, account.ID, UpdateInput{
		MarketValueOverride: &override,
		ClearOverride:       true,
	})
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeValidation, appErr.Code())

	taken := "ally savings"
	_, err = svc.Update(context.Background(), scope, account.ID, UpdateInput{Name: &taken})
	require.Error(t, err)
	appErr = errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeConflict, appErr.Code())

	_, err = svc.Update(context.Background(), scope, uuid.New(), UpdateInput{IsActive: &inactive})
	require.Error(t, err)
	appErr = errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeNotFound, appErr.Code())
}

func TestServiceMergeAliases(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, 0.5)
	require.NoError(t, err)
	scope := uuid.NewString()

	checking := newAccount(t, db, scope, "Chase Checking", enums.AccountTypeChecking)
	newAccount(t, db, scope, "Ally Savings", enums.AccountTypeSavings)

	// one matches the account name, one a merged alias, one neither
	newUnlinkedTransaction(t, db, scope, "chase checking")
	newUnlinkedTransaction(t, db, scope, "Chase Chk x1234")
	newUnlinkedTransaction(t, db, scope, "Ally Savings")

	result, err := svc.MergeAliases(context.Background(), scope, checking.ID,
		[]string{"Chase Chk x1234", "  ", "chase chk X1234", "CHK"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.AliasesAdded)
	assert.Equal(t, int64(2), result.TransactionsLinked)
	assert.Len(t, result.Account.RawLabelAliases, 2)

	// the savings label belongs to another account
	_, err = svc.MergeAliases(context.Background(), scope, checking.ID, []string{"ally savings"})
	require.Error(t, err)
	appErr := errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeConflict, appErr.Code())

	again, err := svc.MergeAliases(context.Background(), scope, checking.ID, []string{"Chase Chk x1234", "CHK"})
	require.NoError(t, err)
	assert.Zero(t, again.AliasesAdded)
	assert.Zero(t, again.TransactionsLinked)
	assert.Len(t, again.Account.RawLabelAliases, 2)

	_, err = svc.MergeAliases(context.Background(), scope, uuid.New(), []string{"CHK"})
	require.Error(t, err)
	appErr = errors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeNotFound, appErr.Code())
}

func TestServiceSuggestUnlinked(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, 0.5)
	require.NoError(t, err)
	scope := uuid.NewString()

	checking := newAccount(t, db, scope, "Chase Checking", enums.AccountTypeChecking)
	newAccount(t, db, scope, "Vanguard Brokerage", enums.AccountTypeInvestment)

	newUnlinkedTransaction(t, db, scope, "Chase Checking x9999")
	newUnlinkedTransaction(t, db, scope, "Chase Checking x9999")
	newUnlinkedTransaction(t, db, scope, "zzqq unrelated 777")

	results, err := svc.SuggestUnlinked(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, results, 1, "labels without candidates are omitted")
	assert.Equal(t, "Chase Checking x9999", results[0].Label)
	require.NotEmpty(t, results[0].Suggestions)
	assert.Equal(t, checking.ID, results[0].Suggestions[0].AccountID)

	empty, err := svc.SuggestUnlinked(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestServiceSuggest(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, 0.5)
	require.NoError(t, err)
	scope := uuid.NewString()

	checking := newAccount(t, db, scope, "Chase Checking", enums.AccountTypeChecking)
	newAccount(t, db, scope, "Vanguard Brokerage", enums.AccountTypeInvestment)

	suggestions, err := svc.Suggest(context.Background(), scope, "Chase Checking x9999")
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, checking.ID, suggestions[0].AccountID)
	assert.GreaterOrEqual(t, suggestions[0].Score, 0.5)

	for _, s := range suggestions {
		assert.NotEqual(t, "Vanguard Brokerage", s.Name)
	}

	_, err = svc.Suggest(context.Background(), scope, "   ")
	require.Error(t, err)
}
