package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/api/middleware"
	"github.com/ledgerline/ledgerline-backend/internal/accounts"
	"github.com/ledgerline/ledgerline-backend/internal/networth"
	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
)

type testAccountsService struct {
	listFn            func(ctx context.Context, scope string) ([]models.Account, error)
	balancesFn        func(ctx context.Context, scope string) ([]networth.AccountBalance, error)
	createFn          func(ctx context.Context, scope string, input accounts.CreateInput) (*models.Account, error)
	updateFn          func(ctx context.Context, scope string, accountID uuid.UUID, input accounts.UpdateInput) (*models.Account, error)
	addAliasFn        func(ctx context.Context, scope string, accountID uuid.UUID, alias string) (*models.Account, error)
	mergeAliasesFn    func(ctx context.Context, scope string, accountID uuid.UUID, aliases []string) (*accounts.MergeAliasesResult, error)
	removeAliasFn     func(ctx context.Context, scope string, accountID uuid.UUID, alias string) (*models.Account, error)
	suggestFn         func(ctx context.Context, scope, label string) ([]accounts.AliasSuggestion, error)
	suggestUnlinkedFn func(ctx context.Context, scope string) ([]accounts.LabelSuggestions, error)
}

func (s *testAccountsService) List(ctx context.Context, scope string) ([]models.Account, error) {
	if s.listFn != nil {
		return s.listFn(ctx, scope)
	}
	return nil, nil
}

func (s *testAccountsService) Balances(ctx context.Context, scope string) ([]networth.AccountBalance, error) {
	if s.balancesFn != nil {
		return s.balancesFn(ctx, scope)
	}
	return nil, nil
}

func (s *testAccountsService) Create(ctx context.Context, scope string, input accounts.CreateInput) (*models.Account, error) {
	if s.createFn != nil {
		return s.createFn(ctx, scope, input)
	}
	return nil, nil
}

func (s *testAccountsService) Update(ctx context.Context, scope string, accountID uuid.UUID, input accounts.UpdateInput) (*models.Account, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, scope, accountID, input)
	}
	return nil, nil
}

func (s *testAccountsService) AddAlias(ctx context.Context, scope string, accountID uuid.UUID, alias string) (*models.Account, error) {
	if s.addAliasFn != nil {
		return s.addAliasFn(ctx, scope, accountID, alias)
	}
	return nil, nil
}

func (s *testAccountsService) MergeAliases(ctx context.Context, scope string, accountID uuid.UUID, aliases []string) (*accounts.MergeAliasesResult, error) {
	if s.mergeAliasesFn != nil {
		return s.mergeAliasesFn(ctx, scope, accountID, aliases)
	}
	return nil, nil
}

func (s *testAccountsService) RemoveAlias(ctx context.Context, scope string, accountID uuid.UUID, alias string) (*models.Account, error) {
	if s.removeAliasFn != nil {
		return s.removeAliasFn(ctx, scope, accountID, alias)
	}
	return nil, nil
}

func (s *testAccountsService) Suggest(ctx context.Context, scope, label string) ([]accounts.AliasSuggestion, error) {
	if s.suggestFn != nil {
		return s.suggestFn(ctx, scope, label)
	}
	return nil, nil
}

func (s *testAccountsService) SuggestUnlinked(ctx context.Context, scope string) ([]accounts.LabelSuggestions, error) {
	if s.suggestUnlinkedFn != nil {
		return s.suggestUnlinkedFn(ctx, scope)
	}
	return nil, nil
}

func withScope(req *http.Request, scope string) *http.Request {
	return req.WithContext(middleware.WithScope(req.Context(), scope))
}

func TestAccountListSuccess(t *testing.T) {
	svc := &testAccountsService{
		balancesFn: func(ctx context.Context, scope string) ([]networth.AccountBalance, error) {
			if scope != "scope-a" {
				t.Fatalf("unexpected scope %q", scope)
			}
			return []networth.AccountBalance{
				{
					Account: models.Account{ID: uuid.New(), Name: "Chase Checking", AccountType: enums.AccountTypeChecking},
					Balance: decimal.RequireFromString("1250.75"),
				},
			}, nil
		},
	}

	req := withScope(httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil), "scope-a")
	resp := httptest.NewRecorder()
	AccountList(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data accountListResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data.Accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(envelope.Data.Accounts))
	}
	if envelope.Data.Accounts[0].Account.Name != "Chase Checking" {
		t.Fatalf("unexpected account %+v", envelope.Data.Accounts[0].Account)
	}
}

func TestAccountListMissingScope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	resp := httptest.NewRecorder()
	AccountList(&testAccountsService{}, newTestLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAccountCreateSuccess(t *testing.T) {
	called := false
	svc := &testAccountsService{
		createFn: func(ctx context.Context, scope string, input accounts.CreateInput) (*models.Account, error) {
			called = true
			if input.Name != "Chase Checking" {
				t.Fatalf("unexpected name %q", input.Name)
			}
			if input.AccountType != enums.AccountTypeChecking {
				t.Fatalf("unexpected type %s", input.AccountType)
			}
			return &models.Account{ID: uuid.New(), UserScope: scope, Name: input.Name, AccountType: input.AccountType, IsActive: true}, nil
		},
	}

	body := `{"name":"Chase Checking","accountType":"checking"}`
	req := withScope(httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body)), "scope-a")
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AccountCreate(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
	var envelope struct {
		Data models.Account `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Name != "Chase Checking" || !envelope.Data.IsActive {
		t.Fatalf("unexpected account %+v", envelope.Data)
	}
}

func TestAccountCreateInvalidType(t *testing.T) {
	called := false
	svc := &testAccountsService{
		createFn: func(ctx context.Context, scope string, input accounts.CreateInput) (*models.Account, error) {
			called = true
			return nil, nil
		},
	}

	body := `{"name":"Chase Checking","accountType":"castle"}`
	req := withScope(httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body)), "scope-a")
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AccountCreate(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if called {
		t.Fatal("service should not run on invalid type")
	}
}

func TestAccountCreateMissingName(t *testing.T) {
	body := `{"accountType":"checking"}`
	req := withScope(httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body)), "scope-a")
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AccountCreate(&testAccountsService{}, newTestLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAccountUpdatePatchesFields(t *testing.T) {
	accountID := uuid.New()
	svc := &testAccountsService{
		updateFn: func(ctx context.Context, scope string, id uuid.UUID, input accounts.UpdateInput) (*models.Account, error) {
			if id != accountID {
				t.Fatalf("unexpected id %s", id)
			}
			if input.Name == nil || *input.Name != "Beach House" {
				t.Fatalf("unexpected name patch %+v", input.Name)
			}
			if input.AccountType == nil || *input.AccountType != enums.AccountTypeInvestment {
				t.Fatalf("unexpected type patch %+v", input.AccountType)
			}
			if input.MarketValueOverride == nil || !input.MarketValueOverride.Equal(decimal.RequireFromString("250000")) {
				t.Fatalf("unexpected override %+v", input.MarketValueOverride)
			}
			if input.IsActive != nil || input.ClearOverride {
				t.Fatalf("unexpected extra patches %+v", input)
			}
			return &models.Account{ID: id, Name: *input.Name}, nil
		},
	}

	body := `{"name":"Beach House","accountType":"investment","marketValueOverride":"250000"}`
	req := withScope(httptest.NewRequest(http.MethodPatch, "/api/v1/accounts/"+accountID.String(), strings.NewReader(body)), "scope-a")
	req.Header.Set("Content-Type", "application/json")
	req = addRouteParam(req, "accountId", accountID.String())
	resp := httptest.NewRecorder()
	AccountUpdate(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestAccountUpdateClearOverride(t *testing.T) {
	accountID := uuid.New()
	svc := &testAccountsService{
		updateFn: func(ctx context.Context, scope string, id uuid.UUID, input accounts.UpdateInput) (*models.Account, error) {
			if !input.ClearOverride {
				t.Fatal("expected clear override")
			}
			if input.MarketValueOverride != nil {
				t.Fatal("override value should be absent")
			}
			return &models.Account{ID: id}, nil
		},
	}

	body := `{"clearMarketValueOverride":true}`
	req := withScope(httptest.NewRequest(http.MethodPatch, "/api/v1/accounts/"+accountID.String(), strings.NewReader(body)), "scope-a")
	req.Header.Set("Content-Type", "application/json")
	req = addRouteParam(req, "accountId", accountID.String())
	resp := httptest.NewRecorder()
	AccountUpdate(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestAccountUpdateInvalidID(t *testing.T) {
	req := withScope(httptest.NewRequest(http.MethodPatch, "/api/v1/accounts/bad", strings.NewReader(`{}`)), "scope-a")
	req.Header.Set("Content-Type", "application/json")
	req = addRouteParam(req, "accountId", "bad")
	resp := httptest.NewRecorder()
	AccountUpdate(&testAccountsService{}, newTestLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAccountMergeAliasesSuccess(t *testing.T) {
	accountID := uuid.New()
	svc := &testAccountsService{
		mergeAliasesFn: func(ctx context.Context, scope string, id uuid.UUID, aliases []string) (*accounts.MergeAliasesResult, error) {
			if len(aliases) != 2 {
				t.Fatalf("unexpected aliases %v", aliases)
			}
			return &accounts.MergeAliasesResult{
				Account:            &models.Account{ID: id},
				AliasesAdded:       2,
				TransactionsLinked: 7,
			}, nil
		},
	}

	body := `{"aliases":["Chase Chk x1234","CHASE CHECKING 1234"]}`
	req := withScope(httptest.NewRequest(http.MethodPost, "/api/v1/accounts/"+accountID.String()+"/aliases", strings.NewReader(body)), "scope-a")
	req.Header.Set("Content-Type", "application/json")
	req = addRouteParam(req, "accountId", accountID.String())
	resp := httptest.NewRecorder()
	AccountMergeAliases(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data accounts.MergeAliasesResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.AliasesAdded != 2 || envelope.Data.TransactionsLinked != 7 {
		t.Fatalf("unexpected result %+v", envelope.Data)
	}
}

func TestAccountMergeAliasesEmptyList(t *testing.T) {
	accountID := uuid.New()
	body := `{"aliases":[]}`
	req := withScope(httptest.NewRequest(http.MethodPost, "/api/v1/accounts/"+accountID.String()+"/aliases", strings.NewReader(body)), "scope-a")
	req.Header.Set("Content-Type", "application/json")
	req = addRouteParam(req, "accountId", accountID.String())
	resp := httptest.NewRecorder()
	AccountMergeAliases(&testAccountsService{}, newTestLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAccountRemoveAliasRequiresLabel(t *testing.T) {
	accountID := uuid.New()
	req := withScope(httptest.NewRequest(http.MethodDelete, "/api/v1/accounts/"+accountID.String()+"/aliases", nil), "scope-a")
	req = addRouteParam(req, "accountId", accountID.String())
	resp := httptest.NewRecorder()
	AccountRemoveAlias(&testAccountsService{}, newTestLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAccountRemoveAliasSuccess(t *testing.T) {
	accountID := uuid.New()
	var got string
	svc := &testAccountsService{
		removeAliasFn: func(ctx context.Context, scope string, id uuid.UUID, alias string) (*models.Account, error) {
			got = alias
			return &models.Account{ID: id}, nil
		},
	}

	req := withScope(httptest.NewRequest(http.MethodDelete, "/api/v1/accounts/"+accountID.String()+"/aliases?label=Chase+Chk+x1234", nil), "scope-a")
	req = addRouteParam(req, "accountId", accountID.String())
	resp := httptest.NewRecorder()
	AccountRemoveAlias(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if got != "Chase Chk x1234" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestAccountAliasSuggestionsUnlinked(t *testing.T) {
	accountID := uuid.New()
	svc := &testAccountsService{
		suggestUnlinkedFn: func(ctx context.Context, scope string) ([]accounts.LabelSuggestions, error) {
			return []accounts.LabelSuggestions{
				{
					Label: "Chase Checking x9999",
					Suggestions: []accounts.AliasSuggestion{
						{AccountID: accountID, Name: "Chase Checking", Score: 0.75},
					},
				},
			}, nil
		},
	}

	req := withScope(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/alias-suggestions", nil), "scope-a")
	resp := httptest.NewRecorder()
	AccountAliasSuggestions(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data aliasSuggestionsResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data.Labels) != 1 {
		t.Fatalf("expected 1 label, got %d", len(envelope.Data.Labels))
	}
	if envelope.Data.Labels[0].Suggestions[0].AccountID != accountID {
		t.Fatalf("unexpected suggestion %+v", envelope.Data.Labels[0])
	}
}

func TestAccountAliasSuggestionsSingleLabel(t *testing.T) {
	var got string
	svc := &testAccountsService{
		suggestFn: func(ctx context.Context, scope, label string) ([]accounts.AliasSuggestion, error) {
			got = label
			return nil, nil
		},
		suggestUnlinkedFn: func(ctx context.Context, scope string) ([]accounts.LabelSuggestions, error) {
			t.Fatal("unlinked sweep should not run for a single label")
			return nil, nil
		},
	}

	req := withScope(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/alias-suggestions?label=Ally+Svgs", nil), "scope-a")
	resp := httptest.NewRecorder()
	AccountAliasSuggestions(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if got != "Ally Svgs" {
		t.Fatalf("unexpected label %q", got)
	}
}
