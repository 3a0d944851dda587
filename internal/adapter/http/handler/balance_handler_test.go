package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/slimbahael/beautycenter/internal/adapter/http/dto"
	"github.com/slimbahael/beautycenter/internal/domain"
	"github.com/slimbahael/beautycenter/internal/usecase"
)

type balanceServiceStub struct {
	getBalanceFn  func(ctx context.Context, accountID string) (decimal.Decimal, error)
	getHistoryFn  func(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceTransaction, error)
	checkFn       func(ctx context.Context, accountID string, required decimal.Decimal) (bool, error)
	creditFn      func(ctx context.Context, input usecase.CreditInput) (*domain.BalanceTransaction, error)
	debitFn       func(ctx context.Context, input usecase.DebitInput) (*domain.BalanceTransaction, error)
	adminAdjustFn func(ctx context.Context, input usecase.AdminAdjustInput) (*domain.BalanceTransaction, error)
}

func (s *balanceServiceStub) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return s.getBalanceFn(ctx, accountID)
}

func (s *balanceServiceStub) GetHistory(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceTransaction, error) {
	return s.getHistoryFn(ctx, accountID, limit, offset)
}

func (s *balanceServiceStub) HasInsufficientBalance(ctx context.Context, accountID string, required decimal.Decimal) (bool, error) {
	return s.checkFn(ctx, accountID, required)
}

func (s *balanceServiceStub) Credit(ctx context.Context, input usecase.CreditInput) (*domain.BalanceTransaction, error) {
	return s.creditFn(ctx, input)
}

func (s *balanceServiceStub) Debit(ctx context.Context, input usecase.DebitInput) (*domain.BalanceTransaction, error) {
	return s.debitFn(ctx, input)
}

func (s *balanceServiceStub) AdminAdjust(ctx context.Context, input usecase.AdminAdjustInput) (*domain.BalanceTransaction, error) {
	return s.adminAdjustFn(ctx, input)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func completedTransaction(txType domain.TransactionType, amount, before, after string) *domain.BalanceTransaction {
	return &domain.BalanceTransaction{
		ID:            "txn-1",
		AccountID:     "acc-1",
		Type:          txType,
		Amount:        decimal.RequireFromString(amount),
		BalanceBefore: decimal.RequireFromString(before),
		BalanceAfter:  decimal.RequireFromString(after),
		Status:        domain.TransactionStatusCompleted,
	}
}

func TestBalanceHandler_GetBalance_Success(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		getBalanceFn: func(ctx context.Context, accountID string) (decimal.Decimal, error) {
			if accountID != "acc-1" {
				t.Fatalf("unexpected account id %s", accountID)
			}
			return decimal.RequireFromString("42.50"), nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/balance", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.GetBalance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AccountID != "acc-1" || resp.Balance.String() != "42.5" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestBalanceHandler_GetBalance_NotFound(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		getBalanceFn: func(ctx context.Context, accountID string) (decimal.Decimal, error) {
			return decimal.Zero, domain.ErrAccountNotFound
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/missing/balance", nil), "id", "missing")
	rec := httptest.NewRecorder()

	handler.GetBalance(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBalanceHandler_GetHistory(t *testing.T) {
	var gotLimit, gotOffset int
	handler := NewBalanceHandler(&balanceServiceStub{
		getHistoryFn: func(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceTransaction, error) {
			gotLimit, gotOffset = limit, offset
			return []*domain.BalanceTransaction{
				completedTransaction(domain.TransactionTypeCredit, "50.00", "0.00", "50.00"),
			}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/balance/history?limit=10&offset=20", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.GetHistory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotLimit != 10 || gotOffset != 20 {
		t.Fatalf("expected limit=10 offset=20, got %d %d", gotLimit, gotOffset)
	}

	var resp dto.ListTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(resp.Transactions))
	}
}

func TestBalanceHandler_CheckBalance(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		checkFn: func(ctx context.Context, accountID string, required decimal.Decimal) (bool, error) {
			return required.GreaterThan(decimal.RequireFromString("30.00")), nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/balance/check?amount=40.00", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.CheckBalance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.BalanceCheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Insufficient {
		t.Fatal("expected insufficient=true for 40.00 against 30.00")
	}
}

func TestBalanceHandler_CheckBalance_InvalidAmount(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		checkFn: func(ctx context.Context, accountID string, required decimal.Decimal) (bool, error) {
			t.Fatal("service must not be called for an invalid amount")
			return false, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/balance/check?amount=abc", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.CheckBalance(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBalanceHandler_Credit_Success(t *testing.T) {
	var captured usecase.CreditInput
	handler := NewBalanceHandler(&balanceServiceStub{
		creditFn: func(ctx context.Context, input usecase.CreditInput) (*domain.BalanceTransaction, error) {
			captured = input
			return completedTransaction(domain.TransactionTypeCredit, "50.00", "0.00", "50.00"), nil
		},
	})

	body, _ := json.Marshal(dto.CreditRequest{
		Amount:      decimal.RequireFromString("50.00"),
		Description: "top up",
		OrderID:     "order-9",
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/balance/credit", bytes.NewReader(body)), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Credit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.AccountID != "acc-1" || captured.ReferenceID != "order-9" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
}

func TestBalanceHandler_Credit_InvalidJSON(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		creditFn: func(ctx context.Context, input usecase.CreditInput) (*domain.BalanceTransaction, error) {
			t.Fatal("Credit should not be called for invalid payload")
			return nil, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/balance/credit", bytes.NewBufferString("{invalid")), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Credit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBalanceHandler_Debit_InsufficientBalance(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		debitFn: func(ctx context.Context, input usecase.DebitInput) (*domain.BalanceTransaction, error) {
			return nil, domain.ErrInsufficientBalance
		},
	})

	body, _ := json.Marshal(dto.DebitRequest{
		Amount:      decimal.RequireFromString("40.00"),
		Description: "order payment",
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/balance/debit", bytes.NewReader(body)), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Debit(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestBalanceHandler_AdminAdjust_UsesAuthenticatedAdmin(t *testing.T) {
	var captured usecase.AdminAdjustInput
	handler := NewBalanceHandler(&balanceServiceStub{
		adminAdjustFn: func(ctx context.Context, input usecase.AdminAdjustInput) (*domain.BalanceTransaction, error) {
			captured = input
			return completedTransaction(domain.TransactionTypeDebit, "20.00", "50.00", "30.00"), nil
		},
	})

	body, _ := json.Marshal(dto.AdminAdjustRequest{
		Amount:      decimal.RequireFromString("-20.00"),
		Description: "manual correction",
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/balance/adjust", bytes.NewReader(body)), "id", "acc-1")
	req = req.WithContext(domain.ContextWithUser(req.Context(), domain.AuthUser{
		ID:   "admin-7",
		Role: domain.RoleAdmin,
	}))
	rec := httptest.NewRecorder()

	handler.AdminAdjust(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.AdminID != "admin-7" {
		t.Fatalf("expected admin-7, got %q", captured.AdminID)
	}
	if captured.Amount.String() != "-20" {
		t.Fatalf("expected signed amount -20, got %s", captured.Amount)
	}
}
