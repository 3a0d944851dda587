package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/slimbahael/beautycenter/internal/adapter/http/dto"
	"github.com/slimbahael/beautycenter/internal/domain"
	"github.com/slimbahael/beautycenter/internal/usecase"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
	GetHistory(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceTransaction, error)
	HasInsufficientBalance(ctx context.Context, accountID string, required decimal.Decimal) (bool, error)
	Credit(ctx context.Context, input usecase.CreditInput) (*domain.BalanceTransaction, error)
	Debit(ctx context.Context, input usecase.DebitInput) (*domain.BalanceTransaction, error)
	AdminAdjust(ctx context.Context, input usecase.AdminAdjustInput) (*domain.BalanceTransaction, error)
}

// BalanceHandler handles balance-related HTTP requests.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// GetBalance returns the current balance of an account.
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	balance, err := h.balanceUC.GetBalance(r.Context(), accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: accountID,
		Balance:   balance,
	})
}

// GetHistory returns the account's balance transactions, newest first.
func (h *BalanceHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	transactions, err := h.balanceUC.GetHistory(r.Context(), accountID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance history", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(transactions),
		Limit:        limit,
		Offset:       offset,
	})
}

// CheckBalance answers whether the balance covers a required amount. This is
// a hint for checkout UIs; the debit path re-checks under a row lock.
func (h *BalanceHandler) CheckBalance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	required, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	insufficient, err := h.balanceUC.HasInsufficientBalance(r.Context(), accountID, required)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to check balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceCheckResponse{
		AccountID:    accountID,
		Required:     required,
		Insufficient: insufficient,
	})
}

// Credit credits an account.
func (h *BalanceHandler) Credit(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.CreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, err := h.balanceUC.Credit(r.Context(), req.ToUseCaseInput(accountID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to credit account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(transaction))
}

// Debit debits an account.
func (h *BalanceHandler) Debit(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.DebitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, err := h.balanceUC.Debit(r.Context(), req.ToUseCaseInput(accountID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to debit account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(transaction))
}

// AdminAdjust applies a signed balance adjustment on behalf of an admin.
func (h *BalanceHandler) AdminAdjust(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.AdminAdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	adminID := callerID(r, "system")

	transaction, err := h.balanceUC.AdminAdjust(r.Context(), req.ToUseCaseInput(accountID, adminID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to adjust balance", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(transaction))
}
