package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/slimbahael/beautycenter/internal/domain"
)

// BalanceResponse represents an account balance in API responses.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// BalanceCheckResponse answers the insufficient-balance pre-check.
type BalanceCheckResponse struct {
	AccountID    string          `json:"account_id"`
	Required     decimal.Decimal `json:"required"`
	Insufficient bool            `json:"insufficient"`
}

// TransactionResponse represents a balance transaction in API responses.
type TransactionResponse struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"account_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	OrderID       string          `json:"order_id,omitempty"`
	AdminID       string          `json:"admin_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.BalanceTransaction) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		AccountID:     t.AccountID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		Description:   t.Description,
		Status:        string(t.Status),
		OrderID:       t.OrderID,
		AdminID:       t.AdminID,
		CreatedAt:     t.CreatedAt,
		CompletedAt:   t.CompletedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.BalanceTransaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse wraps a page of balance transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

// GiftCardResponse represents a gift card in API responses. The code hash and
// verification token are never exposed here.
type GiftCardResponse struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	PurchaserEmail string          `json:"purchaser_email"`
	PurchaserName  string          `json:"purchaser_name"`
	RecipientEmail string          `json:"recipient_email"`
	RecipientName  string          `json:"recipient_name"`
	Message        string          `json:"message,omitempty"`
	ExpirationDate time.Time       `json:"expiration_date"`
	IsLocked       bool            `json:"is_locked"`
	RedeemedAt     *time.Time      `json:"redeemed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// GiftCardFromDomain converts a domain gift card to a response.
func GiftCardFromDomain(g *domain.GiftCard) *GiftCardResponse {
	return &GiftCardResponse{
		ID:             g.ID,
		Type:           string(g.Type),
		Amount:         g.Amount,
		Status:         string(g.Status),
		PurchaserEmail: g.PurchaserEmail,
		PurchaserName:  g.PurchaserName,
		RecipientEmail: g.RecipientEmail,
		RecipientName:  g.RecipientName,
		Message:        g.Message,
		ExpirationDate: g.ExpirationDate,
		IsLocked:       g.IsLocked,
		RedeemedAt:     g.RedeemedAt,
		CreatedAt:      g.CreatedAt,
	}
}

// GiftCardsFromDomain converts domain gift cards to responses.
func GiftCardsFromDomain(cards []*domain.GiftCard) []*GiftCardResponse {
	result := make([]*GiftCardResponse, len(cards))
	for i, g := range cards {
		result[i] = GiftCardFromDomain(g)
	}
	return result
}

// IssueGiftCardResponse is the one place the raw redemption code leaves the
// system over the API.
type IssueGiftCardResponse struct {
	GiftCard *GiftCardResponse `json:"gift_card"`
	Code     string            `json:"code"`
}

// VerifyGiftCardResponse is the staff verification view of a gift card. It
// includes attempt counters so staff can see why a card is locked.
type VerifyGiftCardResponse struct {
	GiftCard             *GiftCardResponse `json:"gift_card"`
	RedemptionAttempts   int               `json:"redemption_attempts"`
	VerificationAttempts int               `json:"verification_attempts"`
	LockedReason         string            `json:"locked_reason,omitempty"`
}

// SweepResponse reports the result of an expiry sweep.
type SweepResponse struct {
	Expired int `json:"expired"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
