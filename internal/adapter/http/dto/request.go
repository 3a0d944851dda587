package dto

import (
	"github.com/shopspring/decimal"

	"github.com/slimbahael/beautycenter/internal/domain"
	"github.com/slimbahael/beautycenter/internal/usecase"
)

// CreditRequest represents a request to credit an account.
type CreditRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	OrderID     string          `json:"order_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreditRequest) ToUseCaseInput(accountID string) usecase.CreditInput {
	return usecase.CreditInput{
		AccountID:   accountID,
		Amount:      r.Amount,
		Description: r.Description,
		ReferenceID: r.OrderID,
	}
}

// DebitRequest represents a request to debit an account.
type DebitRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	OrderID     string          `json:"order_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *DebitRequest) ToUseCaseInput(accountID string) usecase.DebitInput {
	return usecase.DebitInput{
		AccountID:   accountID,
		Amount:      r.Amount,
		Description: r.Description,
		ReferenceID: r.OrderID,
	}
}

// AdminAdjustRequest represents a signed admin balance adjustment. A positive
// amount credits the account, a negative one debits it.
type AdminAdjustRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// ToUseCaseInput converts to use case input.
func (r *AdminAdjustRequest) ToUseCaseInput(accountID, adminID string) usecase.AdminAdjustInput {
	return usecase.AdminAdjustInput{
		AccountID:   accountID,
		Amount:      r.Amount,
		Description: r.Description,
		AdminID:     adminID,
	}
}

// IssueGiftCardRequest represents a request to issue a gift card.
type IssueGiftCardRequest struct {
	PurchaserEmail   string          `json:"purchaser_email"`
	PurchaserName    string          `json:"purchaser_name"`
	RecipientEmail   string          `json:"recipient_email"`
	RecipientName    string          `json:"recipient_name"`
	Message          string          `json:"message,omitempty"`
	Type             string          `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentReference string          `json:"payment_reference,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *IssueGiftCardRequest) ToUseCaseInput() usecase.IssueInput {
	return usecase.IssueInput{
		PurchaserEmail:   r.PurchaserEmail,
		PurchaserName:    r.PurchaserName,
		RecipientEmail:   r.RecipientEmail,
		RecipientName:    r.RecipientName,
		Message:          r.Message,
		Type:             domain.GiftCardType(r.Type),
		Amount:           r.Amount,
		PaymentReference: r.PaymentReference,
	}
}

// RedeemGiftCardRequest represents a request to redeem a gift card code into
// an account balance.
type RedeemGiftCardRequest struct {
	Code      string `json:"code"`
	AccountID string `json:"account_id"`
}
