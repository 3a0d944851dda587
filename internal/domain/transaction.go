package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a balance transaction. The sign of the balance
// change is carried by the type; Amount is always strictly positive.
type TransactionType string

const (
	TransactionTypeCredit           TransactionType = "CREDIT"
	TransactionTypeDebit            TransactionType = "DEBIT"
	TransactionTypeRefund           TransactionType = "REFUND"
	TransactionTypeGiftCardPurchase TransactionType = "GIFT_CARD_PURCHASE"
	TransactionTypeGiftCardRedeem   TransactionType = "GIFT_CARD_REDEEM"
)

var validTransactionTypes = map[TransactionType]bool{
	TransactionTypeCredit:           true,
	TransactionTypeDebit:            true,
	TransactionTypeRefund:           true,
	TransactionTypeGiftCardPurchase: true,
	TransactionTypeGiftCardRedeem:   true,
}

// IsValid checks if the type is a known transaction type.
func (t TransactionType) IsValid() bool {
	return validTransactionTypes[t]
}

// IsCredit reports whether the type increases the account balance.
func (t TransactionType) IsCredit() bool {
	switch t {
	case TransactionTypeCredit, TransactionTypeRefund, TransactionTypeGiftCardRedeem:
		return true
	}
	return false
}

// IsDebit reports whether the type decreases the account balance.
func (t TransactionType) IsDebit() bool {
	return t == TransactionTypeDebit
}

// BalanceNeutral reports whether the type records an event without moving the
// balance. Gift card purchases are paid through the payment gateway, not the
// balance, so their ledger row is a marker only.
func (t TransactionType) BalanceNeutral() bool {
	return t == TransactionTypeGiftCardPurchase
}

// TransactionStatus is the lifecycle state of a balance transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// IsValid checks if the status is a known transaction status.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed:
		return true
	}
	return false
}

// BalanceTransaction is an immutable ledger record of a balance mutation.
// Once Status is COMPLETED the record must never change.
type BalanceTransaction struct {
	ID            string
	AccountID     string
	Type          TransactionType
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Description   string
	Status        TransactionStatus
	OrderID       string
	AdminID       string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// MarkCompleted finalizes the transaction at the given time. Completed and
// failed transactions are terminal; a second finalization is rejected.
func (t *BalanceTransaction) MarkCompleted(at time.Time) error {
	if t.Status == TransactionStatusCompleted || t.Status == TransactionStatusFailed {
		return ErrTransactionImmutable
	}

	t.Status = TransactionStatusCompleted
	t.CompletedAt = &at
	return nil
}

// Validate checks the internal consistency of the transaction.
func (t *BalanceTransaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	delta := t.BalanceAfter.Sub(t.BalanceBefore)
	switch {
	case t.Type.IsCredit():
		if !delta.Equal(t.Amount) {
			return ErrInconsistentTransaction
		}
	case t.Type.IsDebit():
		if !delta.Equal(t.Amount.Neg()) {
			return ErrInconsistentTransaction
		}
	default:
		if !delta.IsZero() {
			return ErrInconsistentTransaction
		}
	}
	return nil
}
