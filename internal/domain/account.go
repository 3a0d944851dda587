package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a customer account that carries a store-credit balance.
// The balance is never written directly; it only changes through the balance
// ledger, which records a BalanceTransaction for every mutation.
type Account struct {
	ID                string
	Email             string
	FirstName         string
	LastName          string
	Role              Role
	Balance           decimal.Decimal
	LastBalanceUpdate *time.Time
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ValidateDebit checks if the account balance covers a debit of amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyCredit returns the balance after crediting amount.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// ApplyDebit returns the balance after debiting amount.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// FullName returns the customer's display name.
func (a *Account) FullName() string {
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
