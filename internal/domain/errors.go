package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Transaction errors
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrTransactionImmutable    = errors.New("completed transaction cannot be modified")
	ErrInvalidTransactionType  = errors.New("invalid transaction type")
	ErrInconsistentTransaction = errors.New("balance snapshot does not match transaction amount")

	// Gift card errors
	ErrGiftCardNotFound    = errors.New("gift card not found")
	ErrInvalidGiftCardCode = errors.New("invalid gift card code")
	ErrGiftCardNotActive   = errors.New("gift card is not active")
	ErrGiftCardLocked      = errors.New("gift card is locked")
	ErrGiftCardExpired     = errors.New("gift card has expired")
	ErrGiftCardWrongType   = errors.New("operation not allowed for this gift card type")

	// Infrastructure errors
	ErrCacheMiss = errors.New("cache miss")
)
