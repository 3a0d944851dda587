package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database
	// transaction. This prevents long-running transactions from blocking rows.
	DefaultTransactionTimeout = 10 * time.Second

	// MaxRedemptionAttempts is the number of redemption attempts allowed
	// before a gift card is locked.
	MaxRedemptionAttempts = 5

	// MaxVerificationAttempts is the number of staff verification lookups
	// allowed before a gift card is locked.
	MaxVerificationAttempts = 10

	// GiftCardExpirationMonths is the validity period of a new gift card.
	GiftCardExpirationMonths = 6

	// GiftCardCodeBytes is the entropy of a redemption code before encoding.
	GiftCardCodeBytes = 32

	// VerificationTokenBytes is the entropy of a staff verification token.
	VerificationTokenBytes = 16

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour

	// BalanceCacheTTL bounds staleness of cached balances. Only the
	// insufficient-balance hint reads the cache; the authoritative check
	// always runs under a row lock.
	BalanceCacheTTL = 30 * time.Second
)
