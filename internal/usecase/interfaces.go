package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/slimbahael/beautycenter/internal/domain"
)

// AccountRepository defines data access for customer accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

// TransactionRepository defines data access for balance transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, transaction *domain.BalanceTransaction) error
	GetByID(ctx context.Context, id string) (*domain.BalanceTransaction, error)
	// ListByAccount returns transactions for an account, newest first.
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceTransaction, error)
}

// GiftCardRepository defines data access for gift cards.
type GiftCardRepository interface {
	Create(ctx context.Context, card *domain.GiftCard) error
	GetByID(ctx context.Context, id string) (*domain.GiftCard, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.GiftCard, error)
	GetByVerificationTokenForUpdate(ctx context.Context, tx Transaction, token string) (*domain.GiftCard, error)
	Update(ctx context.Context, tx Transaction, card *domain.GiftCard) error
	// ListActiveUnlocked returns all ACTIVE, unlocked cards for code matching.
	ListActiveUnlocked(ctx context.Context) ([]*domain.GiftCard, error)
	// ListExpiredActive returns ACTIVE cards whose expiration date is before
	// the given time.
	ListExpiredActive(ctx context.Context, before time.Time) ([]*domain.GiftCard, error)
	ListByPurchaserEmail(ctx context.Context, email string) ([]*domain.GiftCard, error)
	ListByRecipientEmail(ctx context.Context, email string) ([]*domain.GiftCard, error)
}

// BalanceLedger is the slice of the balance engine the gift card engine
// depends on. The gift card engine never mutates balances itself.
type BalanceLedger interface {
	CreditTx(ctx context.Context, tx Transaction, input CreditInput) (*domain.BalanceTransaction, error)
	RecordGiftCardPurchase(ctx context.Context, accountID string, amount decimal.Decimal, description, referenceID string) (*domain.BalanceTransaction, error)
}

// Notifier delivers customer-facing notifications. Implementations are
// best-effort: callers invoke them after the owning state change is
// committed and never fail the operation on a delivery error.
type Notifier interface {
	NotifyPurchase(ctx context.Context, card *domain.GiftCard, code string) error
	NotifyReceived(ctx context.Context, card *domain.GiftCard, code string) error
	NotifyRedeemed(ctx context.Context, card *domain.GiftCard, redeemerEmail string) error
	NotifyRedeemedToPurchaser(ctx context.Context, card *domain.GiftCard) error
	NotifyServiceUsed(ctx context.Context, card *domain.GiftCard, to string) error
	NotifyExpired(ctx context.Context, card *domain.GiftCard, to string) error
}

// CodeHasher hashes gift card codes and verifies candidates against stored
// hashes. Verification must be safe against timing comparison of the hash.
type CodeHasher interface {
	Hash(code string) (string, error)
	Verify(hash, code string) bool
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient failures such as deadlocks.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
