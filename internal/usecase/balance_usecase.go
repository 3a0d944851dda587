package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/slimbahael/beautycenter/internal/domain"
	"github.com/slimbahael/beautycenter/internal/infrastructure/metrics"
)

// BalanceUseCase is the balance ledger engine. It exclusively owns mutation
// of account balances and creation of balance transactions: every mutation
// happens under a row lock and produces exactly one COMPLETED transaction
// whose before/after snapshot is taken inside the same database transaction.
type BalanceUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	idGen           IDGenerator
	metrics         *metrics.Metrics
	retrier         Retrier
	cache           Cache
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *BalanceUseCase {
	return &BalanceUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		idGen:           idGen,
		metrics:         metrics,
	}
}

// WithRetrier configures retry behavior for transient database errors.
func (uc *BalanceUseCase) WithRetrier(retrier Retrier) *BalanceUseCase {
	uc.retrier = retrier
	return uc
}

// WithCache enables short-lived balance caching for the insufficient-balance
// hint. Credits and debits never read the cache.
func (uc *BalanceUseCase) WithCache(cache Cache) *BalanceUseCase {
	uc.cache = cache
	return uc
}

// GetBalance returns the current balance for an account.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Balance, nil
}

// GetHistory returns the account's balance transactions, newest first.
func (uc *BalanceUseCase) GetHistory(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceTransaction, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	return uc.transactionRepo.ListByAccount(ctx, accountID, limit, offset)
}

// HasInsufficientBalance reports whether the account balance is below the
// required amount. This is a pre-check hint for callers; debits re-check the
// balance under a row lock regardless of the answer here.
func (uc *BalanceUseCase) HasInsufficientBalance(ctx context.Context, accountID string, required decimal.Decimal) (bool, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, balanceCacheKey(accountID)); err == nil {
			if balance, err := decimal.NewFromString(string(cached)); err == nil {
				return balance.LessThan(required), nil
			}
		}
	}

	balance, err := uc.GetBalance(ctx, accountID)
	if err != nil {
		return false, err
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, balanceCacheKey(accountID), []byte(balance.String()), BalanceCacheTTL)
	}

	return balance.LessThan(required), nil
}

// CreditInput represents input for crediting an account.
type CreditInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
	Type        domain.TransactionType
	ReferenceID string
	AdminID     string
}

// Credit credits an account and records the transaction atomically.
func (uc *BalanceUseCase) Credit(ctx context.Context, input CreditInput) (*domain.BalanceTransaction, error) {
	transaction, err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) (*domain.BalanceTransaction, error) {
		return uc.CreditTx(txCtx, tx, input)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateBalance(ctx, input.AccountID)

	return transaction, nil
}

// CreditTx credits an account within an existing database transaction. The
// caller owns commit/rollback.
func (uc *BalanceUseCase) CreditTx(ctx context.Context, tx Transaction, input CreditInput) (*domain.BalanceTransaction, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if input.Type == "" {
		input.Type = domain.TransactionTypeCredit
	}
	if !input.Type.IsCredit() {
		return nil, domain.ErrInvalidTransactionType
	}

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	balanceBefore := account.Balance
	balanceAfter := account.ApplyCredit(input.Amount)

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, balanceAfter, now); err != nil {
		return nil, err
	}

	transaction, err := uc.recordTransaction(ctx, tx, account.ID, input, balanceBefore, balanceAfter, now)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BalanceCredits.Inc()
	}

	return transaction, nil
}

// DebitInput represents input for debiting an account.
type DebitInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
	Type        domain.TransactionType
	ReferenceID string
	AdminID     string
}

// Debit debits an account and records the transaction atomically. Fails with
// ErrInsufficientBalance when the balance does not cover the amount.
func (uc *BalanceUseCase) Debit(ctx context.Context, input DebitInput) (*domain.BalanceTransaction, error) {
	transaction, err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) (*domain.BalanceTransaction, error) {
		return uc.DebitTx(txCtx, tx, input)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateBalance(ctx, input.AccountID)

	return transaction, nil
}

// DebitTx debits an account within an existing database transaction.
func (uc *BalanceUseCase) DebitTx(ctx context.Context, tx Transaction, input DebitInput) (*domain.BalanceTransaction, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if input.Type == "" {
		input.Type = domain.TransactionTypeDebit
	}
	if !input.Type.IsDebit() {
		return nil, domain.ErrInvalidTransactionType
	}

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateDebit(input.Amount); err != nil {
		if uc.metrics != nil {
			uc.metrics.InsufficientFunds.Inc()
		}
		return nil, err
	}

	now := time.Now().UTC()
	balanceBefore := account.Balance
	balanceAfter := account.ApplyDebit(input.Amount)

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, balanceAfter, now); err != nil {
		return nil, err
	}

	creditShape := CreditInput(input)

	transaction, err := uc.recordTransaction(ctx, tx, account.ID, creditShape, balanceBefore, balanceAfter, now)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BalanceDebits.Inc()
	}

	return transaction, nil
}

// AdminAdjustInput represents a signed admin balance adjustment.
type AdminAdjustInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
	AdminID     string
}

// AdminAdjust routes a signed amount to credit or debit and tags the
// resulting transaction with the acting admin. The admin id is written with
// the transaction in a single atomic insert.
func (uc *BalanceUseCase) AdminAdjust(ctx context.Context, input AdminAdjustInput) (*domain.BalanceTransaction, error) {
	if input.Amount.IsZero() {
		return nil, domain.ErrInvalidAmount
	}

	var (
		transaction *domain.BalanceTransaction
		err         error
	)

	if input.Amount.IsPositive() {
		transaction, err = uc.Credit(ctx, CreditInput{
			AccountID:   input.AccountID,
			Amount:      input.Amount,
			Description: input.Description,
			Type:        domain.TransactionTypeCredit,
			AdminID:     input.AdminID,
		})
	} else {
		transaction, err = uc.Debit(ctx, DebitInput{
			AccountID:   input.AccountID,
			Amount:      input.Amount.Abs(),
			Description: input.Description,
			Type:        domain.TransactionTypeDebit,
			AdminID:     input.AdminID,
		})
	}

	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AdminAdjustments.Inc()
	}

	return transaction, nil
}

// RecordGiftCardPurchase records a balance-neutral marker transaction for a
// gift card purchase. The purchase itself is settled by the payment gateway,
// so the account balance does not move.
func (uc *BalanceUseCase) RecordGiftCardPurchase(ctx context.Context, accountID string, amount decimal.Decimal, description, referenceID string) (*domain.BalanceTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	return uc.inTx(ctx, func(txCtx context.Context, tx Transaction) (*domain.BalanceTransaction, error) {
		account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, accountID)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		transaction := &domain.BalanceTransaction{
			ID:            uc.idGen.Generate(),
			AccountID:     account.ID,
			Type:          domain.TransactionTypeGiftCardPurchase,
			Amount:        amount,
			BalanceBefore: account.Balance,
			BalanceAfter:  account.Balance,
			Description:   description,
			Status:        domain.TransactionStatusPending,
			OrderID:       referenceID,
			CreatedAt:     now,
		}

		if err := transaction.MarkCompleted(now); err != nil {
			return nil, err
		}
		if err := transaction.Validate(); err != nil {
			return nil, err
		}

		if err := uc.transactionRepo.Create(txCtx, tx, transaction); err != nil {
			return nil, err
		}

		return transaction, nil
	})
}

func (uc *BalanceUseCase) recordTransaction(
	ctx context.Context,
	tx Transaction,
	accountID string,
	input CreditInput,
	balanceBefore, balanceAfter decimal.Decimal,
	now time.Time,
) (*domain.BalanceTransaction, error) {
	transaction := &domain.BalanceTransaction{
		ID:            uc.idGen.Generate(),
		AccountID:     accountID,
		Type:          input.Type,
		Amount:        input.Amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Description:   input.Description,
		Status:        domain.TransactionStatusPending,
		OrderID:       input.ReferenceID,
		AdminID:       input.AdminID,
		CreatedAt:     now,
	}

	if err := transaction.MarkCompleted(now); err != nil {
		return nil, err
	}
	if err := transaction.Validate(); err != nil {
		return nil, err
	}

	if err := uc.transactionRepo.Create(ctx, tx, transaction); err != nil {
		return nil, err
	}

	return transaction, nil
}

func balanceCacheKey(accountID string) string {
	return "balance:" + accountID
}

// invalidateBalance drops the cached balance after a successful mutation.
// Best effort; the cache entry expires on its own anyway.
func (uc *BalanceUseCase) invalidateBalance(ctx context.Context, accountID string) {
	if uc.cache == nil {
		return
	}

	_ = uc.cache.Delete(ctx, balanceCacheKey(accountID))
}

// inTx runs fn inside a timed database transaction and commits on success.
// With a retrier configured, the whole transaction is retried on transient
// errors such as deadlocks.
func (uc *BalanceUseCase) inTx(ctx context.Context, fn func(context.Context, Transaction) (*domain.BalanceTransaction, error)) (*domain.BalanceTransaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	attempt := func() (*domain.BalanceTransaction, error) {
		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return nil, err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		transaction, err := fn(txCtx, tx)
		if err != nil {
			return nil, err
		}

		if err := tx.Commit(txCtx); err != nil {
			return nil, err
		}

		return transaction, nil
	}

	if uc.retrier == nil {
		return attempt()
	}

	var transaction *domain.BalanceTransaction

	err := uc.retrier.Retry(txCtx, func() error {
		var attemptErr error
		transaction, attemptErr = attempt()

		return attemptErr
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}
