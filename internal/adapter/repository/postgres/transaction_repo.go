package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slimbahael/beautycenter/internal/domain"
	"github.com/slimbahael/beautycenter/internal/infrastructure/metrics"
	"github.com/slimbahael/beautycenter/internal/usecase"
)

const transactionColumns = `id, account_id, type, amount, balance_before, balance_after, description, status, order_id, admin_id, created_at, completed_at`

// TransactionRepository implements usecase.TransactionRepository. Completed
// transactions are append-only; there is no update path.
type TransactionRepository struct {
	pool    *pgxpool.Pool
	metrics *metrics.Metrics
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool, m *metrics.Metrics) *TransactionRepository {
	return &TransactionRepository{pool: pool, metrics: m}
}

// Create inserts a balance transaction within the given database transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, transaction *domain.BalanceTransaction) error {
	start := time.Now()

	_, err := txQuerier(tx).Exec(ctx, `
		INSERT INTO balance_transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		transaction.ID,
		transaction.AccountID,
		transaction.Type,
		decimalToNumeric(transaction.Amount),
		decimalToNumeric(transaction.BalanceBefore),
		decimalToNumeric(transaction.BalanceAfter),
		transaction.Description,
		transaction.Status,
		transaction.OrderID,
		transaction.AdminID,
		timeToPgTimestamptz(transaction.CreatedAt),
		timePtrToPgTimestamptz(transaction.CompletedAt),
	)
	observe(r.metrics, "insert", "balance_transactions", start, err)

	return err
}

// GetByID retrieves a balance transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.BalanceTransaction, error) {
	start := time.Now()

	row := r.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM balance_transactions
		WHERE id = $1`, id)

	transaction, err := scanTransaction(row)
	observe(r.metrics, "select", "balance_transactions", start, err)

	return transaction, err
}

// ListByAccount returns transactions for an account, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceTransaction, error) {
	start := time.Now()

	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM balance_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	observe(r.metrics, "select", "balance_transactions", start, err)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*domain.BalanceTransaction, 0, limit)

	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}

		transactions = append(transactions, transaction)
	}

	return transactions, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.BalanceTransaction, error) {
	var (
		transaction   domain.BalanceTransaction
		amount        pgtype.Numeric
		balanceBefore pgtype.Numeric
		balanceAfter  pgtype.Numeric
		createdAt     pgtype.Timestamptz
		completedAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&transaction.ID,
		&transaction.AccountID,
		&transaction.Type,
		&amount,
		&balanceBefore,
		&balanceAfter,
		&transaction.Description,
		&transaction.Status,
		&transaction.OrderID,
		&transaction.AdminID,
		&createdAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	transaction.Amount = numericToDecimal(amount)
	transaction.BalanceBefore = numericToDecimal(balanceBefore)
	transaction.BalanceAfter = numericToDecimal(balanceAfter)
	transaction.CreatedAt = createdAt.Time
	transaction.CompletedAt = pgTimestamptzToTimePtr(completedAt)

	return &transaction, nil
}
