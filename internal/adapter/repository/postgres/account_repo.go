package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/slimbahael/beautycenter/internal/domain"
	"github.com/slimbahael/beautycenter/internal/infrastructure/metrics"
	"github.com/slimbahael/beautycenter/internal/usecase"
)

const accountColumns = `id, email, first_name, last_name, role, balance, last_balance_update, active, created_at, updated_at`

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool    *pgxpool.Pool
	metrics *metrics.Metrics
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool, m *metrics.Metrics) *AccountRepository {
	return &AccountRepository{pool: pool, metrics: m}
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	start := time.Now()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		account.ID,
		account.Email,
		account.FirstName,
		account.LastName,
		account.Role,
		decimalToNumeric(account.Balance),
		timePtrToPgTimestamptz(account.LastBalanceUpdate),
		account.Active,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)
	observe(r.metrics, "insert", "accounts", start, err)

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	start := time.Now()

	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1`, id)

	account, err := scanAccount(row)
	observe(r.metrics, "select", "accounts", start, err)

	return account, err
}

// GetByEmail retrieves an account by email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	start := time.Now()

	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE email = $1`, email)

	account, err := scanAccount(row)
	observe(r.metrics, "select", "accounts", start, err)

	return account, err
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	start := time.Now()

	row := txQuerier(tx).QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
		FOR UPDATE`, id)

	account, err := scanAccount(row)
	observe(r.metrics, "select_for_update", "accounts", start, err)

	return account, err
}

// UpdateBalance updates the balance of an account and stamps the balance
// update time.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	start := time.Now()

	tag, err := txQuerier(tx).Exec(ctx, `
		UPDATE accounts
		SET balance = $2, last_balance_update = $3, updated_at = $3
		WHERE id = $1`,
		id,
		decimalToNumeric(balance),
		timeToPgTimestamptz(updatedAt),
	)
	observe(r.metrics, "update", "accounts", start, err)

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account           domain.Account
		balance           pgtype.Numeric
		lastBalanceUpdate pgtype.Timestamptz
		createdAt         pgtype.Timestamptz
		updatedAt         pgtype.Timestamptz
	)

	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.FirstName,
		&account.LastName,
		&account.Role,
		&balance,
		&lastBalanceUpdate,
		&account.Active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	account.Balance = numericToDecimal(balance)
	account.LastBalanceUpdate = pgTimestamptzToTimePtr(lastBalanceUpdate)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time

	return &account, nil
}
