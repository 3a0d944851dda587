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

const giftCardColumns = `id, code_hash, verification_token, type, amount, status,
	purchaser_email, purchaser_name, recipient_email, recipient_name, message,
	payment_reference, expiration_date, redemption_attempts, verification_attempts,
	is_locked, locked_reason, locked_at, last_redemption_attempt, last_redemption_ip,
	last_verification_attempt, redeemed_at, redeemed_by_user_id, created_at, updated_at`

// GiftCardRepository implements usecase.GiftCardRepository.
type GiftCardRepository struct {
	pool    *pgxpool.Pool
	metrics *metrics.Metrics
}

// NewGiftCardRepository creates a new GiftCardRepository.
func NewGiftCardRepository(pool *pgxpool.Pool, m *metrics.Metrics) *GiftCardRepository {
	return &GiftCardRepository{pool: pool, metrics: m}
}

// Create inserts a new gift card.
func (r *GiftCardRepository) Create(ctx context.Context, card *domain.GiftCard) error {
	start := time.Now()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO gift_cards (`+giftCardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		card.ID,
		card.CodeHash,
		card.VerificationToken,
		card.Type,
		decimalToNumeric(card.Amount),
		card.Status,
		card.PurchaserEmail,
		card.PurchaserName,
		card.RecipientEmail,
		card.RecipientName,
		card.Message,
		card.PaymentReference,
		timeToPgTimestamptz(card.ExpirationDate),
		card.RedemptionAttempts,
		card.VerificationAttempts,
		card.IsLocked,
		card.LockedReason,
		timePtrToPgTimestamptz(card.LockedAt),
		timePtrToPgTimestamptz(card.LastRedemptionAttempt),
		card.LastRedemptionIP,
		timePtrToPgTimestamptz(card.LastVerificationAttempt),
		timePtrToPgTimestamptz(card.RedeemedAt),
		card.RedeemedByUserID,
		timeToPgTimestamptz(card.CreatedAt),
		timeToPgTimestamptz(card.UpdatedAt),
	)
	observe(r.metrics, "insert", "gift_cards", start, err)

	return err
}

// GetByID retrieves a gift card by ID.
func (r *GiftCardRepository) GetByID(ctx context.Context, id string) (*domain.GiftCard, error) {
	start := time.Now()

	row := r.pool.QueryRow(ctx, `
		SELECT `+giftCardColumns+`
		FROM gift_cards
		WHERE id = $1`, id)

	card, err := scanGiftCard(row)
	observe(r.metrics, "select", "gift_cards", start, err)

	return card, err
}

// GetByIDForUpdate retrieves a gift card by ID with a FOR UPDATE lock.
func (r *GiftCardRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.GiftCard, error) {
	start := time.Now()

	row := txQuerier(tx).QueryRow(ctx, `
		SELECT `+giftCardColumns+`
		FROM gift_cards
		WHERE id = $1
		FOR UPDATE`, id)

	card, err := scanGiftCard(row)
	observe(r.metrics, "select_for_update", "gift_cards", start, err)

	return card, err
}

// GetByVerificationTokenForUpdate retrieves a gift card by its verification
// token with a FOR UPDATE lock.
func (r *GiftCardRepository) GetByVerificationTokenForUpdate(ctx context.Context, tx usecase.Transaction, token string) (*domain.GiftCard, error) {
	start := time.Now()

	row := txQuerier(tx).QueryRow(ctx, `
		SELECT `+giftCardColumns+`
		FROM gift_cards
		WHERE verification_token = $1
		FOR UPDATE`, token)

	card, err := scanGiftCard(row)
	observe(r.metrics, "select_for_update", "gift_cards", start, err)

	return card, err
}

// Update persists the mutable state of a gift card within the given database
// transaction.
func (r *GiftCardRepository) Update(ctx context.Context, tx usecase.Transaction, card *domain.GiftCard) error {
	start := time.Now()

	tag, err := txQuerier(tx).Exec(ctx, `
		UPDATE gift_cards
		SET status = $2,
			redemption_attempts = $3,
			verification_attempts = $4,
			is_locked = $5,
			locked_reason = $6,
			locked_at = $7,
			last_redemption_attempt = $8,
			last_redemption_ip = $9,
			last_verification_attempt = $10,
			redeemed_at = $11,
			redeemed_by_user_id = $12,
			updated_at = $13
		WHERE id = $1`,
		card.ID,
		card.Status,
		card.RedemptionAttempts,
		card.VerificationAttempts,
		card.IsLocked,
		card.LockedReason,
		timePtrToPgTimestamptz(card.LockedAt),
		timePtrToPgTimestamptz(card.LastRedemptionAttempt),
		card.LastRedemptionIP,
		timePtrToPgTimestamptz(card.LastVerificationAttempt),
		timePtrToPgTimestamptz(card.RedeemedAt),
		card.RedeemedByUserID,
		timeToPgTimestamptz(card.UpdatedAt),
	)
	observe(r.metrics, "update", "gift_cards", start, err)

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGiftCardNotFound
	}

	return nil
}

// ListActiveUnlocked returns all ACTIVE, unlocked cards for code matching.
func (r *GiftCardRepository) ListActiveUnlocked(ctx context.Context) ([]*domain.GiftCard, error) {
	return r.list(ctx, `
		SELECT `+giftCardColumns+`
		FROM gift_cards
		WHERE status = $1 AND is_locked = FALSE
		ORDER BY created_at DESC`,
		domain.GiftCardStatusActive)
}

// ListExpiredActive returns ACTIVE cards whose expiration date is before the
// given time.
func (r *GiftCardRepository) ListExpiredActive(ctx context.Context, before time.Time) ([]*domain.GiftCard, error) {
	return r.list(ctx, `
		SELECT `+giftCardColumns+`
		FROM gift_cards
		WHERE status = $1 AND expiration_date < $2
		ORDER BY expiration_date`,
		domain.GiftCardStatusActive, timeToPgTimestamptz(before))
}

// ListByPurchaserEmail returns the cards bought by the given email, newest
// first.
func (r *GiftCardRepository) ListByPurchaserEmail(ctx context.Context, email string) ([]*domain.GiftCard, error) {
	return r.list(ctx, `
		SELECT `+giftCardColumns+`
		FROM gift_cards
		WHERE purchaser_email = $1
		ORDER BY created_at DESC`,
		email)
}

// ListByRecipientEmail returns the cards addressed to the given email, newest
// first.
func (r *GiftCardRepository) ListByRecipientEmail(ctx context.Context, email string) ([]*domain.GiftCard, error) {
	return r.list(ctx, `
		SELECT `+giftCardColumns+`
		FROM gift_cards
		WHERE recipient_email = $1
		ORDER BY created_at DESC`,
		email)
}

func (r *GiftCardRepository) list(ctx context.Context, query string, args ...any) ([]*domain.GiftCard, error) {
	start := time.Now()

	rows, err := r.pool.Query(ctx, query, args...)
	observe(r.metrics, "select", "gift_cards", start, err)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*domain.GiftCard

	for rows.Next() {
		card, err := scanGiftCard(rows)
		if err != nil {
			return nil, err
		}

		cards = append(cards, card)
	}

	return cards, rows.Err()
}

func scanGiftCard(row pgx.Row) (*domain.GiftCard, error) {
	var (
		card                    domain.GiftCard
		amount                  pgtype.Numeric
		expirationDate          pgtype.Timestamptz
		lockedAt                pgtype.Timestamptz
		lastRedemptionAttempt   pgtype.Timestamptz
		lastVerificationAttempt pgtype.Timestamptz
		redeemedAt              pgtype.Timestamptz
		createdAt               pgtype.Timestamptz
		updatedAt               pgtype.Timestamptz
	)

	err := row.Scan(
		&card.ID,
		&card.CodeHash,
		&card.VerificationToken,
		&card.Type,
		&amount,
		&card.Status,
		&card.PurchaserEmail,
		&card.PurchaserName,
		&card.RecipientEmail,
		&card.RecipientName,
		&card.Message,
		&card.PaymentReference,
		&expirationDate,
		&card.RedemptionAttempts,
		&card.VerificationAttempts,
		&card.IsLocked,
		&card.LockedReason,
		&lockedAt,
		&lastRedemptionAttempt,
		&card.LastRedemptionIP,
		&lastVerificationAttempt,
		&redeemedAt,
		&card.RedeemedByUserID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGiftCardNotFound
		}

		return nil, err
	}

	card.Amount = numericToDecimal(amount)
	card.ExpirationDate = expirationDate.Time
	card.LockedAt = pgTimestamptzToTimePtr(lockedAt)
	card.LastRedemptionAttempt = pgTimestamptzToTimePtr(lastRedemptionAttempt)
	card.LastVerificationAttempt = pgTimestamptzToTimePtr(lastVerificationAttempt)
	card.RedeemedAt = pgTimestamptzToTimePtr(redeemedAt)
	card.CreatedAt = createdAt.Time
	card.UpdatedAt = updatedAt.Time

	return &card, nil
}
