package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/slimbahael/beautycenter/internal/domain"
	"github.com/slimbahael/beautycenter/internal/infrastructure/metrics"
)

const (
	lockReasonRedemption   = "too many redemption attempts"
	lockReasonVerification = "too many verification attempts"
)

// GiftCardUseCase is the gift card engine. It owns the gift card lifecycle
// and calls into the balance ledger for redemption credits; it never mutates
// account balances itself.
type GiftCardUseCase struct {
	txManager    TransactionManager
	giftCardRepo GiftCardRepository
	accountRepo  AccountRepository
	ledger       BalanceLedger
	hasher       CodeHasher
	idGen        IDGenerator
	notifier     Notifier
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewGiftCardUseCase creates a new GiftCardUseCase.
func NewGiftCardUseCase(
	txManager TransactionManager,
	giftCardRepo GiftCardRepository,
	accountRepo AccountRepository,
	ledger BalanceLedger,
	hasher CodeHasher,
	idGen IDGenerator,
	notifier Notifier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *GiftCardUseCase {
	return &GiftCardUseCase{
		txManager:    txManager,
		giftCardRepo: giftCardRepo,
		accountRepo:  accountRepo,
		ledger:       ledger,
		hasher:       hasher,
		idGen:        idGen,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger,
	}
}

// IssueInput represents input for issuing a gift card.
type IssueInput struct {
	PurchaserEmail   string
	PurchaserName    string
	RecipientEmail   string
	RecipientName    string
	Message          string
	Type             domain.GiftCardType
	Amount           decimal.Decimal
	PaymentReference string
}

// Issue creates a new ACTIVE gift card and returns it together with the raw
// redemption code. The code exists only in this return value and in the
// notification emails; only its hash is persisted.
func (uc *GiftCardUseCase) Issue(ctx context.Context, input IssueInput) (*domain.GiftCard, string, error) {
	if !input.Type.IsValid() {
		return nil, "", domain.ErrGiftCardWrongType
	}
	if err := domain.ValidateEmail(input.PurchaserEmail); err != nil {
		return nil, "", err
	}
	if err := domain.ValidateEmail(input.RecipientEmail); err != nil {
		return nil, "", err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, "", err
	}
	if err := domain.ValidateGiftCardMessage(input.Message); err != nil {
		return nil, "", err
	}

	rawCode, err := generateSecret(GiftCardCodeBytes)
	if err != nil {
		return nil, "", fmt.Errorf("generate redemption code: %w", err)
	}

	codeHash, err := uc.hasher.Hash(rawCode)
	if err != nil {
		return nil, "", fmt.Errorf("hash redemption code: %w", err)
	}

	verificationToken, err := generateSecret(VerificationTokenBytes)
	if err != nil {
		return nil, "", fmt.Errorf("generate verification token: %w", err)
	}

	now := time.Now().UTC()
	card := &domain.GiftCard{
		ID:                uc.idGen.Generate(),
		CodeHash:          codeHash,
		VerificationToken: verificationToken,
		Type:              input.Type,
		Amount:            input.Amount,
		Status:            domain.GiftCardStatusActive,
		PurchaserEmail:    input.PurchaserEmail,
		PurchaserName:     input.PurchaserName,
		RecipientEmail:    input.RecipientEmail,
		RecipientName:     input.RecipientName,
		Message:           input.Message,
		PaymentReference:  input.PaymentReference,
		ExpirationDate:    now.AddDate(0, GiftCardExpirationMonths, 0),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := uc.giftCardRepo.Create(ctx, card); err != nil {
		return nil, "", err
	}

	// Purchase marker in the ledger, only when the purchaser has an account.
	uc.recordPurchaseTransaction(ctx, card)

	uc.notifyAsync("gift card purchase confirmation", func(ctx context.Context) error {
		return uc.notifier.NotifyPurchase(ctx, card, rawCode)
	})
	uc.notifyAsync("gift card received", func(ctx context.Context) error {
		return uc.notifier.NotifyReceived(ctx, card, rawCode)
	})

	if uc.metrics != nil {
		uc.metrics.GiftCardsIssued.Inc()
	}

	uc.logger.Info().
		Str("gift_card_id", card.ID).
		Str("type", string(card.Type)).
		Msg("gift card issued")

	return card, rawCode, nil
}

// Redeem redeems a BALANCE gift card into the given account. The card is
// located by matching the code against the stored hashes of all active,
// unlocked cards; the match is then re-validated under a row lock, so two
// concurrent attempts cannot both redeem the same card.
//
// Failed attempts past the lookup stage persist their side effects (attempt
// counters, lockout, lazy expiry) even though the operation fails.
func (uc *GiftCardUseCase) Redeem(ctx context.Context, code, accountID, sourceIP string) (*domain.BalanceTransaction, error) {
	matched, err := uc.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if matched == nil {
		uc.logger.Warn().Str("source_ip", sourceIP).Msg("gift card redemption failed: no matching code")
		uc.countRedemptionFailure("invalid_code")
		return nil, domain.ErrInvalidGiftCardCode
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	card, err := uc.giftCardRepo.GetByIDForUpdate(txCtx, tx, matched.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	// Re-validate under the lock: another request may have won the race.
	if card.Status != domain.GiftCardStatusActive {
		uc.countRedemptionFailure("not_active")
		return nil, domain.ErrGiftCardNotActive
	}
	if card.IsLocked {
		uc.countRedemptionFailure("locked")
		return nil, domain.ErrGiftCardLocked
	}
	if card.IsExpired(now) {
		card.MarkExpired(now)
		if err := uc.persistAndCommit(txCtx, tx, card); err != nil {
			return nil, err
		}
		uc.countRedemptionFailure("expired")
		if uc.metrics != nil {
			uc.metrics.GiftCardsExpired.Inc()
		}
		return nil, domain.ErrGiftCardExpired
	}

	card.RecordRedemptionAttempt(sourceIP, now)

	if card.RedemptionAttempts > MaxRedemptionAttempts {
		card.Lock(lockReasonRedemption, now)
		if err := uc.persistAndCommit(txCtx, tx, card); err != nil {
			return nil, err
		}
		uc.logger.Warn().Str("gift_card_id", card.ID).Str("source_ip", sourceIP).
			Msg("gift card locked after too many redemption attempts")
		uc.countRedemptionFailure("locked")
		if uc.metrics != nil {
			uc.metrics.GiftCardsLocked.Inc()
		}
		return nil, domain.ErrGiftCardLocked
	}

	if card.Type != domain.GiftCardTypeBalance {
		if err := uc.persistAndCommit(txCtx, tx, card); err != nil {
			return nil, err
		}
		uc.countRedemptionFailure("wrong_type")
		return nil, domain.ErrGiftCardWrongType
	}

	card.MarkRedeemed(accountID, now)
	if err := uc.giftCardRepo.Update(txCtx, tx, card); err != nil {
		return nil, err
	}

	transaction, err := uc.ledger.CreditTx(txCtx, tx, CreditInput{
		AccountID:   accountID,
		Amount:      card.Amount,
		Description: "Gift card redemption - " + shortID(card.ID),
		Type:        domain.TransactionTypeGiftCardRedeem,
		ReferenceID: card.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.GiftCardsRedeemed.Inc()
	}

	uc.logger.Info().
		Str("gift_card_id", card.ID).
		Str("account_id", accountID).
		Msg("gift card redeemed")

	redeemedCard := card
	uc.notifyAsync("gift card redemption confirmation", func(ctx context.Context) error {
		account, err := uc.accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		return uc.notifier.NotifyRedeemed(ctx, redeemedCard, account.Email)
	})
	uc.notifyAsync("gift card redeemed notification", func(ctx context.Context) error {
		return uc.notifier.NotifyRedeemedToPurchaser(ctx, redeemedCard)
	})

	return transaction, nil
}

// VerifyForAdmin looks up a gift card by its verification token for staff
// inspection. Every lookup counts against the verification threshold; past
// it the card is locked with a distinct reason.
func (uc *GiftCardUseCase) VerifyForAdmin(ctx context.Context, verificationToken string) (*domain.GiftCard, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	card, err := uc.giftCardRepo.GetByVerificationTokenForUpdate(txCtx, tx, verificationToken)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	card.RecordVerificationAttempt(now)

	if card.VerificationAttempts > MaxVerificationAttempts && !card.IsLocked {
		card.Lock(lockReasonVerification, now)
		uc.logger.Warn().Str("gift_card_id", card.ID).
			Msg("gift card locked after too many verification attempts")
		if uc.metrics != nil {
			uc.metrics.GiftCardsLocked.Inc()
		}
	}

	if err := uc.persistAndCommit(txCtx, tx, card); err != nil {
		return nil, err
	}

	return card, nil
}

// MarkServiceCardUsed marks a SERVICE gift card as used by staff. Service
// cards carry no monetary entry, so the ledger is not involved.
func (uc *GiftCardUseCase) MarkServiceCardUsed(ctx context.Context, giftCardID, adminID string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	card, err := uc.giftCardRepo.GetByIDForUpdate(txCtx, tx, giftCardID)
	if err != nil {
		return err
	}

	if card.Type != domain.GiftCardTypeService {
		return domain.ErrGiftCardWrongType
	}
	if card.Status != domain.GiftCardStatusActive {
		return domain.ErrGiftCardNotActive
	}

	now := time.Now().UTC()
	card.MarkRedeemed(adminID, now)

	if err := uc.persistAndCommit(txCtx, tx, card); err != nil {
		return err
	}

	usedCard := card
	uc.notifyAsync("service card used confirmation", func(ctx context.Context) error {
		return uc.notifier.NotifyServiceUsed(ctx, usedCard, usedCard.RecipientEmail)
	})
	uc.notifyAsync("service card used notification", func(ctx context.Context) error {
		return uc.notifier.NotifyServiceUsed(ctx, usedCard, usedCard.PurchaserEmail)
	})

	uc.logger.Info().
		Str("gift_card_id", giftCardID).
		Str("admin_id", adminID).
		Msg("service gift card marked as used")

	return nil
}

// SweepExpired transitions every ACTIVE card whose expiration date has
// passed to EXPIRED and returns the number of cards expired. Cards already
// expired, redeemed, or concurrently transitioned are left untouched, so
// repeated sweeps are idempotent.
func (uc *GiftCardUseCase) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	cards, err := uc.giftCardRepo.ListExpiredActive(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, candidate := range cards {
		ok, err := uc.expireCard(ctx, candidate.ID, now)
		if err != nil {
			uc.logger.Error().Err(err).Str("gift_card_id", candidate.ID).Msg("failed to expire gift card")
			continue
		}
		if ok {
			expired++
		}
	}

	if expired > 0 {
		uc.logger.Info().Int("count", expired).Msg("expired gift cards")
	}

	return expired, nil
}

// expireCard expires a single card under a row lock. Returns false when the
// card was no longer an expired ACTIVE card by the time the lock was taken.
func (uc *GiftCardUseCase) expireCard(ctx context.Context, cardID string, now time.Time) (bool, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	card, err := uc.giftCardRepo.GetByIDForUpdate(txCtx, tx, cardID)
	if err != nil {
		return false, err
	}

	if card.Status != domain.GiftCardStatusActive || !card.IsExpired(now) {
		return false, nil
	}

	card.MarkExpired(now)
	if err := uc.persistAndCommit(txCtx, tx, card); err != nil {
		return false, err
	}

	if uc.metrics != nil {
		uc.metrics.GiftCardsExpired.Inc()
	}

	expiredCard := card
	uc.notifyAsync("gift card expired notification", func(ctx context.Context) error {
		return uc.notifier.NotifyExpired(ctx, expiredCard, expiredCard.RecipientEmail)
	})
	uc.notifyAsync("gift card expired notification", func(ctx context.Context) error {
		return uc.notifier.NotifyExpired(ctx, expiredCard, expiredCard.PurchaserEmail)
	})

	return true, nil
}

// ListPurchased returns gift cards bought by the given email, newest first.
func (uc *GiftCardUseCase) ListPurchased(ctx context.Context, email string) ([]*domain.GiftCard, error) {
	return uc.giftCardRepo.ListByPurchaserEmail(ctx, email)
}

// ListReceived returns gift cards addressed to the given email, newest first.
func (uc *GiftCardUseCase) ListReceived(ctx context.Context, email string) ([]*domain.GiftCard, error) {
	return uc.giftCardRepo.ListByRecipientEmail(ctx, email)
}

// findByCode scans all active, unlocked cards for one whose stored hash
// matches the supplied code. The scan is linear because the hash function is
// salted; the hit rate does not distinguish "no such card" from "wrong code".
func (uc *GiftCardUseCase) findByCode(ctx context.Context, code string) (*domain.GiftCard, error) {
	cards, err := uc.giftCardRepo.ListActiveUnlocked(ctx)
	if err != nil {
		return nil, err
	}

	for _, card := range cards {
		if uc.hasher.Verify(card.CodeHash, code) {
			return card, nil
		}
	}

	return nil, nil
}

func (uc *GiftCardUseCase) recordPurchaseTransaction(ctx context.Context, card *domain.GiftCard) {
	account, err := uc.accountRepo.GetByEmail(ctx, card.PurchaserEmail)
	if err != nil {
		// Guests can buy gift cards; nothing to record.
		return
	}

	_, err = uc.ledger.RecordGiftCardPurchase(ctx, account.ID, card.Amount,
		"Gift card purchase - "+shortID(card.ID), card.ID)
	if err != nil {
		uc.logger.Warn().Err(err).Str("gift_card_id", card.ID).
			Msg("failed to record gift card purchase transaction")
	}
}

// persistAndCommit saves the card and commits; used when a state mutation
// must survive an operation that subsequently reports failure.
func (uc *GiftCardUseCase) persistAndCommit(ctx context.Context, tx Transaction, card *domain.GiftCard) error {
	if err := uc.giftCardRepo.Update(ctx, tx, card); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (uc *GiftCardUseCase) notifyAsync(name string, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := fn(ctx); err != nil {
			uc.logger.Warn().Err(err).Str("notification", name).Msg("notification delivery failed")
		}
	}()
}

func (uc *GiftCardUseCase) countRedemptionFailure(reason string) {
	if uc.metrics != nil {
		uc.metrics.RedemptionFailures.WithLabelValues(reason).Inc()
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// generateSecret returns n cryptographically random bytes encoded as
// unpadded base64url.
func generateSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
