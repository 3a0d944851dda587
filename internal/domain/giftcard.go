package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GiftCardStatus is the lifecycle state of a gift card.
type GiftCardStatus string

const (
	GiftCardStatusActive   GiftCardStatus = "ACTIVE"
	GiftCardStatusRedeemed GiftCardStatus = "REDEEMED"
	GiftCardStatusExpired  GiftCardStatus = "EXPIRED"
)

// IsValid checks if the status is a known gift card status.
func (s GiftCardStatus) IsValid() bool {
	switch s {
	case GiftCardStatusActive, GiftCardStatusRedeemed, GiftCardStatusExpired:
		return true
	}
	return false
}

// GiftCardType distinguishes stored-value cards from service vouchers.
type GiftCardType string

const (
	// GiftCardTypeBalance is redeemable into the recipient's account balance.
	GiftCardTypeBalance GiftCardType = "BALANCE"

	// GiftCardTypeService is a voucher for an in-salon service; it carries no
	// monetary balance entry and is marked used by staff.
	GiftCardTypeService GiftCardType = "SERVICE"
)

// IsValid checks if the type is a known gift card type.
func (t GiftCardType) IsValid() bool {
	return t == GiftCardTypeBalance || t == GiftCardTypeService
}

// GiftCard represents a purchased gift card. The redemption code is never
// stored; only its bcrypt hash is. The verification token is a separate
// secret for staff lookups and grants no redemption rights.
type GiftCard struct {
	ID                      string
	CodeHash                string
	VerificationToken       string
	Type                    GiftCardType
	Amount                  decimal.Decimal
	Status                  GiftCardStatus
	PurchaserEmail          string
	PurchaserName           string
	RecipientEmail          string
	RecipientName           string
	Message                 string
	PaymentReference        string
	ExpirationDate          time.Time
	RedemptionAttempts      int
	VerificationAttempts    int
	IsLocked                bool
	LockedReason            string
	LockedAt                *time.Time
	LastRedemptionAttempt   *time.Time
	LastRedemptionIP        string
	LastVerificationAttempt *time.Time
	RedeemedAt              *time.Time
	RedeemedByUserID        string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// IsExpired reports whether the card's expiration date has passed.
func (g *GiftCard) IsExpired(now time.Time) bool {
	return g.ExpirationDate.Before(now)
}

// ValidateRedeemable checks the preconditions for redemption. It does not
// touch attempt counters; the gift card engine owns those.
func (g *GiftCard) ValidateRedeemable(now time.Time) error {
	if g.Status != GiftCardStatusActive {
		return ErrGiftCardNotActive
	}
	if g.IsLocked {
		return ErrGiftCardLocked
	}
	if g.IsExpired(now) {
		return ErrGiftCardExpired
	}
	return nil
}

// MarkRedeemed transitions the card to its terminal REDEEMED state.
func (g *GiftCard) MarkRedeemed(userID string, now time.Time) {
	g.Status = GiftCardStatusRedeemed
	g.RedeemedAt = &now
	g.RedeemedByUserID = userID
	g.UpdatedAt = now
}

// MarkExpired transitions the card to its terminal EXPIRED state.
func (g *GiftCard) MarkExpired(now time.Time) {
	g.Status = GiftCardStatusExpired
	g.UpdatedAt = now
}

// Lock blocks further redemption and verification attempts. The status stays
// ACTIVE; unlocking is a manual administrative action.
func (g *GiftCard) Lock(reason string, now time.Time) {
	g.IsLocked = true
	g.LockedReason = reason
	g.LockedAt = &now
	g.UpdatedAt = now
}

// RecordRedemptionAttempt increments the redemption counter and stamps the
// attempt source.
func (g *GiftCard) RecordRedemptionAttempt(ip string, now time.Time) {
	g.RedemptionAttempts++
	g.LastRedemptionAttempt = &now
	g.LastRedemptionIP = ip
	g.UpdatedAt = now
}

// RecordVerificationAttempt increments the staff verification counter.
func (g *GiftCard) RecordVerificationAttempt(now time.Time) {
	g.VerificationAttempts++
	g.LastVerificationAttempt = &now
	g.UpdatedAt = now
}
