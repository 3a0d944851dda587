package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func activeCard(expiresIn time.Duration) *GiftCard {
	now := time.Now().UTC()
	return &GiftCard{
		ID:             "card-1",
		Type:           GiftCardTypeBalance,
		Amount:         decimal.RequireFromString("50.00"),
		Status:         GiftCardStatusActive,
		ExpirationDate: now.Add(expiresIn),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestGiftCard_ValidateRedeemable(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name      string
		mutate    func(*GiftCard)
		expectErr error
	}{
		{
			name: "active unlocked unexpired",
		},
		{
			name:      "redeemed",
			mutate:    func(c *GiftCard) { c.Status = GiftCardStatusRedeemed },
			expectErr: ErrGiftCardNotActive,
		},
		{
			name:      "expired status",
			mutate:    func(c *GiftCard) { c.Status = GiftCardStatusExpired },
			expectErr: ErrGiftCardNotActive,
		},
		{
			name:      "locked",
			mutate:    func(c *GiftCard) { c.IsLocked = true },
			expectErr: ErrGiftCardLocked,
		},
		{
			name:      "past expiration date",
			mutate:    func(c *GiftCard) { c.ExpirationDate = now.Add(-time.Hour) },
			expectErr: ErrGiftCardExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := activeCard(time.Hour)
			if tt.mutate != nil {
				tt.mutate(card)
			}

			err := card.ValidateRedeemable(now)

			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Errorf("expected %v, got %v", tt.expectErr, err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGiftCard_MarkRedeemed(t *testing.T) {
	card := activeCard(time.Hour)
	now := time.Now().UTC()

	card.MarkRedeemed("acc-1", now)

	if card.Status != GiftCardStatusRedeemed {
		t.Errorf("expected REDEEMED, got %s", card.Status)
	}
	if card.RedeemedByUserID != "acc-1" {
		t.Errorf("expected redeemer acc-1, got %s", card.RedeemedByUserID)
	}
	if card.RedeemedAt == nil || !card.RedeemedAt.Equal(now) {
		t.Error("expected RedeemedAt stamped")
	}
}

func TestGiftCard_MarkExpired(t *testing.T) {
	card := activeCard(-time.Hour)
	now := time.Now().UTC()

	if !card.IsExpired(now) {
		t.Fatal("expected card past its expiration date")
	}

	card.MarkExpired(now)

	if card.Status != GiftCardStatusExpired {
		t.Errorf("expected EXPIRED, got %s", card.Status)
	}
}

func TestGiftCard_Lock(t *testing.T) {
	card := activeCard(time.Hour)
	now := time.Now().UTC()

	card.Lock("too many redemption attempts", now)

	if !card.IsLocked {
		t.Error("expected card locked")
	}
	if card.LockedReason != "too many redemption attempts" {
		t.Errorf("unexpected reason %q", card.LockedReason)
	}
	if card.LockedAt == nil {
		t.Error("expected LockedAt stamped")
	}
	// Locking is not a status change; a locked card can be unlocked later.
	if card.Status != GiftCardStatusActive {
		t.Errorf("expected status ACTIVE, got %s", card.Status)
	}
}

func TestGiftCard_RecordAttempts(t *testing.T) {
	card := activeCard(time.Hour)
	now := time.Now().UTC()

	card.RecordRedemptionAttempt("203.0.113.7", now)
	card.RecordRedemptionAttempt("203.0.113.8", now.Add(time.Second))

	if card.RedemptionAttempts != 2 {
		t.Errorf("expected 2 redemption attempts, got %d", card.RedemptionAttempts)
	}
	if card.LastRedemptionIP != "203.0.113.8" {
		t.Errorf("expected last IP recorded, got %s", card.LastRedemptionIP)
	}
	if card.LastRedemptionAttempt == nil {
		t.Error("expected attempt timestamp")
	}

	card.RecordVerificationAttempt(now)
	if card.VerificationAttempts != 1 {
		t.Errorf("expected 1 verification attempt, got %d", card.VerificationAttempts)
	}
	if card.LastVerificationAttempt == nil {
		t.Error("expected verification timestamp")
	}
}

func TestGiftCardType_IsValid(t *testing.T) {
	if !GiftCardTypeBalance.IsValid() || !GiftCardTypeService.IsValid() {
		t.Error("known types must be valid")
	}
	if GiftCardType("COUPON").IsValid() {
		t.Error("unknown type must be invalid")
	}
}
