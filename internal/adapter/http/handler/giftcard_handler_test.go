package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/slimbahael/beautycenter/internal/adapter/http/dto"
	"github.com/slimbahael/beautycenter/internal/domain"
	"github.com/slimbahael/beautycenter/internal/usecase"
)

type giftCardServiceStub struct {
	issueFn         func(ctx context.Context, input usecase.IssueInput) (*domain.GiftCard, string, error)
	redeemFn        func(ctx context.Context, code, accountID, sourceIP string) (*domain.BalanceTransaction, error)
	verifyFn        func(ctx context.Context, verificationToken string) (*domain.GiftCard, error)
	markUsedFn      func(ctx context.Context, giftCardID, adminID string) error
	sweepFn         func(ctx context.Context, now time.Time) (int, error)
	listPurchasedFn func(ctx context.Context, email string) ([]*domain.GiftCard, error)
	listReceivedFn  func(ctx context.Context, email string) ([]*domain.GiftCard, error)
}

func (s *giftCardServiceStub) Issue(ctx context.Context, input usecase.IssueInput) (*domain.GiftCard, string, error) {
	return s.issueFn(ctx, input)
}

func (s *giftCardServiceStub) Redeem(ctx context.Context, code, accountID, sourceIP string) (*domain.BalanceTransaction, error) {
	return s.redeemFn(ctx, code, accountID, sourceIP)
}

func (s *giftCardServiceStub) VerifyForAdmin(ctx context.Context, verificationToken string) (*domain.GiftCard, error) {
	return s.verifyFn(ctx, verificationToken)
}

func (s *giftCardServiceStub) MarkServiceCardUsed(ctx context.Context, giftCardID, adminID string) error {
	return s.markUsedFn(ctx, giftCardID, adminID)
}

func (s *giftCardServiceStub) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	return s.sweepFn(ctx, now)
}

func (s *giftCardServiceStub) ListPurchased(ctx context.Context, email string) ([]*domain.GiftCard, error) {
	return s.listPurchasedFn(ctx, email)
}

func (s *giftCardServiceStub) ListReceived(ctx context.Context, email string) ([]*domain.GiftCard, error) {
	return s.listReceivedFn(ctx, email)
}

func sampleCard() *domain.GiftCard {
	now := time.Now().UTC()
	return &domain.GiftCard{
		ID:                "card-1",
		CodeHash:          "secret-hash",
		VerificationToken: "secret-token",
		Type:              domain.GiftCardTypeBalance,
		Amount:            decimal.RequireFromString("50.00"),
		Status:            domain.GiftCardStatusActive,
		PurchaserEmail:    "buyer@example.com",
		RecipientEmail:    "friend@example.com",
		ExpirationDate:    now.AddDate(0, 6, 0),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestGiftCardHandler_Issue_Success(t *testing.T) {
	handler := NewGiftCardHandler(&giftCardServiceStub{
		issueFn: func(ctx context.Context, input usecase.IssueInput) (*domain.GiftCard, string, error) {
			return sampleCard(), "RAW-CODE", nil
		},
	})

	body, _ := json.Marshal(dto.IssueGiftCardRequest{
		PurchaserEmail: "buyer@example.com",
		RecipientEmail: "friend@example.com",
		Type:           "BALANCE",
		Amount:         decimal.RequireFromString("50.00"),
	})

	req := httptest.NewRequest(http.MethodPost, "/gift-cards", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Issue(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.IssueGiftCardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "RAW-CODE" {
		t.Fatalf("expected the raw code in the issue response, got %q", resp.Code)
	}
	if resp.GiftCard.ID != "card-1" {
		t.Fatalf("expected card-1, got %s", resp.GiftCard.ID)
	}

	// The hash and the verification token never leave the system.
	raw := rec.Body.String()
	for _, secret := range []string{"secret-hash", "secret-token"} {
		if bytes.Contains([]byte(raw), []byte(secret)) {
			t.Fatalf("response leaks %q", secret)
		}
	}
}

func TestGiftCardHandler_Issue_ValidationError(t *testing.T) {
	handler := NewGiftCardHandler(&giftCardServiceStub{
		issueFn: func(ctx context.Context, input usecase.IssueInput) (*domain.GiftCard, string, error) {
			return nil, "", domain.ErrInvalidEmail
		},
	})

	body, _ := json.Marshal(dto.IssueGiftCardRequest{Type: "BALANCE"})
	req := httptest.NewRequest(http.MethodPost, "/gift-cards", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Issue(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGiftCardHandler_Redeem_Success(t *testing.T) {
	var gotCode, gotAccount, gotIP string
	handler := NewGiftCardHandler(&giftCardServiceStub{
		redeemFn: func(ctx context.Context, code, accountID, sourceIP string) (*domain.BalanceTransaction, error) {
			gotCode, gotAccount, gotIP = code, accountID, sourceIP
			return completedTransaction(domain.TransactionTypeGiftCardRedeem, "50.00", "0.00", "50.00"), nil
		},
	})

	body, _ := json.Marshal(dto.RedeemGiftCardRequest{Code: "RAW-CODE", AccountID: "acc-1"})
	req := httptest.NewRequest(http.MethodPost, "/gift-cards/redeem", bytes.NewReader(body))
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec := httptest.NewRecorder()

	handler.Redeem(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotCode != "RAW-CODE" || gotAccount != "acc-1" || gotIP != "203.0.113.7" {
		t.Fatalf("unexpected redeem call: code=%s account=%s ip=%s", gotCode, gotAccount, gotIP)
	}
}

func TestGiftCardHandler_Redeem_MissingFields(t *testing.T) {
	handler := NewGiftCardHandler(&giftCardServiceStub{
		redeemFn: func(ctx context.Context, code, accountID, sourceIP string) (*domain.BalanceTransaction, error) {
			t.Fatal("Redeem should not be called without code and account_id")
			return nil, nil
		},
	})

	body, _ := json.Marshal(dto.RedeemGiftCardRequest{Code: "RAW-CODE"})
	req := httptest.NewRequest(http.MethodPost, "/gift-cards/redeem", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Redeem(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGiftCardHandler_Redeem_ErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "invalid code", err: domain.ErrInvalidGiftCardCode, wantStatus: http.StatusNotFound},
		{name: "locked", err: domain.ErrGiftCardLocked, wantStatus: http.StatusLocked},
		{name: "expired", err: domain.ErrGiftCardExpired, wantStatus: http.StatusGone},
		{name: "wrong type", err: domain.ErrGiftCardWrongType, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewGiftCardHandler(&giftCardServiceStub{
				redeemFn: func(ctx context.Context, code, accountID, sourceIP string) (*domain.BalanceTransaction, error) {
					return nil, tt.err
				},
			})

			body, _ := json.Marshal(dto.RedeemGiftCardRequest{Code: "RAW-CODE", AccountID: "acc-1"})
			req := httptest.NewRequest(http.MethodPost, "/gift-cards/redeem", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.Redeem(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestGiftCardHandler_Verify(t *testing.T) {
	card := sampleCard()
	card.RedemptionAttempts = 3
	card.VerificationAttempts = 2

	handler := NewGiftCardHandler(&giftCardServiceStub{
		verifyFn: func(ctx context.Context, token string) (*domain.GiftCard, error) {
			if token != "secret-token" {
				return nil, domain.ErrGiftCardNotFound
			}
			return card, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/gift-cards/verify/secret-token", nil), "token", "secret-token")
	rec := httptest.NewRecorder()

	handler.Verify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.VerifyGiftCardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.RedemptionAttempts != 3 || resp.VerificationAttempts != 2 {
		t.Fatalf("expected attempt counters, got %+v", resp)
	}
}

func TestGiftCardHandler_MarkUsed(t *testing.T) {
	var gotCard, gotAdmin string
	handler := NewGiftCardHandler(&giftCardServiceStub{
		markUsedFn: func(ctx context.Context, giftCardID, adminID string) error {
			gotCard, gotAdmin = giftCardID, adminID
			return nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/gift-cards/card-1/mark-used", nil), "id", "card-1")
	req = req.WithContext(domain.ContextWithUser(req.Context(), domain.AuthUser{ID: "admin-7", Role: domain.RoleAdmin}))
	rec := httptest.NewRecorder()

	handler.MarkUsed(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotCard != "card-1" || gotAdmin != "admin-7" {
		t.Fatalf("unexpected call: card=%s admin=%s", gotCard, gotAdmin)
	}
}

func TestGiftCardHandler_Sweep(t *testing.T) {
	handler := NewGiftCardHandler(&giftCardServiceStub{
		sweepFn: func(ctx context.Context, now time.Time) (int, error) {
			return 3, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/gift-cards/sweep-expired", nil)
	rec := httptest.NewRecorder()

	handler.Sweep(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.SweepResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Expired != 3 {
		t.Fatalf("expected 3 expired, got %d", resp.Expired)
	}
}

func TestGiftCardHandler_ListPurchased(t *testing.T) {
	handler := NewGiftCardHandler(&giftCardServiceStub{
		listPurchasedFn: func(ctx context.Context, email string) ([]*domain.GiftCard, error) {
			return []*domain.GiftCard{sampleCard()}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/gift-cards/purchased?email=buyer@example.com", nil)
	rec := httptest.NewRecorder()

	handler.ListPurchased(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []*dto.GiftCardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 card, got %d", len(resp))
	}
}

func TestGiftCardHandler_ListReceived_MissingEmail(t *testing.T) {
	handler := NewGiftCardHandler(&giftCardServiceStub{
		listReceivedFn: func(ctx context.Context, email string) ([]*domain.GiftCard, error) {
			t.Fatal("ListReceived should not be called without an email")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/gift-cards/received", nil)
	rec := httptest.NewRecorder()

	handler.ListReceived(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
