package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slimbahael/beautycenter/internal/adapter/http/dto"
	"github.com/slimbahael/beautycenter/internal/domain"
	"github.com/slimbahael/beautycenter/internal/usecase"
)

// GiftCardService defines the behavior needed by GiftCardHandler.
type GiftCardService interface {
	Issue(ctx context.Context, input usecase.IssueInput) (*domain.GiftCard, string, error)
	Redeem(ctx context.Context, code, accountID, sourceIP string) (*domain.BalanceTransaction, error)
	VerifyForAdmin(ctx context.Context, verificationToken string) (*domain.GiftCard, error)
	MarkServiceCardUsed(ctx context.Context, giftCardID, adminID string) error
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	ListPurchased(ctx context.Context, email string) ([]*domain.GiftCard, error)
	ListReceived(ctx context.Context, email string) ([]*domain.GiftCard, error)
}

// GiftCardHandler handles gift card HTTP requests.
type GiftCardHandler struct {
	giftCardUC GiftCardService
}

// NewGiftCardHandler creates a new GiftCardHandler.
func NewGiftCardHandler(giftCardUC GiftCardService) *GiftCardHandler {
	return &GiftCardHandler{giftCardUC: giftCardUC}
}

// Issue creates a new gift card. The response is the only API surface where
// the raw redemption code appears.
func (h *GiftCardHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req dto.IssueGiftCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	card, code, err := h.giftCardUC.Issue(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to issue gift card", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.IssueGiftCardResponse{
		GiftCard: dto.GiftCardFromDomain(card),
		Code:     code,
	})
}

// Redeem redeems a gift card code into an account balance.
func (h *GiftCardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req dto.RedeemGiftCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.Code == "" || req.AccountID == "" {
		writeError(w, http.StatusBadRequest, "code and account_id are required", "")
		return
	}

	transaction, err := h.giftCardUC.Redeem(r.Context(), req.Code, req.AccountID, sourceIP(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to redeem gift card", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(transaction))
}

// Verify looks up a gift card by its verification token for staff.
func (h *GiftCardHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing verification token", "")
		return
	}

	card, err := h.giftCardUC.VerifyForAdmin(r.Context(), token)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to verify gift card", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.VerifyGiftCardResponse{
		GiftCard:             dto.GiftCardFromDomain(card),
		RedemptionAttempts:   card.RedemptionAttempts,
		VerificationAttempts: card.VerificationAttempts,
		LockedReason:         card.LockedReason,
	})
}

// MarkUsed marks a SERVICE gift card as used by staff.
func (h *GiftCardHandler) MarkUsed(w http.ResponseWriter, r *http.Request) {
	giftCardID := chi.URLParam(r, "id")
	if giftCardID == "" {
		writeError(w, http.StatusBadRequest, "missing gift card ID", "")
		return
	}

	adminID := callerID(r, "system")

	if err := h.giftCardUC.MarkServiceCardUsed(r.Context(), giftCardID, adminID); err != nil {
		writeError(w, mapDomainError(err), "failed to mark gift card used", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Sweep expires all overdue ACTIVE cards. Normally driven by the scheduler;
// exposed for operational use.
func (h *GiftCardHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	expired, err := h.giftCardUC.SweepExpired(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to sweep expired gift cards", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SweepResponse{Expired: expired})
}

// ListPurchased lists gift cards bought by an email address.
func (h *GiftCardHandler) ListPurchased(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "missing email", "")
		return
	}

	cards, err := h.giftCardUC.ListPurchased(r.Context(), email)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list gift cards", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.GiftCardsFromDomain(cards))
}

// ListReceived lists gift cards addressed to an email address.
func (h *GiftCardHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "missing email", "")
		return
	}

	cards, err := h.giftCardUC.ListReceived(r.Context(), email)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list gift cards", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.GiftCardsFromDomain(cards))
}

// sourceIP extracts the client IP for redemption attempt auditing.
func sourceIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
