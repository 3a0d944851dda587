package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/slimbahael/beautycenter/internal/domain"
	"github.com/slimbahael/beautycenter/internal/infrastructure/auth"
)

func newTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret", time.Hour)
}

func authedRequest(t *testing.T, jwtManager *auth.JWTManager, role domain.Role) *http.Request {
	t.Helper()

	token, err := jwtManager.Generate(&domain.Account{
		ID:    "user-1",
		Email: "user@example.com",
		Role:  role,
	})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthMiddleware_AttachesUser(t *testing.T) {
	jwtManager := newTestJWTManager()
	mw := AuthMiddleware(jwtManager)

	var gotUser domain.AuthUser
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := domain.UserFromContext(r.Context())
		if !ok {
			t.Fatal("expected user in context")
		}
		gotUser = user
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authedRequest(t, jwtManager, domain.RoleStaff))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotUser.ID != "user-1" || gotUser.Role != domain.RoleStaff {
		t.Fatalf("unexpected user %+v", gotUser)
	}
}

func TestAuthMiddleware_RejectsMissingHeader(t *testing.T) {
	mw := AuthMiddleware(newTestJWTManager())

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called without credentials")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_RejectsMalformedHeader(t *testing.T) {
	mw := AuthMiddleware(newTestJWTManager())

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called with a malformed header")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_RejectsForgedToken(t *testing.T) {
	mw := AuthMiddleware(newTestJWTManager())
	otherManager := auth.NewJWTManager("other-secret", time.Hour)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called with a forged token")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authedRequest(t, otherManager, domain.RoleAdmin))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireBalanceAdmin(t *testing.T) {
	tests := []struct {
		name       string
		role       domain.Role
		wantStatus int
	}{
		{name: "admin allowed", role: domain.RoleAdmin, wantStatus: http.StatusOK},
		{name: "staff forbidden", role: domain.RoleStaff, wantStatus: http.StatusForbidden},
		{name: "customer forbidden", role: domain.RoleCustomer, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireBalanceAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req = req.WithContext(domain.ContextWithUser(req.Context(), domain.AuthUser{ID: "u", Role: tt.role}))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestRequireGiftCardStaff(t *testing.T) {
	tests := []struct {
		name       string
		role       domain.Role
		wantStatus int
	}{
		{name: "admin allowed", role: domain.RoleAdmin, wantStatus: http.StatusOK},
		{name: "staff allowed", role: domain.RoleStaff, wantStatus: http.StatusOK},
		{name: "customer forbidden", role: domain.RoleCustomer, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireGiftCardStaff(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(domain.ContextWithUser(req.Context(), domain.AuthUser{ID: "u", Role: tt.role}))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	handler := RequireGiftCardStaff(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called without a user")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
