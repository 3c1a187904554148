package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"flexicredit-backend/internal/domain"
	"flexicredit-backend/internal/security"
	"flexicredit-backend/internal/service"
)

type contextKey string

const (
	accountContextKey contextKey = "account"
	claimsContextKey  contextKey = "claims"
)

// authMiddleware validates the auth provider's bearer token and resolves
// (creating on first touch) the caller's account.
func authMiddleware(tokens security.TokenManager, accounts service.AccountService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				respondJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
				return
			}

			account, err := accounts.EnsureAccount(r.Context(), claims.Subject, claims.Email, claims.Name)
			if err != nil {
				respondError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			ctx = context.WithValue(ctx, accountContextKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireAdmin gates back-office routes on the auth provider's admin role.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)
		if claims == nil || !claims.IsAdmin() {
			respondJSON(w, http.StatusForbidden, errorResponse{Error: "admin role required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func accountFrom(r *http.Request) *domain.Account {
	account, _ := r.Context().Value(accountContextKey).(*domain.Account)
	return account
}

func claimsFrom(r *http.Request) *security.UserClaims {
	claims, _ := r.Context().Value(claimsContextKey).(*security.UserClaims)
	return claims
}

// idempotencyKey reads the client-supplied key; UI clients thread it from
// the initiating action so a network retry replays instead of re-applying.
// A generated key still protects against proxy-level duplicates.
func idempotencyKey(r *http.Request) string {
	if key := r.Header.Get("X-Idempotency-Key"); key != "" {
		return key
	}
	return uuid.NewString()
}
