package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/crowdfund/crowdfund-gobackend/internal/logger"
	"github.com/crowdfund/crowdfund-gobackend/internal/services"
)

type userIDKey struct{}

type TokenParser interface {
	Parse(tokenString string) (*services.Claims, error)
}

// AccountChecker reports whether an account still exists.
type AccountChecker interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type Authorizer struct {
	tokens   TokenParser
	accounts map[string]AccountChecker
	log      *zap.Logger
}

// NewAuthorizer checks token holders against the account store of their
// role, keyed by role name.
func NewAuthorizer(tokens TokenParser, accounts map[string]AccountChecker, log *zap.Logger) *Authorizer {
	return &Authorizer{tokens: tokens, accounts: accounts, log: log}
}

// Authorize admits requests carrying a valid bearer token whose role is in
// roles and whose account still exists.
func (a *Authorizer) Authorize(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header missing")
				return
			}
			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			claims, err := a.tokens.Parse(tokenString)
			if err != nil {
				logger.For(r.Context(), a.log).Debug("Rejected token", zap.Error(err))
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			if !hasRole(roles, claims.Role) {
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}

			accounts, ok := a.accounts[claims.Role]
			id, err := primitive.ObjectIDFromHex(claims.UserID)
			if !ok || err != nil {
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
			exists, err := accounts.Exists(r.Context(), id)
			if err != nil {
				logger.For(r.Context(), a.log).Error("Failed to check account", zap.String("user_id", claims.UserID), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "Server error")
				return
			}
			if !exists {
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

// WithUserID stores the authenticated account id in ctx.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserID returns the authenticated account id placed in ctx by Authorize.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
