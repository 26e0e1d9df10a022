package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/parrot-platform/parrot/internal/api"
)

type contextKey string

const UserClaimsKey contextKey = "user_claims"

func Middleware(mgr *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.HandleError(w, api.ErrUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				api.HandleError(w, api.ErrUnauthorized)
				return
			}

			claims, err := mgr.Validate(parts[1])
			if err != nil {
				api.HandleError(w, api.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserClaims(r.Context(), claims)))
		})
	}
}

func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, UserClaimsKey, claims)
}

func GetUserClaims(ctx context.Context) *UserClaims {
	claims, _ := ctx.Value(UserClaimsKey).(*UserClaims)
	return claims
}

// Username returns the authenticated username, or "" when the request is anonymous.
func Username(ctx context.Context) string {
	if claims := GetUserClaims(ctx); claims != nil {
		return claims.Name()
	}
	return ""
}
