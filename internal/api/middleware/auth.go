package middleware

import (
	"context"
	"net/http"

	"crucible/internal/api/security"
	"crucible/internal/common"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

type contextKey string

const UserIDCtxKey contextKey = "userID"

// Authenticator rejects requests without a valid bearer token and stores the
// caller's id in the request context. It expects jwtauth.Verifier to have
// run first.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			if err == jwtauth.ErrNoTokenFound {
				common.RespondWithError(w, http.StatusUnauthorized, "authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "invalid token: "+err.Error())
			}
			return
		}
		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "invalid token claims: "+err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDCtxKey, userID)
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(uuid.UUID)
	return userID, ok
}
