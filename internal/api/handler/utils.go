package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"crucible/internal/api/middleware"
	"crucible/internal/common"
	"crucible/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", common.ErrBadRequest)
	}
	return nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, common.ErrBadRequest)
	}
	return id, nil
}

// currentUser returns the authenticated caller. Routes using it sit behind
// middleware.Authenticator, so a miss is a wiring bug.
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "authentication required")
	}
	return userID, ok
}

// respondError logs unclassified failures before hiding them from the client.
func respondError(w http.ResponseWriter, r *http.Request, l *zap.Logger, err error) {
	if common.HTTPStatusFromError(err) >= http.StatusInternalServerError {
		logger.WithContext(r.Context(), l).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	common.RespondWithDomainError(w, err)
}

func errBadQuery(name string) error {
	return fmt.Errorf("invalid %s query parameter: %w", name, common.ErrBadRequest)
}
