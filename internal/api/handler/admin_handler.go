package handler

import (
	"context"
	"net/http"

	"crucible/internal/api/middleware"
	"crucible/pkg/types"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdminService interface {
	AddAdmin(ctx context.Context, userID uuid.UUID, req *types.AlterAdminRequest) error
	RemoveAdmin(ctx context.Context, userID uuid.UUID, req *types.AlterAdminRequest) error
}

// AdminHandler manages contest admins, identified by e-mail.
type AdminHandler struct {
	adminService AdminService
	logger       *zap.Logger
}

func NewAdminHandler(as AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: as, logger: logger}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.addAdmin)
	r.Delete("/", h.removeAdmin)
}

func (h *AdminHandler) addAdmin(w http.ResponseWriter, r *http.Request) {
	h.alter(w, r, h.adminService.AddAdmin)
}

func (h *AdminHandler) removeAdmin(w http.ResponseWriter, r *http.Request) {
	h.alter(w, r, h.adminService.RemoveAdmin)
}

func (h *AdminHandler) alter(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, uuid.UUID, *types.AlterAdminRequest) error,
) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req types.AlterAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := op(r.Context(), userID, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
