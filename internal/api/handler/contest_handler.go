package handler

import (
	"context"
	"net/http"

	"crucible/internal/api/middleware"
	"crucible/internal/common"
	"crucible/internal/models"
	"crucible/pkg/types"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContestService interface {
	CreateContest(ctx context.Context, userID uuid.UUID, req *types.CreateContestRequest) (*models.Contest, error)
	GetContest(ctx context.Context, userID, contestID uuid.UUID) (*types.ContestDetailsResponse, error)
	GetContestBySlug(ctx context.Context, userID uuid.UUID, slug string) (*types.ContestDetailsResponse, error)
	ListContests(ctx context.Context, phase string) ([]models.Contest, error)
	ListManagedContests(ctx context.Context, userID uuid.UUID) ([]models.Contest, error)
	UpdateContest(ctx context.Context, userID, contestID uuid.UUID, req *types.UpdateContestRequest) (*models.Contest, error)
	DeleteContest(ctx context.Context, userID, contestID uuid.UUID) error
	GetContestForManagement(ctx context.Context, userID, contestID uuid.UUID) (*types.ManageContestResponse, error)
	Participate(ctx context.Context, userID, contestID uuid.UUID) (*models.UserContest, error)
	GetContestQuestions(ctx context.Context, userID, contestID uuid.UUID) (*types.ContestQuestionsResponse, error)
	GetLeaderboard(ctx context.Context, contestID uuid.UUID) (*types.LeaderboardResponse, error)
}

type ContestHandler struct {
	contestService ContestService
	logger         *zap.Logger
}

func NewContestHandler(cs ContestService, logger *zap.Logger) *ContestHandler {
	return &ContestHandler{contestService: cs, logger: logger}
}

func (h *ContestHandler) RegisterRoutes(r chi.Router) {
	// Listing and the leaderboard are public.
	r.Get("/", h.listContests)
	r.Get("/{contestID}/leaderboard", h.getLeaderboard)

	r.Group(func(auth chi.Router) {
		auth.Use(middleware.Authenticator)
		auth.Post("/", h.createContest)
		auth.Get("/managed", h.listManagedContests)
		auth.Get("/slug/{slug}", h.getContestBySlug)
		auth.Get("/{contestID}", h.getContest)
		auth.Put("/{contestID}", h.updateContest)
		auth.Delete("/{contestID}", h.deleteContest)
		auth.Get("/{contestID}/manage", h.manageContest)
		auth.Post("/{contestID}/participate", h.participate)
		auth.Get("/{contestID}/questions", h.getContestQuestions)
	})
}

func (h *ContestHandler) listContests(w http.ResponseWriter, r *http.Request) {
	contests, err := h.contestService.ListContests(r.Context(), r.URL.Query().Get("phase"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if contests == nil {
		contests = []models.Contest{}
	}
	common.RespondWithJSON(w, http.StatusOK, contests)
}

func (h *ContestHandler) listManagedContests(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	contests, err := h.contestService.ListManagedContests(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if contests == nil {
		contests = []models.Contest{}
	}
	common.RespondWithJSON(w, http.StatusOK, contests)
}

func (h *ContestHandler) createContest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req types.CreateContestRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	contest, err := h.contestService.CreateContest(r.Context(), userID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, contest)
}

func (h *ContestHandler) getContest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	contestID, err := uuidParam(r, "contestID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	details, err := h.contestService.GetContest(r.Context(), userID, contestID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, details)
}

func (h *ContestHandler) getContestBySlug(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	details, err := h.contestService.GetContestBySlug(r.Context(), userID, chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, details)
}

func (h *ContestHandler) updateContest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	contestID, err := uuidParam(r, "contestID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req types.UpdateContestRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	contest, err := h.contestService.UpdateContest(r.Context(), userID, contestID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contest)
}

func (h *ContestHandler) deleteContest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	contestID, err := uuidParam(r, "contestID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.contestService.DeleteContest(r.Context(), userID, contestID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContestHandler) manageContest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	contestID, err := uuidParam(r, "contestID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	view, err := h.contestService.GetContestForManagement(r.Context(), userID, contestID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *ContestHandler) participate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	contestID, err := uuidParam(r, "contestID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	standing, err := h.contestService.Participate(r.Context(), userID, contestID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, standing)
}

func (h *ContestHandler) getContestQuestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	contestID, err := uuidParam(r, "contestID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	questions, err := h.contestService.GetContestQuestions(r.Context(), userID, contestID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, questions)
}

func (h *ContestHandler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	contestID, err := uuidParam(r, "contestID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	board, err := h.contestService.GetLeaderboard(r.Context(), contestID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, board)
}
