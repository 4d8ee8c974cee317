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

type QuestionService interface {
	CreateQuestion(ctx context.Context, userID uuid.UUID, req *types.CreateQuestionRequest) (*models.Question, error)
	GetQuestion(ctx context.Context, userID, questionID uuid.UUID) (*types.QuestionWithSamplesResponse, error)
	UpdateQuestion(ctx context.Context, userID, questionID uuid.UUID, req *types.UpdateQuestionRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, userID, questionID uuid.UUID) error
}

type QuestionHandler struct {
	questionService QuestionService
	logger          *zap.Logger
}

func NewQuestionHandler(qs QuestionService, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{questionService: qs, logger: logger}
}

func (h *QuestionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.createQuestion)
	r.Get("/{questionID}", h.getQuestion)
	r.Put("/{questionID}", h.updateQuestion)
	r.Delete("/{questionID}", h.deleteQuestion)
}

func (h *QuestionHandler) createQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req types.CreateQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	question, err := h.questionService.CreateQuestion(r.Context(), userID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, question)
}

func (h *QuestionHandler) getQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	questionID, err := uuidParam(r, "questionID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	question, err := h.questionService.GetQuestion(r.Context(), userID, questionID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	questionID, err := uuidParam(r, "questionID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req types.UpdateQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	question, err := h.questionService.UpdateQuestion(r.Context(), userID, questionID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	questionID, err := uuidParam(r, "questionID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.questionService.DeleteQuestion(r.Context(), userID, questionID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
