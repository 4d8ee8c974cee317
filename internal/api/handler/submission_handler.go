package handler

import (
	"context"
	"net/http"
	"strconv"

	"crucible/internal/api/middleware"
	"crucible/internal/common"
	"crucible/internal/models"
	"crucible/pkg/types"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SubmissionService interface {
	Submit(ctx context.Context, userID uuid.UUID, req *types.SubmitCodeRequest) (*types.SubmissionResponse, error)
	SubmitContest(ctx context.Context, userID uuid.UUID, req *types.ContestSubmitCodeRequest) (*types.SubmissionResponse, error)
	ListSubmissions(ctx context.Context, userID uuid.UUID, questionID *uuid.UUID, limit, offset int) ([]models.Submission, error)
	GetSubmission(ctx context.Context, userID, submissionID uuid.UUID) (*models.Submission, error)
}

type SubmissionHandler struct {
	submissionService SubmissionService
	logger            *zap.Logger
}

func NewSubmissionHandler(ss SubmissionService, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss, logger: logger}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.listSubmissions)
	r.Post("/submit", h.submit)
	r.Post("/contest", h.submitContest)
	r.Get("/{submissionID}", h.getSubmission)
}

func (h *SubmissionHandler) submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req types.SubmitCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp, err := h.submissionService.Submit(r.Context(), userID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSubmission(w, resp)
}

func (h *SubmissionHandler) submitContest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req types.ContestSubmitCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp, err := h.submissionService.SubmitContest(r.Context(), userID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSubmission(w, resp)
}

func (h *SubmissionHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	var questionID *uuid.UUID
	if raw := query.Get("question_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, r, h.logger, errBadQuery("question_id"))
			return
		}
		questionID = &id
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	submissions, err := h.submissionService.ListSubmissions(r.Context(), userID, questionID, limit, offset)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if submissions == nil {
		submissions = []models.Submission{}
	}
	common.RespondWithJSON(w, http.StatusOK, submissions)
}

func (h *SubmissionHandler) getSubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	submissionID, err := uuidParam(r, "submissionID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	submission, err := h.submissionService.GetSubmission(r.Context(), userID, submissionID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submission)
}

// respondSubmission answers 201 for a stored submission and 200 for a run.
func respondSubmission(w http.ResponseWriter, resp *types.SubmissionResponse) {
	status := http.StatusOK
	if resp.SubmissionID != nil {
		status = http.StatusCreated
	}
	common.RespondWithJSON(w, status, resp)
}
