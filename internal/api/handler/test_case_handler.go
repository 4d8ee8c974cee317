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

type TestCaseService interface {
	CreateTestCase(ctx context.Context, userID uuid.UUID, req *types.CreateTestCaseRequest) (*models.TestCase, error)
	ListTestCases(ctx context.Context, userID, questionID uuid.UUID) ([]models.TestCase, error)
	UpdateTestCase(ctx context.Context, userID, testCaseID uuid.UUID, req *types.UpdateTestCaseRequest) (*models.TestCase, error)
	DeleteTestCase(ctx context.Context, userID, testCaseID uuid.UUID) error
}

type TestCaseHandler struct {
	testCaseService TestCaseService
	logger          *zap.Logger
}

func NewTestCaseHandler(ts TestCaseService, logger *zap.Logger) *TestCaseHandler {
	return &TestCaseHandler{testCaseService: ts, logger: logger}
}

func (h *TestCaseHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.createTestCase)
	r.Get("/question/{questionID}", h.listTestCases)
	r.Put("/{testCaseID}", h.updateTestCase)
	r.Delete("/{testCaseID}", h.deleteTestCase)
}

func (h *TestCaseHandler) createTestCase(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req types.CreateTestCaseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	testCase, err := h.testCaseService.CreateTestCase(r.Context(), userID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, testCase)
}

func (h *TestCaseHandler) listTestCases(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	questionID, err := uuidParam(r, "questionID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	testCases, err := h.testCaseService.ListTestCases(r.Context(), userID, questionID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, testCases)
}

func (h *TestCaseHandler) updateTestCase(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	testCaseID, err := uuidParam(r, "testCaseID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req types.UpdateTestCaseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	testCase, err := h.testCaseService.UpdateTestCase(r.Context(), userID, testCaseID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, testCase)
}

func (h *TestCaseHandler) deleteTestCase(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	testCaseID, err := uuidParam(r, "testCaseID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.testCaseService.DeleteTestCase(r.Context(), userID, testCaseID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
