package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/edition-dashboard/internal/api/dto"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/storage"
)

// RunsHandler serves the fetch log.
type RunsHandler struct {
	*Base
	repo storage.FetchRunRepository
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.FetchRunRepository, logger *slog.Logger) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(logger),
		repo: repo,
	}
}

// List handles GET /api/runs - returns recent fetch runs, newest first.
func (h *RunsHandler) List(c *gin.Context) {
	params := dto.DefaultRunListParams()
	if err := c.ShouldBindQuery(&params); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	runs, err := h.repo.ListFetchRuns(storage.FetchRunFilters{
		Kind:      params.Kind,
		Status:    params.Status,
		SessionID: params.SessionID,
		Limit:     params.Limit,
	})
	if err != nil {
		h.logger.Error("failed to list fetch runs", "error", err)
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.RunListResponse{
		Runs:  make([]dto.RunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, dto.NewRunResponse(run))
	}

	h.WriteJSON(c, http.StatusOK, response)
}

// Get handles GET /api/runs/:id - returns a single fetch run by ID.
func (h *RunsHandler) Get(c *gin.Context) {
	idStr := c.Param("id")
	if idStr == "" {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("invalid run ID"))
		return
	}

	run, err := h.repo.GetFetchRun(id)
	if err != nil {
		h.logger.Error("failed to get fetch run", "run_id", id, "error", err)
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	if run == nil {
		h.WriteError(c, http.StatusNotFound, dto.NotFoundError("fetch run"))
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.NewRunResponse(*run))
}
