package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/edition-dashboard/internal/api/dto"
	"github.com/eshaffer321/edition-dashboard/internal/application/dashboard"
	"github.com/eshaffer321/edition-dashboard/internal/domain/query"
)

// SessionService is the part of the dashboard service the session
// endpoints use.
type SessionService interface {
	Create() dashboard.Snapshot
	Get(id string) (dashboard.Snapshot, error)
	Delete(id string) error
	AddFilter(id string, f query.Filter) (dashboard.Snapshot, error)
	RemoveFilter(id string, f query.Filter) (dashboard.Snapshot, error)
	AddSortClause(id, field string, dir query.Direction) (dashboard.Snapshot, error)
	RemoveSortClause(id, field string, dir query.Direction) (dashboard.Snapshot, error)
	SetPage(id string, n int) (dashboard.Snapshot, error)
	SetLimit(id string, n int) (dashboard.Snapshot, error)
	Results(ctx context.Context, id string) (*dashboard.Result, error)
}

// SessionsHandler handles dashboard session requests.
type SessionsHandler struct {
	*Base
	svc SessionService
}

func NewSessionsHandler(svc SessionService, logger *slog.Logger) *SessionsHandler {
	return &SessionsHandler{
		Base: NewBase(logger),
		svc:  svc,
	}
}

// Create handles POST /api/sessions.
func (h *SessionsHandler) Create(c *gin.Context) {
	h.WriteJSON(c, http.StatusCreated, h.svc.Create())
}

// Get handles GET /api/sessions/:id.
func (h *SessionsHandler) Get(c *gin.Context) {
	h.respond(c, func(id string) (dashboard.Snapshot, error) {
		return h.svc.Get(id)
	})
}

// Delete handles DELETE /api/sessions/:id.
func (h *SessionsHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		h.WriteServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddFilter handles POST /api/sessions/:id/filters.
func (h *SessionsHandler) AddFilter(c *gin.Context) {
	var req dto.FilterRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c, func(id string) (dashboard.Snapshot, error) {
		return h.svc.AddFilter(id, req.Filter())
	})
}

// RemoveFilter handles DELETE /api/sessions/:id/filters.
func (h *SessionsHandler) RemoveFilter(c *gin.Context) {
	var req dto.FilterRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c, func(id string) (dashboard.Snapshot, error) {
		return h.svc.RemoveFilter(id, req.Filter())
	})
}

// AddSortClause handles POST /api/sessions/:id/order-by.
func (h *SessionsHandler) AddSortClause(c *gin.Context) {
	var req dto.SortRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c, func(id string) (dashboard.Snapshot, error) {
		return h.svc.AddSortClause(id, req.Field, direction(req.Direction))
	})
}

// RemoveSortClause handles DELETE /api/sessions/:id/order-by.
func (h *SessionsHandler) RemoveSortClause(c *gin.Context) {
	var req dto.SortRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c, func(id string) (dashboard.Snapshot, error) {
		return h.svc.RemoveSortClause(id, req.Field, direction(req.Direction))
	})
}

// SetPage handles PUT /api/sessions/:id/page.
func (h *SessionsHandler) SetPage(c *gin.Context) {
	var req dto.PageRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c, func(id string) (dashboard.Snapshot, error) {
		return h.svc.SetPage(id, req.Page)
	})
}

// SetLimit handles PUT /api/sessions/:id/limit.
func (h *SessionsHandler) SetLimit(c *gin.Context) {
	var req dto.LimitRequest
	if !h.bind(c, &req) {
		return
	}
	h.respond(c, func(id string) (dashboard.Snapshot, error) {
		return h.svc.SetLimit(id, req.Limit)
	})
}

// Results handles GET /api/sessions/:id/results. A 409 means the query
// changed while the fetch was in flight and the client should ask again.
func (h *SessionsHandler) Results(c *gin.Context) {
	result, err := h.svc.Results(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}
	h.WriteJSON(c, http.StatusOK, result)
}

func (h *SessionsHandler) respond(c *gin.Context, fn func(id string) (dashboard.Snapshot, error)) {
	snap, err := fn(c.Param("id"))
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}
	h.WriteJSON(c, http.StatusOK, snap)
}

func (h *SessionsHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return false
	}
	return true
}

func direction(s string) query.Direction {
	return query.Direction(strings.ToUpper(s))
}
