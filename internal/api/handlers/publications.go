package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/edition-dashboard/internal/adapters/editions"
	"github.com/eshaffer321/edition-dashboard/internal/api/dto"
	"github.com/eshaffer321/edition-dashboard/internal/domain/query"
	"github.com/eshaffer321/edition-dashboard/internal/domain/querystring"
)

// PublicationService is the part of the dashboard service the stateless
// publication endpoints use.
type PublicationService interface {
	List(ctx context.Context, params query.Parameters) (*editions.Page, error)
	Publication(ctx context.Context, id string) (*editions.Publication, error)
}

// PublicationsHandler proxies publication reads to the editions API.
type PublicationsHandler struct {
	*Base
	svc PublicationService
}

func NewPublicationsHandler(svc PublicationService, logger *slog.Logger) *PublicationsHandler {
	return &PublicationsHandler{
		Base: NewBase(logger),
		svc:  svc,
	}
}

// List handles GET /api/publications. The query string uses the same
// bracket format the editions API accepts.
func (h *PublicationsHandler) List(c *gin.Context) {
	params, err := querystring.FromValues(c.Request.URL.Query())
	if err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	page, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.NewPublicationListResponse(page, querystring.Stringify(params)))
}

// Get handles GET /api/publications/:id.
func (h *PublicationsHandler) Get(c *gin.Context) {
	pub, err := h.svc.Publication(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}
	h.WriteJSON(c, http.StatusOK, pub)
}
