package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/edition-dashboard/internal/api/dto"
	"github.com/eshaffer321/edition-dashboard/internal/domain/query"
)

// OptionsHandler serves the choices the dashboard controls offer.
type OptionsHandler struct {
	response dto.OptionsResponse
}

func NewOptionsHandler(defaultLimit int) *OptionsHandler {
	return &OptionsHandler{
		response: dto.OptionsResponse{
			FilterFields:    query.FilterFields,
			FilterTypes:     []string{string(query.FilterLike), string(query.FilterEq)},
			SortFields:      query.SortFields,
			Directions:      []string{string(query.Asc), string(query.Desc)},
			PageSizeOptions: query.PageSizeOptions,
			DefaultLimit:    query.NewParameters(defaultLimit).Limit,
		},
	}
}

// Get handles GET /api/options.
func (h *OptionsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.response)
}
