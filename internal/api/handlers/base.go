package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/edition-dashboard/internal/adapters/editions"
	"github.com/eshaffer321/edition-dashboard/internal/api/dto"
	"github.com/eshaffer321/edition-dashboard/internal/application/dashboard"
	"github.com/eshaffer321/edition-dashboard/internal/domain/query"
	"github.com/eshaffer321/edition-dashboard/internal/domain/querystring"
)

// Base provides shared functionality for all handlers.
type Base struct {
	logger *slog.Logger
}

// NewBase creates a new base handler.
func NewBase(logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{logger: logger}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(c *gin.Context, status int, err dto.APIError) {
	c.AbortWithStatusJSON(status, err)
}

// WriteServiceError maps an application error to a response.
func (b *Base) WriteServiceError(c *gin.Context, err error) {
	var fetchErr *dashboard.FetchError

	switch {
	case errors.Is(err, dashboard.ErrSessionNotFound):
		b.WriteError(c, http.StatusNotFound, dto.NotFoundError("session"))
	case errors.Is(err, editions.ErrNotFound):
		b.WriteError(c, http.StatusNotFound, dto.NotFoundError("publication"))
	case errors.Is(err, dashboard.ErrStaleResult):
		b.WriteError(c, http.StatusConflict, dto.ConflictError(err.Error()))
	case errors.Is(err, dashboard.ErrFieldAlreadyFiltered):
		b.WriteError(c, http.StatusConflict, dto.ConflictError(err.Error()))
	case isValidation(err):
		b.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
	case errors.As(err, &fetchErr):
		b.logger.Warn("upstream request failed", "path", c.FullPath(), "error", fetchErr.Cause)
		b.WriteError(c, http.StatusBadGateway, dto.UpstreamError(fetchErr.Error()))
	default:
		b.logger.Error("request failed", "path", c.FullPath(), "error", err)
		b.WriteError(c, http.StatusInternalServerError, dto.InternalError())
	}
}

var validationErrors = []error{
	query.ErrUnknownField,
	query.ErrInvalidFilterType,
	query.ErrEmptyFilterValue,
	query.ErrInvalidDirection,
	query.ErrInvalidPage,
	query.ErrInvalidLimit,
	querystring.ErrMalformed,
	editions.ErrEmptyID,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
