package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fadehouse/compensation-service/internal/domain"
)

// writeDomainError maps sentinel errors to HTTP statuses. Anything
// unrecognized is a 500 with a generic body so internals never leak.
func writeDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAlreadyPlaced),
		errors.Is(err, domain.ErrSlotLocked),
		errors.Is(err, domain.ErrPendingRequestExists),
		errors.Is(err, domain.ErrConflict):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrBelowMinimumPayout),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidConfiguration):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeBadRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
