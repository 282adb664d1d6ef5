package http

import (
	"context"
	"errors"
	"net/http"

	"campuseats/internal/core/application/usecases/commands"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/ports"
	"campuseats/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the body of every failed request.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ConflictError is returned when another rider already holds the order.
type ConflictError struct {
	Error
	CurrentRiderID string         `json:"currentRiderId"`
	Order          *OrderResponse `json:"order,omitempty"`
}

func writeError(c echo.Context, status int, message string) error {
	return c.JSON(status, Error{Code: status, Message: message})
}

// statusOf maps application errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, commands.ErrPaymentNotSuccessful):
		return http.StatusUnprocessableEntity
	case errors.Is(err, commands.ErrAlreadyAssigned),
		errors.Is(err, commands.ErrNotEligible),
		errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ports.ErrPaymentGateway):
		return http.StatusBadGateway
	case errors.Is(err, ports.ErrTransient),
		errors.Is(err, ports.ErrVersionConflict),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes the mapped status. Internal failures are logged and
// answered without details.
func (s *Server) handleError(c echo.Context, err error) error {
	status := statusOf(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.ErrorContext(c.Request().Context(), "Request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
		return writeError(c, status, http.StatusText(status))
	}
	return writeError(c, status, err.Error())
}
