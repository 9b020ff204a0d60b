package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

// errorResponse is the body of every failed request. Code is stable for
// clients; Error is for humans.
type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// errorMapping ties a sentinel to its status. A fixed message hides the
// wrapped detail; an empty one exposes err.Error().
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "invalid credentials"},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", "not authenticated"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden", "access forbidden"},
	{domain.ErrAccountNotFound, http.StatusNotFound, "account_not_found", "account not found"},
	{domain.ErrDuplicateUsername, http.StatusConflict, "duplicate_username", "username already exists"},
	{domain.ErrLastAdmin, http.StatusConflict, "last_admin", ""},
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input", ""},
	{context.Canceled, http.StatusRequestTimeout, "cancelled", "request cancelled"},
	{context.DeadlineExceeded, http.StatusRequestTimeout, "cancelled", "request cancelled"},
}

// NewHTTPErrorHandler renders handler errors as errorResponse. Domain errors
// get their mapped status, echo.HTTPError keeps its own, and anything else is
// logged and reported as a bare 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := classify(err)
		if status == http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func classify(err error) (int, errorResponse) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = err.Error()
		}
		return m.status, errorResponse{Code: m.code, Error: msg}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Code: httpCode(he.Code), Error: fmt.Sprint(he.Message)}
	}

	return http.StatusInternalServerError, errorResponse{Code: "internal", Error: "internal server error"}
}

// httpCode names the statuses the router and middleware produce directly.
func httpCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "http_" + fmt.Sprint(status)
	}
}
