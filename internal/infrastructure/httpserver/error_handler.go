package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/product-catalog-api/internal/core/domain/product"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/httpserver/response"
)

const internalErrorMessage = "Internal server error"

type failure struct {
	status  int
	message string
}

// operationFailures is keyed by operation only. A failed Get is always a
// 404 and a failed write is always a 500, whatever the kind.
var operationFailures = map[product.Operation]failure{
	product.OpList:   {http.StatusInternalServerError, "Failed to fetch products"},
	product.OpGet:    {http.StatusNotFound, "Product not found"},
	product.OpCreate: {http.StatusInternalServerError, "Failed to create product"},
	product.OpUpdate: {http.StatusInternalServerError, "Failed to update product"},
	product.OpDelete: {http.StatusInternalServerError, "Failed to delete product"},
}

func operationFailure(op product.Operation, _ product.ErrorKind) failure {
	if f, ok := operationFailures[op]; ok {
		return f
	}
	return failure{http.StatusInternalServerError, internalErrorMessage}
}

// errorResponse maps any error reaching the boundary onto an envelope.
// Internal error text never leaves this function.
func errorResponse(err error) response.Response {
	var (
		validationErrs validator.ValidationErrors
		opErr          *product.OperationError
		httpErr        *echo.HTTPError
	)
	switch {
	case errors.As(err, &validationErrs):
		return response.Error(http.StatusUnprocessableEntity, validationFailedMessage, validationMessages(validationErrs))
	case errors.As(err, &opErr):
		f := operationFailure(opErr.Op, opErr.Kind)
		return response.Error(f.status, f.message, nil)
	case errors.As(err, &httpErr):
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = fmt.Sprint(httpErr.Message)
		}
		if httpErr.Code >= http.StatusInternalServerError {
			msg = internalErrorMessage
		}
		return response.Error(httpErr.Code, msg, nil)
	default:
		return response.Error(http.StatusInternalServerError, internalErrorMessage, nil)
	}
}

// handleError is installed as echo's HTTPErrorHandler.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := errorResponse(err)
	if resp.Status >= http.StatusInternalServerError && s.logger != nil {
		var opErr *product.OperationError
		if !errors.As(err, &opErr) {
			s.logger.WithFields(logrus.Fields{
				"method": c.Request().Method,
				"path":   c.Path(),
			}).WithError(err).Error("unhandled request error")
		}
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(resp.Status)
	} else {
		writeErr = response.Write(c, resp)
	}
	if writeErr != nil && s.logger != nil {
		s.logger.WithError(writeErr).Error("failed to write error response")
	}
}
