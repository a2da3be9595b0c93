package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/logger"
	"backend/internal/reconcile"
	"backend/internal/responses"
	"backend/internal/services"
)

// errBadForm marks a request body the handler itself could not decode.
var errBadForm = errors.New("malformed request body")

// fail maps service and reconcile errors to HTTP statuses. Unknown errors
// are logged and reported as 500 with message.
func fail(c *gin.Context, err error, message string) {
	var (
		ve *reconcile.ValidationError
		ce *reconcile.ConstraintError
	)
	switch {
	case errors.As(err, &ve):
		responses.FailWithDetails(c, http.StatusBadRequest, err, "Validation failed", ve)
	case errors.As(err, &ce):
		responses.FailWithDetails(c, http.StatusConflict, err, "Conflicting data", gin.H{"entity": ce.Entity})
	case errors.Is(err, reconcile.ErrConflict), errors.Is(err, services.ErrUserExists):
		responses.Fail(c, http.StatusConflict, err, "Conflicting data")
	case errors.Is(err, services.ErrNotFound), errors.Is(err, reconcile.ErrNotFound):
		responses.Fail(c, http.StatusNotFound, err, "Not found")
	case errors.Is(err, services.ErrInvalidRequest), errors.Is(err, errBadForm):
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request")
	case errors.Is(err, services.ErrUnauthorized):
		responses.Fail(c, http.StatusUnauthorized, err, "Unauthorized")
	case errors.Is(err, services.ErrForbidden):
		responses.Fail(c, http.StatusForbidden, err, "Forbidden")
	default:
		logger.FromContext(c.Request.Context()).Error(message, zap.Error(err))
		responses.Fail(c, http.StatusInternalServerError, nil, message)
	}
}
