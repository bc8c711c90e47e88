package httperr

import (
	"errors"
	"net/http"

	"escrowbook/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// Response is the error body every endpoint returns: a flat message under
// "error", optionally with structured detail.
type Response struct {
	Status int    `json:"-"`
	Error  string `json:"error"`
	Detail any    `json:"detail,omitempty"`
}

// AbortWithError records the original cause on the gin context for the error
// middleware and writes the public response.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status, Error: msg, Detail: detail}

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// StatusOf maps the service's sentinel errors to an HTTP status. Anything
// unrecognized is an internal error.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrBookingNotFound), errors.Is(err, errs.ErrOfferingNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInsufficientPermission):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrInvalidTimeSlot):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrInvalidSchedule):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrStaleVersion),
		errors.Is(err, errs.ErrSlotUnavailable):
		return http.StatusConflict
	case errors.Is(err, errs.ErrChainCallFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
