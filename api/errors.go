package api

import (
	"errors"
	"net/http"

	"apploto/domain/services"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var errInvalidID = errors.New("invalid id")

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// statusFor maps a service error to an HTTP status
func statusFor(err error) int {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case services.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrTokenRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrDuplicateEntry),
		errors.Is(err, services.ErrLotteryAlreadyRunning),
		errors.Is(err, services.ErrLotteryFull),
		errors.Is(err, services.ErrLotteryClosed),
		errors.Is(err, services.ErrLotteryFinished),
		errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidNumbers),
		errors.Is(err, services.ErrSamePassword),
		errors.Is(err, errInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes err as a JSON error response. Internal errors are
// logged and hidden from the client.
func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		body = errorBody{Error: "validation failed", Fields: verr.Fields}
	}
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("Request handler failed")
		body = errorBody{Error: http.StatusText(status)}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: err.Error()})
}
