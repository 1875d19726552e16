package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
)

var (
	ErrInvalidRequest = apperror.New(apperror.KindValidation, "invalid_request", "invalid request")
	ErrUnauthorized   = apperror.ErrUnauthenticated
	ErrForbidden      = apperror.ErrForbidden
	ErrInternal       = apperror.ErrInternal
)

type errorBody struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AbortWithError writes the error envelope and stops the handler chain. The
// error is attached to the context so the access log records it.
func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		err = ErrInternal
	}
	_ = c.Error(err)

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = ErrInternal
	}

	status := statusFor(appErr)
	if appErr.RetryAfter > 0 {
		c.Header("Retry-After", strconv.FormatInt(int64(math.Ceil(appErr.RetryAfter.Seconds())), 10))
	}

	body := errorBody{
		Type:    string(appErr.Kind),
		Code:    appErr.Code,
		Message: appErr.Message,
	}
	// internal details stay in the log
	if status >= http.StatusInternalServerError && appErr.Kind == apperror.KindInternal {
		body.Message = ErrInternal.Message
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

func statusFor(err *apperror.Error) int {
	switch err.Kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindAuthorization:
		if err.Code == apperror.ErrUnauthenticated.Code {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindCooldown:
		return http.StatusTooManyRequests
	case apperror.KindTransient:
		return http.StatusServiceUnavailable
	case apperror.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

func newValidationError(code, message string) error {
	return apperror.New(apperror.KindValidation, code, message)
}
