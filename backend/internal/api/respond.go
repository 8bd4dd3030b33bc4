package api

import (
	stderrors "errors"
	"net/http"

	"archmap/backend/internal/forms"
	"archmap/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// StatusClientClosedRequest is returned when the caller's context ended first
const StatusClientClosedRequest = 499

// statusFor maps an error type to an HTTP status
func statusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeConflict:
		return http.StatusConflict
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeContext:
		return StatusClientClosedRequest
	case errors.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": <raw message>, "type": ...} plus field
// messages for validation failures.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{
		"error": errors.Message(err),
		"type":  string(errors.TypeOf(err)),
	}
	var failed *errors.ErrValidationFailed
	if stderrors.As(err, &failed) && len(failed.Fields) > 0 {
		body["fields"] = failed.Fields
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// bindJSON binds the body and turns binding failures into validation errors
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		translated := forms.TranslateError(err)
		if errors.TypeOf(translated) == "" {
			translated = errors.NewValidationFailed(err.Error(), nil)
		}
		respondError(c, translated)
		return false
	}
	return true
}
