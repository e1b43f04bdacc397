package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/apierr"
)

var statusByCode = map[aggregates.ErrorCode]int{
	aggregates.CodeValidation:          http.StatusBadRequest,
	aggregates.CodeNotFound:            http.StatusNotFound,
	aggregates.CodeNotAvailable:        http.StatusForbidden,
	aggregates.CodeInvalidAttemptState: http.StatusConflict,
	aggregates.CodeNoAnswers:           http.StatusUnprocessableEntity,
	aggregates.CodeConflict:            http.StatusConflict,
	aggregates.CodeRetryable:           http.StatusServiceUnavailable,
	aggregates.CodeInternal:            http.StatusInternalServerError,
}

// FromError converts engine errors into an API error. Unknown errors become
// a 500 with the fallback code.
func FromError(err error, fallbackCode string) *apierr.Error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	if code := aggregates.CodeOf(err); code != "" {
		status, ok := statusByCode[code]
		if !ok {
			status = http.StatusInternalServerError
		}
		return apierr.New(status, string(code), err)
	}
	return apierr.New(http.StatusInternalServerError, fallbackCode, err)
}

// RespondErr writes err using FromError. Internal failures do not leak their message.
func RespondErr(c *gin.Context, fallbackCode string, err error) {
	ae := FromError(err, fallbackCode)
	if ae.Status >= http.StatusInternalServerError && ae.Status != http.StatusServiceUnavailable {
		_ = c.Error(err)
		RespondError(c, ae.Status, ae.Code, errors.New("internal error"))
		return
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}
