package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/apierr"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{aggregates.NotFound("op", "lesson"), http.StatusNotFound, "not_found"},
		{aggregates.NotAvailable("op", "locked"), http.StatusForbidden, "not_available"},
		{aggregates.InvalidAttemptState("op", "submitted"), http.StatusConflict, "invalid_attempt_state"},
		{aggregates.NewError(aggregates.CodeNoAnswers, "op", "empty", nil), http.StatusUnprocessableEntity, "no_answers"},
		{aggregates.NewError(aggregates.CodeValidation, "op", "bad", nil), http.StatusBadRequest, "validation"},
		{aggregates.NewError(aggregates.CodeRetryable, "op", "busy", nil), http.StatusServiceUnavailable, "retryable"},
		{apierr.New(http.StatusTeapot, "teapot", nil), http.StatusTeapot, "teapot"},
		{errors.New("boom"), http.StatusInternalServerError, "fallback"},
	}
	for _, tc := range cases {
		got := FromError(tc.err, "fallback")
		if got.Status != tc.status || got.Code != tc.code {
			t.Fatalf("FromError(%v): got=%d/%s want=%d/%s", tc.err, got.Status, got.Code, tc.status, tc.code)
		}
	}
}

func TestRespondErrHidesInternalMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondErr(c, "load_failed", errors.New("pq: password authentication failed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: %d", rec.Code)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "load_failed" || env.Error.Message != "internal error" {
		t.Fatalf("envelope: %+v", env)
	}
}
