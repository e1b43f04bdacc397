package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughCodedError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeNoAnswers, "op", "nothing to grade", nil)
	if out := MapError("other", in); out != in {
		t.Fatalf("expected passthrough of coded error")
	}
	wrapped := fmt.Errorf("outer: %w", in)
	if out := MapError("other", wrapped); !domainagg.IsCode(out, domainagg.CodeNoAnswers) {
		t.Fatalf("expected wrapped coded error to keep its code, got %q", domainagg.CodeOf(out))
	}
}

func TestMapError_PostgresCodes(t *testing.T) {
	cases := map[string]domainagg.ErrorCode{
		"23505": domainagg.CodeConflict,
		"40001": domainagg.CodeConflict,
		"40P01": domainagg.CodeConflict,
		"55P03": domainagg.CodeRetryable,
		"23503": domainagg.CodeNotFound,
		"22P02": domainagg.CodeInternal,
	}
	for code, want := range cases {
		err := MapError("op", fmt.Errorf("exec: %w", &pgconn.PgError{Code: code}))
		if !domainagg.IsCode(err, want) {
			t.Fatalf("pg %s: expected %q, got %q", code, want, domainagg.CodeOf(err))
		}
	}
}

func TestMapError_SQLiteUniqueViolation(t *testing.T) {
	err := MapError("op", errors.New("UNIQUE constraint failed: certificate.user_id, certificate.course_id"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_ContextCancelIsRetryable(t *testing.T) {
	err := MapError("op", context.Canceled)
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("expected retryable code, got %q", domainagg.CodeOf(err))
	}
}
