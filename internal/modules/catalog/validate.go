package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterStructValidation(questionRules, QuestionDef{})
	})
	return validate
}

// questionRules enforces the option shape per question type. Choice questions
// carry exactly one correct option, so grading never has to break a tie.
func questionRules(sl validator.StructLevel) {
	q := sl.Current().Interface().(QuestionDef)
	qt := types.QuestionType(q.Type)
	if !qt.Choice() {
		if len(q.Options) > 0 {
			sl.ReportError(q.Options, "Options", "options", "free_text_options", "")
		}
		return
	}
	if len(q.Options) < 2 {
		sl.ReportError(q.Options, "Options", "options", "min_options", "2")
	}
	if qt == types.QuestionTrueFalse && len(q.Options) != 2 {
		sl.ReportError(q.Options, "Options", "options", "true_false_options", "2")
	}
	correct := 0
	for _, o := range q.Options {
		if o.Correct {
			correct++
		}
	}
	if correct != 1 {
		sl.ReportError(q.Options, "Options", "options", "one_correct", "1")
	}
}

// Validate checks one course definition and flattens every violation into a
// single validation error.
func Validate(def CourseDef) error {
	err := validatorInstance().Struct(def)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return domainagg.Wrap(domainagg.CodeValidation, "catalog.validate", err)
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		msgs = append(msgs, describe(fe))
	}
	return domainagg.NewError(domainagg.CodeValidation, "catalog.validate",
		fmt.Sprintf("course %q: %s", def.Slug, strings.Join(msgs, "; ")), err)
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "CourseDef.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "unique":
		return field + " has duplicate " + strings.ToLower(fe.Param())
	case "one_correct":
		return field + " must have exactly one correct option"
	case "min_options":
		return field + " needs at least two options"
	case "true_false_options":
		return field + " must have exactly two options"
	case "free_text_options":
		return field + " must not have options"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
