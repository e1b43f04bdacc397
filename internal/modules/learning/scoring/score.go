// Package scoring grades quiz answers and models the one-way attempt lifecycle.
package scoring

import (
	"math"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

// Score is the rounded percentage of earned over total points. A quiz with no
// points scores 0.
func Score(earned, total int) int {
	if total <= 0 {
		return 0
	}
	s := int(math.Round(100 * float64(earned) / float64(total)))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// Passed compares a rounded score to the threshold; ties pass.
func Passed(score, threshold int) bool { return score >= threshold }

// TotalPoints sums point values over every question of the quiz.
func TotalPoints(questions []*types.Question) int {
	total := 0
	for _, q := range questions {
		if q != nil {
			total += q.Points
		}
	}
	return total
}

type Grade struct {
	IsCorrect    bool
	PointsEarned int
}

// GradeAnswer decides correctness for a single selection. Choice questions are
// correct iff the selected option belongs to q and is marked correct. Free text
// is stored ungraded and earns nothing.
func GradeAnswer(q *types.Question, selectedOptionID *uuid.UUID, answerText string) (Grade, error) {
	const op = "scoring.grade_answer"
	if q == nil {
		return Grade{}, domainagg.NotFound(op, "question")
	}
	if !q.QuestionType.Choice() {
		if strings.TrimSpace(answerText) == "" {
			return Grade{}, domainagg.NewError(domainagg.CodeValidation, op, "answer text is required", nil)
		}
		return Grade{}, nil
	}
	if selectedOptionID == nil || *selectedOptionID == uuid.Nil {
		return Grade{}, domainagg.NewError(domainagg.CodeValidation, op, "an option must be selected", nil)
	}
	opt := OptionOf(q, *selectedOptionID)
	if opt == nil {
		return Grade{}, domainagg.NotFound(op, "option for question")
	}
	if !opt.IsCorrect {
		return Grade{}, nil
	}
	return Grade{IsCorrect: true, PointsEarned: q.Points}, nil
}

// OptionOf returns the option of q with the given id, or nil.
func OptionOf(q *types.Question, optionID uuid.UUID) *types.QuestionOption {
	if q == nil {
		return nil
	}
	for _, o := range q.Options {
		if o != nil && o.ID == optionID {
			return o
		}
	}
	return nil
}
