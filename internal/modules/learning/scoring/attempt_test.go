package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

func openAttempt(student, quizID uuid.UUID, questions int) *types.QuizAttempt {
	return &types.QuizAttempt{
		ID:             uuid.New(),
		UserID:         student,
		QuizID:         quizID,
		AttemptNumber:  1,
		TotalQuestions: questions,
		StartedAt:      time.Now().UTC(),
	}
}

func TestSubmitWeightedScore(t *testing.T) {
	student, quizID := uuid.New(), uuid.New()
	q1, q2, q3 := choiceQuestion(quizID, 1), choiceQuestion(quizID, 1), choiceQuestion(quizID, 2)
	questions := []*types.Question{q1, q2, q3}

	st, err := OpenFor(Classify(openAttempt(student, quizID, 3), nil), student)
	if err != nil {
		t.Fatalf("OpenFor: %v", err)
	}
	for _, a := range []struct {
		q   *types.Question
		sel *uuid.UUID
	}{{q1, wrong(q1)}, {q2, wrong(q2)}, {q3, right(q3)}} {
		if _, err := st.Record(a.q, a.sel, ""); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	done, err := st.Submit(questions, 70, time.Now())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if done.Result.Score != 50 || done.Result.Passed || done.Result.CorrectAnswers != 1 {
		t.Fatalf("result: %+v", done.Result)
	}
	if done.Attempt.CompletedAt == nil || done.Attempt.Score != 50 {
		t.Fatalf("row not finalized: %+v", done.Attempt)
	}
	if st.Attempt.CompletedAt != nil {
		t.Fatalf("Submit must not mutate the in-progress row")
	}

	// ties pass
	done, err = st.Submit(questions, 50, time.Now())
	if err != nil || !done.Result.Passed {
		t.Fatalf("threshold tie: passed=%v err=%v", done != nil && done.Result.Passed, err)
	}
}

func TestSubmitUnansweredQuestionsCountInTotal(t *testing.T) {
	student, quizID := uuid.New(), uuid.New()
	q1, q2 := choiceQuestion(quizID, 1), choiceQuestion(quizID, 1)
	st, _ := OpenFor(Classify(openAttempt(student, quizID, 2), nil), student)
	if _, err := st.Record(q1, right(q1), ""); err != nil {
		t.Fatalf("Record: %v", err)
	}
	done, err := st.Submit([]*types.Question{q1, q2}, 70, time.Now())
	if err != nil || done.Result.Score != 50 || done.Result.Passed {
		t.Fatalf("partial answers: %+v err=%v", done, err)
	}
}

func TestRecordOverwritesPreviousAnswer(t *testing.T) {
	student, quizID := uuid.New(), uuid.New()
	q := choiceQuestion(quizID, 4)
	row := openAttempt(student, quizID, 1)
	prev := &types.UserAnswer{ID: uuid.New(), AttemptID: row.ID, QuestionID: q.ID, SelectedOptionID: wrong(q)}
	st, _ := OpenFor(Classify(row, []*types.UserAnswer{prev}), student)

	ans, err := st.Record(q, right(q), "")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if ans.ID != prev.ID || !ans.IsCorrect || ans.PointsEarned != 4 {
		t.Fatalf("overwrite: %+v", ans)
	}
	if len(st.Answers) != 1 {
		t.Fatalf("expected one answer per question, got %d", len(st.Answers))
	}
}

func TestRecordRejectsForeignQuestion(t *testing.T) {
	student, quizID := uuid.New(), uuid.New()
	st, _ := OpenFor(Classify(openAttempt(student, quizID, 1), nil), student)
	other := choiceQuestion(uuid.New(), 1)
	if _, err := st.Record(other, right(other), ""); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestSubmitWithoutAnswers(t *testing.T) {
	student, quizID := uuid.New(), uuid.New()
	st, _ := OpenFor(Classify(openAttempt(student, quizID, 1), nil), student)
	if _, err := st.Submit([]*types.Question{choiceQuestion(quizID, 1)}, 70, time.Now()); !domainagg.IsCode(err, domainagg.CodeNoAnswers) {
		t.Fatalf("expected no_answers, got %v", err)
	}
}

func TestOpenForRejectsCompletedAndForeign(t *testing.T) {
	student, quizID := uuid.New(), uuid.New()
	row := openAttempt(student, quizID, 1)
	now := time.Now()
	row.CompletedAt = &now

	st := Classify(row, nil)
	if _, ok := st.(*Completed); !ok {
		t.Fatalf("Classify: expected Completed, got %T", st)
	}
	if _, err := OpenFor(st, student); !domainagg.IsCode(err, domainagg.CodeInvalidAttemptState) {
		t.Fatalf("completed attempt: expected invalid_attempt_state, got %v", err)
	}
	if _, err := OpenFor(Classify(openAttempt(student, quizID, 1), nil), uuid.New()); !domainagg.IsCode(err, domainagg.CodeInvalidAttemptState) {
		t.Fatalf("foreign attempt: expected invalid_attempt_state, got %v", err)
	}
}
