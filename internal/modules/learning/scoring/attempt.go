package scoring

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

// State is either *InProgress or *Completed. Only InProgress carries the
// operations that mutate answers or finish the attempt.
type State interface {
	AttemptRow() *types.QuizAttempt
	isState()
}

type InProgress struct {
	Attempt *types.QuizAttempt
	Answers map[uuid.UUID]*types.UserAnswer // by question id
}

type Completed struct {
	Attempt *types.QuizAttempt
	Answers map[uuid.UUID]*types.UserAnswer
	Result  Result
}

type Result struct {
	Score          int  `json:"score"`
	Passed         bool `json:"passed"`
	CorrectAnswers int  `json:"correct_answers"`
	TotalQuestions int  `json:"total_questions"`
	EarnedPoints   int  `json:"earned_points"`
	TotalPoints    int  `json:"total_points"`
}

func (s *InProgress) AttemptRow() *types.QuizAttempt { return s.Attempt }
func (s *Completed) AttemptRow() *types.QuizAttempt  { return s.Attempt }
func (*InProgress) isState()                         {}
func (*Completed) isState()                          {}

func indexAnswers(attemptID uuid.UUID, answers []*types.UserAnswer) map[uuid.UUID]*types.UserAnswer {
	out := make(map[uuid.UUID]*types.UserAnswer, len(answers))
	for _, a := range answers {
		if a != nil && a.AttemptID == attemptID {
			out[a.QuestionID] = a
		}
	}
	return out
}

// Classify lifts a stored attempt row and its answers into a State.
func Classify(row *types.QuizAttempt, answers []*types.UserAnswer) State {
	if row == nil {
		return nil
	}
	idx := indexAnswers(row.ID, answers)
	if row.Open() {
		return &InProgress{Attempt: row, Answers: idx}
	}
	return &Completed{
		Attempt: row,
		Answers: idx,
		Result: Result{
			Score:          row.Score,
			Passed:         row.Passed,
			CorrectAnswers: row.CorrectAnswers,
			TotalQuestions: row.TotalQuestions,
		},
	}
}

// OpenFor narrows s to an InProgress attempt owned by studentID.
func OpenFor(s State, studentID uuid.UUID) (*InProgress, error) {
	const op = "scoring.open_for"
	if s == nil {
		return nil, domainagg.NotFound(op, "attempt")
	}
	if s.AttemptRow().UserID != studentID {
		return nil, domainagg.InvalidAttemptState(op, "attempt belongs to another student")
	}
	ip, ok := s.(*InProgress)
	if !ok {
		return nil, domainagg.InvalidAttemptState(op, "attempt is already submitted")
	}
	return ip, nil
}

// Record grades a selection for q and returns the answer row to upsert. A
// previous answer to the same question keeps its id and is overwritten.
func (s *InProgress) Record(q *types.Question, selectedOptionID *uuid.UUID, answerText string) (*types.UserAnswer, error) {
	const op = "scoring.record"
	if q == nil || q.QuizID != s.Attempt.QuizID {
		return nil, domainagg.NotFound(op, "question in quiz")
	}
	g, err := GradeAnswer(q, selectedOptionID, answerText)
	if err != nil {
		return nil, err
	}
	ans := &types.UserAnswer{AttemptID: s.Attempt.ID, QuestionID: q.ID}
	if prev := s.Answers[q.ID]; prev != nil {
		ans.ID = prev.ID
		ans.CreatedAt = prev.CreatedAt
	}
	if q.QuestionType.Choice() {
		sel := *selectedOptionID
		ans.SelectedOptionID = &sel
	} else {
		ans.AnswerText = answerText
	}
	ans.IsCorrect = g.IsCorrect
	ans.PointsEarned = g.PointsEarned
	s.Answers[q.ID] = ans
	return ans, nil
}

// Submit scores the attempt against every question of the quiz. The returned
// Completed holds a copy of the row with the final fields set; the caller
// persists it conditionally on the row still being open.
func (s *InProgress) Submit(questions []*types.Question, passThreshold int, now time.Time) (*Completed, error) {
	const op = "scoring.submit"
	inQuiz := make(map[uuid.UUID]bool, len(questions))
	for _, q := range questions {
		if q != nil {
			inQuiz[q.ID] = true
		}
	}
	earned, correct, counted := 0, 0, 0
	for qid, a := range s.Answers {
		if !inQuiz[qid] {
			continue
		}
		counted++
		earned += a.PointsEarned
		if a.IsCorrect {
			correct++
		}
	}
	if counted == 0 {
		return nil, domainagg.NewError(domainagg.CodeNoAnswers, op, "no answers recorded for attempt", nil)
	}

	total := TotalPoints(questions)
	res := Result{
		Score:          Score(earned, total),
		CorrectAnswers: correct,
		TotalQuestions: s.Attempt.TotalQuestions,
		EarnedPoints:   earned,
		TotalPoints:    total,
	}
	res.Passed = Passed(res.Score, passThreshold)

	row := *s.Attempt
	at := now.UTC()
	row.Score = res.Score
	row.CorrectAnswers = res.CorrectAnswers
	row.Passed = res.Passed
	row.CompletedAt = &at
	return &Completed{Attempt: &row, Answers: s.Answers, Result: res}, nil
}
