package learning

import (
	"context"
	"strings"

	"github.com/google/uuid"

	dataagg "github.com/yungbote/lms-backend/internal/data/aggregates"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/modules/learning/scoring"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
)

type StartAttemptInput struct {
	StudentID uuid.UUID
	QuizID    uuid.UUID
}

type StartAttemptOutput struct {
	Attempt   *types.QuizAttempt `json:"attempt"`
	Abandoned int                `json:"abandoned"`
}

// StartAttempt closes any open attempt for (student, quiz) with the zero-score
// penalty and opens attempt max+1. Two concurrent starts collide on the open
// attempt index; the loser retries the whole start.
func (u Usecases) StartAttempt(ctx context.Context, in StartAttemptInput) (StartAttemptOutput, error) {
	const op = "learning.start_attempt"
	var out StartAttemptOutput
	err := dataagg.Retry(ctx, u.deps.Write, op, func(ctx context.Context) error {
		out = StartAttemptOutput{}
		return dataagg.ExecuteWrite(ctx, u.deps.Write, op, func(dbc dbctx.Context) error {
			quiz, m, err := u.quizOf(dbc, op, in.QuizID)
			if err != nil {
				return err
			}
			snap, err := u.loadSnapshot(dbc, in.StudentID, m.CourseID)
			if err != nil {
				return err
			}
			if _, err := snap.QuizAccessible(quiz.ID); err != nil {
				return err
			}
			count, err := u.deps.Questions.CountByQuizID(dbc, quiz.ID)
			if err != nil {
				return err
			}
			if count == 0 {
				return domainagg.NotAvailable(op, "quiz has no questions")
			}

			now := u.now()
			open, err := u.deps.Attempts.ListOpenForUpdate(dbc, in.StudentID, quiz.ID)
			if err != nil {
				return err
			}
			if len(open) > 0 {
				ids := make([]uuid.UUID, 0, len(open))
				for _, a := range open {
					ids = append(ids, a.ID)
				}
				n, err := u.deps.Attempts.Abandon(dbc, ids, now)
				if err != nil {
					return err
				}
				out.Abandoned = int(n)
			}

			max, err := u.deps.Attempts.MaxAttemptNumber(dbc, in.StudentID, quiz.ID)
			if err != nil {
				return err
			}
			row := &types.QuizAttempt{
				UserID:         in.StudentID,
				QuizID:         quiz.ID,
				AttemptNumber:  max + 1,
				TotalQuestions: count,
				StartedAt:      now,
			}
			if err := u.deps.Attempts.Create(dbc, row); err != nil {
				return err
			}
			out.Attempt = row
			return nil
		})
	})
	if err != nil {
		return StartAttemptOutput{}, err
	}
	if out.Abandoned > 0 {
		u.deps.Metrics.AddAbandonedAttempts(out.Abandoned)
		u.deps.Log.Info("abandoned open attempts", "student_id", in.StudentID, "quiz_id", in.QuizID, "count", out.Abandoned)
	}
	return out, nil
}

type RecordAnswerInput struct {
	StudentID        uuid.UUID
	AttemptID        uuid.UUID
	QuestionID       uuid.UUID
	SelectedOptionID *uuid.UUID
	AnswerText       string
}

type RecordAnswerOutput struct {
	Answer *types.UserAnswer `json:"answer"`
}

// RecordAnswer upserts the student's answer for one question of an open
// attempt. The attempt score is untouched until submission.
func (u Usecases) RecordAnswer(ctx context.Context, in RecordAnswerInput) (RecordAnswerOutput, error) {
	const op = "learning.record_answer"
	var out RecordAnswerOutput
	err := dataagg.ExecuteWrite(ctx, u.deps.Write, op, func(dbc dbctx.Context) error {
		st, err := u.attemptState(dbc, op, in.AttemptID)
		if err != nil {
			return err
		}
		open, err := scoring.OpenFor(st, in.StudentID)
		if err != nil {
			return err
		}
		q, err := u.deps.Questions.GetByID(dbc, in.QuestionID)
		if err != nil {
			return err
		}
		if q == nil {
			return domainagg.NotFound(op, "question")
		}
		ans, err := open.Record(q, in.SelectedOptionID, strings.TrimSpace(in.AnswerText))
		if err != nil {
			return err
		}
		if err := u.deps.Answers.Upsert(dbc, ans); err != nil {
			return err
		}
		out.Answer = ans
		return nil
	})
	if err != nil {
		return RecordAnswerOutput{}, err
	}
	return out, nil
}

type SubmitAttemptInput struct {
	StudentID uuid.UUID
	AttemptID uuid.UUID
}

type SubmitAttemptOutput struct {
	Attempt         *types.QuizAttempt `json:"attempt"`
	Result          scoring.Result     `json:"result"`
	ModuleCompleted bool               `json:"module_completed"`
	CourseProgress  int                `json:"course_progress"`
	Certificate     *IssueResult       `json:"certificate,omitempty"`
	// CertificatePending: see CompleteLessonOutput.
	CertificatePending bool `json:"certificate_pending,omitempty"`
}

// SubmitAttempt scores and closes an open attempt. The close is conditional on
// the row still being open, so a second submit is rejected even when two race.
// A pass feeds module completion and then the certificate check.
func (u Usecases) SubmitAttempt(ctx context.Context, in SubmitAttemptInput) (SubmitAttemptOutput, error) {
	const op = "learning.submit_attempt"
	var (
		out            SubmitAttemptOutput
		quizType       types.QuizType
		courseID       uuid.UUID
		courseComplete bool
	)
	err := dataagg.ExecuteWrite(ctx, u.deps.Write, op, func(dbc dbctx.Context) error {
		st, err := u.attemptState(dbc, op, in.AttemptID)
		if err != nil {
			return err
		}
		open, err := scoring.OpenFor(st, in.StudentID)
		if err != nil {
			return err
		}
		quiz, m, err := u.quizOf(dbc, op, open.Attempt.QuizID)
		if err != nil {
			return err
		}
		quizType = quiz.QuizType
		courseID = m.CourseID

		questions, err := u.deps.Questions.ListByQuizID(dbc, quiz.ID)
		if err != nil {
			return err
		}
		done, err := open.Submit(questions, quiz.PassThreshold, u.now())
		if err != nil {
			return err
		}
		ok, err := u.deps.Attempts.Complete(dbc, done.Attempt)
		if err != nil {
			return err
		}
		if !ok {
			return domainagg.InvalidAttemptState(op, "attempt is already submitted")
		}
		out.Attempt = done.Attempt
		out.Result = done.Result

		snap, err := u.loadSnapshot(dbc, in.StudentID, m.CourseID)
		if err != nil {
			return err
		}
		if done.Result.Passed {
			moduleDone, err := u.markModuleComplete(dbc, snap, m)
			if err != nil {
				return err
			}
			out.ModuleCompleted = moduleDone
		}
		out.CourseProgress = snap.CourseProgress()
		courseComplete = done.Result.Passed && snap.CourseComplete()
		return nil
	})
	if err != nil {
		return SubmitAttemptOutput{}, err
	}

	u.deps.Metrics.ObserveQuizSubmission(string(quizType), out.Result.Passed, out.Result.Score)
	u.deps.Log.Info("attempt submitted",
		"student_id", in.StudentID,
		"attempt_id", in.AttemptID,
		"quiz_type", string(quizType),
		"score", out.Result.Score,
		"passed", out.Result.Passed,
	)
	if courseComplete {
		out.Certificate, out.CertificatePending = u.issueAfterWrite(ctx, op, in.StudentID, courseID)
	}
	return out, nil
}

// attemptState reads an attempt under a row lock together with its answers.
func (u Usecases) attemptState(dbc dbctx.Context, op string, attemptID uuid.UUID) (scoring.State, error) {
	row, err := u.deps.Attempts.LockByID(dbc, attemptID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domainagg.NotFound(op, "attempt")
	}
	answers, err := u.deps.Answers.ListByAttemptID(dbc, row.ID)
	if err != nil {
		return nil, err
	}
	return scoring.Classify(row, answers), nil
}
