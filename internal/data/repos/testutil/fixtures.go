package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lms-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, title string) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:     uuid.New(),
		Slug:   fmt.Sprintf("course-%s", uuid.NewString()[:8]),
		Title:  title,
		Active: true,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, order int) *types.Module {
	tb.Helper()
	m := &types.Module{
		ID:            uuid.New(),
		CourseID:      courseID,
		Title:         fmt.Sprintf("Module %d", order),
		OrderSequence: order,
		PassThreshold: 70,
		Active:        true,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, order int) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		ID:                uuid.New(),
		ModuleID:          moduleID,
		Title:             fmt.Sprintf("Lesson %d", order),
		Content:           "content",
		OrderSequence:     order,
		EstimatedDuration: 10,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func SeedQuiz(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, quizType types.QuizType, threshold int) *types.Quiz {
	tb.Helper()
	q := &types.Quiz{
		ID:            uuid.New(),
		ModuleID:      moduleID,
		Title:         string(quizType) + " quiz",
		QuizType:      quizType,
		PassThreshold: threshold,
		Active:        true,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}

// SeedQuestion creates a multiple choice question with the given number of
// options; the option at index correct is the right one.
func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, quizID uuid.UUID, order, points, options, correct int) *types.Question {
	tb.Helper()
	q := &types.Question{
		ID:            uuid.New(),
		QuizID:        quizID,
		QuestionText:  fmt.Sprintf("Question %d", order),
		QuestionType:  types.QuestionMultipleChoice,
		Points:        points,
		OrderSequence: order,
	}
	for i := 0; i < options; i++ {
		q.Options = append(q.Options, &types.QuestionOption{
			ID:            uuid.New(),
			QuestionID:    q.ID,
			OptionText:    fmt.Sprintf("Option %d", i+1),
			IsCorrect:     i == correct,
			OrderSequence: i + 1,
		})
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

// CorrectOption returns the id of the first correct option of q.
func CorrectOption(q *types.Question) uuid.UUID {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.ID
		}
	}
	return uuid.Nil
}

// WrongOption returns the id of the first incorrect option of q.
func WrongOption(q *types.Question) uuid.UUID {
	for _, o := range q.Options {
		if !o.IsCorrect {
			return o.ID
		}
	}
	return uuid.Nil
}
