package domain

import (
	"github.com/yungbote/lms-backend/internal/domain/learning"
	"github.com/yungbote/lms-backend/internal/domain/user"
)

type (
	User = user.User

	Course         = learning.Course
	Module         = learning.Module
	Lesson         = learning.Lesson
	Quiz           = learning.Quiz
	Question       = learning.Question
	QuestionOption = learning.QuestionOption
	UserProgress   = learning.UserProgress
	QuizAttempt    = learning.QuizAttempt
	UserAnswer     = learning.UserAnswer
	Certificate    = learning.Certificate

	QuizType       = learning.QuizType
	QuestionType   = learning.QuestionType
	ProgressStatus = learning.ProgressStatus
	ProgressScope  = learning.ProgressScope
)

const (
	QuizTypeModule = learning.QuizTypeModule
	QuizTypeFinal  = learning.QuizTypeFinal

	QuestionMultipleChoice = learning.QuestionMultipleChoice
	QuestionTrueFalse      = learning.QuestionTrueFalse
	QuestionFreeText       = learning.QuestionFreeText

	ProgressNotStarted = learning.ProgressNotStarted
	ProgressInProgress = learning.ProgressInProgress
	ProgressCompleted  = learning.ProgressCompleted

	ScopeCourse = learning.ScopeCourse
	ScopeModule = learning.ScopeModule
	ScopeLesson = learning.ScopeLesson
)

var (
	NewCourseProgress = learning.NewCourseProgress
	NewModuleProgress = learning.NewModuleProgress
	NewLessonProgress = learning.NewLessonProgress
)

// AllModels lists every persisted row type in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Module{},
		&Lesson{},
		&Quiz{},
		&Question{},
		&QuestionOption{},
		&UserProgress{},
		&QuizAttempt{},
		&UserAnswer{},
		&Certificate{},
	}
}
