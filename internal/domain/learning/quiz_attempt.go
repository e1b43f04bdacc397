package learning

import (
	"time"

	"github.com/google/uuid"
)

// QuizAttempt rows are never deleted. CompletedAt == nil means the attempt is open.
type QuizAttempt struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attempt_number,priority:1" json:"user_id"`
	QuizID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attempt_number,priority:2;index" json:"quiz_id"`
	AttemptNumber int       `gorm:"column:attempt_number;not null;uniqueIndex:idx_attempt_number,priority:3" json:"attempt_number"`

	Score          int  `gorm:"column:score;not null" json:"score"`
	TotalQuestions int  `gorm:"column:total_questions;not null" json:"total_questions"`
	CorrectAnswers int  `gorm:"column:correct_answers;not null" json:"correct_answers"`
	Passed         bool `gorm:"column:passed;not null;index" json:"passed"`

	StartedAt   time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }

func (a *QuizAttempt) Open() bool { return a != nil && a.CompletedAt == nil }

type UserAnswer struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AttemptID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_answer_attempt_question,priority:1" json:"attempt_id"`
	QuestionID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_answer_attempt_question,priority:2" json:"question_id"`
	SelectedOptionID *uuid.UUID `gorm:"type:uuid" json:"selected_option_id,omitempty"`
	AnswerText       string     `gorm:"column:answer_text;type:text" json:"answer_text,omitempty"`
	IsCorrect        bool       `gorm:"column:is_correct;not null" json:"is_correct"`
	PointsEarned     int        `gorm:"column:points_earned;not null" json:"points_earned"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserAnswer) TableName() string { return "user_answer" }
