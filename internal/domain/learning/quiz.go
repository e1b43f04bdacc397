package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizType string

const (
	QuizTypeModule QuizType = "module"
	QuizTypeFinal  QuizType = "final"
)

func (t QuizType) Valid() bool { return t == QuizTypeModule || t == QuizTypeFinal }

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	// QuestionFreeText answers are stored but never scored as correct.
	QuestionFreeText QuestionType = "free_text"
)

func (t QuestionType) Valid() bool {
	return t == QuestionMultipleChoice || t == QuestionTrueFalse || t == QuestionFreeText
}

// Choice reports whether the question is graded by option selection.
func (t QuestionType) Choice() bool {
	return t == QuestionMultipleChoice || t == QuestionTrueFalse
}

type Quiz struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID      uuid.UUID `gorm:"type:uuid;not null;index" json:"module_id"`
	Title         string    `gorm:"column:title;not null" json:"title"`
	QuizType      QuizType  `gorm:"column:quiz_type;not null" json:"quiz_type"`
	PassThreshold int       `gorm:"column:pass_threshold;not null" json:"pass_threshold"`
	Active        bool      `gorm:"column:active;not null" json:"active"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Quiz) TableName() string { return "quiz" }

type Question struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"quiz_id"`
	QuestionText  string       `gorm:"column:question_text;type:text;not null" json:"question_text"`
	QuestionType  QuestionType `gorm:"column:question_type;not null" json:"question_type"`
	Points        int          `gorm:"column:points;not null" json:"points"`
	OrderSequence int          `gorm:"column:order_sequence;not null" json:"order_sequence"`

	Options []*QuestionOption `gorm:"foreignKey:QuestionID;references:ID" json:"options,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string { return "question" }

type QuestionOption struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID    uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	OptionText    string    `gorm:"column:option_text;not null" json:"option_text"`
	IsCorrect     bool      `gorm:"column:is_correct;not null" json:"-"`
	OrderSequence int       `gorm:"column:order_sequence;not null" json:"order_sequence"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QuestionOption) TableName() string { return "question_option" }
