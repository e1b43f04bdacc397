package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string    `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Active      bool      `gorm:"column:active;not null;index" json:"active"`

	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }

// Module is the unit of sequential unlocking inside a course.
type Module struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_module_course_order,priority:1" json:"course_id"`
	Title         string    `gorm:"column:title;not null" json:"title"`
	Description   string    `gorm:"column:description;type:text" json:"description"`
	OrderSequence int       `gorm:"column:order_sequence;not null;uniqueIndex:idx_module_course_order,priority:2" json:"order_sequence"`
	PassThreshold int       `gorm:"column:pass_threshold;not null" json:"pass_threshold"`
	Active        bool      `gorm:"column:active;not null" json:"active"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Module) TableName() string { return "course_module" }

type Lesson struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lesson_module_order,priority:1" json:"module_id"`
	Title             string    `gorm:"column:title;not null" json:"title"`
	Content           string    `gorm:"column:content;type:text" json:"content"`
	OrderSequence     int       `gorm:"column:order_sequence;not null;uniqueIndex:idx_lesson_module_order,priority:2" json:"order_sequence"`
	EstimatedDuration int       `gorm:"column:estimated_duration;not null" json:"estimated_duration"` // minutes

	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Lesson) TableName() string { return "lesson" }
