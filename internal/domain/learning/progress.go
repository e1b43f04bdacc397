package learning

import (
	"time"

	"github.com/google/uuid"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// rank orders statuses so writes can refuse to move a record backwards.
func (s ProgressStatus) rank() int {
	switch s {
	case ProgressInProgress:
		return 1
	case ProgressCompleted:
		return 2
	default:
		return 0
	}
}

// Advances reports whether moving from s to next is a forward transition.
func (s ProgressStatus) Advances(next ProgressStatus) bool { return next.rank() > s.rank() }

// ProgressScope identifies which granularity a progress row describes.
// Course rows double as enrollment records.
type ProgressScope string

const (
	ScopeCourse ProgressScope = "course"
	ScopeModule ProgressScope = "module"
	ScopeLesson ProgressScope = "lesson"
)

// UserProgress is keyed logically by (user, course, module?, lesson?). Scope and
// ScopeID materialize that key so it can carry a plain unique index.
type UserProgress struct {
	ID       uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_progress_scope,priority:1;index:idx_progress_user_course,priority:1" json:"user_id"`
	CourseID uuid.UUID     `gorm:"type:uuid;not null;index:idx_progress_user_course,priority:2" json:"course_id"`
	ModuleID *uuid.UUID    `gorm:"type:uuid" json:"module_id,omitempty"`
	LessonID *uuid.UUID    `gorm:"type:uuid" json:"lesson_id,omitempty"`
	Scope    ProgressScope `gorm:"column:scope;not null;uniqueIndex:idx_progress_scope,priority:2" json:"scope"`
	ScopeID  uuid.UUID     `gorm:"type:uuid;column:scope_id;not null;uniqueIndex:idx_progress_scope,priority:3" json:"scope_id"`

	Status      ProgressStatus `gorm:"column:status;not null" json:"status"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProgress) TableName() string { return "user_progress" }

func NewCourseProgress(userID, courseID uuid.UUID, status ProgressStatus) *UserProgress {
	return &UserProgress{UserID: userID, CourseID: courseID, Scope: ScopeCourse, ScopeID: courseID, Status: status}
}

func NewModuleProgress(userID, courseID, moduleID uuid.UUID, status ProgressStatus) *UserProgress {
	mid := moduleID
	return &UserProgress{UserID: userID, CourseID: courseID, ModuleID: &mid, Scope: ScopeModule, ScopeID: moduleID, Status: status}
}

func NewLessonProgress(userID, courseID, moduleID, lessonID uuid.UUID, status ProgressStatus) *UserProgress {
	mid, lid := moduleID, lessonID
	return &UserProgress{UserID: userID, CourseID: courseID, ModuleID: &mid, LessonID: &lid, Scope: ScopeLesson, ScopeID: lessonID, Status: status}
}
