// Package eligibility computes lesson, module and quiz access states from
// explicitly fetched collections. Nothing here touches storage.
package eligibility

import (
	"math"
	"sort"

	"github.com/google/uuid"

	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

type Status string

const (
	Locked    Status = "locked"
	Available Status = "available"
	Completed Status = "completed"
)

// SortLessons orders lessons by order_sequence, breaking ties by id so the
// result never depends on fetch order.
func SortLessons(lessons []*types.Lesson) []*types.Lesson {
	out := append([]*types.Lesson(nil), lessons...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderSequence != out[j].OrderSequence {
			return out[i].OrderSequence < out[j].OrderSequence
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func SortModules(modules []*types.Module) []*types.Module {
	out := append([]*types.Module(nil), modules...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderSequence != out[j].OrderSequence {
			return out[i].OrderSequence < out[j].OrderSequence
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// SortQuizzes keeps module quizzes first and final quizzes last.
func SortQuizzes(quizzes []*types.Quiz) []*types.Quiz {
	out := append([]*types.Quiz(nil), quizzes...)
	sort.SliceStable(out, func(i, j int) bool {
		fi, fj := out[i].QuizType == types.QuizTypeFinal, out[j].QuizType == types.QuizTypeFinal
		if fi != fj {
			return fj
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// LessonStatus resolves one lesson against the other lessons of its module.
// A lesson is available when every lesson before it is completed.
func LessonStatus(moduleLessons []*types.Lesson, completed map[uuid.UUID]bool, lessonID uuid.UUID) (Status, error) {
	if !containsLesson(moduleLessons, lessonID) {
		return "", domainagg.NotFound("eligibility.lesson_status", "lesson in module")
	}
	if completed[lessonID] {
		return Completed, nil
	}
	for _, l := range SortLessons(moduleLessons) {
		if l.ID == lessonID {
			return Available, nil
		}
		if !completed[l.ID] {
			return Locked, nil
		}
	}
	return Locked, nil
}

func containsLesson(lessons []*types.Lesson, id uuid.UUID) bool {
	for _, l := range lessons {
		if l.ID == id {
			return true
		}
	}
	return false
}

// AllLessonsCompleted is the quiz unlock rule: every lesson of the module is done.
func AllLessonsCompleted(moduleLessons []*types.Lesson, completed map[uuid.UUID]bool) bool {
	for _, l := range moduleLessons {
		if !completed[l.ID] {
			return false
		}
	}
	return true
}

// ModuleComplete holds when every lesson is completed and every active quiz
// has a passed attempt.
func ModuleComplete(moduleLessons []*types.Lesson, moduleQuizzes []*types.Quiz, completedLessons, passedQuizzes map[uuid.UUID]bool) bool {
	if !AllLessonsCompleted(moduleLessons, completedLessons) {
		return false
	}
	for _, q := range moduleQuizzes {
		if q.Active && !passedQuizzes[q.ID] {
			return false
		}
	}
	return true
}

// ModuleStatus resolves one module against its course siblings given which
// modules are complete.
func ModuleStatus(courseModules []*types.Module, complete map[uuid.UUID]bool, moduleID uuid.UUID) (Status, error) {
	found := false
	for _, m := range courseModules {
		if m.ID == moduleID {
			found = true
			break
		}
	}
	if !found {
		return "", domainagg.NotFound("eligibility.module_status", "module in course")
	}
	if complete[moduleID] {
		return Completed, nil
	}
	for _, m := range SortModules(courseModules) {
		if m.ID == moduleID {
			return Available, nil
		}
		if !complete[m.ID] {
			return Locked, nil
		}
	}
	return Locked, nil
}

// ProgressPercent rounds completed/total to the nearest integer percent; 0 when total is 0.
func ProgressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
