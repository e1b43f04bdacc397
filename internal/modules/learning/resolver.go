package learning

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/modules/learning/eligibility"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
)

// LessonStatus answers lessonStatus for a lesson against its own module.
func (u Usecases) LessonStatus(ctx context.Context, studentID, lessonID uuid.UUID) (eligibility.Status, error) {
	dbc := dbctx.Context{Ctx: ctx}
	_, m, err := u.lessonOf(dbc, "learning.lesson_status", lessonID)
	if err != nil {
		return "", err
	}
	snap, err := u.loadSnapshot(dbc, studentID, m.CourseID)
	if err != nil {
		return "", err
	}
	return snap.LessonStatus(lessonID)
}

func (u Usecases) ModuleStatus(ctx context.Context, studentID, moduleID uuid.UUID) (eligibility.Status, error) {
	dbc := dbctx.Context{Ctx: ctx}
	m, err := u.moduleOf(dbc, "learning.module_status", moduleID)
	if err != nil {
		return "", err
	}
	snap, err := u.loadSnapshot(dbc, studentID, m.CourseID)
	if err != nil {
		return "", err
	}
	return snap.ModuleStatus(moduleID)
}

func (u Usecases) QuizUnlocked(ctx context.Context, studentID, moduleID uuid.UUID) (bool, error) {
	dbc := dbctx.Context{Ctx: ctx}
	m, err := u.moduleOf(dbc, "learning.quiz_unlocked", moduleID)
	if err != nil {
		return false, err
	}
	snap, err := u.loadSnapshot(dbc, studentID, m.CourseID)
	if err != nil {
		return false, err
	}
	return snap.QuizUnlocked(moduleID)
}

func (u Usecases) CourseProgress(ctx context.Context, studentID, courseID uuid.UUID) (int, error) {
	snap, err := u.loadSnapshot(dbctx.Context{Ctx: ctx}, studentID, courseID)
	if err != nil {
		return 0, err
	}
	return snap.CourseProgress(), nil
}
