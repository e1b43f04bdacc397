package learning

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	dataagg "github.com/yungbote/lms-backend/internal/data/aggregates"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/modules/learning/eligibility"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
)

// loadSnapshot reads the course tree and the student's progress for one
// course. Inside a transaction the reads run sequentially on the tx; outside
// one they fan out.
func (u Usecases) loadSnapshot(dbc dbctx.Context, studentID, courseID uuid.UUID) (*eligibility.Snapshot, error) {
	const op = "learning.load_snapshot"

	course, err := u.deps.Courses.GetByID(dbc, courseID)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	if course == nil || !course.Active {
		return nil, domainagg.NotFound(op, "course")
	}
	modules, err := u.deps.Modules.ListByCourseID(dbc, courseID)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	moduleIDs := make([]uuid.UUID, 0, len(modules))
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
	}

	var (
		lessons  []*types.Lesson
		quizzes  []*types.Quiz
		progress []*types.UserProgress
	)
	loadLessons := func(c dbctx.Context) (err error) {
		lessons, err = u.deps.Lessons.ListByModuleIDs(c, moduleIDs)
		return err
	}
	loadQuizzes := func(c dbctx.Context) (err error) {
		quizzes, err = u.deps.Quizzes.ListByModuleIDs(c, moduleIDs)
		return err
	}
	loadProgress := func(c dbctx.Context) (err error) {
		progress, err = u.deps.Progress.ListByUserCourse(c, studentID, courseID)
		return err
	}

	if dbc.Tx != nil {
		for _, load := range []func(dbctx.Context) error{loadLessons, loadQuizzes, loadProgress} {
			if err := load(dbc); err != nil {
				return nil, dataagg.MapError(op, err)
			}
		}
	} else {
		ctx := dbc.Ctx
		if ctx == nil {
			ctx = context.Background()
		}
		g, gctx := errgroup.WithContext(ctx)
		for _, load := range []func(dbctx.Context) error{loadLessons, loadQuizzes, loadProgress} {
			load := load
			g.Go(func() error { return load(dbctx.Context{Ctx: gctx}) })
		}
		if err := g.Wait(); err != nil {
			return nil, dataagg.MapError(op, err)
		}
	}

	quizIDs := make([]uuid.UUID, 0, len(quizzes))
	for _, q := range quizzes {
		quizIDs = append(quizIDs, q.ID)
	}
	passed, err := u.deps.Attempts.PassedQuizIDs(dbc, studentID, quizIDs)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	return eligibility.NewSnapshot(studentID, course, modules, lessons, quizzes, progress, passed), nil
}

// moduleOf resolves a module row and refuses inactive or missing ones.
func (u Usecases) moduleOf(dbc dbctx.Context, op string, moduleID uuid.UUID) (*types.Module, error) {
	m, err := u.deps.Modules.GetByID(dbc, moduleID)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	if m == nil || !m.Active {
		return nil, domainagg.NotFound(op, "module")
	}
	return m, nil
}

func (u Usecases) lessonOf(dbc dbctx.Context, op string, lessonID uuid.UUID) (*types.Lesson, *types.Module, error) {
	l, err := u.deps.Lessons.GetByID(dbc, lessonID)
	if err != nil {
		return nil, nil, dataagg.MapError(op, err)
	}
	if l == nil {
		return nil, nil, domainagg.NotFound(op, "lesson")
	}
	m, err := u.moduleOf(dbc, op, l.ModuleID)
	if err != nil {
		return nil, nil, err
	}
	return l, m, nil
}

func (u Usecases) quizOf(dbc dbctx.Context, op string, quizID uuid.UUID) (*types.Quiz, *types.Module, error) {
	q, err := u.deps.Quizzes.GetByID(dbc, quizID)
	if err != nil {
		return nil, nil, dataagg.MapError(op, err)
	}
	if q == nil {
		return nil, nil, domainagg.NotFound(op, "quiz")
	}
	m, err := u.moduleOf(dbc, op, q.ModuleID)
	if err != nil {
		return nil, nil, err
	}
	return q, m, nil
}
