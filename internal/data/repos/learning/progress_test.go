package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
)

func TestProgressRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProgressRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "progress-"+uuid.NewString()+"@example.com")
	c := testutil.SeedCourse(t, ctx, tx, "Course")
	m := testutil.SeedModule(t, ctx, tx, c.ID, 1)
	l := testutil.SeedLesson(t, ctx, tx, m.ID, 1)

	inserted, err := repo.CreateIfMissing(dbc, types.NewLessonProgress(u.ID, c.ID, m.ID, l.ID, types.ProgressInProgress))
	if err != nil || !inserted {
		t.Fatalf("CreateIfMissing: inserted=%v err=%v", inserted, err)
	}
	inserted, err = repo.CreateIfMissing(dbc, types.NewLessonProgress(u.ID, c.ID, m.ID, l.ID, types.ProgressNotStarted))
	if err != nil || inserted {
		t.Fatalf("CreateIfMissing second: inserted=%v err=%v", inserted, err)
	}
	got, err := repo.Get(dbc, u.ID, types.ScopeLesson, l.ID)
	if err != nil || got == nil || got.Status != types.ProgressInProgress {
		t.Fatalf("Get: got=%v err=%v", got, err)
	}
	if got.LessonID == nil || *got.LessonID != l.ID || got.ModuleID == nil || *got.ModuleID != m.ID {
		t.Fatalf("Get: key columns not persisted: %+v", got)
	}

	now := time.Now().UTC()
	done := types.NewLessonProgress(u.ID, c.ID, m.ID, l.ID, types.ProgressCompleted)
	done.CompletedAt = &now
	if err := repo.Upsert(dbc, done); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	rows, err := repo.ListByUserCourse(dbc, u.ID, c.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByUserCourse: err=%v len=%d", err, len(rows))
	}
	if rows[0].Status != types.ProgressCompleted || rows[0].CompletedAt == nil {
		t.Fatalf("Upsert did not update existing row: %+v", rows[0])
	}

	if n, err := repo.Promote(dbc, u.ID, types.ScopeLesson, l.ID, types.ProgressNotStarted, types.ProgressInProgress); err != nil || n != 0 {
		t.Fatalf("Promote on completed row: n=%d err=%v", n, err)
	}

	if _, err := repo.CreateIfMissing(dbc, types.NewCourseProgress(u.ID, c.ID, types.ProgressInProgress)); err != nil {
		t.Fatalf("CreateIfMissing course: %v", err)
	}
	if rows, err := repo.ListCourseRecordsByUser(dbc, u.ID); err != nil || len(rows) != 1 || rows[0].Scope != types.ScopeCourse {
		t.Fatalf("ListCourseRecordsByUser: err=%v rows=%v", err, rows)
	}
	if got, err := repo.Get(dbc, u.ID, types.ScopeModule, m.ID); err != nil || got != nil {
		t.Fatalf("Get missing module row: got=%v err=%v", got, err)
	}
}
