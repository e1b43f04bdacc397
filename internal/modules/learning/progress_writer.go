package learning

import (
	"context"

	"github.com/google/uuid"

	dataagg "github.com/yungbote/lms-backend/internal/data/aggregates"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/modules/learning/eligibility"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
)

type EnrollInput struct {
	StudentID uuid.UUID
	CourseID  uuid.UUID
}

type EnrollOutput struct {
	Progress *types.UserProgress `json:"progress"`
	Created  bool                `json:"created"`
}

// Enroll creates the course-level record. Enrolling twice is a no-op.
func (u Usecases) Enroll(ctx context.Context, in EnrollInput) (EnrollOutput, error) {
	const op = "learning.enroll"
	var out EnrollOutput
	if in.StudentID == uuid.Nil || in.CourseID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "student and course are required", nil)
	}
	err := dataagg.ExecuteWrite(ctx, u.deps.Write, op, func(dbc dbctx.Context) error {
		course, err := u.deps.Courses.GetByID(dbc, in.CourseID)
		if err != nil {
			return err
		}
		if course == nil || !course.Active {
			return domainagg.NotFound(op, "course")
		}
		created, err := u.deps.Progress.CreateIfMissing(dbc, types.NewCourseProgress(in.StudentID, in.CourseID, types.ProgressInProgress))
		if err != nil {
			return err
		}
		row, err := u.deps.Progress.Get(dbc, in.StudentID, types.ScopeCourse, in.CourseID)
		if err != nil {
			return err
		}
		out = EnrollOutput{Progress: row, Created: created}
		return nil
	})
	if err != nil {
		return EnrollOutput{}, err
	}
	if out.Created {
		u.deps.Log.Info("student enrolled", "student_id", in.StudentID, "course_id", in.CourseID)
	}
	return out, nil
}

type LessonInput struct {
	StudentID uuid.UUID
	LessonID  uuid.UUID
}

type EnsureStartedOutput struct {
	Status   eligibility.Status  `json:"status"`
	Progress *types.UserProgress `json:"progress"`
}

// EnsureStarted is the first-view write: an accessible lesson without a record
// gets an in_progress one, and a not_started record is promoted.
func (u Usecases) EnsureStarted(ctx context.Context, in LessonInput) (EnsureStartedOutput, error) {
	const op = "learning.ensure_started"
	var out EnsureStartedOutput
	err := dataagg.ExecuteWrite(ctx, u.deps.Write, op, func(dbc dbctx.Context) error {
		var err error
		out, _, err = u.ensureStarted(dbc, op, in)
		return err
	})
	return out, err
}

func (u Usecases) ensureStarted(dbc dbctx.Context, op string, in LessonInput) (EnsureStartedOutput, *eligibility.Snapshot, error) {
	l, m, err := u.lessonOf(dbc, op, in.LessonID)
	if err != nil {
		return EnsureStartedOutput{}, nil, err
	}
	snap, err := u.loadSnapshot(dbc, in.StudentID, m.CourseID)
	if err != nil {
		return EnsureStartedOutput{}, nil, err
	}
	status, err := snap.LessonAccessible(l.ID)
	if err != nil {
		return EnsureStartedOutput{}, nil, err
	}
	if _, err := u.deps.Progress.CreateIfMissing(dbc, types.NewLessonProgress(in.StudentID, m.CourseID, m.ID, l.ID, types.ProgressInProgress)); err != nil {
		return EnsureStartedOutput{}, nil, err
	}
	if _, err := u.deps.Progress.Promote(dbc, in.StudentID, types.ScopeLesson, l.ID, types.ProgressNotStarted, types.ProgressInProgress); err != nil {
		return EnsureStartedOutput{}, nil, err
	}
	row, err := u.deps.Progress.Get(dbc, in.StudentID, types.ScopeLesson, l.ID)
	if err != nil {
		return EnsureStartedOutput{}, nil, err
	}
	if row != nil {
		snap.LessonRecords[l.ID] = row
	}
	return EnsureStartedOutput{Status: status, Progress: row}, snap, nil
}

type CompleteLessonOutput struct {
	Lesson           *types.UserProgress `json:"lesson_progress"`
	AlreadyCompleted bool                `json:"already_completed"`
	ModuleCompleted  bool                `json:"module_completed"`
	CourseProgress   int                 `json:"course_progress"`
	Certificate      *IssueResult        `json:"certificate,omitempty"`
	// CertificatePending is set when the course is complete but the issuer
	// failed after the lesson write committed. The failure is logged.
	CertificatePending bool `json:"certificate_pending,omitempty"`
}

// CompleteLesson re-checks availability inside the write transaction, marks
// the lesson completed and mirrors module completion. Completing an already
// completed lesson succeeds without changing anything.
func (u Usecases) CompleteLesson(ctx context.Context, in LessonInput) (CompleteLessonOutput, error) {
	const op = "learning.complete_lesson"
	var (
		out            CompleteLessonOutput
		courseID       uuid.UUID
		courseComplete bool
	)
	err := dataagg.ExecuteWrite(ctx, u.deps.Write, op, func(dbc dbctx.Context) error {
		l, m, err := u.lessonOf(dbc, op, in.LessonID)
		if err != nil {
			return err
		}
		courseID = m.CourseID
		snap, err := u.loadSnapshot(dbc, in.StudentID, m.CourseID)
		if err != nil {
			return err
		}
		status, err := snap.LessonAccessible(l.ID)
		if err != nil {
			return err
		}
		if status == eligibility.Completed {
			out.AlreadyCompleted = true
			out.Lesson = snap.LessonRecords[l.ID]
			out.CourseProgress = snap.CourseProgress()
			courseComplete = snap.CourseComplete()
			return nil
		}

		now := u.now()
		row := types.NewLessonProgress(in.StudentID, m.CourseID, m.ID, l.ID, types.ProgressCompleted)
		row.CompletedAt = &now
		if err := u.deps.Progress.Upsert(dbc, row); err != nil {
			return err
		}
		snap.LessonRecords[l.ID] = row
		out.Lesson = row

		done, err := u.markModuleComplete(dbc, snap, m)
		if err != nil {
			return err
		}
		out.ModuleCompleted = done
		out.CourseProgress = snap.CourseProgress()
		courseComplete = snap.CourseComplete()
		return nil
	})
	if err != nil {
		return CompleteLessonOutput{}, err
	}
	if !out.AlreadyCompleted {
		u.deps.Metrics.IncLessonCompleted()
	}
	if courseComplete {
		out.Certificate, out.CertificatePending = u.issueAfterWrite(ctx, op, in.StudentID, courseID)
	}
	return out, nil
}

// markModuleComplete writes the module-level record once the module's
// computed status is completed. An existing completed record is left alone so
// completed_at keeps its first value.
func (u Usecases) markModuleComplete(dbc dbctx.Context, snap *eligibility.Snapshot, m *types.Module) (bool, error) {
	if !snap.ModuleComplete(m.ID) {
		return false, nil
	}
	if rec := snap.ModuleRecords[m.ID]; rec != nil && rec.Status == types.ProgressCompleted {
		return false, nil
	}
	now := u.now()
	row := types.NewModuleProgress(snap.StudentID, m.CourseID, m.ID, types.ProgressCompleted)
	row.CompletedAt = &now
	if err := u.deps.Progress.Upsert(dbc, row); err != nil {
		return false, err
	}
	snap.ModuleRecords[m.ID] = row
	u.deps.Log.Debug("module completed", "student_id", snap.StudentID, "module_id", m.ID)
	return true, nil
}

// issueAfterWrite runs the certificate check once a completing write has
// committed. A failure does not undo the write; it is logged and reported as
// pending so the caller can re-check.
func (u Usecases) issueAfterWrite(ctx context.Context, op string, studentID, courseID uuid.UUID) (*IssueResult, bool) {
	res, err := u.CheckAndIssueCertificate(ctx, CertificateInput{StudentID: studentID, CourseID: courseID})
	if err != nil {
		u.deps.Log.Error("certificate check failed after write", "op", op, "student_id", studentID, "course_id", courseID, "error", err)
		return nil, true
	}
	return &res, false
}
