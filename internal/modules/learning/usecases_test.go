package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dataagg "github.com/yungbote/lms-backend/internal/data/aggregates"
	"github.com/yungbote/lms-backend/internal/data/repos"
	"github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
)

func newUsecases(t *testing.T, db *gorm.DB) Usecases {
	t.Helper()
	log := testutil.Logger(t)
	return New(UsecasesDeps{
		DB:           db,
		Log:          log,
		Users:        repos.NewUserRepo(db, log),
		Courses:      repos.NewCourseRepo(db, log),
		Modules:      repos.NewModuleRepo(db, log),
		Lessons:      repos.NewLessonRepo(db, log),
		Quizzes:      repos.NewQuizRepo(db, log),
		Questions:    repos.NewQuestionRepo(db, log),
		Progress:     repos.NewProgressRepo(db, log),
		Attempts:     repos.NewQuizAttemptRepo(db, log),
		Answers:      repos.NewUserAnswerRepo(db, log),
		Certificates: repos.NewCertificateRepo(db, log),
		Write:        dataagg.BaseDeps{DB: db, Log: log},
		Certs:        CertificateConfig{CodePrefix: "LM", VerifyBaseURL: "https://lms.test/"},
	})
}

// courseFixture is two modules of two lessons, each with a module quiz at
// threshold 70, and a final quiz on the second module. Every quiz has five
// one-point questions.
type courseFixture struct {
	uc        Usecases
	db        *gorm.DB
	student   *types.User
	course    *types.Course
	m1, m2    *types.Module
	l1, l2    []*types.Lesson
	q1, q2    *types.Quiz
	final     *types.Quiz
	questions map[uuid.UUID][]*types.Question
}

func newCourseFixture(t *testing.T) *courseFixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.DB(t)
	f := &courseFixture{uc: newUsecases(t, db), db: db, questions: map[uuid.UUID][]*types.Question{}}
	f.student = testutil.SeedUser(t, ctx, db, "student-"+uuid.NewString()+"@example.com")
	f.course = testutil.SeedCourse(t, ctx, db, "Course C")
	f.m1 = testutil.SeedModule(t, ctx, db, f.course.ID, 1)
	f.m2 = testutil.SeedModule(t, ctx, db, f.course.ID, 2)
	for i := 1; i <= 2; i++ {
		f.l1 = append(f.l1, testutil.SeedLesson(t, ctx, db, f.m1.ID, i))
		f.l2 = append(f.l2, testutil.SeedLesson(t, ctx, db, f.m2.ID, i))
	}
	f.q1 = testutil.SeedQuiz(t, ctx, db, f.m1.ID, types.QuizTypeModule, 70)
	f.q2 = testutil.SeedQuiz(t, ctx, db, f.m2.ID, types.QuizTypeModule, 70)
	f.final = testutil.SeedQuiz(t, ctx, db, f.m2.ID, types.QuizTypeFinal, 70)
	for _, q := range []*types.Quiz{f.q1, f.q2, f.final} {
		for i := 1; i <= 5; i++ {
			f.questions[q.ID] = append(f.questions[q.ID], testutil.SeedQuestion(t, ctx, db, q.ID, i, 1, 3, 0))
		}
	}
	return f
}

func (f *courseFixture) enroll(t *testing.T) {
	t.Helper()
	if _, err := f.uc.Enroll(context.Background(), EnrollInput{StudentID: f.student.ID, CourseID: f.course.ID}); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
}

func (f *courseFixture) complete(t *testing.T, lessons ...*types.Lesson) CompleteLessonOutput {
	t.Helper()
	var out CompleteLessonOutput
	for _, l := range lessons {
		var err error
		out, err = f.uc.CompleteLesson(context.Background(), LessonInput{StudentID: f.student.ID, LessonID: l.ID})
		if err != nil {
			t.Fatalf("CompleteLesson(%s): %v", l.Title, err)
		}
	}
	return out
}

// take starts an attempt and answers the first `correct` questions right and
// the rest wrong.
func (f *courseFixture) take(t *testing.T, quiz *types.Quiz, correct int) SubmitAttemptOutput {
	t.Helper()
	ctx := context.Background()
	started, err := f.uc.StartAttempt(ctx, StartAttemptInput{StudentID: f.student.ID, QuizID: quiz.ID})
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	for i, q := range f.questions[quiz.ID] {
		sel := testutil.WrongOption(q)
		if i < correct {
			sel = testutil.CorrectOption(q)
		}
		if _, err := f.uc.RecordAnswer(ctx, RecordAnswerInput{
			StudentID:        f.student.ID,
			AttemptID:        started.Attempt.ID,
			QuestionID:       q.ID,
			SelectedOptionID: &sel,
		}); err != nil {
			t.Fatalf("RecordAnswer: %v", err)
		}
	}
	out, err := f.uc.SubmitAttempt(ctx, SubmitAttemptInput{StudentID: f.student.ID, AttemptID: started.Attempt.ID})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	return out
}

// sameInstant tolerates the microsecond precision of postgres timestamps.
func sameInstant(a, b time.Time) bool {
	d := a.Sub(b)
	return d > -time.Microsecond && d < time.Microsecond
}

func (f *courseFixture) certificateCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&types.Certificate{}).Where("user_id = ? AND course_id = ?", f.student.ID, f.course.ID).Count(&n).Error; err != nil {
		t.Fatalf("count certificates: %v", err)
	}
	return n
}

func TestCourseCompletionEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newCourseFixture(t)
	f.enroll(t)

	f.complete(t, f.l1...)
	res := f.take(t, f.q1, 4)
	if res.Result.Score != 80 || !res.Result.Passed || !res.ModuleCompleted {
		t.Fatalf("module 1 quiz: %+v module_completed=%v", res.Result, res.ModuleCompleted)
	}
	if st, err := f.uc.ModuleStatus(ctx, f.student.ID, f.m1.ID); err != nil || st != "completed" {
		t.Fatalf("module 1 status: %s err=%v", st, err)
	}
	if st, err := f.uc.LessonStatus(ctx, f.student.ID, f.l2[0].ID); err != nil || st != "available" {
		t.Fatalf("module 2 first lesson: %s err=%v", st, err)
	}
	if p, _ := f.uc.CourseProgress(ctx, f.student.ID, f.course.ID); p != 50 {
		t.Fatalf("progress after module 1: %d", p)
	}

	f.complete(t, f.l2...)
	res = f.take(t, f.q2, 5)
	if !res.Result.Passed || res.ModuleCompleted || res.Certificate != nil {
		t.Fatalf("module 2 quiz with final pending: module_completed=%v cert=%+v", res.ModuleCompleted, res.Certificate)
	}
	res = f.take(t, f.final, 4)
	if !res.ModuleCompleted || res.CourseProgress != 100 {
		t.Fatalf("final quiz: module_completed=%v progress=%d", res.ModuleCompleted, res.CourseProgress)
	}
	if res.Certificate == nil || res.Certificate.Certificate == nil || res.Certificate.AlreadyIssued {
		t.Fatalf("expected a freshly issued certificate, got %+v", res.Certificate)
	}
	cert := res.Certificate.Certificate
	if cert.CertificateCode == "" || cert.VerificationURL != "https://lms.test/certificates/verify/"+cert.CertificateCode {
		t.Fatalf("certificate fields: code=%q url=%q", cert.CertificateCode, cert.VerificationURL)
	}
	if n := f.certificateCount(t); n != 1 {
		t.Fatalf("expected one certificate row, got %d", n)
	}

	overview, err := f.uc.CourseOverview(ctx, f.student.ID, f.course.ID)
	if err != nil || !overview.Completed || overview.Certificate == nil {
		t.Fatalf("CourseOverview: %+v err=%v", overview, err)
	}
	rec, err := repos.NewProgressRepo(f.db, testutil.Logger(t)).Get(dbctx.Of(ctx), f.student.ID, types.ScopeCourse, f.course.ID)
	if err != nil || rec == nil || rec.Status != types.ProgressCompleted || rec.CompletedAt == nil {
		t.Fatalf("course record: %+v err=%v", rec, err)
	}

	verified, err := f.uc.VerifyCertificate(ctx, cert.CertificateCode)
	if err != nil || verified.StudentName != "Ada Lovelace" || verified.CourseTitle != "Course C" {
		t.Fatalf("VerifyCertificate: %+v err=%v", verified, err)
	}
	if _, err := f.uc.VerifyCertificate(ctx, "LM-NOPE-NOPE-NOPE"); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown code: expected not_found, got %v", err)
	}
}

func TestCertificateIssuanceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newCourseFixture(t)
	f.enroll(t)

	early, err := f.uc.CheckAndIssueCertificate(ctx, CertificateInput{StudentID: f.student.ID, CourseID: f.course.ID})
	if err != nil || early.Eligible || early.Certificate != nil {
		t.Fatalf("incomplete course: %+v err=%v", early, err)
	}

	f.complete(t, f.l1...)
	f.take(t, f.q1, 5)
	f.complete(t, f.l2...)
	f.take(t, f.q2, 5)
	first := f.take(t, f.final, 5).Certificate
	if first == nil || first.Certificate == nil {
		t.Fatalf("expected certificate after final quiz")
	}

	again, err := f.uc.CheckAndIssueCertificate(ctx, CertificateInput{StudentID: f.student.ID, CourseID: f.course.ID})
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !again.AlreadyIssued || again.Certificate.CertificateCode != first.Certificate.CertificateCode {
		t.Fatalf("second check: %+v", again)
	}
	if !sameInstant(again.Certificate.IssuedAt, first.Certificate.IssuedAt) {
		t.Fatalf("issued_at changed: %v -> %v", first.Certificate.IssuedAt, again.Certificate.IssuedAt)
	}
	// passing the final again goes through the issuer once more
	if res := f.take(t, f.final, 5); res.Certificate == nil || !res.Certificate.AlreadyIssued {
		t.Fatalf("retake: %+v", res.Certificate)
	}
	if n := f.certificateCount(t); n != 1 {
		t.Fatalf("expected one certificate row, got %d", n)
	}

	list, err := f.uc.ListCertificates(ctx, f.student.ID)
	if err != nil || len(list) != 1 || list[0].CourseTitle != "Course C" {
		t.Fatalf("ListCertificates: %+v err=%v", list, err)
	}
}

func TestCertificateForCourseWithoutQuizzes(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	uc := newUsecases(t, db)
	student := testutil.SeedUser(t, ctx, db, "solo-"+uuid.NewString()+"@example.com")
	course := testutil.SeedCourse(t, ctx, db, "Reading only")
	m := testutil.SeedModule(t, ctx, db, course.ID, 1)
	l := testutil.SeedLesson(t, ctx, db, m.ID, 1)

	if _, err := uc.Enroll(ctx, EnrollInput{StudentID: student.ID, CourseID: course.ID}); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	out, err := uc.CompleteLesson(ctx, LessonInput{StudentID: student.ID, LessonID: l.ID})
	if err != nil {
		t.Fatalf("CompleteLesson: %v", err)
	}
	if !out.ModuleCompleted || out.CourseProgress != 100 {
		t.Fatalf("quiz-less module: %+v", out)
	}
	if out.Certificate == nil || out.Certificate.Certificate == nil || out.CertificatePending {
		t.Fatalf("expected certificate after last lesson, got %+v", out.Certificate)
	}
}

func TestLessonGating(t *testing.T) {
	ctx := context.Background()
	f := newCourseFixture(t)
	in := func(l *types.Lesson) LessonInput { return LessonInput{StudentID: f.student.ID, LessonID: l.ID} }

	if _, err := f.uc.CompleteLesson(ctx, in(f.l1[0])); !domainagg.IsCode(err, domainagg.CodeNotAvailable) {
		t.Fatalf("before enrollment: expected not_available, got %v", err)
	}
	f.enroll(t)
	if _, err := f.uc.CompleteLesson(ctx, in(f.l1[1])); !domainagg.IsCode(err, domainagg.CodeNotAvailable) {
		t.Fatalf("second lesson first: expected not_available, got %v", err)
	}
	if _, err := f.uc.ViewLesson(ctx, in(f.l2[0])); !domainagg.IsCode(err, domainagg.CodeNotAvailable) {
		t.Fatalf("lesson in locked module: expected not_available, got %v", err)
	}
	if _, err := f.uc.StartAttempt(ctx, StartAttemptInput{StudentID: f.student.ID, QuizID: f.q1.ID}); !domainagg.IsCode(err, domainagg.CodeNotAvailable) {
		t.Fatalf("quiz before lessons: expected not_available, got %v", err)
	}
	if _, err := f.uc.CompleteLesson(ctx, in(&types.Lesson{ID: uuid.New()})); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown lesson: expected not_found, got %v", err)
	}

	f.complete(t, f.l1...)
	// lessons done, quiz pending: module 2 stays locked
	if _, err := f.uc.ModuleView(ctx, f.student.ID, f.m2.ID); !domainagg.IsCode(err, domainagg.CodeNotAvailable) {
		t.Fatalf("module 2 with quiz pending: expected not_available, got %v", err)
	}
	view, err := f.uc.ModuleView(ctx, f.student.ID, f.m1.ID)
	if err != nil {
		t.Fatalf("ModuleView: %v", err)
	}
	if view.Status != "available" || len(view.Lessons) != 2 || len(view.Quizzes) != 1 || !view.Quizzes[0].Unlocked {
		t.Fatalf("ModuleView: %+v", view)
	}
}

func TestLatestCompletedAttemptDrivesModuleStatus(t *testing.T) {
	ctx := context.Background()
	f := newCourseFixture(t)
	f.enroll(t)
	f.complete(t, f.l1...)

	moduleStatus := func(m *types.Module) string {
		t.Helper()
		st, err := f.uc.ModuleStatus(ctx, f.student.ID, m.ID)
		if err != nil {
			t.Fatalf("ModuleStatus(%s): %v", m.Title, err)
		}
		return string(st)
	}

	if res := f.take(t, f.q1, 5); !res.Result.Passed {
		t.Fatalf("first attempt should pass: %+v", res.Result)
	}
	if got := moduleStatus(f.m1); got != "completed" {
		t.Fatalf("module 1 after pass: %s", got)
	}

	if res := f.take(t, f.q1, 0); res.Result.Passed || res.Result.Score != 0 {
		t.Fatalf("retake should fail: %+v", res.Result)
	}
	if got := moduleStatus(f.m1); got != "available" {
		t.Fatalf("module 1 after failed retake: %s", got)
	}
	if got := moduleStatus(f.m2); got != "locked" {
		t.Fatalf("module 2 after failed retake: %s", got)
	}
	if _, err := f.uc.ViewLesson(ctx, LessonInput{StudentID: f.student.ID, LessonID: f.l2[0].ID}); !domainagg.IsCode(err, domainagg.CodeNotAvailable) {
		t.Fatalf("module 2 lesson after failed retake: expected not_available, got %v", err)
	}
	rec, err := f.uc.deps.Progress.Get(dbctx.Context{Ctx: ctx}, f.student.ID, types.ScopeModule, f.m1.ID)
	if err != nil || rec == nil || rec.Status != types.ProgressCompleted {
		t.Fatalf("module record should stay completed: %+v err=%v", rec, err)
	}

	if res := f.take(t, f.q1, 4); !res.Result.Passed {
		t.Fatalf("third attempt should pass: %+v", res.Result)
	}
	if got := moduleStatus(f.m1); got != "completed" {
		t.Fatalf("module 1 after passing again: %s", got)
	}

	// starting twice abandons the first retake with a zero score
	for i := 0; i < 2; i++ {
		if _, err := f.uc.StartAttempt(ctx, StartAttemptInput{StudentID: f.student.ID, QuizID: f.q1.ID}); err != nil {
			t.Fatalf("StartAttempt %d: %v", i, err)
		}
	}
	if got := moduleStatus(f.m1); got != "available" {
		t.Fatalf("module 1 after abandoned retake: %s", got)
	}
}

func TestCompleteLessonIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newCourseFixture(t)
	f.enroll(t)
	in := LessonInput{StudentID: f.student.ID, LessonID: f.l1[0].ID}

	first, err := f.uc.CompleteLesson(ctx, in)
	if err != nil || first.AlreadyCompleted || first.Lesson == nil || first.Lesson.CompletedAt == nil {
		t.Fatalf("first complete: %+v err=%v", first, err)
	}
	second, err := f.uc.CompleteLesson(ctx, in)
	if err != nil || !second.AlreadyCompleted {
		t.Fatalf("second complete: %+v err=%v", second, err)
	}
	if second.Lesson.CompletedAt == nil || !sameInstant(*second.Lesson.CompletedAt, *first.Lesson.CompletedAt) {
		t.Fatalf("completed_at moved: %v -> %v", first.Lesson.CompletedAt, second.Lesson.CompletedAt)
	}
}

func TestViewLessonStartsProgress(t *testing.T) {
	ctx := context.Background()
	f := newCourseFixture(t)
	f.enroll(t)

	out, err := f.uc.ViewLesson(ctx, LessonInput{StudentID: f.student.ID, LessonID: f.l1[0].ID})
	if err != nil {
		t.Fatalf("ViewLesson: %v", err)
	}
	if out.Progress == nil || out.Progress.Status != types.ProgressInProgress {
		t.Fatalf("first view should start the lesson: %+v", out.Progress)
	}
	if out.PrevLessonID != nil || out.NextLessonID == nil || *out.NextLessonID != f.l1[1].ID {
		t.Fatalf("navigation: prev=%v next=%v", out.PrevLessonID, out.NextLessonID)
	}
	if out.Lesson == nil || out.Lesson.Content == "" || out.QuizUnlocked {
		t.Fatalf("lesson payload: %+v", out)
	}

	// viewing a completed lesson keeps it completed
	f.complete(t, f.l1[0])
	out, err = f.uc.ViewLesson(ctx, LessonInput{StudentID: f.student.ID, LessonID: f.l1[0].ID})
	if err != nil || out.Status != "completed" || out.Progress.Status != types.ProgressCompleted {
		t.Fatalf("view after completion: %+v err=%v", out, err)
	}
}

func TestStartAttemptAbandonsOpenAttempt(t *testing.T) {
	ctx := context.Background()
	f := newCourseFixture(t)
	f.enroll(t)
	f.complete(t, f.l1...)

	first, err := f.uc.StartAttempt(ctx, StartAttemptInput{StudentID: f.student.ID, QuizID: f.q1.ID})
	if err != nil || first.Attempt.AttemptNumber != 1 || first.Attempt.TotalQuestions != 5 {
		t.Fatalf("first start: %+v err=%v", first.Attempt, err)
	}
	q := f.questions[f.q1.ID][0]
	sel := testutil.CorrectOption(q)
	if _, err := f.uc.RecordAnswer(ctx, RecordAnswerInput{StudentID: f.student.ID, AttemptID: first.Attempt.ID, QuestionID: q.ID, SelectedOptionID: &sel}); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}

	second, err := f.uc.StartAttempt(ctx, StartAttemptInput{StudentID: f.student.ID, QuizID: f.q1.ID})
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if second.Abandoned != 1 || second.Attempt.AttemptNumber != 2 {
		t.Fatalf("second start: abandoned=%d number=%d", second.Abandoned, second.Attempt.AttemptNumber)
	}

	history, err := f.uc.ListAttempts(ctx, f.student.ID, f.q1.ID)
	if err != nil || len(history) != 2 {
		t.Fatalf("ListAttempts: len=%d err=%v", len(history), err)
	}
	old := history[1]
	if old.ID != first.Attempt.ID || old.Open() || old.Score != 0 || old.Passed || old.CorrectAnswers != 0 {
		t.Fatalf("abandoned attempt: %+v", old)
	}
	if _, err := f.uc.SubmitAttempt(ctx, SubmitAttemptInput{StudentID: f.student.ID, AttemptID: first.Attempt.ID}); !domainagg.IsCode(err, domainagg.CodeInvalidAttemptState) {
		t.Fatalf("submit abandoned: expected invalid_attempt_state, got %v", err)
	}
}

func TestWeightedScoringAndSubmitRules(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	uc := newUsecases(t, db)
	student := testutil.SeedUser(t, ctx, db, "weights-"+uuid.NewString()+"@example.com")
	course := testutil.SeedCourse(t, ctx, db, "Weights")
	m := testutil.SeedModule(t, ctx, db, course.ID, 1)
	quiz := testutil.SeedQuiz(t, ctx, db, m.ID, types.QuizTypeModule, 70)
	qs := []*types.Question{
		testutil.SeedQuestion(t, ctx, db, quiz.ID, 1, 1, 2, 0),
		testutil.SeedQuestion(t, ctx, db, quiz.ID, 2, 1, 2, 0),
		testutil.SeedQuestion(t, ctx, db, quiz.ID, 3, 2, 2, 0),
	}
	// a module without lessons has its quizzes unlocked from the start
	if _, err := uc.Enroll(ctx, EnrollInput{StudentID: student.ID, CourseID: course.ID}); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	started, err := uc.StartAttempt(ctx, StartAttemptInput{StudentID: student.ID, QuizID: quiz.ID})
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	attemptID := started.Attempt.ID

	if _, err := uc.SubmitAttempt(ctx, SubmitAttemptInput{StudentID: student.ID, AttemptID: attemptID}); !domainagg.IsCode(err, domainagg.CodeNoAnswers) {
		t.Fatalf("empty submit: expected no_answers, got %v", err)
	}

	record := func(q *types.Question, opt uuid.UUID) {
		t.Helper()
		if _, err := uc.RecordAnswer(ctx, RecordAnswerInput{StudentID: student.ID, AttemptID: attemptID, QuestionID: q.ID, SelectedOptionID: &opt}); err != nil {
			t.Fatalf("RecordAnswer: %v", err)
		}
	}
	record(qs[0], testutil.CorrectOption(qs[0]))
	record(qs[0], testutil.WrongOption(qs[0])) // overwritten before submit
	record(qs[1], testutil.WrongOption(qs[1]))
	record(qs[2], testutil.CorrectOption(qs[2]))

	stranger := uuid.New()
	if _, err := uc.SubmitAttempt(ctx, SubmitAttemptInput{StudentID: stranger, AttemptID: attemptID}); !domainagg.IsCode(err, domainagg.CodeInvalidAttemptState) {
		t.Fatalf("foreign submit: expected invalid_attempt_state, got %v", err)
	}

	view, err := uc.AttemptView(ctx, AttemptViewInput{StudentID: student.ID, AttemptID: attemptID, QuestionIndex: 99})
	if err != nil || view.QuestionIndex != 2 || len(view.Answered) != 3 || view.SelectedOptionID == nil {
		t.Fatalf("AttemptView: %+v err=%v", view, err)
	}

	out, err := uc.SubmitAttempt(ctx, SubmitAttemptInput{StudentID: student.ID, AttemptID: attemptID})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if out.Result.Score != 50 || out.Result.Passed || out.Result.CorrectAnswers != 1 || out.ModuleCompleted {
		t.Fatalf("weighted result: %+v module_completed=%v", out.Result, out.ModuleCompleted)
	}

	if _, err := uc.SubmitAttempt(ctx, SubmitAttemptInput{StudentID: student.ID, AttemptID: attemptID}); !domainagg.IsCode(err, domainagg.CodeInvalidAttemptState) {
		t.Fatalf("resubmit: expected invalid_attempt_state, got %v", err)
	}
	opt := testutil.CorrectOption(qs[1])
	if _, err := uc.RecordAnswer(ctx, RecordAnswerInput{StudentID: student.ID, AttemptID: attemptID, QuestionID: qs[1].ID, SelectedOptionID: &opt}); !domainagg.IsCode(err, domainagg.CodeInvalidAttemptState) {
		t.Fatalf("answer after submit: expected invalid_attempt_state, got %v", err)
	}

	result, err := uc.AttemptResult(ctx, student.ID, attemptID)
	if err != nil || len(result.Questions) != 3 {
		t.Fatalf("AttemptResult: %+v err=%v", result, err)
	}
	if result.Questions[0].IsCorrect || !result.Questions[2].IsCorrect || result.Questions[2].PointsEarned != 2 {
		t.Fatalf("per-question result: %+v", result.Questions)
	}
	if result.Questions[1].CorrectOptionID == nil || *result.Questions[1].CorrectOptionID != testutil.CorrectOption(qs[1]) {
		t.Fatalf("correct option not revealed: %+v", result.Questions[1])
	}
}

func TestRecordAnswerRejectsForeignQuestion(t *testing.T) {
	ctx := context.Background()
	f := newCourseFixture(t)
	f.enroll(t)
	f.complete(t, f.l1...)

	started, err := f.uc.StartAttempt(ctx, StartAttemptInput{StudentID: f.student.ID, QuizID: f.q1.ID})
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	other := f.questions[f.q2.ID][0]
	sel := testutil.CorrectOption(other)
	_, err = f.uc.RecordAnswer(ctx, RecordAnswerInput{StudentID: f.student.ID, AttemptID: started.Attempt.ID, QuestionID: other.ID, SelectedOptionID: &sel})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("question from another quiz: expected not_found, got %v", err)
	}
}

func TestListCoursesReportsProgress(t *testing.T) {
	ctx := context.Background()
	f := newCourseFixture(t)

	list, err := f.uc.ListCourses(ctx, f.student.ID)
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	var mine *CourseSummary
	for i := range list {
		if list[i].Course.ID == f.course.ID {
			mine = &list[i]
		}
	}
	if mine == nil || mine.Enrolled || mine.ModuleCount != 2 {
		t.Fatalf("before enrollment: %+v", mine)
	}

	f.enroll(t)
	f.complete(t, f.l1...)
	f.take(t, f.q1, 5)
	list, err = f.uc.ListCourses(ctx, f.student.ID)
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	for _, s := range list {
		if s.Course.ID == f.course.ID && (!s.Enrolled || s.Progress.Percent != 50 || s.Progress.Unavailable) {
			t.Fatalf("after module 1: %+v", s)
		}
	}
}
