package learning

import (
	"context"

	"github.com/google/uuid"

	dataagg "github.com/yungbote/lms-backend/internal/data/aggregates"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/modules/learning/eligibility"
	"github.com/yungbote/lms-backend/internal/modules/learning/scoring"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
)

// ProgressReading is a progress percentage for display. Unavailable is set
// when the figure could not be computed and the page should show a default.
type ProgressReading struct {
	Percent     int  `json:"percent"`
	Unavailable bool `json:"unavailable,omitempty"`
}

type CourseSummary struct {
	Course      *types.Course      `json:"course"`
	ModuleCount int                `json:"module_count"`
	Enrolled    bool               `json:"enrolled"`
	Progress    ProgressReading    `json:"progress"`
	Certificate *types.Certificate `json:"certificate,omitempty"`
}

// ListCourses returns the active catalog with the student's standing in each
// course. A course whose progress cannot be read is still listed.
func (u Usecases) ListCourses(ctx context.Context, studentID uuid.UUID) ([]CourseSummary, error) {
	const op = "learning.list_courses"
	dbc := dbctx.Context{Ctx: ctx}
	courses, err := u.deps.Courses.ListActive(dbc)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	ids := make([]uuid.UUID, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	counts, err := u.deps.Modules.CountByCourseIDs(dbc, ids)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}

	enrolled := map[uuid.UUID]bool{}
	certs := map[uuid.UUID]*types.Certificate{}
	if studentID != uuid.Nil {
		records, err := u.deps.Progress.ListCourseRecordsByUser(dbc, studentID)
		if err != nil {
			return nil, dataagg.MapError(op, err)
		}
		for _, r := range records {
			enrolled[r.CourseID] = true
		}
		issued, err := u.deps.Certificates.ListByUser(dbc, studentID)
		if err != nil {
			return nil, dataagg.MapError(op, err)
		}
		for _, c := range issued {
			certs[c.CourseID] = c
		}
	}

	out := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		s := CourseSummary{
			Course:      c,
			ModuleCount: counts[c.ID],
			Enrolled:    enrolled[c.ID],
			Certificate: certs[c.ID],
		}
		if s.Enrolled {
			s.Progress = u.readProgress(ctx, studentID, c.ID)
		}
		out = append(out, s)
	}
	return out, nil
}

func (u Usecases) readProgress(ctx context.Context, studentID, courseID uuid.UUID) ProgressReading {
	snap, err := u.loadSnapshot(dbctx.Context{Ctx: ctx}, studentID, courseID)
	if err != nil {
		u.deps.Log.Warn("course progress unavailable", "student_id", studentID, "course_id", courseID, "error", err)
		return ProgressReading{Unavailable: true}
	}
	return ProgressReading{Percent: snap.CourseProgress()}
}

type ModuleSummary struct {
	Module           *types.Module      `json:"module"`
	Status           eligibility.Status `json:"status"`
	LessonCount      int                `json:"lesson_count"`
	CompletedLessons int                `json:"completed_lessons"`
	QuizCount        int                `json:"quiz_count"`
}

type CourseOverviewOutput struct {
	Course      *types.Course      `json:"course"`
	Enrolled    bool               `json:"enrolled"`
	Progress    int                `json:"progress"`
	Completed   bool               `json:"completed"`
	Modules     []ModuleSummary    `json:"modules"`
	Certificate *types.Certificate `json:"certificate,omitempty"`
}

func (u Usecases) CourseOverview(ctx context.Context, studentID, courseID uuid.UUID) (CourseOverviewOutput, error) {
	const op = "learning.course_overview"
	dbc := dbctx.Context{Ctx: ctx}
	snap, err := u.loadSnapshot(dbc, studentID, courseID)
	if err != nil {
		return CourseOverviewOutput{}, err
	}
	out := CourseOverviewOutput{
		Course:    snap.Course,
		Enrolled:  snap.Enrolled(),
		Progress:  snap.CourseProgress(),
		Completed: snap.CourseComplete(),
		Modules:   make([]ModuleSummary, 0, len(snap.Modules)),
	}
	for _, m := range snap.Modules {
		status, err := snap.ModuleStatus(m.ID)
		if err != nil {
			return CourseOverviewOutput{}, err
		}
		ms := ModuleSummary{Module: m, Status: status, LessonCount: len(snap.Lessons[m.ID])}
		for _, l := range snap.Lessons[m.ID] {
			if rec := snap.LessonRecords[l.ID]; rec != nil && rec.Status == types.ProgressCompleted {
				ms.CompletedLessons++
			}
		}
		for _, q := range snap.Quizzes[m.ID] {
			if q.Active {
				ms.QuizCount++
			}
		}
		out.Modules = append(out.Modules, ms)
	}
	if studentID != uuid.Nil {
		cert, err := u.deps.Certificates.GetByUserCourse(dbc, studentID, courseID)
		if err != nil {
			return CourseOverviewOutput{}, dataagg.MapError(op, err)
		}
		out.Certificate = cert
	}
	return out, nil
}

type LessonSummary struct {
	ID                uuid.UUID          `json:"id"`
	Title             string             `json:"title"`
	OrderSequence     int                `json:"order_sequence"`
	EstimatedDuration int                `json:"estimated_duration"`
	Status            eligibility.Status `json:"status"`
}

type QuizSummary struct {
	Quiz          *types.Quiz        `json:"quiz"`
	Unlocked      bool               `json:"unlocked"`
	Passed        bool               `json:"passed"`
	AttemptCount  int                `json:"attempt_count"`
	BestScore     *int               `json:"best_score,omitempty"`
	LatestAttempt *types.QuizAttempt `json:"latest_attempt,omitempty"`
}

type ModuleViewOutput struct {
	Course  *types.Course      `json:"course"`
	Module  *types.Module      `json:"module"`
	Status  eligibility.Status `json:"status"`
	Lessons []LessonSummary    `json:"lessons"`
	Quizzes []QuizSummary      `json:"quizzes"`
}

// ModuleView lists a module's lessons with their status and its active quizzes
// with attempt history, final quizzes last. Locked modules are refused.
func (u Usecases) ModuleView(ctx context.Context, studentID, moduleID uuid.UUID) (ModuleViewOutput, error) {
	const op = "learning.module_view"
	dbc := dbctx.Context{Ctx: ctx}
	m, err := u.moduleOf(dbc, op, moduleID)
	if err != nil {
		return ModuleViewOutput{}, err
	}
	snap, err := u.loadSnapshot(dbc, studentID, m.CourseID)
	if err != nil {
		return ModuleViewOutput{}, err
	}
	if !snap.Enrolled() {
		return ModuleViewOutput{}, domainagg.NotAvailable(op, "not enrolled in course")
	}
	status, err := snap.ModuleStatus(m.ID)
	if err != nil {
		return ModuleViewOutput{}, err
	}
	if status == eligibility.Locked {
		return ModuleViewOutput{}, domainagg.NotAvailable(op, "module is locked")
	}
	unlocked, err := snap.QuizUnlocked(m.ID)
	if err != nil {
		return ModuleViewOutput{}, err
	}

	out := ModuleViewOutput{Course: snap.Course, Module: m, Status: status}
	for _, l := range snap.Lessons[m.ID] {
		ls, err := snap.LessonStatus(l.ID)
		if err != nil {
			return ModuleViewOutput{}, err
		}
		out.Lessons = append(out.Lessons, LessonSummary{
			ID:                l.ID,
			Title:             l.Title,
			OrderSequence:     l.OrderSequence,
			EstimatedDuration: l.EstimatedDuration,
			Status:            ls,
		})
	}
	for _, q := range snap.Quizzes[m.ID] {
		if !q.Active {
			continue
		}
		attempts, err := u.deps.Attempts.ListByUserQuiz(dbc, studentID, q.ID)
		if err != nil {
			return ModuleViewOutput{}, dataagg.MapError(op, err)
		}
		qs := QuizSummary{Quiz: q, Unlocked: unlocked, Passed: snap.PassedQuizzes[q.ID], AttemptCount: len(attempts)}
		if len(attempts) > 0 {
			qs.LatestAttempt = attempts[0]
		}
		for _, a := range attempts {
			if a.Open() {
				continue
			}
			if qs.BestScore == nil || a.Score > *qs.BestScore {
				score := a.Score
				qs.BestScore = &score
			}
		}
		out.Quizzes = append(out.Quizzes, qs)
	}
	return out, nil
}

type ViewLessonOutput struct {
	Course       *types.Course       `json:"course"`
	Module       *types.Module       `json:"module"`
	Lesson       *types.Lesson       `json:"lesson"`
	Status       eligibility.Status  `json:"status"`
	Progress     *types.UserProgress `json:"progress"`
	PrevLessonID *uuid.UUID          `json:"prev_lesson_id,omitempty"`
	NextLessonID *uuid.UUID          `json:"next_lesson_id,omitempty"`
	QuizUnlocked bool                `json:"quiz_unlocked"`
}

// ViewLesson returns lesson content for an accessible lesson and performs the
// first-view write.
func (u Usecases) ViewLesson(ctx context.Context, in LessonInput) (ViewLessonOutput, error) {
	const op = "learning.view_lesson"
	var out ViewLessonOutput
	err := dataagg.ExecuteWrite(ctx, u.deps.Write, op, func(dbc dbctx.Context) error {
		started, snap, err := u.ensureStarted(dbc, op, in)
		if err != nil {
			return err
		}
		m := snap.LessonModule(in.LessonID)
		out = ViewLessonOutput{
			Course:   snap.Course,
			Module:   m,
			Lesson:   snap.Lesson(in.LessonID),
			Status:   started.Status,
			Progress: started.Progress,
		}
		siblings := snap.Lessons[m.ID]
		for i, l := range siblings {
			if l.ID != in.LessonID {
				continue
			}
			if i > 0 {
				id := siblings[i-1].ID
				out.PrevLessonID = &id
			}
			if i+1 < len(siblings) {
				id := siblings[i+1].ID
				out.NextLessonID = &id
			}
		}
		out.QuizUnlocked, err = snap.QuizUnlocked(m.ID)
		return err
	})
	if err != nil {
		return ViewLessonOutput{}, err
	}
	return out, nil
}

type AttemptViewInput struct {
	StudentID uuid.UUID
	AttemptID uuid.UUID
	// QuestionIndex is zero-based and clamped to the quiz's questions.
	QuestionIndex int
}

type AttemptViewOutput struct {
	Attempt          *types.QuizAttempt `json:"attempt"`
	Quiz             *types.Quiz        `json:"quiz"`
	QuestionIndex    int                `json:"question_index"`
	QuestionCount    int                `json:"question_count"`
	Question         *types.Question    `json:"question"`
	SelectedOptionID *uuid.UUID         `json:"selected_option_id,omitempty"`
	AnswerText       string             `json:"answer_text,omitempty"`
	Answered         []uuid.UUID        `json:"answered"`
}

// AttemptView renders one question of an open attempt. Which question is
// current is a view parameter only.
func (u Usecases) AttemptView(ctx context.Context, in AttemptViewInput) (AttemptViewOutput, error) {
	const op = "learning.attempt_view"
	dbc := dbctx.Context{Ctx: ctx}
	st, err := u.readAttempt(dbc, op, in.AttemptID)
	if err != nil {
		return AttemptViewOutput{}, err
	}
	open, err := scoring.OpenFor(st, in.StudentID)
	if err != nil {
		return AttemptViewOutput{}, err
	}
	quiz, _, err := u.quizOf(dbc, op, open.Attempt.QuizID)
	if err != nil {
		return AttemptViewOutput{}, err
	}
	questions, err := u.deps.Questions.ListByQuizID(dbc, quiz.ID)
	if err != nil {
		return AttemptViewOutput{}, dataagg.MapError(op, err)
	}
	if len(questions) == 0 {
		return AttemptViewOutput{}, domainagg.NotAvailable(op, "quiz has no questions")
	}

	idx := in.QuestionIndex
	if idx < 0 {
		idx = 0
	}
	if idx >= len(questions) {
		idx = len(questions) - 1
	}
	q := questions[idx]
	out := AttemptViewOutput{
		Attempt:       open.Attempt,
		Quiz:          quiz,
		QuestionIndex: idx,
		QuestionCount: len(questions),
		Question:      q,
		Answered:      make([]uuid.UUID, 0, len(open.Answers)),
	}
	for _, qq := range questions {
		if _, ok := open.Answers[qq.ID]; ok {
			out.Answered = append(out.Answered, qq.ID)
		}
	}
	if a := open.Answers[q.ID]; a != nil {
		out.SelectedOptionID = a.SelectedOptionID
		out.AnswerText = a.AnswerText
	}
	return out, nil
}

type QuestionResult struct {
	QuestionID       uuid.UUID          `json:"question_id"`
	QuestionText     string             `json:"question_text"`
	QuestionType     types.QuestionType `json:"question_type"`
	Points           int                `json:"points"`
	SelectedOptionID *uuid.UUID         `json:"selected_option_id,omitempty"`
	CorrectOptionID  *uuid.UUID         `json:"correct_option_id,omitempty"`
	AnswerText       string             `json:"answer_text,omitempty"`
	Answered         bool               `json:"answered"`
	IsCorrect        bool               `json:"is_correct"`
	PointsEarned     int                `json:"points_earned"`
}

type AttemptResultOutput struct {
	Attempt       *types.QuizAttempt `json:"attempt"`
	Quiz          *types.Quiz        `json:"quiz"`
	PassThreshold int                `json:"pass_threshold"`
	Questions     []QuestionResult   `json:"questions"`
}

// AttemptResult shows a submitted attempt question by question, including the
// correct option.
func (u Usecases) AttemptResult(ctx context.Context, studentID, attemptID uuid.UUID) (AttemptResultOutput, error) {
	const op = "learning.attempt_result"
	dbc := dbctx.Context{Ctx: ctx}
	st, err := u.readAttempt(dbc, op, attemptID)
	if err != nil {
		return AttemptResultOutput{}, err
	}
	if st.AttemptRow().UserID != studentID {
		return AttemptResultOutput{}, domainagg.InvalidAttemptState(op, "attempt belongs to another student")
	}
	done, ok := st.(*scoring.Completed)
	if !ok {
		return AttemptResultOutput{}, domainagg.InvalidAttemptState(op, "attempt is still in progress")
	}
	quiz, err := u.deps.Quizzes.GetByID(dbc, done.Attempt.QuizID)
	if err != nil {
		return AttemptResultOutput{}, dataagg.MapError(op, err)
	}
	if quiz == nil {
		return AttemptResultOutput{}, domainagg.NotFound(op, "quiz")
	}
	questions, err := u.deps.Questions.ListByQuizID(dbc, quiz.ID)
	if err != nil {
		return AttemptResultOutput{}, dataagg.MapError(op, err)
	}

	out := AttemptResultOutput{Attempt: done.Attempt, Quiz: quiz, PassThreshold: quiz.PassThreshold}
	for _, q := range questions {
		qr := QuestionResult{QuestionID: q.ID, QuestionText: q.QuestionText, QuestionType: q.QuestionType, Points: q.Points}
		for _, o := range q.Options {
			if o.IsCorrect {
				id := o.ID
				qr.CorrectOptionID = &id
				break
			}
		}
		if a := done.Answers[q.ID]; a != nil {
			qr.Answered = true
			qr.SelectedOptionID = a.SelectedOptionID
			qr.AnswerText = a.AnswerText
			qr.IsCorrect = a.IsCorrect
			qr.PointsEarned = a.PointsEarned
		}
		out.Questions = append(out.Questions, qr)
	}
	return out, nil
}

// ListAttempts is the student's attempt history for a quiz, newest first.
func (u Usecases) ListAttempts(ctx context.Context, studentID, quizID uuid.UUID) ([]*types.QuizAttempt, error) {
	const op = "learning.list_attempts"
	dbc := dbctx.Context{Ctx: ctx}
	if _, _, err := u.quizOf(dbc, op, quizID); err != nil {
		return nil, err
	}
	rows, err := u.deps.Attempts.ListByUserQuiz(dbc, studentID, quizID)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	return rows, nil
}

type CertificateSummary struct {
	Certificate *types.Certificate `json:"certificate"`
	CourseTitle string             `json:"course_title"`
}

func (u Usecases) ListCertificates(ctx context.Context, studentID uuid.UUID) ([]CertificateSummary, error) {
	const op = "learning.list_certificates"
	dbc := dbctx.Context{Ctx: ctx}
	certs, err := u.deps.Certificates.ListByUser(dbc, studentID)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	ids := make([]uuid.UUID, 0, len(certs))
	for _, c := range certs {
		ids = append(ids, c.CourseID)
	}
	courses, err := u.deps.Courses.GetByIDs(dbc, ids)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	titles := make(map[uuid.UUID]string, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
	}
	out := make([]CertificateSummary, 0, len(certs))
	for _, c := range certs {
		out = append(out, CertificateSummary{Certificate: c, CourseTitle: titles[c.CourseID]})
	}
	return out, nil
}

// readAttempt is attemptState without the row lock, for read paths.
func (u Usecases) readAttempt(dbc dbctx.Context, op string, attemptID uuid.UUID) (scoring.State, error) {
	row, err := u.deps.Attempts.GetByID(dbc, attemptID)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	if row == nil {
		return nil, domainagg.NotFound(op, "attempt")
	}
	answers, err := u.deps.Answers.ListByAttemptID(dbc, row.ID)
	if err != nil {
		return nil, dataagg.MapError(op, err)
	}
	return scoring.Classify(row, answers), nil
}
