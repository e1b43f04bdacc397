package eligibility

import (
	"github.com/google/uuid"

	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

// Snapshot is everything the resolver needs about one student in one course.
// It is read once per request and never cached across requests.
type Snapshot struct {
	StudentID uuid.UUID
	Course    *types.Course
	Modules   []*types.Module
	Lessons   map[uuid.UUID][]*types.Lesson // by module id
	Quizzes   map[uuid.UUID][]*types.Quiz   // by module id

	// Progress rows by scope id, split by scope.
	CourseRecord  *types.UserProgress
	ModuleRecords map[uuid.UUID]*types.UserProgress
	LessonRecords map[uuid.UUID]*types.UserProgress

	PassedQuizzes map[uuid.UUID]bool
}

// NewSnapshot indexes fetched rows. Rows for other courses or students are ignored.
func NewSnapshot(studentID uuid.UUID, course *types.Course, modules []*types.Module, lessons []*types.Lesson, quizzes []*types.Quiz, progress []*types.UserProgress, passedQuizIDs []uuid.UUID) *Snapshot {
	s := &Snapshot{
		StudentID:     studentID,
		Course:        course,
		Lessons:       map[uuid.UUID][]*types.Lesson{},
		Quizzes:       map[uuid.UUID][]*types.Quiz{},
		ModuleRecords: map[uuid.UUID]*types.UserProgress{},
		LessonRecords: map[uuid.UUID]*types.UserProgress{},
		PassedQuizzes: map[uuid.UUID]bool{},
	}
	inCourse := map[uuid.UUID]bool{}
	for _, m := range modules {
		if m != nil && course != nil && m.CourseID == course.ID {
			s.Modules = append(s.Modules, m)
			inCourse[m.ID] = true
		}
	}
	s.Modules = SortModules(s.Modules)
	for _, l := range lessons {
		if l != nil && inCourse[l.ModuleID] {
			s.Lessons[l.ModuleID] = append(s.Lessons[l.ModuleID], l)
		}
	}
	for id, ls := range s.Lessons {
		s.Lessons[id] = SortLessons(ls)
	}
	for _, q := range quizzes {
		if q != nil && inCourse[q.ModuleID] {
			s.Quizzes[q.ModuleID] = append(s.Quizzes[q.ModuleID], q)
		}
	}
	for id, qs := range s.Quizzes {
		s.Quizzes[id] = SortQuizzes(qs)
	}
	for _, p := range progress {
		if p == nil || p.UserID != studentID || course == nil || p.CourseID != course.ID {
			continue
		}
		switch p.Scope {
		case types.ScopeCourse:
			s.CourseRecord = p
		case types.ScopeModule:
			s.ModuleRecords[p.ScopeID] = p
		case types.ScopeLesson:
			s.LessonRecords[p.ScopeID] = p
		}
	}
	for _, id := range passedQuizIDs {
		s.PassedQuizzes[id] = true
	}
	return s
}

// Enrolled reports whether the course-level record exists.
func (s *Snapshot) Enrolled() bool { return s.CourseRecord != nil }

func (s *Snapshot) completedLessons() map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(s.LessonRecords))
	for id, p := range s.LessonRecords {
		if p.Status == types.ProgressCompleted {
			out[id] = true
		}
	}
	return out
}

func (s *Snapshot) Module(moduleID uuid.UUID) *types.Module {
	for _, m := range s.Modules {
		if m.ID == moduleID {
			return m
		}
	}
	return nil
}

// LessonModule finds the module owning lessonID.
func (s *Snapshot) LessonModule(lessonID uuid.UUID) *types.Module {
	for _, m := range s.Modules {
		if containsLesson(s.Lessons[m.ID], lessonID) {
			return m
		}
	}
	return nil
}

func (s *Snapshot) Lesson(lessonID uuid.UUID) *types.Lesson {
	for _, m := range s.Modules {
		for _, l := range s.Lessons[m.ID] {
			if l.ID == lessonID {
				return l
			}
		}
	}
	return nil
}

func (s *Snapshot) Quiz(quizID uuid.UUID) *types.Quiz {
	for _, m := range s.Modules {
		for _, q := range s.Quizzes[m.ID] {
			if q.ID == quizID {
				return q
			}
		}
	}
	return nil
}

func (s *Snapshot) LessonStatus(lessonID uuid.UUID) (Status, error) {
	m := s.LessonModule(lessonID)
	if m == nil {
		return "", domainagg.NotFound("eligibility.lesson_status", "lesson in course")
	}
	return LessonStatus(s.Lessons[m.ID], s.completedLessons(), lessonID)
}

func (s *Snapshot) ModuleComplete(moduleID uuid.UUID) bool {
	return ModuleComplete(s.Lessons[moduleID], s.Quizzes[moduleID], s.completedLessons(), s.PassedQuizzes)
}

func (s *Snapshot) moduleCompletion() map[uuid.UUID]bool {
	completed := s.completedLessons()
	out := make(map[uuid.UUID]bool, len(s.Modules))
	for _, m := range s.Modules {
		out[m.ID] = ModuleComplete(s.Lessons[m.ID], s.Quizzes[m.ID], completed, s.PassedQuizzes)
	}
	return out
}

func (s *Snapshot) ModuleStatus(moduleID uuid.UUID) (Status, error) {
	return ModuleStatus(s.Modules, s.moduleCompletion(), moduleID)
}

func (s *Snapshot) QuizUnlocked(moduleID uuid.UUID) (bool, error) {
	if s.Module(moduleID) == nil {
		return false, domainagg.NotFound("eligibility.quiz_unlocked", "module in course")
	}
	return AllLessonsCompleted(s.Lessons[moduleID], s.completedLessons()), nil
}

// CompletedModules counts modules whose computed status is completed.
func (s *Snapshot) CompletedModules() int {
	n := 0
	for _, done := range s.moduleCompletion() {
		if done {
			n++
		}
	}
	return n
}

func (s *Snapshot) CourseProgress() int {
	return ProgressPercent(s.CompletedModules(), len(s.Modules))
}

// CourseComplete holds when the course has modules and all are complete.
func (s *Snapshot) CourseComplete() bool {
	return len(s.Modules) > 0 && s.CompletedModules() == len(s.Modules)
}

// LessonAccessible composes module gating with lesson gating: the student must
// be enrolled, the module must not be locked and the lesson must not be locked.
func (s *Snapshot) LessonAccessible(lessonID uuid.UUID) (Status, error) {
	const op = "eligibility.lesson_access"
	m := s.LessonModule(lessonID)
	if m == nil {
		return "", domainagg.NotFound(op, "lesson in course")
	}
	if !s.Enrolled() {
		return "", domainagg.NotAvailable(op, "not enrolled in course")
	}
	ms, err := s.ModuleStatus(m.ID)
	if err != nil {
		return "", err
	}
	if ms == Locked {
		return "", domainagg.NotAvailable(op, "module is locked")
	}
	ls, err := s.LessonStatus(lessonID)
	if err != nil {
		return "", err
	}
	if ls == Locked {
		return "", domainagg.NotAvailable(op, "lesson is locked")
	}
	return ls, nil
}

// QuizAccessible enforces enrollment, module gating and lesson completion for quizID.
func (s *Snapshot) QuizAccessible(quizID uuid.UUID) (*types.Quiz, error) {
	const op = "eligibility.quiz_access"
	q := s.Quiz(quizID)
	if q == nil || !q.Active {
		return nil, domainagg.NotFound(op, "quiz")
	}
	if !s.Enrolled() {
		return nil, domainagg.NotAvailable(op, "not enrolled in course")
	}
	ms, err := s.ModuleStatus(q.ModuleID)
	if err != nil {
		return nil, err
	}
	if ms == Locked {
		return nil, domainagg.NotAvailable(op, "module is locked")
	}
	unlocked, err := s.QuizUnlocked(q.ModuleID)
	if err != nil {
		return nil, err
	}
	if !unlocked {
		return nil, domainagg.NotAvailable(op, "complete all lessons before taking the quiz")
	}
	return q, nil
}
