package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/repos"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type Repos struct {
	User        repos.UserRepo
	Course      repos.CourseRepo
	Module      repos.ModuleRepo
	Lesson      repos.LessonRepo
	Quiz        repos.QuizRepo
	Question    repos.QuestionRepo
	Progress    repos.ProgressRepo
	QuizAttempt repos.QuizAttemptRepo
	UserAnswer  repos.UserAnswerRepo
	Certificate repos.CertificateRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        repos.NewUserRepo(db, log),
		Course:      repos.NewCourseRepo(db, log),
		Module:      repos.NewModuleRepo(db, log),
		Lesson:      repos.NewLessonRepo(db, log),
		Quiz:        repos.NewQuizRepo(db, log),
		Question:    repos.NewQuestionRepo(db, log),
		Progress:    repos.NewProgressRepo(db, log),
		QuizAttempt: repos.NewQuizAttemptRepo(db, log),
		UserAnswer:  repos.NewUserAnswerRepo(db, log),
		Certificate: repos.NewCertificateRepo(db, log),
	}
}
