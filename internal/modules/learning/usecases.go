package learning

import (
	"time"

	"gorm.io/gorm"

	dataagg "github.com/yungbote/lms-backend/internal/data/aggregates"
	"github.com/yungbote/lms-backend/internal/data/repos"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type CertificateConfig struct {
	// CodePrefix leads every certificate code, e.g. "LM" in LM-7K2D-Q9XA-M4TC.
	CodePrefix string
	// VerifyBaseURL is joined with /certificates/verify/<code>.
	VerifyBaseURL string
}

type UsecasesDeps struct {
	DB      *gorm.DB
	Log     *logger.Logger
	Metrics *observability.Metrics

	Users        repos.UserRepo
	Courses      repos.CourseRepo
	Modules      repos.ModuleRepo
	Lessons      repos.LessonRepo
	Quizzes      repos.QuizRepo
	Questions    repos.QuestionRepo
	Progress     repos.ProgressRepo
	Attempts     repos.QuizAttemptRepo
	Answers      repos.UserAnswerRepo
	Certificates repos.CertificateRepo

	// Write carries the tx runner, hooks and retry bound shared by every mutation.
	Write dataagg.BaseDeps

	Certs CertificateConfig
	Now   func() time.Time
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("usecase", "learning")
	if deps.Write.DB == nil {
		deps.Write.DB = deps.DB
	}
	if deps.Write.Log == nil {
		deps.Write.Log = deps.Log
	}
	if deps.Certs.CodePrefix == "" {
		deps.Certs.CodePrefix = "LM"
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return Usecases{deps: deps}
}

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	u.deps.Write.Log = log
	return u
}

func (u Usecases) now() time.Time { return u.deps.Now().UTC() }
