package app

import (
	"gorm.io/gorm"

	dataagg "github.com/yungbote/lms-backend/internal/data/aggregates"
	"github.com/yungbote/lms-backend/internal/modules/catalog"
	learningmod "github.com/yungbote/lms-backend/internal/modules/learning"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/services"
)

type Services struct {
	Auth     services.AuthService
	Learning learningmod.Usecases
	Catalog  *catalog.Importer
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	write := dataagg.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: dataagg.NewObservabilityHooks(metrics),
	}
	return Services{
		Auth: services.NewAuthService(db, log, r.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Learning: learningmod.New(learningmod.UsecasesDeps{
			DB:           db,
			Log:          log,
			Metrics:      metrics,
			Users:        r.User,
			Courses:      r.Course,
			Modules:      r.Module,
			Lessons:      r.Lesson,
			Quizzes:      r.Quiz,
			Questions:    r.Question,
			Progress:     r.Progress,
			Attempts:     r.QuizAttempt,
			Answers:      r.UserAnswer,
			Certificates: r.Certificate,
			Write:        write,
			Certs: learningmod.CertificateConfig{
				CodePrefix:    cfg.CertificateCodePrefix,
				VerifyBaseURL: cfg.CertificateVerifyBaseURL,
			},
		}),
		Catalog: catalog.NewImporter(catalog.ImporterDeps{
			Log:       log,
			Write:     write,
			Courses:   r.Course,
			Modules:   r.Module,
			Lessons:   r.Lesson,
			Quizzes:   r.Quiz,
			Questions: r.Question,
		}),
	}
}
