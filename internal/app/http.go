package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/http"
	httpH "github.com/yungbote/lms-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lms-backend/internal/http/middleware"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	Course      *httpH.CourseHandler
	Module      *httpH.ModuleHandler
	Lesson      *httpH.LessonHandler
	Quiz        *httpH.QuizHandler
	Certificate *httpH.CertificateHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(db),
		Auth:        httpH.NewAuthHandler(services.Auth),
		Course:      httpH.NewCourseHandler(log, services.Learning),
		Module:      httpH.NewModuleHandler(services.Learning),
		Lesson:      httpH.NewLessonHandler(log, services.Learning),
		Quiz:        httpH.NewQuizHandler(log, services.Learning),
		Certificate: httpH.NewCertificateHandler(services.Learning),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, clients Clients, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	rc := http.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		ServiceName:        cfg.ServiceName,
		CORSOrigins:        cfg.CORSOrigins,
		AuthHandler:        handlers.Auth,
		AuthMiddleware:     middleware.Auth,
		CourseHandler:      handlers.Course,
		ModuleHandler:      handlers.Module,
		LessonHandler:      handlers.Lesson,
		QuizHandler:        handlers.Quiz,
		CertificateHandler: handlers.Certificate,
		HealthHandler:      handlers.Health,
	}
	if clients.RateLimiter != nil {
		rc.RateLimiter = clients.RateLimiter
	}
	return http.NewServer(rc)
}
