package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/lms-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lms-backend/internal/http/middleware"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string
	RateLimiter httpMW.Limiter

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	CourseHandler      *httpH.CourseHandler
	ModuleHandler      *httpH.ModuleHandler
	LessonHandler      *httpH.LessonHandler
	QuizHandler        *httpH.QuizHandler
	CertificateHandler *httpH.CertificateHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
		// Certificate verification (public)
		if cfg.CertificateHandler != nil {
			api.GET("/certificates/verify/:code", cfg.CertificateHandler.Verify)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.GET("/me", cfg.AuthHandler.Me)
		}

		// Course
		if cfg.CourseHandler != nil {
			protected.GET("/courses", cfg.CourseHandler.ListCourses)
			protected.GET("/courses/:id", cfg.CourseHandler.GetCourse)
			protected.GET("/courses/:id/progress", cfg.CourseHandler.Progress)
			protected.POST("/courses/:id/enroll", cfg.CourseHandler.Enroll)
			protected.POST("/courses/:id/certificate", cfg.CourseHandler.IssueCertificate)
		}

		// Module
		if cfg.ModuleHandler != nil {
			protected.GET("/modules/:id", cfg.ModuleHandler.GetModule)
		}

		// Lesson
		if cfg.LessonHandler != nil {
			protected.GET("/lessons/:id", cfg.LessonHandler.GetLesson)
			protected.POST("/lessons/:id/complete", cfg.LessonHandler.CompleteLesson)
		}

		// Quiz attempts
		if cfg.QuizHandler != nil {
			limited := httpMW.RateLimit(cfg.Log, cfg.RateLimiter, cfg.Metrics, "attempts")
			protected.GET("/quizzes/:id/attempts", cfg.QuizHandler.ListAttempts)
			protected.POST("/quizzes/:id/attempts", limited, cfg.QuizHandler.StartAttempt)
			protected.GET("/attempts/:id", cfg.QuizHandler.GetAttempt)
			protected.GET("/attempts/:id/result", cfg.QuizHandler.GetResult)
			protected.PUT("/attempts/:id/answers/:questionId", limited, cfg.QuizHandler.RecordAnswer)
			protected.POST("/attempts/:id/submit", limited, cfg.QuizHandler.SubmitAttempt)
		}

		// Certificates
		if cfg.CertificateHandler != nil {
			protected.GET("/certificates", cfg.CertificateHandler.ListCertificates)
		}
	}

	return r
}
