package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	dataagg "github.com/yungbote/lms-backend/internal/data/aggregates"
	"github.com/yungbote/lms-backend/internal/data/repos"
	"github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
	httpH "github.com/yungbote/lms-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lms-backend/internal/http/middleware"
	learningmod "github.com/yungbote/lms-backend/internal/modules/learning"
	"github.com/yungbote/lms-backend/internal/services"
)

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func (a *apiClient) call(method, path string, body any, out any) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			a.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

type errorBody struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *types.Course, *types.Lesson, *types.Quiz, []*types.Question) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	course := testutil.SeedCourse(t, ctx, db, "HTTP Course")
	module := testutil.SeedModule(t, ctx, db, course.ID, 1)
	lesson := testutil.SeedLesson(t, ctx, db, module.ID, 1)
	quiz := testutil.SeedQuiz(t, ctx, db, module.ID, types.QuizTypeModule, 50)
	questions := []*types.Question{
		testutil.SeedQuestion(t, ctx, db, quiz.ID, 1, 1, 2, 0),
		testutil.SeedQuestion(t, ctx, db, quiz.ID, 2, 1, 2, 1),
	}

	users := repos.NewUserRepo(db, log)
	auth := services.NewAuthService(db, log, users, "router-secret", time.Hour)
	uc := learningmod.New(learningmod.UsecasesDeps{
		DB:           db,
		Log:          log,
		Users:        users,
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
		Certs:        learningmod.CertificateConfig{CodePrefix: "LM", VerifyBaseURL: "https://lms.test"},
	})

	engine := NewRouter(RouterConfig{
		Log:                log,
		ServiceName:        "lms-test",
		AuthHandler:        httpH.NewAuthHandler(auth),
		AuthMiddleware:     httpMW.NewAuthMiddleware(log, auth),
		CourseHandler:      httpH.NewCourseHandler(log, uc),
		ModuleHandler:      httpH.NewModuleHandler(uc),
		LessonHandler:      httpH.NewLessonHandler(log, uc),
		QuizHandler:        httpH.NewQuizHandler(log, uc),
		CertificateHandler: httpH.NewCertificateHandler(uc),
		HealthHandler:      httpH.NewHealthHandler(db),
	})
	return engine, course, lesson, quiz, questions
}

func TestStudentJourneyOverHTTP(t *testing.T) {
	engine, course, lesson, quiz, questions := newTestRouter(t)
	api := &apiClient{t: t, engine: engine}

	if code := api.call(nethttp.MethodGet, "/healthcheck", nil, nil); code != nethttp.StatusOK {
		t.Fatalf("healthcheck: %d", code)
	}
	if code := api.call(nethttp.MethodGet, "/api/courses", nil, nil); code != nethttp.StatusUnauthorized {
		t.Fatalf("anonymous courses: %d", code)
	}

	reg := map[string]string{"email": "student@example.com", "password": "s3cret-pass", "first_name": "Ada", "last_name": "Byron"}
	if code := api.call(nethttp.MethodPost, "/api/register", reg, nil); code != nethttp.StatusCreated {
		t.Fatalf("register: %d", code)
	}
	var eb errorBody
	if code := api.call(nethttp.MethodPost, "/api/register", reg, &eb); code != nethttp.StatusConflict {
		t.Fatalf("duplicate register: %d %+v", code, eb)
	}
	if code := api.call(nethttp.MethodPost, "/api/login", map[string]string{"email": "student@example.com", "password": "nope-nope"}, nil); code != nethttp.StatusUnauthorized {
		t.Fatalf("bad login: %d", code)
	}
	var login struct {
		AccessToken string `json:"access_token"`
	}
	if code := api.call(nethttp.MethodPost, "/api/login", map[string]string{"email": "student@example.com", "password": "s3cret-pass"}, &login); code != nethttp.StatusOK || login.AccessToken == "" {
		t.Fatalf("login: %d %+v", code, login)
	}
	api.token = login.AccessToken

	lessonPath := "/api/lessons/" + lesson.ID.String()
	eb = errorBody{}
	if code := api.call(nethttp.MethodGet, lessonPath, nil, &eb); code != nethttp.StatusForbidden || eb.Error.Code != "not_available" {
		t.Fatalf("lesson before enrollment: %d %+v", code, eb)
	}
	if code := api.call(nethttp.MethodPost, "/api/courses/"+course.ID.String()+"/enroll", nil, nil); code != nethttp.StatusCreated {
		t.Fatalf("enroll: %d", code)
	}
	if code := api.call(nethttp.MethodPost, "/api/courses/"+course.ID.String()+"/enroll", nil, nil); code != nethttp.StatusOK {
		t.Fatalf("enroll again: %d", code)
	}
	if code := api.call(nethttp.MethodGet, lessonPath, nil, nil); code != nethttp.StatusOK {
		t.Fatalf("view lesson: %d", code)
	}
	if code := api.call(nethttp.MethodGet, "/api/lessons/not-a-uuid", nil, nil); code != nethttp.StatusBadRequest {
		t.Fatalf("bad lesson id: %d", code)
	}

	attemptsPath := "/api/quizzes/" + quiz.ID.String() + "/attempts"
	eb = errorBody{}
	if code := api.call(nethttp.MethodPost, attemptsPath, nil, &eb); code != nethttp.StatusForbidden {
		t.Fatalf("quiz before lessons: %d %+v", code, eb)
	}
	if code := api.call(nethttp.MethodPost, lessonPath+"/complete", nil, nil); code != nethttp.StatusOK {
		t.Fatalf("complete lesson: %d", code)
	}

	var started struct {
		Attempt types.QuizAttempt `json:"attempt"`
	}
	if code := api.call(nethttp.MethodPost, attemptsPath, nil, &started); code != nethttp.StatusCreated || started.Attempt.ID == uuid.Nil {
		t.Fatalf("start attempt: %d %+v", code, started)
	}
	attemptPath := "/api/attempts/" + started.Attempt.ID.String()

	eb = errorBody{}
	if code := api.call(nethttp.MethodPost, attemptPath+"/submit", nil, &eb); code != nethttp.StatusUnprocessableEntity || eb.Error.Code != "no_answers" {
		t.Fatalf("empty submit: %d %+v", code, eb)
	}
	for _, q := range questions {
		opt := testutil.CorrectOption(q)
		body := map[string]any{"selected_option_id": opt}
		if code := api.call(nethttp.MethodPut, attemptPath+"/answers/"+q.ID.String(), body, nil); code != nethttp.StatusOK {
			t.Fatalf("answer %s: %d", q.ID, code)
		}
	}

	var view struct {
		QuestionIndex int         `json:"question_index"`
		Answered      []uuid.UUID `json:"answered"`
	}
	if code := api.call(nethttp.MethodGet, attemptPath+"?q=1", nil, &view); code != nethttp.StatusOK || view.QuestionIndex != 1 || len(view.Answered) != 2 {
		t.Fatalf("attempt view: %d %+v", code, view)
	}

	var submitted struct {
		Result struct {
			Score  int  `json:"score"`
			Passed bool `json:"passed"`
		} `json:"result"`
		Certificate *struct {
			Eligible    bool `json:"eligible"`
			Certificate struct {
				CertificateCode string `json:"certificate_code"`
			} `json:"certificate"`
		} `json:"certificate"`
	}
	if code := api.call(nethttp.MethodPost, attemptPath+"/submit", nil, &submitted); code != nethttp.StatusOK {
		t.Fatalf("submit: %d", code)
	}
	if submitted.Result.Score != 100 || !submitted.Result.Passed {
		t.Fatalf("result: %+v", submitted.Result)
	}
	if submitted.Certificate == nil || submitted.Certificate.Certificate.CertificateCode == "" {
		t.Fatalf("certificate not issued: %+v", submitted.Certificate)
	}
	eb = errorBody{}
	if code := api.call(nethttp.MethodPost, attemptPath+"/submit", nil, &eb); code != nethttp.StatusConflict || eb.Error.Code != "invalid_attempt_state" {
		t.Fatalf("resubmit: %d %+v", code, eb)
	}

	code := submitted.Certificate.Certificate.CertificateCode
	anonymous := &apiClient{t: t, engine: engine}
	var verified struct {
		Valid       bool `json:"valid"`
		Certificate struct {
			StudentName string `json:"student_name"`
			CourseTitle string `json:"course_title"`
		} `json:"certificate"`
	}
	if status := anonymous.call(nethttp.MethodGet, "/api/certificates/verify/"+code, nil, &verified); status != nethttp.StatusOK {
		t.Fatalf("verify: %d", status)
	}
	if !verified.Valid || verified.Certificate.StudentName != "Ada Byron" || verified.Certificate.CourseTitle != "HTTP Course" {
		t.Fatalf("verified: %+v", verified)
	}
	if status := anonymous.call(nethttp.MethodGet, "/api/certificates/verify/LM-NOPE-NOPE-NOPE", nil, nil); status != nethttp.StatusNotFound {
		t.Fatalf("verify unknown: %d", status)
	}

	var progress struct {
		Percent int `json:"percent"`
	}
	if status := api.call(nethttp.MethodGet, "/api/courses/"+course.ID.String()+"/progress", nil, &progress); status != nethttp.StatusOK || progress.Percent != 100 {
		t.Fatalf("progress: %d %+v", status, progress)
	}
}
