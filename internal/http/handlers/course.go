package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lms-backend/internal/http/response"
	learningmod "github.com/yungbote/lms-backend/internal/modules/learning"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type CourseHandler struct {
	log      *logger.Logger
	learning learningmod.Usecases
}

func NewCourseHandler(log *logger.Logger, learning learningmod.Usecases) *CourseHandler {
	return &CourseHandler{
		log:      log.With("handler", "CourseHandler"),
		learning: learning,
	}
}

// GET /api/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	courses, err := h.learning.ListCourses(c.Request.Context(), student)
	if err != nil {
		h.log.Error("ListCourses failed", "error", err, "user_id", student)
		response.RespondErr(c, "load_courses_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id", "invalid_course_id")
	if !ok {
		return
	}
	out, err := h.learning.CourseOverview(c.Request.Context(), student, courseID)
	if err != nil {
		response.RespondErr(c, "load_course_failed", err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/courses/:id/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id", "invalid_course_id")
	if !ok {
		return
	}
	out, err := h.learning.Enroll(c.Request.Context(), learningmod.EnrollInput{StudentID: student, CourseID: courseID})
	if err != nil {
		response.RespondErr(c, "enroll_failed", err)
		return
	}
	if out.Created {
		response.RespondCreated(c, out)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/courses/:id/progress
func (h *CourseHandler) Progress(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id", "invalid_course_id")
	if !ok {
		return
	}
	pct, err := h.learning.CourseProgress(c.Request.Context(), student, courseID)
	if err != nil {
		response.RespondErr(c, "load_progress_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"course_id": courseID, "percent": pct})
}

// POST /api/courses/:id/certificate
func (h *CourseHandler) IssueCertificate(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id", "invalid_course_id")
	if !ok {
		return
	}
	res, err := h.learning.CheckAndIssueCertificate(c.Request.Context(), learningmod.CertificateInput{StudentID: student, CourseID: courseID})
	if err != nil {
		h.log.Error("IssueCertificate failed", "error", err, "user_id", student, "course_id", courseID)
		response.RespondErr(c, "issue_certificate_failed", err)
		return
	}
	response.RespondOK(c, res)
}
