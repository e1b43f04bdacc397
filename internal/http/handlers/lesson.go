package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lms-backend/internal/http/response"
	learningmod "github.com/yungbote/lms-backend/internal/modules/learning"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type LessonHandler struct {
	log      *logger.Logger
	learning learningmod.Usecases
}

func NewLessonHandler(log *logger.Logger, learning learningmod.Usecases) *LessonHandler {
	return &LessonHandler{log: log.With("handler", "LessonHandler"), learning: learning}
}

// GET /api/lessons/:id
func (h *LessonHandler) GetLesson(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id", "invalid_lesson_id")
	if !ok {
		return
	}
	out, err := h.learning.ViewLesson(c.Request.Context(), learningmod.LessonInput{StudentID: student, LessonID: lessonID})
	if err != nil {
		response.RespondErr(c, "load_lesson_failed", err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/lessons/:id/complete
func (h *LessonHandler) CompleteLesson(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id", "invalid_lesson_id")
	if !ok {
		return
	}
	out, err := h.learning.CompleteLesson(c.Request.Context(), learningmod.LessonInput{StudentID: student, LessonID: lessonID})
	if err != nil {
		h.log.Warn("CompleteLesson failed", "error", err, "user_id", student, "lesson_id", lessonID)
		response.RespondErr(c, "complete_lesson_failed", err)
		return
	}
	response.RespondOK(c, out)
}
