package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/http/response"
	learningmod "github.com/yungbote/lms-backend/internal/modules/learning"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type QuizHandler struct {
	log      *logger.Logger
	learning learningmod.Usecases
}

func NewQuizHandler(log *logger.Logger, learning learningmod.Usecases) *QuizHandler {
	return &QuizHandler{log: log.With("handler", "QuizHandler"), learning: learning}
}

// POST /api/quizzes/:id/attempts
func (h *QuizHandler) StartAttempt(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	quizID, ok := uuidParam(c, "id", "invalid_quiz_id")
	if !ok {
		return
	}
	out, err := h.learning.StartAttempt(c.Request.Context(), learningmod.StartAttemptInput{StudentID: student, QuizID: quizID})
	if err != nil {
		response.RespondErr(c, "start_attempt_failed", err)
		return
	}
	response.RespondCreated(c, out)
}

// GET /api/quizzes/:id/attempts
func (h *QuizHandler) ListAttempts(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	quizID, ok := uuidParam(c, "id", "invalid_quiz_id")
	if !ok {
		return
	}
	attempts, err := h.learning.ListAttempts(c.Request.Context(), student, quizID)
	if err != nil {
		response.RespondErr(c, "list_attempts_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"attempts": attempts})
}

// GET /api/attempts/:id?q=0
func (h *QuizHandler) GetAttempt(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	attemptID, ok := uuidParam(c, "id", "invalid_attempt_id")
	if !ok {
		return
	}
	idx := 0
	if raw := strings.TrimSpace(c.Query("q")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_question_index", err)
			return
		}
		idx = n
	}
	out, err := h.learning.AttemptView(c.Request.Context(), learningmod.AttemptViewInput{
		StudentID:     student,
		AttemptID:     attemptID,
		QuestionIndex: idx,
	})
	if err != nil {
		response.RespondErr(c, "load_attempt_failed", err)
		return
	}
	response.RespondOK(c, out)
}

type answerRequest struct {
	SelectedOptionID *uuid.UUID `json:"selected_option_id"`
	AnswerText       string     `json:"answer_text"`
}

// PUT /api/attempts/:id/answers/:questionId
func (h *QuizHandler) RecordAnswer(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	attemptID, ok := uuidParam(c, "id", "invalid_attempt_id")
	if !ok {
		return
	}
	questionID, ok := uuidParam(c, "questionId", "invalid_question_id")
	if !ok {
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.learning.RecordAnswer(c.Request.Context(), learningmod.RecordAnswerInput{
		StudentID:        student,
		AttemptID:        attemptID,
		QuestionID:       questionID,
		SelectedOptionID: req.SelectedOptionID,
		AnswerText:       req.AnswerText,
	})
	if err != nil {
		response.RespondErr(c, "record_answer_failed", err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/attempts/:id/submit
func (h *QuizHandler) SubmitAttempt(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	attemptID, ok := uuidParam(c, "id", "invalid_attempt_id")
	if !ok {
		return
	}
	out, err := h.learning.SubmitAttempt(c.Request.Context(), learningmod.SubmitAttemptInput{StudentID: student, AttemptID: attemptID})
	if err != nil {
		h.log.Warn("SubmitAttempt failed", "error", err, "user_id", student, "attempt_id", attemptID)
		response.RespondErr(c, "submit_attempt_failed", err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/attempts/:id/result
func (h *QuizHandler) GetResult(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	attemptID, ok := uuidParam(c, "id", "invalid_attempt_id")
	if !ok {
		return
	}
	out, err := h.learning.AttemptResult(c.Request.Context(), student, attemptID)
	if err != nil {
		response.RespondErr(c, "load_result_failed", err)
		return
	}
	response.RespondOK(c, out)
}
