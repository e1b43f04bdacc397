package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lms-backend/internal/http/response"
	learningmod "github.com/yungbote/lms-backend/internal/modules/learning"
)

type ModuleHandler struct {
	learning learningmod.Usecases
}

func NewModuleHandler(learning learningmod.Usecases) *ModuleHandler {
	return &ModuleHandler{learning: learning}
}

// GET /api/modules/:id
func (h *ModuleHandler) GetModule(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	moduleID, ok := uuidParam(c, "id", "invalid_module_id")
	if !ok {
		return
	}
	out, err := h.learning.ModuleView(c.Request.Context(), student, moduleID)
	if err != nil {
		response.RespondErr(c, "load_module_failed", err)
		return
	}
	response.RespondOK(c, out)
}
