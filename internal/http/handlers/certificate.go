package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lms-backend/internal/http/response"
	learningmod "github.com/yungbote/lms-backend/internal/modules/learning"
)

type CertificateHandler struct {
	learning learningmod.Usecases
}

func NewCertificateHandler(learning learningmod.Usecases) *CertificateHandler {
	return &CertificateHandler{learning: learning}
}

// GET /api/certificates
func (h *CertificateHandler) ListCertificates(c *gin.Context) {
	student, ok := studentID(c)
	if !ok {
		return
	}
	certs, err := h.learning.ListCertificates(c.Request.Context(), student)
	if err != nil {
		response.RespondErr(c, "list_certificates_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"certificates": certs})
}

// GET /api/certificates/verify/:code (public)
func (h *CertificateHandler) Verify(c *gin.Context) {
	out, err := h.learning.VerifyCertificate(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.RespondErr(c, "verify_certificate_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"valid": true, "certificate": out})
}
