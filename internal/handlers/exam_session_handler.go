package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/SAP-F-2025/examprep-service/internal/services"
	"github.com/SAP-F-2025/examprep-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ExamSessionHandler struct {
	BaseHandler
	sessionService services.ExamSessionService
}

func NewExamSessionHandler(sessionService services.ExamSessionService, logger utils.Logger) *ExamSessionHandler {
	return &ExamSessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// GetSession returns the exam header and questions without the answer key
// @Summary Get session payload
// @Tags sessions
// @Produce json
// @Param kind path string true "mock or practice"
// @Param id path uint true "Exam ID"
// @Success 200 {object} SuccessResponse{data=models.SessionPayload}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{kind}/{id}/session [get]
func (h *ExamSessionHandler) GetSession(c *gin.Context) {
	ref, ok := ParseExamRef(c)
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(c)

	payload, err := h.sessionService.GetPayload(c.Request.Context(), ref, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Session payload retrieved", payload,
		"exam", ref.String(),
		"questions", len(payload.Questions))
}

// InvalidateSession drops the cached payload after exam content changes
func (h *ExamSessionHandler) InvalidateSession(c *gin.Context) {
	ref, ok := ParseExamRef(c)
	if !ok {
		return
	}

	if err := h.sessionService.InvalidatePayload(c.Request.Context(), ref); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Session payload invalidated", "exam", ref.String())
	c.Status(http.StatusNoContent)
}

// InvalidateSessionKind drops every cached payload of one exam type
func (h *ExamSessionHandler) InvalidateSessionKind(c *gin.Context) {
	kind := models.ExamKind(c.Param("kind"))
	if err := h.sessionService.InvalidateKind(c.Request.Context(), kind); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Session payloads invalidated", "exam_type", kind)
	c.Status(http.StatusNoContent)
}
