package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/examprep-service/internal/services"
	"github.com/SAP-F-2025/examprep-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// SubmitAttempt grades and stores a finished session
// @Summary Submit attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param attempt body services.SubmitAttemptRequest true "Answers"
// @Success 201 {object} SuccessResponse{data=services.SubmitAttemptResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	var req services.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	principal, _ := PrincipalFromContext(c)

	resp, err := h.attemptService.Submit(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Attempt submitted", resp,
		"attempt_id", resp.AttemptID,
		"score", resp.Score)
}

func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	id, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(c)

	attempt, err := h.attemptService.GetByID(c.Request.Context(), id, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Attempt retrieved", attempt)
}

// ListAttempts lists the caller's own attempts, newest first
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	var req services.AttemptListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}
	principal, _ := PrincipalFromContext(c)

	resp, err := h.attemptService.List(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Attempts retrieved", resp, "total", resp.Total)
}
