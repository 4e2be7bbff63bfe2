package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/SAP-F-2025/examprep-service/internal/services"
	"github.com/SAP-F-2025/examprep-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type BlueprintHandler struct {
	BaseHandler
	blueprintService services.BlueprintService
}

func NewBlueprintHandler(blueprintService services.BlueprintService, logger utils.Logger) *BlueprintHandler {
	return &BlueprintHandler{
		BaseHandler:      NewBaseHandler(logger),
		blueprintService: blueprintService,
	}
}

// CreateBlueprint stores a blueprint and immediately generates mocks from it
// @Summary Create blueprint
// @Tags blueprints
// @Accept json
// @Produce json
// @Param blueprint body services.BlueprintRequest true "Blueprint"
// @Success 201 {object} SuccessResponse{data=services.BlueprintResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/blueprints [post]
func (h *BlueprintHandler) CreateBlueprint(c *gin.Context) {
	var req services.BlueprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	principal, _ := PrincipalFromContext(c)

	resp, err := h.blueprintService.Create(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Blueprint created", resp,
		"blueprint_id", resp.Blueprint.ID,
		"generated", resp.Generation.GeneratedCount)
}

// UpdateBlueprint replaces the blueprint and generates from the new version
func (h *BlueprintHandler) UpdateBlueprint(c *gin.Context) {
	id, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}

	var req services.BlueprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	principal, _ := PrincipalFromContext(c)

	resp, err := h.blueprintService.Update(c.Request.Context(), id, &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Blueprint updated", resp,
		"blueprint_id", id,
		"generated", resp.Generation.GeneratedCount)
}

func (h *BlueprintHandler) GetBlueprint(c *gin.Context) {
	id, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}

	blueprint, err := h.blueprintService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Blueprint retrieved", blueprint)
}

// GenerateMocks re-runs generation for an existing blueprint. The body is optional.
func (h *BlueprintHandler) GenerateMocks(c *gin.Context) {
	id, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}

	var req services.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	principal, _ := PrincipalFromContext(c)

	result, err := h.blueprintService.Generate(c.Request.Context(), id, req.Publish, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Mock generation finished", result,
		"blueprint_id", id,
		"generated", result.GeneratedCount)
}
