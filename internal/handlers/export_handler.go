package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/SAP-F-2025/examprep-service/internal/services"
	"github.com/SAP-F-2025/examprep-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// ExportAttempts downloads every attempt on an exam as an XLSX workbook
// @Summary Export exam attempts
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param kind path string true "mock or practice"
// @Param id path uint true "Exam ID"
// @Param date_from query string false "RFC 3339 lower bound"
// @Param date_to query string false "RFC 3339 upper bound"
// @Failure 404 {object} ErrorResponse
// @Router /admin/exams/{kind}/{id}/attempts/export [get]
func (h *ExportHandler) ExportAttempts(c *gin.Context) {
	ref, ok := ParseExamRef(c)
	if !ok {
		return
	}
	var window models.DateRange
	if err := c.ShouldBindQuery(&window); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}

	// buffered so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := h.exportService.ExportAttempts(c.Request.Context(), ref, window, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("attempts_%s_%d.xlsx", ref.Kind, ref.ID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	h.LogInfo(c, "Attempts exported", "exam", ref.String(), "bytes", buf.Len())
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
