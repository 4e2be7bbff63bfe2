package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/SAP-F-2025/examprep-service/internal/errors"
	"github.com/SAP-F-2025/examprep-service/internal/services"
	"github.com/SAP-F-2025/examprep-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := append(h.requestFields(c), additionalFields...)
	utils.GetLoggerFromContext(c, h.logger).LogError(err, message, fields...)
}

func (h *BaseHandler) LogInfo(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append(h.requestFields(c), additionalFields...)
	utils.GetLoggerFromContext(c, h.logger).Info(message, fields...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append(h.requestFields(c), additionalFields...)
	utils.GetLoggerFromContext(c, h.logger).Warn(message, fields...)
}

func (h *BaseHandler) requestFields(c *gin.Context) []interface{} {
	var userID string
	if p, ok := PrincipalFromContext(c); ok {
		userID = p.UserID
	}
	return []interface{}{"user_id", userID}
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	}

	c.AbortWithStatusJSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response and logs it
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}, additionalFields ...interface{}) {
	fields := append([]interface{}{"status_code", statusCode}, additionalFields...)
	h.LogInfo(c, message, fields...)

	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// handleServiceError maps service errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors apperrors.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err, map[string]interface{}{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
			"reason":   permissionError.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrExamNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Exam not found", err)
	case errors.Is(err, services.ErrAttemptNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Attempt not found", err)
	case errors.Is(err, services.ErrBlueprintNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Blueprint not found", err)
	case errors.Is(err, services.ErrGenerationInProgress):
		h.RespondWithError(c, http.StatusConflict, "Mock generation already in progress", err)
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, "User not authenticated", err)
	case services.IsForbidden(err):
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "Resource not found", err)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, "Conflict", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
