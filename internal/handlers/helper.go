package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/gin-gonic/gin"
)

// ParseUintParam reads a positive numeric path parameter, writing a 400 on failure.
func ParseUintParam(c *gin.Context, param string) (uint, bool) {
	idStr := strings.TrimSpace(c.Param(param))
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

// ParseExamRef reads the :kind and :id path parameters.
func ParseExamRef(c *gin.Context) (models.ExamRef, bool) {
	kind := models.ExamKind(strings.TrimSpace(c.Param("kind")))
	if !kind.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid exam type",
			Details: "kind must be mock or practice",
		})
		return models.ExamRef{}, false
	}
	id, ok := ParseUintParam(c, "id")
	if !ok {
		return models.ExamRef{}, false
	}
	return models.ExamRef{Kind: kind, ID: id}, true
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck reports 503 when the database does not answer.
func HealthCheck(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": "examprep-service",
					"error":   err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "examprep-service",
		})
	}
}
