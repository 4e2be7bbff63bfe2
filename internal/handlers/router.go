package handlers

import (
	"github.com/SAP-F-2025/examprep-service/internal/services"
	"github.com/SAP-F-2025/examprep-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	authenticator      *Authenticator
	db                 Pinger
	examSessionHandler *ExamSessionHandler
	attemptHandler     *AttemptHandler
	blueprintHandler   *BlueprintHandler
	exportHandler      *ExportHandler
}

func NewHandlerManager(
	serviceManager *services.ServiceManager,
	authenticator *Authenticator,
	db Pinger,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authenticator:      authenticator,
		db:                 db,
		examSessionHandler: NewExamSessionHandler(serviceManager.ExamSession, logger),
		attemptHandler:     NewAttemptHandler(serviceManager.Attempt, logger),
		blueprintHandler:   NewBlueprintHandler(serviceManager.Blueprint, logger),
		exportHandler:      NewExportHandler(serviceManager.Export, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck(hm.db))

	v1 := router.Group("/api/v1")
	v1.Use(hm.authenticator.Middleware())
	{
		v1.GET("/exams/:kind/:id/session", hm.examSessionHandler.GetSession)

		attempts := v1.Group("/attempts")
		{
			attempts.POST("", hm.attemptHandler.SubmitAttempt)
			attempts.GET("", hm.attemptHandler.ListAttempts)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
		}

		admin := v1.Group("/admin")
		admin.Use(RequireAdmin())
		{
			blueprints := admin.Group("/blueprints")
			{
				blueprints.POST("", hm.blueprintHandler.CreateBlueprint)
				blueprints.GET("/:id", hm.blueprintHandler.GetBlueprint)
				blueprints.PUT("/:id", hm.blueprintHandler.UpdateBlueprint)
				blueprints.POST("/:id/generate", hm.blueprintHandler.GenerateMocks)
			}

			admin.GET("/exams/:kind/:id/attempts/export", hm.exportHandler.ExportAttempts)
			admin.DELETE("/exams/:kind/:id/session-cache", hm.examSessionHandler.InvalidateSession)
			admin.DELETE("/session-cache/:kind", hm.examSessionHandler.InvalidateSessionKind)
		}
	}
}
