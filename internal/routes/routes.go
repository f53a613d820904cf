package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/limistah/bank-reconciliation/internal/auth"
	"github.com/limistah/bank-reconciliation/internal/handlers"
	"github.com/limistah/bank-reconciliation/internal/middleware"
	"github.com/limistah/bank-reconciliation/internal/usecases"
	"gorm.io/gorm"
)

func SetupRoutes(router *gin.Engine, db *gorm.DB, useCases *usecases.UseCases, jwtService *auth.JWTService, maxUploadBytes int64) {
	// Health check endpoint
	healthHandler := handlers.NewHealthHandler(db)
	router.GET("/health", healthHandler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(jwtService))
	{
		configurationHandler := handlers.NewConfigurationHandler(useCases.Configuration, maxUploadBytes)
		configurations := v1.Group("/configurations")
		{
			configurations.GET("", configurationHandler.ListConfigurations)
			configurations.POST("", configurationHandler.CreateConfiguration)
			configurations.GET("/:id", configurationHandler.GetConfiguration)
			configurations.PUT("/:id", configurationHandler.UpdateConfiguration)
			configurations.DELETE("/:id", configurationHandler.DeleteConfiguration)
			configurations.POST("/:id/duplicate", configurationHandler.DuplicateConfiguration)
			configurations.POST("/:id/validate", configurationHandler.ValidateSample) // Dry run against a sample file
		}

		importHandler := handlers.NewImportHandler(useCases.Import, maxUploadBytes)
		imports := v1.Group("/imports")
		{
			imports.GET("", importHandler.ListSessions)
			imports.POST("", importHandler.ImportStatement)
			imports.POST("/validate", importHandler.ValidateStatement)
			imports.GET("/:id", importHandler.GetSession)
		}

		reconciliationHandler := handlers.NewReconciliationHandler(useCases.Matching)
		reconciliations := v1.Group("/reconciliations")
		{
			reconciliations.GET("", reconciliationHandler.ListReconciliations)
			reconciliations.POST("", reconciliationHandler.ManualMatch)
			reconciliations.POST("/auto-match", reconciliationHandler.AutoMatch)
			reconciliations.GET("/:id", reconciliationHandler.GetReconciliation)
			reconciliations.POST("/:id/reverse", reconciliationHandler.ReverseReconciliation)
		}
		v1.GET("/bank-movements/:id/suggestions", reconciliationHandler.SuggestMatches)

		adjustmentHandler := handlers.NewAdjustmentHandler(useCases.Adjustment)
		adjustments := v1.Group("/adjustments")
		{
			adjustments.POST("/preview", adjustmentHandler.PreviewAdjustments)
			adjustments.POST("/apply", adjustmentHandler.ApplyAdjustments)
		}

		bankAccounts := v1.Group("/bank-accounts/:id")
		{
			bankAccounts.GET("/movements", importHandler.ListMovements)
			bankAccounts.GET("/summary", reconciliationHandler.Summary)
			bankAccounts.GET("/accounting-config", adjustmentHandler.GetAccountingConfig)
			bankAccounts.PUT("/accounting-config", adjustmentHandler.SaveAccountingConfig)
		}

		auditHandler := handlers.NewAuditHandler(useCases.Audit)
		v1.GET("/audit", auditHandler.ListAudit)
	}
}
