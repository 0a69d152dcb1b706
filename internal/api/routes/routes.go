package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yourusername/codetrack/scraper-service/internal/api/handlers"
	"github.com/yourusername/codetrack/scraper-service/internal/app"
)

func Setup(router *gin.Engine, a *app.App) {
	healthHandler := handlers.NewHealthHandler(a)
	rankingHandler := handlers.NewRankingHandler(a.Ranking)
	profileHandler := handlers.NewProfileHandler(a.Profiles)
	ruleHandler := handlers.NewRuleHandler(a.Rules)
	batchHandler := handlers.NewBatchHandler(a.Orchestrator, a.Hub)
	studentHandler := handlers.NewStudentHandler(a.Students)

	// Health check
	router.GET("/health", healthHandler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/rankings", rankingHandler.GetRanking)
		v1.GET("/students/:id", studentHandler.GetStudent)

		// Coding profile routes
		profiles := v1.Group("/students/:id/profiles/:platform")
		{
			profiles.PUT("", profileHandler.SubmitProfile)
			profiles.POST("/review", profileHandler.ReviewProfile)
			profiles.POST("/refresh", profileHandler.RefreshProfile)
		}

		// Batch routes
		v1.POST("/batches", batchHandler.SubmitBatch)
		v1.GET("/batches/:id/events", batchHandler.StreamEvents)

		// Admin routes
		admin := v1.Group("/admin")
		{
			admin.GET("/grading-rules", ruleHandler.ListRules)
			admin.PUT("/grading-rules/:metric", ruleHandler.UpsertRule)
		}
	}
}
