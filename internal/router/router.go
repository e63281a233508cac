package router

import (
	"github.com/gin-gonic/gin"

	"tiku/internal/config"
	"tiku/internal/handler"
	"tiku/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	questionH *handler.QuestionHandler,
	paperH *handler.PaperHandler,
	tagH *handler.TagHandler,
	exportH *handler.ExportHandler,
	imageH *handler.ImageHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Question bank
	questions := v1.Group("/questions")
	questions.POST("", questionH.Create)
	questions.GET("", questionH.List)
	questions.GET("/stats", questionH.Stats)
	questions.POST("/annotate", questionH.Annotate)
	questions.GET("/:id", questionH.Get)
	questions.GET("/:id/answer", questionH.GetAnswer)
	questions.DELETE("/:id", questionH.Delete)

	// Scanned paper ingestion
	papers := v1.Group("/papers")
	papers.POST("/parse", paperH.Parse)

	// Tag vocabulary
	v1.GET("/tags", tagH.List)

	// Materialized question images
	v1.GET("/images/*key", imageH.Get)

	// Paper exports
	exports := v1.Group("/exports")
	exports.POST("", exportH.Create)
	exports.GET("", exportH.List)
	exports.GET("/:id", exportH.Get)

	return r
}
