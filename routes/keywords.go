package routes

import (
	"github.com/vigourpt/themonneygate2/handlers/keywords"

	"github.com/gin-gonic/gin"
)

func KeywordsRoutes(r *gin.Engine, h *keywords.Handler) {
	keywordsRoutes := r.Group("/keywords")
	{
		keywordsRoutes.POST("/analyze-metrics", h.AnalyzeMetrics)
		keywordsRoutes.POST("/analyze-alternative", h.AnalyzeAlternative)
	}
}
