package routes

import (
	"github.com/vigourpt/themonneygate2/handlers/research"

	"github.com/gin-gonic/gin"
)

func ResearchRoutes(r *gin.Engine, h *research.Handler) {
	researchRoutes := r.Group("/research")
	{
		researchRoutes.POST("/analyze", h.Analyze)
		researchRoutes.POST("/analyze-fallback", h.AnalyzeFallback)
		researchRoutes.POST("/analyze2", h.Analyze2)
	}
}
