package routes

import (
	"github.com/vigourpt/themonneygate2/handlers/tools"

	"github.com/gin-gonic/gin"
)

func ToolsRoutes(r *gin.Engine, h *tools.Handler) {
	toolsRoutes := r.Group("/tools")
	{
		toolsRoutes.POST("/generate", h.Generate)
	}
}
