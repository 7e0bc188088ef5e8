package routes

import (
	"time"

	"github.com/vigourpt/themonneygate2/handlers/keywords"
	"github.com/vigourpt/themonneygate2/handlers/research"
	"github.com/vigourpt/themonneygate2/handlers/subscriptions"
	"github.com/vigourpt/themonneygate2/handlers/tools"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups the request handlers wired at startup
type Handlers struct {
	Keywords      *keywords.Handler
	Research      *research.Handler
	Tools         *tools.Handler
	Subscriptions *subscriptions.Handler
}

func SetupRouter(h *Handlers) *gin.Engine {

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	KeywordsRoutes(r, h.Keywords)
	ResearchRoutes(r, h.Research)
	ToolsRoutes(r, h.Tools)
	SubscriptionsRoutes(r, h.Subscriptions)

	return r
}
