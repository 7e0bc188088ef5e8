package routes

import (
	"github.com/vigourpt/themonneygate2/handlers/subscriptions"
	"github.com/vigourpt/themonneygate2/middleware"

	"github.com/gin-gonic/gin"
)

func SubscriptionsRoutes(r *gin.Engine, h *subscriptions.Handler) {
	subscriptionRoutes := r.Group("/subscriptions")
	subscriptionRoutes.GET("/plans", h.GetPlans)

	protectedRoutes := r.Group("/subscriptions")
	protectedRoutes.Use(middleware.JWTAuth())
	{
		protectedRoutes.POST("/create-checkout-session", h.CreateCheckoutSession)
		protectedRoutes.GET("/status", h.GetStatus)
		protectedRoutes.POST("/cancel", h.Cancel)
		protectedRoutes.POST("/reactivate", h.Reactivate)
		protectedRoutes.POST("/customer-portal", h.CustomerPortal)
	}

	r.POST("/webhooks/stripe", h.HandleWebhook)
}
