package subscriptions

import (
	"net/http"

	"github.com/vigourpt/themonneygate2/config"
	"github.com/vigourpt/themonneygate2/models"

	"github.com/gin-gonic/gin"
)

const (
	PlanFree          = "free"
	PlanPremium       = "premium"
	PlanPremiumAnnual = "premium_annual"
)

const TrialDays = 14

// buildPlanCatalog assembles the static plan list, the Stripe price ids come
// from configuration so test and live keys stay swappable
func buildPlanCatalog(cfg *config.Config) []models.SubscriptionPlan {
	return []models.SubscriptionPlan{
		{
			ID:            PlanFree,
			Name:          "Free",
			Description:   "Basic access to MoneyGate",
			PricePerMonth: 0,
			Features: []string{
				"Create up to 3 tools",
				"Basic monetization insights",
				"Standard keyword analysis",
			},
		},
		{
			ID:            PlanPremium,
			Name:          "Premium Monthly",
			Description:   "Full access to all MoneyGate features",
			PricePerMonth: 29.99,
			Features: []string{
				"Create unlimited tools",
				"Advanced monetization strategies",
				"Premium keyword analysis with competitor insights",
				"Embed code generator",
				"Distribution checklist",
				"Priority support",
			},
			StripePriceID: cfg.PricePremiumMonthly,
		},
		{
			ID:            PlanPremiumAnnual,
			Name:          "Premium Annual",
			Description:   "Full access to all MoneyGate features with annual discount",
			PricePerMonth: 23.99,
			Features: []string{
				"Create unlimited tools",
				"Advanced monetization strategies",
				"Premium keyword analysis with competitor insights",
				"Embed code generator",
				"Distribution checklist",
				"Priority support",
				"20% annual discount",
			},
			StripePriceID:      cfg.PricePremiumAnnual,
			IsAnnual:           true,
			DiscountPercentage: 20,
		},
	}
}

func (h *Handler) planByID(planID string) *models.SubscriptionPlan {
	for i := range h.Plans {
		if h.Plans[i].ID == planID {
			return &h.Plans[i]
		}
	}
	return nil
}

func planNameFor(planID string) string {
	if planID == PlanPremiumAnnual {
		return "Premium Annual"
	}
	return "Premium Monthly"
}

// GetPlans lists the available subscription plans
// @Summary List subscription plans
// @Description Get all available subscription plans
// @Tags subscriptions
// @Produce json
// @Success 200 {array} models.SubscriptionPlan
// @Router /subscriptions/plans [get]
func (h *Handler) GetPlans(c *gin.Context) {
	c.JSON(http.StatusOK, h.Plans)
}
