package subscriptions

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vigourpt/themonneygate2/models"
	"github.com/vigourpt/themonneygate2/testutils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func authContext(userID, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("email", email)
		c.Next()
	}
}

func TestGetPlans(t *testing.T) {
	h := NewHandler(testConfig(""))

	r := testutils.SetupTestRouter()
	r.GET("/subscriptions/plans", h.GetPlans)

	req, _ := http.NewRequest(http.MethodGet, "/subscriptions/plans", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var plans []models.SubscriptionPlan
	json.Unmarshal(resp.Body.Bytes(), &plans)

	assert.Len(t, plans, 3)
	assert.Equal(t, PlanFree, plans[0].ID)
	assert.Empty(t, plans[0].StripePriceID)
	assert.Equal(t, PlanPremium, plans[1].ID)
	assert.Equal(t, "price_monthly", plans[1].StripePriceID)
	assert.Equal(t, PlanPremiumAnnual, plans[2].ID)
	assert.True(t, plans[2].IsAnnual)
	assert.Equal(t, 20, plans[2].DiscountPercentage)
}

func TestPlanByID(t *testing.T) {
	h := NewHandler(testConfig(""))

	assert.Equal(t, "Premium Monthly", h.planByID(PlanPremium).Name)
	assert.Nil(t, h.planByID("nonexistent"))
}

func TestPlanNameFor(t *testing.T) {
	assert.Equal(t, "Premium Annual", planNameFor(PlanPremiumAnnual))
	assert.Equal(t, "Premium Monthly", planNameFor(PlanPremium))
	assert.Equal(t, "Premium Monthly", planNameFor("anything-else"))
}

func postCheckout(h *Handler, withAuth bool, body map[string]interface{}) *httptest.ResponseRecorder {
	r := testutils.SetupTestRouter()
	if withAuth {
		r.POST("/subscriptions/create-checkout-session", authContext("user-1", "user@example.com"), h.CreateCheckoutSession)
	} else {
		r.POST("/subscriptions/create-checkout-session", h.CreateCheckoutSession)
	}

	jsonData, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, "/subscriptions/create-checkout-session", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateCheckoutSession_Unauthenticated(t *testing.T) {
	h := NewHandler(testConfig(""))

	resp := postCheckout(h, false, map[string]interface{}{
		"plan_id":     PlanPremium,
		"success_url": "https://example.com/success",
		"cancel_url":  "https://example.com/cancel",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateCheckoutSession_UnknownPlan(t *testing.T) {
	h := NewHandler(testConfig(""))

	resp := postCheckout(h, true, map[string]interface{}{
		"plan_id":     "nonexistent",
		"success_url": "https://example.com/success",
		"cancel_url":  "https://example.com/cancel",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var body map[string]string
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, "Invalid plan ID or free plan selected", body["error"])
}

func TestCreateCheckoutSession_FreePlanRejected(t *testing.T) {
	h := NewHandler(testConfig(""))

	resp := postCheckout(h, true, map[string]interface{}{
		"plan_id":     PlanFree,
		"success_url": "https://example.com/success",
		"cancel_url":  "https://example.com/cancel",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateCheckoutSession_MissingURLsRejected(t *testing.T) {
	h := NewHandler(testConfig(""))

	resp := postCheckout(h, true, map[string]interface{}{
		"plan_id": PlanPremium,
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
