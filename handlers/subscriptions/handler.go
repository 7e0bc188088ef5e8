package subscriptions

import (
	"net/http"
	"time"

	"github.com/vigourpt/themonneygate2/config"
	"github.com/vigourpt/themonneygate2/models"
	"github.com/vigourpt/themonneygate2/utils"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	session "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	stripeSubscription "github.com/stripe/stripe-go/v82/subscription"
)

type Handler struct {
	Config *config.Config
	Plans  []models.SubscriptionPlan
}

func NewHandler(cfg *config.Config) *Handler {
	stripe.Key = cfg.StripeSecretKey
	return &Handler{
		Config: cfg,
		Plans:  buildPlanCatalog(cfg),
	}
}

func stripeErrorMessage(err error) string {
	if stripeErr, ok := err.(*stripe.Error); ok {
		return stripeErr.Msg
	}
	return err.Error()
}

// findCustomerByEmail returns the first Stripe customer matching an email,
// or nil when none exists
func findCustomerByEmail(email string) (*stripe.Customer, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Limit = stripe.Int64(1)

	iter := customer.List(params)
	for iter.Next() {
		return iter.Customer(), nil
	}
	return nil, iter.Err()
}

// subscriptionPeriodEnd reads the current period end off the first
// subscription item, where the basil API versions keep it
func subscriptionPeriodEnd(sub *stripe.Subscription) time.Time {
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		return time.Unix(sub.Items.Data[0].CurrentPeriodEnd, 0)
	}
	return time.Time{}
}

func requestUser(c *gin.Context) (userID string, email string, ok bool) {
	rawID, exists := c.Get("user_id")
	if !exists {
		utils.LogError(nil, "User not authenticated in subscriptions handler")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return "", "", false
	}
	rawEmail, exists := c.Get("email")
	if !exists {
		utils.LogError(nil, "Email missing from token in subscriptions handler")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return "", "", false
	}

	userID, _ = rawID.(string)
	email, _ = rawEmail.(string)
	if userID == "" || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return "", "", false
	}
	return userID, email, true
}

// CreateCheckoutSession starts a Stripe Checkout session for a paid plan
// @Summary Create a Stripe Checkout session
// @Description Start a Stripe payment for a paid subscription plan with a 14 day trial. Returns the session id and checkout URL for the frontend.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body models.CreateCheckoutSessionRequest true "Plan id and redirect URLs"
// @Security BearerAuth
// @Success 200 {object} models.CheckoutSessionResponse
// @Failure 400 {object} map[string]string "error: Invalid plan ID or free plan selected"
// @Failure 401 {object} map[string]string "error: User not authenticated"
// @Router /subscriptions/create-checkout-session [post]
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	userID, email, ok := requestUser(c)
	if !ok {
		return
	}

	var req models.CreateCheckoutSessionRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	plan := h.planByID(req.PlanID)
	if plan == nil || plan.StripePriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID or free plan selected"})
		return
	}

	cust, err := findCustomerByEmail(email)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Stripe customer lookup failed in CreateCheckoutSession")
		c.JSON(http.StatusBadRequest, gin.H{"error": stripeErrorMessage(err)})
		return
	}

	if cust != nil {
		// keep the customer linked to our user id
		if cust.Metadata["user_id"] != userID {
			updateParams := &stripe.CustomerParams{}
			updateParams.AddMetadata("user_id", userID)
			if _, err := customer.Update(cust.ID, updateParams); err != nil {
				utils.LogErrorWithUser(userID, err, "Stripe customer metadata update failed in CreateCheckoutSession")
				c.JSON(http.StatusBadRequest, gin.H{"error": stripeErrorMessage(err)})
				return
			}
		}
	} else {
		createParams := &stripe.CustomerParams{Email: stripe.String(email)}
		createParams.AddMetadata("user_id", userID)
		cust, err = customer.New(createParams)
		if err != nil {
			utils.LogErrorWithUser(userID, err, "Stripe customer creation failed in CreateCheckoutSession")
			c.JSON(http.StatusBadRequest, gin.H{"error": stripeErrorMessage(err)})
			return
		}
	}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(cust.ID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			TrialPeriodDays: stripe.Int64(TrialDays),
			Metadata: map[string]string{
				"user_id": userID,
				"plan_id": plan.ID,
			},
		},
	}
	params.AddMetadata("user_id", userID)
	params.AddMetadata("plan_id", plan.ID)

	checkoutSession, err := session.New(params)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Stripe checkout session creation failed in CreateCheckoutSession")
		c.JSON(http.StatusBadRequest, gin.H{"error": stripeErrorMessage(err)})
		return
	}

	utils.LogSuccessWithUser(userID, "Checkout session created for plan "+plan.ID+" in CreateCheckoutSession")
	c.JSON(http.StatusOK, models.CheckoutSessionResponse{
		SessionID:   checkoutSession.ID,
		CheckoutURL: checkoutSession.URL,
	})
}

// GetStatus reports the user's current subscription state
// @Summary Get subscription status
// @Description Get the current subscription status for the authenticated user. Falls back to the free plan when no customer or subscription exists, or when Stripe is unreachable.
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SubscriptionStatusResponse
// @Failure 401 {object} map[string]string "error: User not authenticated"
// @Router /subscriptions/status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	userID, email, ok := requestUser(c)
	if !ok {
		return
	}

	freeStatus := models.SubscriptionStatusResponse{
		IsActive:       true,
		IsTrial:        false,
		AvailablePlans: h.Plans,
	}

	cust, err := findCustomerByEmail(email)
	if err != nil {
		// everyone keeps free access when Stripe is unreachable
		utils.LogErrorWithUser(userID, err, "Error getting subscription status in GetStatus")
		c.JSON(http.StatusOK, freeStatus)
		return
	}
	if cust == nil {
		c.JSON(http.StatusOK, freeStatus)
		return
	}

	listParams := &stripe.SubscriptionListParams{
		Customer: stripe.String(cust.ID),
		Status:   stripe.String("active"),
	}
	listParams.AddExpand("data.default_payment_method")

	iter := stripeSubscription.List(listParams)
	if !iter.Next() {
		if err := iter.Err(); err != nil {
			utils.LogErrorWithUser(userID, err, "Error getting subscription status in GetStatus")
		}
		c.JSON(http.StatusOK, freeStatus)
		return
	}
	sub := iter.Subscription()

	planID := sub.Metadata["plan_id"]
	if planID == "" {
		if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
			priceID := sub.Items.Data[0].Price.ID
			for _, plan := range h.Plans {
				if plan.StripePriceID != "" && plan.StripePriceID == priceID {
					planID = plan.ID
					break
				}
			}
		}
		if planID == "" {
			planID = PlanPremium
		}
	}

	isTrial := sub.Status == stripe.SubscriptionStatusTrialing
	var trialEnd *time.Time
	if sub.TrialEnd > 0 {
		t := time.Unix(sub.TrialEnd, 0)
		trialEnd = &t
	}

	var paymentMethod *models.PaymentMethodSummary
	if sub.DefaultPaymentMethod != nil && sub.DefaultPaymentMethod.Card != nil {
		pm := sub.DefaultPaymentMethod
		paymentMethod = &models.PaymentMethodSummary{
			ID:       pm.ID,
			Brand:    string(pm.Card.Brand),
			Last4:    pm.Card.Last4,
			ExpMonth: pm.Card.ExpMonth,
			ExpYear:  pm.Card.ExpYear,
		}
	}

	c.JSON(http.StatusOK, models.SubscriptionStatusResponse{
		IsActive: true,
		IsTrial:  isTrial,
		Subscription: &models.CurrentSubscription{
			PlanID:            planID,
			Status:            string(sub.Status),
			CurrentPeriodEnd:  subscriptionPeriodEnd(sub),
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
			TrialEnd:          trialEnd,
			SubscriptionID:    sub.ID,
			PaymentMethod:     paymentMethod,
		},
		AvailablePlans: h.Plans,
	})
}

// verifyOwnership checks the subscription belongs to the authenticated user
func verifyOwnership(subscriptionID, email string) (*stripe.Subscription, bool, error) {
	sub, err := stripeSubscription.Get(subscriptionID, nil)
	if err != nil {
		return nil, false, err
	}

	cust, err := findCustomerByEmail(email)
	if err != nil {
		return nil, false, err
	}
	if cust == nil || sub.Customer == nil || cust.ID != sub.Customer.ID {
		return nil, false, nil
	}
	return sub, true, nil
}

// Cancel cancels a subscription, immediately or at the end of the period
// @Summary Cancel a subscription
// @Description Cancel the user's subscription. By default the subscription stays active until the end of the current billing period.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body models.CancelSubscriptionRequest true "Subscription id and cancellation mode"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "success, message, status, cancel_at_period_end"
// @Failure 400 {object} map[string]string "error: Stripe error"
// @Failure 403 {object} map[string]string "error: Subscription does not belong to this user"
// @Router /subscriptions/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	userID, email, ok := requestUser(c)
	if !ok {
		return
	}

	var req models.CancelSubscriptionRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}
	atPeriodEnd := true
	if req.AtPeriodEnd != nil {
		atPeriodEnd = *req.AtPeriodEnd
	}

	_, owned, err := verifyOwnership(req.SubscriptionID, email)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Stripe error in Cancel")
		c.JSON(http.StatusBadRequest, gin.H{"error": stripeErrorMessage(err)})
		return
	}
	if !owned {
		c.JSON(http.StatusForbidden, gin.H{"error": "Subscription does not belong to this user"})
		return
	}

	var updated *stripe.Subscription
	var message string
	if atPeriodEnd {
		updated, err = stripeSubscription.Update(req.SubscriptionID, &stripe.SubscriptionParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		})
		message = "Subscription will be canceled at the end of the current billing period"
	} else {
		updated, err = stripeSubscription.Cancel(req.SubscriptionID, nil)
		message = "Subscription has been canceled immediately"
	}
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Stripe error in Cancel")
		c.JSON(http.StatusBadRequest, gin.H{"error": stripeErrorMessage(err)})
		return
	}

	utils.LogSuccessWithUser(userID, "Subscription "+req.SubscriptionID+" canceled in Cancel")
	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"message":              message,
		"status":               string(updated.Status),
		"cancel_at_period_end": updated.CancelAtPeriodEnd,
	})
}

// Reactivate removes a pending cancellation from a subscription
// @Summary Reactivate a subscription
// @Description Reactivate a subscription that was set to cancel at the end of the billing period
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body models.ReactivateSubscriptionRequest true "Subscription id"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "success, message, status, cancel_at_period_end"
// @Failure 400 {object} map[string]string "error: Subscription is not set to cancel at period end"
// @Failure 403 {object} map[string]string "error: Subscription does not belong to this user"
// @Router /subscriptions/reactivate [post]
func (h *Handler) Reactivate(c *gin.Context) {
	userID, email, ok := requestUser(c)
	if !ok {
		return
	}

	var req models.ReactivateSubscriptionRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	sub, owned, err := verifyOwnership(req.SubscriptionID, email)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Stripe error in Reactivate")
		c.JSON(http.StatusBadRequest, gin.H{"error": stripeErrorMessage(err)})
		return
	}
	if !owned {
		c.JSON(http.StatusForbidden, gin.H{"error": "Subscription does not belong to this user"})
		return
	}

	if !sub.CancelAtPeriodEnd {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subscription is not set to cancel at period end"})
		return
	}

	updated, err := stripeSubscription.Update(req.SubscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(false),
	})
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Stripe error in Reactivate")
		c.JSON(http.StatusBadRequest, gin.H{"error": stripeErrorMessage(err)})
		return
	}

	utils.LogSuccessWithUser(userID, "Subscription "+req.SubscriptionID+" reactivated in Reactivate")
	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"message":              "Subscription has been reactivated",
		"status":               string(updated.Status),
		"cancel_at_period_end": updated.CancelAtPeriodEnd,
	})
}

// CustomerPortal opens a Stripe hosted billing portal session
// @Summary Create a customer portal session
// @Description Create a Stripe customer portal session for managing billing and subscriptions
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body models.CustomerPortalRequest true "Return URL"
// @Security BearerAuth
// @Success 200 {object} models.CustomerPortalResponse
// @Failure 404 {object} map[string]string "error: No Stripe customer found for this user"
// @Router /subscriptions/customer-portal [post]
func (h *Handler) CustomerPortal(c *gin.Context) {
	userID, email, ok := requestUser(c)
	if !ok {
		return
	}

	var req models.CustomerPortalRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	cust, err := findCustomerByEmail(email)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Stripe error in CustomerPortal")
		c.JSON(http.StatusBadRequest, gin.H{"error": stripeErrorMessage(err)})
		return
	}
	if cust == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No Stripe customer found for this user"})
		return
	}

	portal, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(cust.ID),
		ReturnURL: stripe.String(req.ReturnURL),
	})
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Stripe error in CustomerPortal")
		c.JSON(http.StatusBadRequest, gin.H{"error": stripeErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, models.CustomerPortalResponse{URL: portal.URL})
}
