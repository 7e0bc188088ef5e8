package subscriptions

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vigourpt/themonneygate2/db"
	"github.com/vigourpt/themonneygate2/models"
	"github.com/vigourpt/themonneygate2/storage"
	"github.com/vigourpt/themonneygate2/utils"
	mailsmodels "github.com/vigourpt/themonneygate2/utils/mails-models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	stripeSubscription "github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm/clause"
)

// Storage keys for webhook data
const (
	webhookEventsLogKey = "stripe_webhook_events.log"
	metricsKey          = "stripe_subscription_metrics.json"
)

// capped so the audit document stays small
const maxLoggedEvents = 100

// HandleWebhook processes Stripe webhook events
// @Summary Stripe webhook receiver
// @Description Handle Stripe webhook events: audit log, metrics counters, subscription record upserts and transactional emails. Always acknowledges with HTTP 200 once the event is accepted, even when internal side effects fail, so Stripe does not redeliver partially processed events.
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} models.WebhookResponse
// @Failure 400 {object} map[string]string "error: Invalid signature or payload"
// @Router /webhooks/stripe [post]
func (h *Handler) HandleWebhook(c *gin.Context) {
	const maxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not read request body"})
		return
	}

	secret := h.Config.StripeWebhookSecret
	signature := c.GetHeader("Stripe-Signature")

	if secret != "" && signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stripe signature is required"})
		return
	}

	var event stripe.Event
	if secret != "" {
		event, err = webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
		if err != nil {
			utils.LogError(err, "Stripe signature verification failed in HandleWebhook")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
			return
		}
	} else {
		// no secret configured, trust the payload without verification
		if err := json.Unmarshal(payload, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
			return
		}
	}

	logWebhookEvent(event)

	data := event.Data.Object
	updateSubscriptionMetrics(string(event.Type), data)

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(data)
	case "customer.subscription.created":
		// handled by checkout.session.completed in most cases
	case "customer.subscription.updated":
		h.handleSubscriptionUpdated(event, data)
	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(data)
	case "invoice.payment_succeeded":
		h.handleInvoicePaymentSucceeded(data)
	case "invoice.payment_failed":
		h.handleInvoicePaymentFailed(data)
	case "customer.subscription.trial_will_end":
		h.handleTrialWillEnd(data)
	case "invoice.upcoming":
		h.handleInvoiceUpcoming(data)
	case "customer.updated":
		h.handleCustomerUpdated(data)
	case "customer.subscription.pending_update_applied":
		h.handlePendingUpdateApplied(data)
	case "payment_method.attached":
		h.handlePaymentMethodAttached(data)
	case "charge.succeeded":
		h.handleChargeSucceeded(data)
	case "charge.failed":
		h.handleChargeFailed(data)
	}

	// acknowledge even when side effects failed so Stripe does not retry
	c.JSON(http.StatusOK, models.WebhookResponse{
		Success: true,
		Message: "Processed event: " + string(event.Type),
	})
}

// logWebhookEvent appends the event to the capped audit log. Failures are
// logged and swallowed.
func logWebhookEvent(event stripe.Event) {
	var eventLog []models.WebhookEventEntry
	if _, err := storage.GetJSON(webhookEventsLogKey, &eventLog); err != nil {
		utils.LogError(err, "Error reading webhook event log")
	}

	// unverified dev payloads sometimes come without an event id
	eventID := event.ID
	if eventID == "" {
		eventID = uuid.New().String()
	}

	eventLog = append(eventLog, models.WebhookEventEntry{
		ID:        eventID,
		Type:      string(event.Type),
		Timestamp: time.Now(),
		Data:      json.RawMessage(event.Data.Raw),
	})
	if len(eventLog) > maxLoggedEvents {
		eventLog = eventLog[len(eventLog)-maxLoggedEvents:]
	}

	if err := storage.PutJSON(webhookEventsLogKey, eventLog); err != nil {
		utils.LogError(err, "Error logging webhook event")
	}
}

// applyMetricsEvent folds one event into the aggregate counters. Counters are
// floored at zero, replayed events count twice, deduplication by event id is
// deliberately absent.
func applyMetricsEvent(metrics *models.SubscriptionMetrics, eventType string, data map[string]interface{}) {
	switch eventType {
	case "checkout.session.completed":
		metrics.TotalSubscriptions++
		if strField(data, "status") == "trialing" {
			metrics.TrialSubscriptions++
		} else {
			metrics.ActiveSubscriptions++
		}
	case "customer.subscription.updated":
		switch strField(data, "status") {
		case "active":
			metrics.ActiveSubscriptions++
			metrics.TrialSubscriptions = max(0, metrics.TrialSubscriptions-1)
		case "trialing":
			metrics.TrialSubscriptions++
		case "canceled":
			metrics.CanceledSubscriptions++
			metrics.ActiveSubscriptions = max(0, metrics.ActiveSubscriptions-1)
		}
	case "customer.subscription.deleted":
		metrics.CanceledSubscriptions++
		metrics.ActiveSubscriptions = max(0, metrics.ActiveSubscriptions-1)
	case "invoice.payment_succeeded":
		if strField(data, "billing_reason") == "subscription_cycle" {
			metrics.RevenueMonthlyUSD += numField(data, "amount_paid") / 100
		}
	}
	metrics.LastUpdated = time.Now()
}

func updateSubscriptionMetrics(eventType string, data map[string]interface{}) {
	var metrics models.SubscriptionMetrics
	if _, err := storage.GetJSON(metricsKey, &metrics); err != nil {
		utils.LogError(err, "Error reading subscription metrics")
	}

	applyMetricsEvent(&metrics, eventType, data)

	if err := storage.PutJSON(metricsKey, &metrics); err != nil {
		utils.LogError(err, "Error updating subscription metrics")
	}
}

func strField(data map[string]interface{}, key string) string {
	value, _ := data[key].(string)
	return value
}

func numField(data map[string]interface{}, key string) float64 {
	value, _ := data[key].(float64)
	return value
}

func boolField(data map[string]interface{}, key string) bool {
	value, _ := data[key].(bool)
	return value
}

func metaField(data map[string]interface{}, key string) string {
	metadata, _ := data["metadata"].(map[string]interface{})
	if metadata == nil {
		return ""
	}
	value, _ := metadata[key].(string)
	return value
}

func customerEmail(customerID string) (string, error) {
	cust, err := customer.Get(customerID, nil)
	if err != nil {
		return "", err
	}
	return cust.Email, nil
}

// resolveUserID finds our user id for a Stripe customer, first from event
// metadata, then by reverse lookup on the stored subscription records
func resolveUserID(data map[string]interface{}, customerID string) string {
	if userID := metaField(data, "user_id"); userID != "" {
		return userID
	}

	var record models.SubscriptionRecord
	if err := db.DB.Where("stripe_customer_id = ?", customerID).First(&record).Error; err != nil {
		return ""
	}
	return record.UserID
}

func upsertSubscriptionRecord(record models.SubscriptionRecord) error {
	return db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&record).Error
}

func (h *Handler) portalLink() string {
	return h.Config.FrontendURL + "/subscription"
}

func (h *Handler) handleCheckoutCompleted(data map[string]interface{}) {
	customerID := strField(data, "customer")
	subscriptionID := strField(data, "subscription")
	if customerID == "" || subscriptionID == "" {
		return
	}

	email, err := customerEmail(customerID)
	if err != nil {
		utils.LogError(err, "Error retrieving customer in handleCheckoutCompleted")
		return
	}

	sub, err := stripeSubscription.Get(subscriptionID, nil)
	if err != nil {
		utils.LogError(err, "Error retrieving subscription in handleCheckoutCompleted")
		return
	}

	startDate := subscriptionPeriodStart(sub)
	endDate := subscriptionPeriodEnd(sub)

	if userID := metaField(data, "user_id"); userID != "" {
		planID := metaField(data, "plan_id")
		if planID == "" {
			planID = PlanPremium
		}

		record := models.SubscriptionRecord{
			UserID:               userID,
			PlanID:               planID,
			PlanName:             planNameFor(planID),
			Status:               string(sub.Status),
			StartDate:            &startDate,
			EndDate:              &endDate,
			IsTrial:              sub.Status == stripe.SubscriptionStatusTrialing,
			IsActive:             sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing,
			IsAutoRenew:          !sub.CancelAtPeriodEnd,
			StripeCustomerId:     customerID,
			StripeSubscriptionId: subscriptionID,
			UpdatedAt:            time.Now(),
		}
		if sub.TrialEnd > 0 {
			trialEnd := time.Unix(sub.TrialEnd, 0)
			record.TrialEndDate = &trialEnd
		}

		if err := upsertSubscriptionRecord(record); err != nil {
			utils.LogError(err, "Error saving subscription record in handleCheckoutCompleted")
		} else {
			utils.LogSuccessWithUser(userID, "Subscription record saved in handleCheckoutCompleted")
		}
	}

	mailsmodels.SubscriptionWelcome(email, string(sub.Status),
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
}

func (h *Handler) handleSubscriptionUpdated(event stripe.Event, data map[string]interface{}) {
	customerID := strField(data, "customer")
	if customerID == "" {
		return
	}

	email, err := customerEmail(customerID)
	if err != nil {
		utils.LogError(err, "Error retrieving customer in handleSubscriptionUpdated")
		return
	}

	status := strField(data, "status")
	subscriptionID := strField(data, "id")
	endDate := itemPeriodEnd(data)

	if userID := resolveUserID(data, customerID); userID != "" {
		planID := metaField(data, "plan_id")
		if planID == "" {
			var existing models.SubscriptionRecord
			if err := db.DB.First(&existing, "user_id = ?", userID).Error; err == nil {
				planID = existing.PlanID
			}
		}
		if planID == "" {
			planID = PlanPremium
		}

		record := models.SubscriptionRecord{
			UserID:               userID,
			PlanID:               planID,
			PlanName:             planNameFor(planID),
			Status:               status,
			EndDate:              &endDate,
			IsTrial:              status == "trialing",
			IsActive:             status == "active" || status == "trialing",
			IsAutoRenew:          !boolField(data, "cancel_at_period_end"),
			StripeCustomerId:     customerID,
			StripeSubscriptionId: subscriptionID,
			UpdatedAt:            time.Now(),
		}
		if trialEnd := numField(data, "trial_end"); trialEnd > 0 {
			t := time.Unix(int64(trialEnd), 0)
			record.TrialEndDate = &t
		}

		if err := upsertSubscriptionRecord(record); err != nil {
			utils.LogError(err, "Error saving subscription record in handleSubscriptionUpdated")
		} else {
			utils.LogSuccessWithUser(userID, "Subscription record updated in handleSubscriptionUpdated (status: "+status+")")
		}
	}

	// trial just converted to a paid plan
	if status == "active" && event.Data.PreviousAttributes != nil {
		if _, changed := event.Data.PreviousAttributes["trial_end"]; changed {
			mailsmodels.TrialConverted(email, endDate.Format("2006-01-02"))
		}
	}
}

func (h *Handler) handleSubscriptionDeleted(data map[string]interface{}) {
	customerID := strField(data, "customer")
	if customerID == "" {
		return
	}

	email, err := customerEmail(customerID)
	if err != nil {
		utils.LogError(err, "Error retrieving customer in handleSubscriptionDeleted")
		return
	}

	if userID := resolveUserID(data, customerID); userID != "" {
		now := time.Now()
		err := db.DB.Model(&models.SubscriptionRecord{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"status":        "canceled",
				"is_active":     false,
				"is_auto_renew": false,
				"canceled_at":   now,
				"updated_at":    now,
			}).Error
		if err != nil {
			utils.LogError(err, "Error updating subscription record in handleSubscriptionDeleted")
		} else {
			utils.LogSuccessWithUser(userID, "Subscription record marked canceled in handleSubscriptionDeleted")
		}
	}

	mailsmodels.SubscriptionEnded(email)
}

func (h *Handler) handleInvoicePaymentSucceeded(data map[string]interface{}) {
	customerID := strField(data, "customer")
	subscriptionID := strField(data, "subscription")
	if customerID == "" || subscriptionID == "" {
		return
	}

	// the initial payment is covered by checkout.session.completed, only
	// recurring payments get a receipt here
	if strField(data, "billing_reason") != "subscription_cycle" {
		return
	}

	email, err := customerEmail(customerID)
	if err != nil {
		utils.LogError(err, "Error retrieving customer in handleInvoicePaymentSucceeded")
		return
	}

	amount := numField(data, "amount_paid") / 100
	currency := strings.ToUpper(strField(data, "currency"))
	date := time.Unix(int64(numField(data, "created")), 0).Format("2006-01-02")

	mailsmodels.PaymentReceipt(email, amount, currency, date, strField(data, "id"))
}

func (h *Handler) handleInvoicePaymentFailed(data map[string]interface{}) {
	customerID := strField(data, "customer")
	subscriptionID := strField(data, "subscription")
	if customerID == "" || subscriptionID == "" {
		return
	}

	email, err := customerEmail(customerID)
	if err != nil {
		utils.LogError(err, "Error retrieving customer in handleInvoicePaymentFailed")
		return
	}

	attemptCount := int64(numField(data, "attempt_count"))
	mailsmodels.PaymentFailed(email, attemptCount, h.portalLink())
}

func (h *Handler) handleTrialWillEnd(data map[string]interface{}) {
	customerID := strField(data, "customer")
	if customerID == "" {
		return
	}

	email, err := customerEmail(customerID)
	if err != nil {
		utils.LogError(err, "Error retrieving customer in handleTrialWillEnd")
		return
	}

	trialEndDate := time.Unix(int64(numField(data, "trial_end")), 0).Format("January 2, 2006")
	mailsmodels.TrialEnding(email, trialEndDate, h.portalLink())
}

func (h *Handler) handleInvoiceUpcoming(data map[string]interface{}) {
	customerID := strField(data, "customer")
	subscriptionID := strField(data, "subscription")
	if customerID == "" || subscriptionID == "" {
		return
	}

	email, err := customerEmail(customerID)
	if err != nil {
		utils.LogError(err, "Error retrieving customer in handleInvoiceUpcoming")
		return
	}

	amount := numField(data, "amount_due") / 100
	currency := strings.ToUpper(strField(data, "currency"))
	invoiceDate := time.Unix(int64(numField(data, "created")), 0).Format("2006-01-02")

	mailsmodels.UpcomingInvoice(email, amount, currency, invoiceDate)
}

// handleCustomerUpdated links the Stripe customer id back to our user when
// the customer carries a user_id in its metadata
func (h *Handler) handleCustomerUpdated(data map[string]interface{}) {
	userID := metaField(data, "user_id")
	if userID == "" {
		return
	}

	key := storage.SanitizeKey("user_stripe_customer_" + userID)
	err := storage.PutJSON(key, map[string]interface{}{
		"stripeCustomerId": strField(data, "id"),
		"updatedAt":        time.Now(),
	})
	if err != nil {
		utils.LogError(err, "Error linking Stripe customer id in handleCustomerUpdated")
	} else {
		utils.LogSuccessWithUser(userID, "Stripe customer id linked in handleCustomerUpdated")
	}
}

func (h *Handler) handlePendingUpdateApplied(data map[string]interface{}) {
	customerID := strField(data, "customer")
	if customerID == "" {
		return
	}

	email, err := customerEmail(customerID)
	if err != nil {
		utils.LogError(err, "Error retrieving customer in handlePendingUpdateApplied")
		return
	}

	userID := resolveUserID(data, customerID)
	if userID == "" {
		return
	}

	sub, err := stripeSubscription.Get(strField(data, "id"), nil)
	if err != nil {
		utils.LogError(err, "Error retrieving subscription in handlePendingUpdateApplied")
		return
	}

	endDate := subscriptionPeriodEnd(sub)
	now := time.Now()
	err = db.DB.Model(&models.SubscriptionRecord{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"status":        string(sub.Status),
			"end_date":      endDate,
			"is_active":     sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing,
			"is_auto_renew": !sub.CancelAtPeriodEnd,
			"updated_at":    now,
		}).Error
	if err != nil {
		utils.LogError(err, "Error updating subscription record in handlePendingUpdateApplied")
		return
	}

	mailsmodels.SubscriptionUpdated(email, string(sub.Status), endDate.Format("2006-01-02"))
}

func (h *Handler) handlePaymentMethodAttached(data map[string]interface{}) {
	customerID := strField(data, "customer")
	if customerID == "" {
		return
	}

	email, err := customerEmail(customerID)
	if err != nil {
		utils.LogError(err, "Error retrieving customer in handlePaymentMethodAttached")
		return
	}

	cardInfo := ""
	if strField(data, "type") == "card" {
		if card, ok := data["card"].(map[string]interface{}); ok {
			if last4 := card["last4"]; last4 != nil {
				cardInfo = " ending in " + last4.(string)
			}
		}
	}

	mailsmodels.PaymentMethodAdded(email, cardInfo)
}

func (h *Handler) handleChargeSucceeded(data map[string]interface{}) {
	customerID := strField(data, "customer")
	// subscription charges are covered by the invoice events
	if customerID == "" || strField(data, "invoice") != "" {
		return
	}

	email, err := customerEmail(customerID)
	if err != nil {
		utils.LogError(err, "Error retrieving customer in handleChargeSucceeded")
		return
	}

	amount := numField(data, "amount") / 100
	currency := strings.ToUpper(strField(data, "currency"))
	date := time.Unix(int64(numField(data, "created")), 0).Format("2006-01-02")

	mailsmodels.ChargeReceipt(email, amount, currency, date, strField(data, "id"))
}

func (h *Handler) handleChargeFailed(data map[string]interface{}) {
	customerID := strField(data, "customer")
	if customerID == "" {
		return
	}

	email, err := customerEmail(customerID)
	if err != nil {
		utils.LogError(err, "Error retrieving customer in handleChargeFailed")
		return
	}

	amount := numField(data, "amount") / 100
	currency := strings.ToUpper(strField(data, "currency"))
	failureMessage := strField(data, "failure_message")
	if failureMessage == "" {
		failureMessage = "Unknown reason"
	}

	mailsmodels.ChargeFailed(email, amount, currency, failureMessage)
}

// subscriptionPeriodStart mirrors subscriptionPeriodEnd for the period start
func subscriptionPeriodStart(sub *stripe.Subscription) time.Time {
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		return time.Unix(sub.Items.Data[0].CurrentPeriodStart, 0)
	}
	return time.Time{}
}

// itemPeriodEnd digs the current period end out of a raw subscription
// payload, where it sits on the first subscription item
func itemPeriodEnd(data map[string]interface{}) time.Time {
	items, ok := data["items"].(map[string]interface{})
	if !ok {
		return time.Time{}
	}
	list, ok := items["data"].([]interface{})
	if !ok || len(list) == 0 {
		return time.Time{}
	}
	item, ok := list[0].(map[string]interface{})
	if !ok {
		return time.Time{}
	}
	return time.Unix(int64(numField(item, "current_period_end")), 0)
}
