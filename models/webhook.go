package models

import (
	"encoding/json"
	"time"
)

type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WebhookEventEntry is one line of the capped audit log kept in the document
// store under the events-log key
type WebhookEventEntry struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// SubscriptionMetrics are aggregate counters folded from webhook events.
// Updates are read-modify-write on the whole document, last writer wins.
type SubscriptionMetrics struct {
	TotalSubscriptions    int       `json:"total_subscriptions"`
	ActiveSubscriptions   int       `json:"active_subscriptions"`
	TrialSubscriptions    int       `json:"trial_subscriptions"`
	CanceledSubscriptions int       `json:"canceled_subscriptions"`
	RevenueMonthlyUSD     float64   `json:"revenue_monthly_usd"`
	LastUpdated           time.Time `json:"last_updated"`
}
