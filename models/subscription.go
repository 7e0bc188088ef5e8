package models

import (
	"time"
)

type SubscriptionPlan struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	PricePerMonth      float64  `json:"price_per_month"`
	Features           []string `json:"features"`
	StripePriceID      string   `json:"stripe_price_id,omitempty"`
	IsAnnual           bool     `json:"is_annual"`
	DiscountPercentage int      `json:"discount_percentage,omitempty"`
}

type CreateCheckoutSessionRequest struct {
	PlanID     string `json:"plan_id" binding:"required"`
	SuccessURL string `json:"success_url" binding:"required"`
	CancelURL  string `json:"cancel_url" binding:"required"`
}

type CheckoutSessionResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// PaymentMethodSummary mirrors the card details of the Stripe default payment
// method, for display only
type PaymentMethodSummary struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"exp_month"`
	ExpYear  int64  `json:"exp_year"`
}

// CurrentSubscription is re-derived from Stripe on every status query, it is
// never authoritative storage
type CurrentSubscription struct {
	PlanID             string                `json:"plan_id"`
	Status             string                `json:"status"`
	CurrentPeriodEnd   time.Time             `json:"current_period_end"`
	CancelAtPeriodEnd  bool                  `json:"cancel_at_period_end"`
	TrialEnd           *time.Time            `json:"trial_end,omitempty"`
	SubscriptionID     string                `json:"subscription_id,omitempty"`
	PaymentMethod      *PaymentMethodSummary `json:"payment_method,omitempty"`
}

type SubscriptionStatusResponse struct {
	IsActive       bool                 `json:"is_active"`
	IsTrial        bool                 `json:"is_trial"`
	Subscription   *CurrentSubscription `json:"subscription,omitempty"`
	AvailablePlans []SubscriptionPlan   `json:"available_plans"`
}

type CancelSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" binding:"required"`
	AtPeriodEnd    *bool  `json:"at_period_end"`
}

type ReactivateSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" binding:"required"`
}

type CustomerPortalRequest struct {
	ReturnURL string `json:"return_url" binding:"required"`
}

type CustomerPortalResponse struct {
	URL string `json:"url"`
}

// SubscriptionRecord is the denormalized copy of a user's subscription,
// written by the webhook handler. It can drift from Stripe's live state
// between webhook deliveries.
type SubscriptionRecord struct {
	UserID               string     `json:"userId" gorm:"primaryKey"`
	PlanID               string     `json:"planId"`
	PlanName             string     `json:"planName"`
	Status               string     `json:"status"`
	StartDate            *time.Time `json:"startDate"`
	EndDate              *time.Time `json:"endDate"`
	TrialEndDate         *time.Time `json:"trialEndDate"`
	IsTrial              bool       `json:"isTrial"`
	IsActive             bool       `json:"isActive"`
	IsAutoRenew          bool       `json:"isAutoRenew"`
	StripeCustomerId     string     `json:"stripeCustomerId" gorm:"index"`
	StripeSubscriptionId string     `json:"stripeSubscriptionId"`
	CanceledAt           *time.Time `json:"canceledAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}
