package models

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/getori/ori/core-api/utils"
)

// Subscription statuses stored on user_profiles.subscription_status.
// The four plan keys are set when billing succeeds; past_due and
// cancelled are derived from provider webhook events.
const (
	SubscriptionFree           = "free"
	SubscriptionPlusMonthly    = "plus_monthly"
	SubscriptionPlusYearly     = "plus_yearly"
	SubscriptionPremiumMonthly = "premium_monthly"
	SubscriptionPremiumYearly  = "premium_yearly"
	SubscriptionPastDue        = "past_due"
	SubscriptionCancelled      = "cancelled"
)

type UserProfile struct {
	ID                     string            `gorm:"primaryKey" json:"id"`
	UserID                 string            `gorm:"column:user_id" json:"user_id"`
	FullName               *string           `json:"full_name"`
	Headline               *string           `json:"headline"`
	Bio                    *string           `json:"bio"`
	Location               *string           `json:"location"`
	YearsOfExperience      *int              `json:"years_of_experience"`
	DesiredRoles           utils.StringArray `gorm:"type:jsonb" json:"desired_roles"`
	Skills                 utils.StringArray `gorm:"type:jsonb" json:"skills"`
	StripeCustomerID       *string           `json:"stripe_customer_id"`
	StripeSubscriptionID   *string           `json:"stripe_subscription_id"`
	SubscriptionStatus     string            `json:"subscription_status"`
	MonthlyJobMatchesUsed  int               `json:"monthly_job_matches_used"`
	MonthlyJobMatchesLimit int               `json:"monthly_job_matches_limit"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// HasPaidPlan reports whether the profile is on one of the four plan keys.
func (p *UserProfile) HasPaidPlan() bool {
	switch p.SubscriptionStatus {
	case SubscriptionPlusMonthly, SubscriptionPlusYearly,
		SubscriptionPremiumMonthly, SubscriptionPremiumYearly:
		return true
	}
	return false
}

// HasUnlimitedMatches reports whether the match quota applies.
func (p *UserProfile) HasUnlimitedMatches() bool {
	return p.SubscriptionStatus == SubscriptionPremiumMonthly ||
		p.SubscriptionStatus == SubscriptionPremiumYearly
}

func (store *ApiStore) FetchProfileByUserID(userID string) utils.Result[*UserProfile] {
	var profile UserProfile

	result := store.db.Connection.
		Where("user_id = ?", userID).
		Limit(1).
		Find(&profile)

	if result.Error != nil {
		return failedProfileResult(result.Error)
	}
	if profile.ID == "" {
		return failedProfileResult(gorm.ErrRecordNotFound)
	}

	return utils.SuccessResult(&profile)
}

func (store *ApiStore) FetchProfileByStripeCustomerID(customerID string) utils.Result[*UserProfile] {
	var profile UserProfile

	result := store.db.Connection.
		Where("stripe_customer_id = ?", customerID).
		Limit(1).
		Find(&profile)

	if result.Error != nil {
		return failedProfileResult(result.Error)
	}
	if profile.ID == "" {
		return failedProfileResult(gorm.ErrRecordNotFound)
	}

	return utils.SuccessResult(&profile)
}

// SaveStripeCustomerID stores a freshly created customer id on the profile
// and resets the status to free until billing confirms a plan.
func (store *ApiStore) SaveStripeCustomerID(userID string, customerID string) utils.Result[bool] {
	result := store.db.Connection.
		Model(&UserProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"stripe_customer_id":  customerID,
			"subscription_status": SubscriptionFree,
		})

	if result.Error != nil {
		return utils.FailedBoolResult(result.Error)
	}

	return utils.SuccessResult(true)
}

// SetSubscriptionByCustomerID is the webhook write path: an unconditional
// update keyed on the provider's customer id, last write wins.
func (store *ApiStore) SetSubscriptionByCustomerID(customerID string, subscriptionID string, status string) utils.Result[bool] {
	result := store.db.Connection.
		Model(&UserProfile{}).
		Where("stripe_customer_id = ?", customerID).
		Updates(map[string]any{
			"stripe_subscription_id": subscriptionID,
			"subscription_status":    status,
		})

	if result.Error != nil {
		return utils.FailedBoolResult(result.Error)
	}

	return utils.SuccessResult(true)
}

func (store *ApiStore) SetSubscriptionStatusByCustomerID(customerID string, status string) utils.Result[bool] {
	result := store.db.Connection.
		Model(&UserProfile{}).
		Where("stripe_customer_id = ?", customerID).
		Update("subscription_status", status)

	if result.Error != nil {
		return utils.FailedBoolResult(result.Error)
	}

	return utils.SuccessResult(true)
}

// ClearSubscriptionByCustomerID drops the subscription id and marks the
// profile cancelled.
func (store *ApiStore) ClearSubscriptionByCustomerID(customerID string) utils.Result[bool] {
	result := store.db.Connection.
		Model(&UserProfile{}).
		Where("stripe_customer_id = ?", customerID).
		Updates(map[string]any{
			"stripe_subscription_id": nil,
			"subscription_status":    SubscriptionCancelled,
		})

	if result.Error != nil {
		return utils.FailedBoolResult(result.Error)
	}

	return utils.SuccessResult(true)
}

func (store *ApiStore) SetSubscriptionByUserID(userID string, subscriptionID string, status string) utils.Result[bool] {
	result := store.db.Connection.
		Model(&UserProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"stripe_subscription_id": subscriptionID,
			"subscription_status":    status,
		})

	if result.Error != nil {
		return utils.FailedBoolResult(result.Error)
	}

	return utils.SuccessResult(true)
}

func (store *ApiStore) IncrementMatchUsage(userID string) utils.Result[bool] {
	result := store.db.Connection.
		Model(&UserProfile{}).
		Where("user_id = ?", userID).
		Update("monthly_job_matches_used", gorm.Expr("monthly_job_matches_used + ?", 1))

	if result.Error != nil {
		return utils.FailedBoolResult(result.Error)
	}

	return utils.SuccessResult(true)
}

func failedProfileResult(err error) utils.Result[*UserProfile] {
	result := utils.FailedResult[*UserProfile](err)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		result = result.NonCapturable().NonRetryable()
	}

	return result
}
