package models

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

var fetchProfileByUserIDQuery = regexp.QuoteMeta(
	`SELECT * FROM "user_profiles" WHERE user_id = $1 LIMIT $2`,
)

var fetchProfileByCustomerIDQuery = regexp.QuoteMeta(
	`SELECT * FROM "user_profiles" WHERE stripe_customer_id = $1 LIMIT $2`,
)

func profileColumns() []string {
	return []string{"id", "user_id", "stripe_customer_id", "subscription_status", "monthly_job_matches_used", "monthly_job_matches_limit", "created_at", "updated_at"}
}

func TestFetchProfileByUserID(t *testing.T) {
	t.Run("should return profile when found", func(t *testing.T) {
		// Setup
		store, mock, cleanup := setupApiStore(t)
		defer cleanup()

		userID := "1a901a90-1a90-1a90-1a90-1a901a901a90"
		timestamp := time.Now()

		rows := sqlmock.NewRows(profileColumns()).
			AddRow("profile123", userID, "cus_123", SubscriptionPlusMonthly, 2, 10, timestamp, timestamp)

		mock.ExpectQuery(fetchProfileByUserIDQuery).
			WithArgs(userID, 1).
			WillReturnRows(rows)

		// Execute
		result := store.FetchProfileByUserID(userID)

		// Assert
		assert.True(t, result.Success())

		profile := result.Value()
		assert.NotNil(t, profile)
		assert.Equal(t, "profile123", profile.ID)
		assert.Equal(t, userID, profile.UserID)
		assert.Equal(t, SubscriptionPlusMonthly, profile.SubscriptionStatus)
		assert.True(t, profile.HasPaidPlan())
		assert.False(t, profile.HasUnlimitedMatches())
	})

	t.Run("should return not found when no row matches", func(t *testing.T) {
		// Setup
		store, mock, cleanup := setupApiStore(t)
		defer cleanup()

		userID := "1a901a90-1a90-1a90-1a90-1a901a901a90"

		mock.ExpectQuery(fetchProfileByUserIDQuery).
			WithArgs(userID, 1).
			WillReturnRows(sqlmock.NewRows(profileColumns()))

		// Execute
		result := store.FetchProfileByUserID(userID)

		// Assert
		assert.False(t, result.Success())
		assert.Equal(t, gorm.ErrRecordNotFound, result.Error())
		assert.False(t, result.IsCapturable())
		assert.False(t, result.IsRetryable())
	})

	t.Run("should handle database connection error", func(t *testing.T) {
		// Setup
		store, mock, cleanup := setupApiStore(t)
		defer cleanup()

		userID := "1a901a90-1a90-1a90-1a90-1a901a901a90"
		dbError := errors.New("database connection failed")

		mock.ExpectQuery(fetchProfileByUserIDQuery).
			WithArgs(userID, 1).
			WillReturnError(dbError)

		// Execute
		result := store.FetchProfileByUserID(userID)

		// Assert
		assert.False(t, result.Success())
		assert.Equal(t, dbError, result.Error())
		assert.True(t, result.IsCapturable())
		assert.True(t, result.IsRetryable())
	})
}

func TestFetchProfileByStripeCustomerID(t *testing.T) {
	t.Run("should return profile when found", func(t *testing.T) {
		// Setup
		store, mock, cleanup := setupApiStore(t)
		defer cleanup()

		customerID := "cus_123"
		timestamp := time.Now()

		rows := sqlmock.NewRows(profileColumns()).
			AddRow("profile123", "user123", customerID, SubscriptionFree, 0, 10, timestamp, timestamp)

		mock.ExpectQuery(fetchProfileByCustomerIDQuery).
			WithArgs(customerID, 1).
			WillReturnRows(rows)

		// Execute
		result := store.FetchProfileByStripeCustomerID(customerID)

		// Assert
		assert.True(t, result.Success())
		assert.Equal(t, customerID, *result.Value().StripeCustomerID)
	})

	t.Run("should return not found for unknown customer", func(t *testing.T) {
		// Setup
		store, mock, cleanup := setupApiStore(t)
		defer cleanup()

		mock.ExpectQuery(fetchProfileByCustomerIDQuery).
			WithArgs("cus_missing", 1).
			WillReturnRows(sqlmock.NewRows(profileColumns()))

		// Execute
		result := store.FetchProfileByStripeCustomerID("cus_missing")

		// Assert
		assert.False(t, result.Success())
		assert.Equal(t, gorm.ErrRecordNotFound, result.Error())
		assert.False(t, result.IsCapturable())
	})
}

func TestSetSubscriptionByCustomerID(t *testing.T) {
	t.Run("should update subscription id and status", func(t *testing.T) {
		// Setup
		store, mock, cleanup := setupApiStore(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(
			`UPDATE "user_profiles" SET "stripe_subscription_id"=$1,"subscription_status"=$2,"updated_at"=$3 WHERE stripe_customer_id = $4`,
		)).
			WithArgs("sub_123", SubscriptionPremiumYearly, sqlmock.AnyArg(), "cus_123").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Execute
		result := store.SetSubscriptionByCustomerID("cus_123", "sub_123", SubscriptionPremiumYearly)

		// Assert
		assert.True(t, result.Success())
		assert.True(t, result.Value())
	})

	t.Run("should handle database error", func(t *testing.T) {
		// Setup
		store, mock, cleanup := setupApiStore(t)
		defer cleanup()

		dbError := errors.New("database connection failed")

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(
			`UPDATE "user_profiles" SET "stripe_subscription_id"=$1,"subscription_status"=$2,"updated_at"=$3 WHERE stripe_customer_id = $4`,
		)).
			WithArgs("sub_123", SubscriptionPremiumYearly, sqlmock.AnyArg(), "cus_123").
			WillReturnError(dbError)
		mock.ExpectRollback()

		// Execute
		result := store.SetSubscriptionByCustomerID("cus_123", "sub_123", SubscriptionPremiumYearly)

		// Assert
		assert.False(t, result.Success())
		assert.Equal(t, dbError, result.Error())
		assert.True(t, result.IsCapturable())
	})
}

func TestClearSubscriptionByCustomerID(t *testing.T) {
	t.Run("should drop subscription and mark cancelled", func(t *testing.T) {
		// Setup
		store, mock, cleanup := setupApiStore(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(
			`UPDATE "user_profiles" SET "stripe_subscription_id"=$1,"subscription_status"=$2,"updated_at"=$3 WHERE stripe_customer_id = $4`,
		)).
			WithArgs(nil, SubscriptionCancelled, sqlmock.AnyArg(), "cus_123").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Execute
		result := store.ClearSubscriptionByCustomerID("cus_123")

		// Assert
		assert.True(t, result.Success())
	})
}

func TestIncrementMatchUsage(t *testing.T) {
	t.Run("should increment the usage counter", func(t *testing.T) {
		// Setup
		store, mock, cleanup := setupApiStore(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(
			`UPDATE "user_profiles" SET "monthly_job_matches_used"=monthly_job_matches_used + $1,"updated_at"=$2 WHERE user_id = $3`,
		)).
			WithArgs(1, sqlmock.AnyArg(), "user123").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Execute
		result := store.IncrementMatchUsage("user123")

		// Assert
		assert.True(t, result.Success())
	})
}

func TestFailedProfileResult(t *testing.T) {
	// Wrapped not-found errors stay non-capturable and non-retryable.
	wrapped := fmt.Errorf("fetch profile: %w", gorm.ErrRecordNotFound)
	result := failedProfileResult(wrapped)
	assert.False(t, result.IsCapturable())
	assert.False(t, result.IsRetryable())

	other := failedProfileResult(errors.New("connection reset"))
	assert.True(t, other.IsCapturable())
	assert.True(t, other.IsRetryable())
}

func TestHasUnlimitedMatches(t *testing.T) {
	premium := &UserProfile{SubscriptionStatus: SubscriptionPremiumMonthly}
	assert.True(t, premium.HasUnlimitedMatches())

	plus := &UserProfile{SubscriptionStatus: SubscriptionPlusYearly}
	assert.False(t, plus.HasUnlimitedMatches())
	assert.True(t, plus.HasPaidPlan())

	free := &UserProfile{SubscriptionStatus: SubscriptionFree}
	assert.False(t, free.HasUnlimitedMatches())
	assert.False(t, free.HasPaidPlan())
}
