package tests

import (
	"github.com/getori/ori/core-api/models"
	"github.com/getori/ori/core-api/utils"
)

type MockNotifierStore struct {
	Profile        *models.UserProfile
	ProfileError   error
	Preferences    *models.NotificationPreferences
	PreferencesErr error

	InsertedNotification *models.Notification
	InsertReturnsNew     bool
	InsertError          error

	SentID         string
	SentEmailID    string
	FailedID       string
	ExecutionCount int
}

func (ms *MockNotifierStore) FetchProfileByUserID(userID string) utils.Result[*models.UserProfile] {
	if ms.ProfileError != nil {
		return utils.FailedResult[*models.UserProfile](ms.ProfileError)
	}
	return utils.SuccessResult(ms.Profile)
}

func (ms *MockNotifierStore) FetchProfileByStripeCustomerID(customerID string) utils.Result[*models.UserProfile] {
	if ms.ProfileError != nil {
		return utils.FailedResult[*models.UserProfile](ms.ProfileError)
	}
	return utils.SuccessResult(ms.Profile)
}

func (ms *MockNotifierStore) FetchOrCreatePreferences(userID string) utils.Result[*models.NotificationPreferences] {
	if ms.PreferencesErr != nil {
		return utils.FailedResult[*models.NotificationPreferences](ms.PreferencesErr)
	}
	return utils.SuccessResult(ms.Preferences)
}

func (ms *MockNotifierStore) InsertNotification(notification *models.Notification) utils.Result[bool] {
	ms.ExecutionCount++
	ms.InsertedNotification = notification
	notification.ID = "notif_mock"

	if ms.InsertError != nil {
		return utils.FailedBoolResult(ms.InsertError)
	}
	return utils.SuccessResult(ms.InsertReturnsNew)
}

func (ms *MockNotifierStore) MarkNotificationSent(id string, resendEmailID string) utils.Result[bool] {
	ms.SentID = id
	ms.SentEmailID = resendEmailID
	return utils.SuccessResult(true)
}

func (ms *MockNotifierStore) MarkNotificationFailed(id string) utils.Result[bool] {
	ms.FailedID = id
	return utils.SuccessResult(true)
}
