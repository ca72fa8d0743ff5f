package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/getori/ori/core-api/utils"
)

const (
	ApplicationSaved        = "saved"
	ApplicationApplied      = "applied"
	ApplicationInterviewing = "interviewing"
	ApplicationOffer        = "offer"
	ApplicationRejected     = "rejected"
)

type Application struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"column:user_id" json:"user_id"`
	JobTitle        string    `json:"job_title"`
	Company         string    `json:"company"`
	Location        *string   `json:"location"`
	JobURL          *string   `gorm:"column:job_url" json:"job_url"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes"`
	ApplicationDate time.Time `json:"application_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ApplicationStats struct {
	Total        int `json:"total"`
	Saved        int `json:"saved"`
	Applied      int `json:"applied"`
	Interviewing int `json:"interviewing"`
	Offers       int `json:"offers"`
	Rejected     int `json:"rejected"`
}

func (store *ApiStore) ListApplications(userID string, status string) utils.Result[[]Application] {
	var applications []Application

	query := store.db.Connection.
		Where("user_id = ?", userID).
		Order("application_date DESC")

	if status != "" {
		query = query.Where("status = ?", status)
	}

	result := query.Find(&applications)
	if result.Error != nil {
		return utils.FailedResult[[]Application](result.Error)
	}

	return utils.SuccessResult(applications)
}

func (store *ApiStore) FetchApplicationStats(userID string) utils.Result[*ApplicationStats] {
	var applications []Application

	result := store.db.Connection.
		Select("status").
		Where("user_id = ?", userID).
		Find(&applications)

	if result.Error != nil {
		return utils.FailedResult[*ApplicationStats](result.Error)
	}

	stats := &ApplicationStats{Total: len(applications)}
	for _, app := range applications {
		switch app.Status {
		case ApplicationSaved:
			stats.Saved++
		case ApplicationApplied:
			stats.Applied++
		case ApplicationInterviewing:
			stats.Interviewing++
		case ApplicationOffer:
			stats.Offers++
		case ApplicationRejected:
			stats.Rejected++
		}
	}

	return utils.SuccessResult(stats)
}

func (store *ApiStore) CreateApplication(application *Application) utils.Result[*Application] {
	if application.ID == "" {
		application.ID = uuid.NewString()
	}
	if application.ApplicationDate.IsZero() {
		application.ApplicationDate = time.Now().UTC()
	}

	result := store.db.Connection.Create(application)
	if result.Error != nil {
		return utils.FailedResult[*Application](result.Error)
	}

	return utils.SuccessResult(application)
}

// UpdateApplication applies the given column updates to an application the
// user owns. Not-found is reported as a non-capturable failure.
func (store *ApiStore) UpdateApplication(userID string, id string, updates map[string]any) utils.Result[*Application] {
	result := store.db.Connection.
		Model(&Application{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)

	if result.Error != nil {
		return utils.FailedResult[*Application](result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.FailedResult[*Application](gorm.ErrRecordNotFound).NonCapturable().NonRetryable()
	}

	var application Application
	if err := store.db.Connection.
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&application).Error; err != nil {
		return utils.FailedResult[*Application](err)
	}

	return utils.SuccessResult(&application)
}

func (store *ApiStore) DeleteApplication(userID string, id string) utils.Result[bool] {
	result := store.db.Connection.
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Application{})

	if result.Error != nil {
		return utils.FailedBoolResult(result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.FailedBoolResult(gorm.ErrRecordNotFound).NonCapturable().NonRetryable()
	}

	return utils.SuccessResult(true)
}
