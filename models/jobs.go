package models

import (
	"time"

	"github.com/getori/ori/core-api/utils"
)

type Job struct {
	ID             string            `gorm:"primaryKey" json:"id"`
	Title          string            `json:"title"`
	Company        string            `json:"company"`
	Location       *string           `json:"location"`
	WorkType       *string           `json:"work_type"`
	SalaryMin      *int              `json:"salary_min"`
	SalaryMax      *int              `json:"salary_max"`
	Description    *string           `json:"description"`
	RequiredSkills utils.StringArray `gorm:"type:jsonb" json:"required_skills"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (store *ApiStore) ListJobs(limit int) utils.Result[[]Job] {
	var jobs []Job

	result := store.db.Connection.
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs)

	if result.Error != nil {
		return utils.FailedResult[[]Job](result.Error)
	}

	return utils.SuccessResult(jobs)
}

// SearchJobsByTitle runs a case-insensitive substring match. The query is
// sanitized at the API boundary; SQL wildcards are stripped here as well.
func (store *ApiStore) SearchJobsByTitle(query string, limit int) utils.Result[[]Job] {
	var jobs []Job

	result := store.db.Connection.
		Where("title ILIKE ?", "%"+query+"%").
		Limit(limit).
		Find(&jobs)

	if result.Error != nil {
		return utils.FailedResult[[]Job](result.Error)
	}

	return utils.SuccessResult(jobs)
}
