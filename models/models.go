package models

import (
	"github.com/getori/ori/core-api/config/database"
)

// ApiStore owns all Postgres table access. Every method returns a
// utils.Result so callers can distinguish not-found from real failures.
type ApiStore struct {
	db *database.DB
}

func NewApiStore(db *database.DB) *ApiStore {
	return &ApiStore{
		db: db,
	}
}
