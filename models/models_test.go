package models

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/getori/ori/core-api/tests/mockdb"
)

func setupApiStore(t *testing.T) (*ApiStore, sqlmock.Sqlmock, func()) {
	db, mock, delete := tests.SetupMockStore(t)

	store := &ApiStore{
		db: db,
	}

	return store, mock, delete
}
