package tests

import (
	"context"

	"github.com/getori/ori/core-api/mailer"
)

type MockSender struct {
	LastEmail      mailer.Email
	ExecutionCount int
	ReturnedID     string
	ReturnedError  error
}

func (ms *MockSender) Send(ctx context.Context, email mailer.Email) (string, error) {
	ms.ExecutionCount++
	ms.LastEmail = email

	if ms.ReturnedError != nil {
		return "", ms.ReturnedError
	}

	return ms.ReturnedID, nil
}
