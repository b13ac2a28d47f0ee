package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockMailManager records outgoing mails instead of sending them.
type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) Send(ctx context.Context, from string, to, cc []string, subject, text, html string) error {
	args := m.Called(ctx, from, to, cc, subject, text, html)
	return args.Error(0)
}

func (m *MockMailManager) SendActivationMail(ctx context.Context, email, activationURL string) error {
	args := m.Called(ctx, email, activationURL)
	return args.Error(0)
}

func (m *MockMailManager) SendPasswordResetMail(ctx context.Context, email, resetURL string) error {
	args := m.Called(ctx, email, resetURL)
	return args.Error(0)
}
