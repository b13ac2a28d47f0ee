package mocks

import (
	"github.com/stretchr/testify/mock"

	"account-core/internal/schemas"
)

// MockJwtManager is a mock of the JWTManager used to simulate session tokens in tests.
type MockJwtManager struct {
	mock.Mock
}

// GenerateClaims returns the claims configured for the given account.
func (m *MockJwtManager) GenerateClaims(id int64, email string) *schemas.SessionClaims {
	args := m.Called(id, email)
	return args.Get(0).(*schemas.SessionClaims)
}

// GenerateJWT returns a mock token string and an optional error.
func (m *MockJwtManager) GenerateJWT(claims *schemas.SessionClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

// ValidateJWT returns mock claims and an optional error.
func (m *MockJwtManager) ValidateJWT(tokenString string) (*schemas.SessionClaims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*schemas.SessionClaims)
	return claims, args.Error(1)
}
