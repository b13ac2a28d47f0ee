package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"account-core/internal/schemas"
)

// MockAccountService is a testify mock of services.AccountSvc.
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, request *schemas.RegistrationRequest) (*schemas.PendingAccount, error) {
	args := m.Called(ctx, request)
	pending, _ := args.Get(0).(*schemas.PendingAccount)
	return pending, args.Error(1)
}

func (m *MockAccountService) Activate(ctx context.Context, activationKey string) (*schemas.AccountDTO, error) {
	args := m.Called(ctx, activationKey)
	account, _ := args.Get(0).(*schemas.AccountDTO)
	return account, args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, email, password string) (*schemas.TokenDTO, error) {
	args := m.Called(ctx, email, password)
	token, _ := args.Get(0).(*schemas.TokenDTO)
	return token, args.Error(1)
}

func (m *MockAccountService) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAccountService) ResetPassword(ctx context.Context, resetKey, newPassword string) error {
	return m.Called(ctx, resetKey, newPassword).Error(0)
}

func (m *MockAccountService) UpdatePassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func (m *MockAccountService) UpdateProfile(ctx context.Context, token string, fields schemas.ProfileFields) (*schemas.AccountDTO, error) {
	args := m.Called(ctx, token, fields)
	account, _ := args.Get(0).(*schemas.AccountDTO)
	return account, args.Error(1)
}

func (m *MockAccountService) UpdateProfileAsAdmin(ctx context.Context, id int64, fields schemas.ProfileFields) (*schemas.AccountDTO, error) {
	args := m.Called(ctx, id, fields)
	account, _ := args.Get(0).(*schemas.AccountDTO)
	return account, args.Error(1)
}

func (m *MockAccountService) RemoveAccount(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountService) RemoveOwnAccount(ctx context.Context, token string, id int64) (bool, error) {
	args := m.Called(ctx, token, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, token string) (*schemas.AccountDTO, error) {
	args := m.Called(ctx, token)
	account, _ := args.Get(0).(*schemas.AccountDTO)
	return account, args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, id int64) (*schemas.AccountDTO, error) {
	args := m.Called(ctx, id)
	account, _ := args.Get(0).(*schemas.AccountDTO)
	return account, args.Error(1)
}

func (m *MockAccountService) AccountAuthorities(ctx context.Context, id int64) ([]string, error) {
	args := m.Called(ctx, id)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context) ([]schemas.AccountDTO, error) {
	args := m.Called(ctx)
	accounts, _ := args.Get(0).([]schemas.AccountDTO)
	return accounts, args.Error(1)
}

func (m *MockAccountService) ListAccountsPage(ctx context.Context, offset, limit int) ([]schemas.AccountDTO, int64, error) {
	args := m.Called(ctx, offset, limit)
	accounts, _ := args.Get(0).([]schemas.AccountDTO)
	return accounts, args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountService) VerifySession(ctx context.Context, token string) bool {
	return m.Called(ctx, token).Bool(0)
}

func (m *MockAccountService) VerifyAdminSession(ctx context.Context, token string) (*schemas.SessionClaims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*schemas.SessionClaims)
	return claims, args.Error(1)
}

func (m *MockAccountService) GrantAdmin(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAccountService) RevokeAdmin(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAccountService) ListAuthorities(ctx context.Context) ([]schemas.Authority, error) {
	args := m.Called(ctx)
	authorities, _ := args.Get(0).([]schemas.Authority)
	return authorities, args.Error(1)
}
