// Package services implements the account lifecycle on top of the managers and the account directory.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"account-core/internal/goerrors"
	"account-core/internal/managers"
	"account-core/internal/repositories"
	"account-core/internal/schemas"
	"account-core/internal/utils"
)

// AccountSvc is the account lifecycle as seen by the HTTP handlers.
type AccountSvc interface {
	Register(ctx context.Context, request *schemas.RegistrationRequest) (*schemas.PendingAccount, error)
	Activate(ctx context.Context, activationKey string) (*schemas.AccountDTO, error)
	Login(ctx context.Context, email, password string) (*schemas.TokenDTO, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetKey, newPassword string) error
	UpdatePassword(ctx context.Context, token, newPassword string) error
	UpdateProfile(ctx context.Context, token string, fields schemas.ProfileFields) (*schemas.AccountDTO, error)
	UpdateProfileAsAdmin(ctx context.Context, id int64, fields schemas.ProfileFields) (*schemas.AccountDTO, error)
	RemoveAccount(ctx context.Context, id int64) (bool, error)
	RemoveOwnAccount(ctx context.Context, token string, id int64) (bool, error)
	GetAccount(ctx context.Context, token string) (*schemas.AccountDTO, error)
	GetAccountByID(ctx context.Context, id int64) (*schemas.AccountDTO, error)
	AccountAuthorities(ctx context.Context, id int64) ([]string, error)
	ListAccounts(ctx context.Context) ([]schemas.AccountDTO, error)
	ListAccountsPage(ctx context.Context, offset, limit int) ([]schemas.AccountDTO, int64, error)
	VerifySession(ctx context.Context, token string) bool
	VerifyAdminSession(ctx context.Context, token string) (*schemas.SessionClaims, error)
	GrantAdmin(ctx context.Context, id int64) error
	RevokeAdmin(ctx context.Context, id int64) error
	ListAuthorities(ctx context.Context) ([]schemas.Authority, error)
}

// AccountService orchestrates registration, activation, login, password resets, profile
// updates and removal. It keeps no per-user state between calls; everything is read from
// the directory on each request.
type AccountService struct {
	accounts    repositories.AccountDirectory
	authz       managers.AuthorizationMgr
	credentials managers.CredentialMgr
	tokens      managers.JWTMgr
	mailer      managers.MailMgr
	webClient   string

	notifications sync.WaitGroup
}

// NewAccountService wires the lifecycle. webClientURL is the base of the links sent by mail
// and is expected to end with a slash.
func NewAccountService(
	accounts repositories.AccountDirectory,
	authz managers.AuthorizationMgr,
	credentials managers.CredentialMgr,
	tokens managers.JWTMgr,
	mailer managers.MailMgr,
	webClientURL string,
) *AccountService {
	return &AccountService{
		accounts:    accounts,
		authz:       authz,
		credentials: credentials,
		tokens:      tokens,
		mailer:      mailer,
		webClient:   webClientURL,
	}
}

// Register creates a pending account and sends its activation link.
// The first account ever created is granted the ADMIN authority.
func (s *AccountService) Register(ctx context.Context, request *schemas.RegistrationRequest) (*schemas.PendingAccount, error) {
	email := schemas.NormalizeEmail(request.Email)

	if _, err := s.accounts.FindByEmail(ctx, email, true); err == nil {
		return nil, fmt.Errorf("%w: email %s is taken", goerrors.ErrConflict, email)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, translate(err)
	}

	digest, err := s.credentials.Hash(ctx, request.Password)
	if err != nil {
		return nil, err
	}

	activationKey, err := s.credentials.GenerateKey()
	if err != nil {
		return nil, err
	}

	user := &schemas.User{
		Email:         email,
		PasswordHash:  digest,
		ActivationKey: &activationKey,
	}
	authority, err := s.accounts.Create(ctx, user, s.authz.InitialAuthority)
	if err != nil {
		return nil, translate(err)
	}
	utils.LogMessageWithFields(ctx, "info", fmt.Sprintf("Registered account %d with authority %s", user.ID, authority))

	s.notify(ctx, "activation", func(ctx context.Context) error {
		return s.mailer.SendActivationMail(ctx, email, s.webClient+"activate/"+activationKey)
	})

	return &schemas.PendingAccount{
		Account:   *schemas.NewAccountDTO(user),
		Authority: authority,
		Activated: false,
	}, nil
}

// Activate consumes the activation key. A key can be consumed exactly once.
func (s *AccountService) Activate(ctx context.Context, activationKey string) (*schemas.AccountDTO, error) {
	if !managers.ValidKey(activationKey) {
		return nil, fmt.Errorf("%w: malformed activation key", goerrors.ErrNotFound)
	}

	user, err := s.accounts.FindByActivationKey(ctx, activationKey)
	if err != nil {
		return nil, translate(err)
	}

	now := time.Now()
	activated := true
	err = s.accounts.Update(ctx, user.ID, schemas.UserUpdate{
		Activated:          &activated,
		ActivatedDate:      &now,
		ClearActivationKey: true,
		MatchActivationKey: &activationKey,
	})
	if err != nil {
		return nil, translate(err)
	}
	utils.LogMessageWithFields(ctx, "info", fmt.Sprintf("Activated account %d", user.ID))

	return schemas.NewAccountDTO(user), nil
}

// Login issues a session token. Unknown emails, deleted accounts, wrong passwords and
// accounts with a pending reset all fail with the same ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*schemas.TokenDTO, error) {
	user, err := s.accounts.FindByEmail(ctx, email, true)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, goerrors.ErrInvalidCredentials
		}
		return nil, translate(err)
	}

	if !s.credentials.Verify(ctx, password, user.PasswordHash) {
		return nil, goerrors.ErrInvalidCredentials
	}
	// The stored credential is the undisclosed temporary password until the reset completes.
	if user.ResetPending() {
		return nil, goerrors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateJWT(s.tokens.GenerateClaims(user.ID, user.Email))
	if err != nil {
		return nil, err
	}

	return &schemas.TokenDTO{Token: token}, nil
}

// RequestPasswordReset replaces the current password with a random one nobody knows and
// sends a reset link.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.accounts.FindByEmail(ctx, email, true)
	if err != nil {
		return translate(err)
	}

	resetKey, err := s.credentials.GenerateKey()
	if err != nil {
		return err
	}
	temporaryPassword, err := s.credentials.GenerateTemporaryPassword()
	if err != nil {
		return err
	}
	digest, err := s.credentials.Hash(ctx, temporaryPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	err = s.accounts.Update(ctx, user.ID, schemas.UserUpdate{
		PasswordHash: &digest,
		ResetKey:     &resetKey,
		ResetDate:    &now,
	})
	if err != nil {
		return translate(err)
	}
	utils.LogMessageWithFields(ctx, "info", fmt.Sprintf("Password reset requested for account %d", user.ID))

	s.notify(ctx, "password reset", func(ctx context.Context) error {
		return s.mailer.SendPasswordResetMail(ctx, user.Email, s.webClient+"password-reset-finish/"+resetKey)
	})

	return nil
}

// ResetPassword completes a reset with the key from the reset mail.
func (s *AccountService) ResetPassword(ctx context.Context, resetKey, newPassword string) error {
	if !managers.ValidKey(resetKey) {
		return fmt.Errorf("%w: malformed reset key", goerrors.ErrNotFound)
	}

	user, err := s.accounts.FindByResetKey(ctx, resetKey)
	if err != nil {
		return translate(err)
	}

	digest, err := s.credentials.Hash(ctx, newPassword)
	if err != nil {
		return err
	}

	err = s.accounts.Update(ctx, user.ID, schemas.UserUpdate{
		PasswordHash:  &digest,
		ClearReset:    true,
		MatchResetKey: &resetKey,
	})
	if err != nil {
		return translate(err)
	}
	utils.LogMessageWithFields(ctx, "info", fmt.Sprintf("Password reset completed for account %d", user.ID))

	return nil
}

func (s *AccountService) UpdatePassword(ctx context.Context, token, newPassword string) error {
	user, err := s.sessionUser(ctx, token)
	if err != nil {
		return err
	}

	digest, err := s.credentials.Hash(ctx, newPassword)
	if err != nil {
		return err
	}

	if err := s.accounts.Update(ctx, user.ID, schemas.UserUpdate{PasswordHash: &digest}); err != nil {
		return translate(err)
	}
	return nil
}

// UpdateProfile changes the names of the account the session belongs to.
func (s *AccountService) UpdateProfile(ctx context.Context, token string, fields schemas.ProfileFields) (*schemas.AccountDTO, error) {
	user, err := s.sessionUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.applyProfile(ctx, user, fields)
}

// UpdateProfileAsAdmin changes the names of any live account.
// Callers must have checked the admin authority of the session beforehand.
func (s *AccountService) UpdateProfileAsAdmin(ctx context.Context, id int64, fields schemas.ProfileFields) (*schemas.AccountDTO, error) {
	user, err := s.accounts.FindByID(ctx, id, true)
	if err != nil {
		return nil, translate(err)
	}
	return s.applyProfile(ctx, user, fields)
}

func (s *AccountService) applyProfile(ctx context.Context, user *schemas.User, fields schemas.ProfileFields) (*schemas.AccountDTO, error) {
	update := schemas.UserUpdate{FirstName: fields.FirstName, LastName: fields.LastName}
	if err := s.accounts.Update(ctx, user.ID, update); err != nil {
		return nil, translate(err)
	}

	if fields.FirstName != nil {
		user.FirstName = fields.FirstName
	}
	if fields.LastName != nil {
		user.LastName = fields.LastName
	}
	return schemas.NewAccountDTO(user), nil
}

// RemoveAccount soft deletes the account. Authorities stay assigned.
// It reports false when there was no live account with the id.
func (s *AccountService) RemoveAccount(ctx context.Context, id int64) (bool, error) {
	removed, err := s.accounts.SoftDelete(ctx, id)
	if err != nil {
		return false, translate(err)
	}
	if removed {
		utils.LogMessageWithFields(ctx, "info", fmt.Sprintf("Removed account %d", id))
	}
	return removed, nil
}

// RemoveOwnAccount removes the account the session belongs to. Any other id is ErrUnauthorized.
func (s *AccountService) RemoveOwnAccount(ctx context.Context, token string, id int64) (bool, error) {
	user, err := s.sessionUser(ctx, token)
	if err != nil {
		return false, err
	}
	if user.ID != id {
		return false, fmt.Errorf("%w: account %d may not remove account %d", goerrors.ErrUnauthorized, user.ID, id)
	}
	return s.RemoveAccount(ctx, id)
}

func (s *AccountService) GetAccount(ctx context.Context, token string) (*schemas.AccountDTO, error) {
	user, err := s.sessionUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return schemas.NewAccountDTO(user), nil
}

func (s *AccountService) GetAccountByID(ctx context.Context, id int64) (*schemas.AccountDTO, error) {
	user, err := s.accounts.FindByID(ctx, id, true)
	if err != nil {
		return nil, translate(err)
	}
	return schemas.NewAccountDTO(user), nil
}

// AccountAuthorities returns the authority names held by a live account.
func (s *AccountService) AccountAuthorities(ctx context.Context, id int64) ([]string, error) {
	if _, err := s.accounts.FindByID(ctx, id, true); err != nil {
		return nil, translate(err)
	}
	names, err := s.authz.Authorities(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return names, nil
}

// ListAccounts returns every live account.
func (s *AccountService) ListAccounts(ctx context.Context) ([]schemas.AccountDTO, error) {
	users, err := s.accounts.List(ctx, 0, 0)
	if err != nil {
		return nil, translate(err)
	}
	return toAccountDTOs(users), nil
}

// ListAccountsPage returns one page of live accounts and the number of live accounts,
// both read from the same snapshot.
func (s *AccountService) ListAccountsPage(ctx context.Context, offset, limit int) ([]schemas.AccountDTO, int64, error) {
	users, total, err := s.accounts.Page(ctx, offset, limit)
	if err != nil {
		return nil, 0, translate(err)
	}
	return toAccountDTOs(users), total, nil
}

// VerifySession reports whether the token is valid and belongs to a live account.
func (s *AccountService) VerifySession(ctx context.Context, token string) bool {
	_, err := s.sessionUser(ctx, token)
	return err == nil
}

// VerifyAdminSession returns the claims of a valid session whose account holds ADMIN.
func (s *AccountService) VerifyAdminSession(ctx context.Context, token string) (*schemas.SessionClaims, error) {
	claims, err := s.tokens.ValidateJWT(token)
	if err != nil {
		return nil, err
	}
	if _, err := s.liveAccount(ctx, claims.ID); err != nil {
		return nil, err
	}

	isAdmin, err := s.authz.IsAdmin(ctx, claims.ID)
	if err != nil {
		return nil, translate(err)
	}
	if !isAdmin {
		return nil, fmt.Errorf("%w: account %d is not an admin", goerrors.ErrUnauthorized, claims.ID)
	}
	return claims, nil
}

func (s *AccountService) GrantAdmin(ctx context.Context, id int64) error {
	if _, err := s.accounts.FindByID(ctx, id, true); err != nil {
		return translate(err)
	}
	return translateIfFailed(s.authz.GrantAdmin(ctx, id))
}

func (s *AccountService) RevokeAdmin(ctx context.Context, id int64) error {
	if _, err := s.accounts.FindByID(ctx, id, true); err != nil {
		return translate(err)
	}
	return translateIfFailed(s.authz.RevokeAdmin(ctx, id))
}

func (s *AccountService) ListAuthorities(ctx context.Context) ([]schemas.Authority, error) {
	authorities, err := s.authz.ListAuthorities(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return authorities, nil
}

// WaitForNotifications blocks until every mail triggered so far was handed to the mailer.
func (s *AccountService) WaitForNotifications() {
	s.notifications.Wait()
}

// sessionUser resolves a session token to its live account.
func (s *AccountService) sessionUser(ctx context.Context, token string) (*schemas.User, error) {
	claims, err := s.tokens.ValidateJWT(token)
	if err != nil {
		return nil, err
	}
	return s.liveAccount(ctx, claims.ID)
}

func (s *AccountService) liveAccount(ctx context.Context, id int64) (*schemas.User, error) {
	user, err := s.accounts.FindByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %d is gone", goerrors.ErrUnauthorized, id)
		}
		return nil, translate(err)
	}
	return user, nil
}

// notify runs send in the background. Failures are logged and never undo the state
// change that triggered the mail.
func (s *AccountService) notify(ctx context.Context, kind string, send func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)

	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()

		if err := send(ctx); err != nil {
			err = fmt.Errorf("%w: %v", goerrors.ErrDependencyFailure, err)
			utils.LogMessageWithFieldsAndError(ctx, "warn", "Sending "+kind+" mail failed", err)
		}
	}()
}

// translate maps a directory error to its error kind. Anything the directory does not
// classify is a persistence failure.
func translate(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%w: %v", goerrors.ErrNotFound, err)
	case errors.Is(err, repositories.ErrDuplicate):
		return fmt.Errorf("%w: %v", goerrors.ErrConflict, err)
	case errors.Is(err, goerrors.ErrNotFound):
		return err
	default:
		return fmt.Errorf("%w: %w", goerrors.ErrPersistence, err)
	}
}

func translateIfFailed(err error) error {
	if err == nil {
		return nil
	}
	return translate(err)
}

func toAccountDTOs(users []*schemas.User) []schemas.AccountDTO {
	accounts := make([]schemas.AccountDTO, 0, len(users))
	for _, user := range users {
		accounts = append(accounts, *schemas.NewAccountDTO(user))
	}
	return accounts
}
