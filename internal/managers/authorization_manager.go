package managers

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"account-core/internal/goerrors"
	"account-core/internal/repositories"
	"account-core/internal/schemas"
)

type AuthorizationMgr interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	InitialAuthority(existingAccounts int64) string
	GrantAdmin(ctx context.Context, userID int64) error
	RevokeAdmin(ctx context.Context, userID int64) error
	Authorities(ctx context.Context, userID int64) ([]string, error)
	ListAuthorities(ctx context.Context) ([]schemas.Authority, error)
}

// AuthorizationManager answers role questions from the authority directory.
type AuthorizationManager struct {
	authorities repositories.AuthorityDirectory
}

func NewAuthorizationManager(authorities repositories.AuthorityDirectory) AuthorizationMgr {
	log.Info("Initializing authorization manager")
	return &AuthorizationManager{authorities: authorities}
}

// IsAdmin reports whether the user holds the ADMIN authority.
func (am *AuthorizationManager) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return am.authorities.Has(ctx, userID, schemas.AuthorityAdmin)
}

// InitialAuthority is the role policy for new accounts: the very first account becomes ADMIN.
// The account directory evaluates it inside the create transaction.
func (am *AuthorizationManager) InitialAuthority(existingAccounts int64) string {
	if existingAccounts == 0 {
		return schemas.AuthorityAdmin
	}
	return schemas.AuthorityUser
}

func (am *AuthorizationManager) GrantAdmin(ctx context.Context, userID int64) error {
	return notFoundAware(am.authorities.Grant(ctx, userID, schemas.AuthorityAdmin))
}

func (am *AuthorizationManager) RevokeAdmin(ctx context.Context, userID int64) error {
	return am.authorities.Revoke(ctx, userID, schemas.AuthorityAdmin)
}

func (am *AuthorizationManager) Authorities(ctx context.Context, userID int64) ([]string, error) {
	return am.authorities.OfUser(ctx, userID)
}

func (am *AuthorizationManager) ListAuthorities(ctx context.Context) ([]schemas.Authority, error) {
	return am.authorities.List(ctx)
}

func notFoundAware(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", goerrors.ErrNotFound, err)
	}
	return err
}
