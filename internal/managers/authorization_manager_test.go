package managers

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-core/internal/goerrors"
	"account-core/internal/repositories"
	"account-core/internal/schemas"
)

func newAuthorizationManager(t *testing.T) (AuthorizationMgr, pgxmock.PgxPoolIface) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewAuthorizationManager(repositories.NewAuthorityDirectory(mock)), mock
}

func TestInitialAuthority(t *testing.T) {
	am, _ := newAuthorizationManager(t)

	assert.Equal(t, schemas.AuthorityAdmin, am.InitialAuthority(0))
	assert.Equal(t, schemas.AuthorityUser, am.InitialAuthority(1))
	assert.Equal(t, schemas.AuthorityUser, am.InitialAuthority(42))
}

func TestIsAdmin(t *testing.T) {
	am, mock := newAuthorizationManager(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(1), schemas.AuthorityAdmin).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(2), schemas.AuthorityAdmin).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	isAdmin, err := am.IsAdmin(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = am.IsAdmin(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, isAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantAndRevokeAdmin(t *testing.T) {
	am, mock := newAuthorizationManager(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_authorities")).
		WithArgs(int64(3), schemas.AuthorityAdmin).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_authorities")).
		WithArgs(int64(3), schemas.AuthorityAdmin).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, am.GrantAdmin(context.Background(), 3))
	require.NoError(t, am.RevokeAdmin(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantAdminUnknownAccount(t *testing.T) {
	am, mock := newAuthorizationManager(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_authorities")).
		WithArgs(int64(99), schemas.AuthorityAdmin).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})

	err := am.GrantAdmin(context.Background(), 99)
	assert.ErrorIs(t, err, goerrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthoritiesOfAccount(t *testing.T) {
	am, mock := newAuthorizationManager(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.name FROM user_authorities")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"name"}).
			AddRow(schemas.AuthorityAdmin).
			AddRow(schemas.AuthorityUser))

	names, err := am.Authorities(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{schemas.AuthorityAdmin, schemas.AuthorityUser}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}
