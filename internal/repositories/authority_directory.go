package repositories

import (
	"context"
	"fmt"

	"account-core/internal/interfaces"
	"account-core/internal/schemas"
)

// AuthorityDirectory stores the authorities and their assignment to accounts.
type AuthorityDirectory interface {
	List(ctx context.Context) ([]schemas.Authority, error)
	OfUser(ctx context.Context, userID int64) ([]string, error)
	Has(ctx context.Context, userID int64, name string) (bool, error)
	Grant(ctx context.Context, userID int64, name string) error
	Revoke(ctx context.Context, userID int64, name string) error
}

type PostgresAuthorityDirectory struct {
	pool interfaces.PgxPoolIface
}

func NewAuthorityDirectory(pool interfaces.PgxPoolIface) AuthorityDirectory {
	return &PostgresAuthorityDirectory{pool: pool}
}

func (d *PostgresAuthorityDirectory) List(ctx context.Context) ([]schemas.Authority, error) {
	rows, err := d.pool.Query(ctx, "SELECT id, name FROM authorities ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list authorities: %w", err)
	}
	defer rows.Close()

	authorities := make([]schemas.Authority, 0)
	for rows.Next() {
		var authority schemas.Authority
		if err := rows.Scan(&authority.ID, &authority.Name); err != nil {
			return nil, fmt.Errorf("list authorities: %w", err)
		}
		authorities = append(authorities, authority)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list authorities: %w", err)
	}

	return authorities, nil
}

// OfUser returns the authority names granted to the user.
func (d *PostgresAuthorityDirectory) OfUser(ctx context.Context, userID int64) ([]string, error) {
	queryString := "SELECT a.name FROM user_authorities ua JOIN authorities a ON a.id = ua.authority_id " +
		"WHERE ua.user_id = $1 ORDER BY a.name"
	rows, err := d.pool.Query(ctx, queryString, userID)
	if err != nil {
		return nil, fmt.Errorf("list user authorities: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list user authorities: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list user authorities: %w", err)
	}

	return names, nil
}

func (d *PostgresAuthorityDirectory) Has(ctx context.Context, userID int64, name string) (bool, error) {
	queryString := "SELECT EXISTS (SELECT 1 FROM user_authorities ua JOIN authorities a ON a.id = ua.authority_id " +
		"WHERE ua.user_id = $1 AND a.name = $2)"

	var has bool
	if err := d.pool.QueryRow(ctx, queryString, userID, schemas.NormalizeAuthority(name)).Scan(&has); err != nil {
		return false, fmt.Errorf("check authority: %w", err)
	}
	return has, nil
}

// Grant assigns the authority to the user. Granting an authority twice is a no-op.
func (d *PostgresAuthorityDirectory) Grant(ctx context.Context, userID int64, name string) error {
	queryString := "INSERT INTO user_authorities (user_id, authority_id) SELECT $1, id FROM authorities WHERE name = $2 " +
		"ON CONFLICT DO NOTHING"
	if _, err := d.pool.Exec(ctx, queryString, userID, schemas.NormalizeAuthority(name)); err != nil {
		return classify("grant authority", err)
	}
	return nil
}

// Revoke removes the authority from the user. Revoking a missing grant is a no-op.
func (d *PostgresAuthorityDirectory) Revoke(ctx context.Context, userID int64, name string) error {
	queryString := "DELETE FROM user_authorities ua USING authorities a " +
		"WHERE ua.authority_id = a.id AND ua.user_id = $1 AND a.name = $2"
	if _, err := d.pool.Exec(ctx, queryString, userID, schemas.NormalizeAuthority(name)); err != nil {
		return fmt.Errorf("revoke authority: %w", err)
	}
	return nil
}
