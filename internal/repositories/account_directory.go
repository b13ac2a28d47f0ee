// Package repositories persists accounts and authorities in PostgreSQL.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"account-core/internal/interfaces"
	"account-core/internal/schemas"
	"account-core/internal/utils"
)

var (
	// ErrNotFound is returned when no row matches the lookup or the conditional update.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates one of the unique indexes.
	ErrDuplicate = errors.New("duplicate record")
)

// registrationLockID serializes account creation so the first-account check cannot race.
const registrationLockID int64 = 0x61636374

const userColumns = "id, email, password_hash, first_name, last_name, activated, activated_date, " +
	"activation_key, reset_key, reset_date, deleted, created_at, updated_at"

// AuthorityPolicy decides the authority of a new account from the number of accounts created before it.
type AuthorityPolicy func(existing int64) string

// AccountDirectory is the persistence boundary for accounts.
type AccountDirectory interface {
	Create(ctx context.Context, user *schemas.User, assign AuthorityPolicy) (string, error)
	FindByEmail(ctx context.Context, email string, excludeDeleted bool) (*schemas.User, error)
	FindByID(ctx context.Context, id int64, excludeDeleted bool) (*schemas.User, error)
	FindByActivationKey(ctx context.Context, key string) (*schemas.User, error)
	FindByResetKey(ctx context.Context, key string) (*schemas.User, error)
	Update(ctx context.Context, id int64, update schemas.UserUpdate) error
	SoftDelete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, offset, limit int) ([]*schemas.User, error)
	Page(ctx context.Context, offset, limit int) ([]*schemas.User, int64, error)
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// PostgresAccountDirectory implements AccountDirectory with pgx.
type PostgresAccountDirectory struct {
	pool interfaces.PgxPoolIface
}

func NewAccountDirectory(pool interfaces.PgxPoolIface) AccountDirectory {
	return &PostgresAccountDirectory{pool: pool}
}

// Create inserts the user and its authority in one transaction and returns the assigned authority.
// The advisory lock makes count-then-insert atomic across concurrent registrations.
// On success the ID and timestamps of user are filled in.
func (d *PostgresAccountDirectory) Create(ctx context.Context, user *schemas.User, assign AuthorityPolicy) (string, error) {
	var authority string

	err := utils.RunInTransaction(ctx, d.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", registrationLockID); err != nil {
			return fmt.Errorf("acquire registration lock: %w", err)
		}

		var existing int64
		if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&existing); err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		authority = assign(existing)

		queryString := "INSERT INTO users (email, password_hash, first_name, last_name, activated, activation_key) " +
			"VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at"
		err := tx.QueryRow(ctx, queryString, schemas.NormalizeEmail(user.Email), user.PasswordHash,
			user.FirstName, user.LastName, user.Activated, user.ActivationKey,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return classify("insert user", err)
		}

		queryString = "INSERT INTO user_authorities (user_id, authority_id) SELECT $1, id FROM authorities WHERE name = $2"
		tag, err := tx.Exec(ctx, queryString, user.ID, authority)
		if err != nil {
			return classify("grant authority", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("grant authority: authority %s is not seeded", authority)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	user.Email = schemas.NormalizeEmail(user.Email)
	return authority, nil
}

// FindByEmail returns the account with the given email. When deleted accounts are included,
// a live account wins over deleted ones.
func (d *PostgresAccountDirectory) FindByEmail(ctx context.Context, email string, excludeDeleted bool) (*schemas.User, error) {
	queryString := "SELECT " + userColumns + " FROM users WHERE lower(email) = $1"
	if excludeDeleted {
		queryString += " AND deleted = FALSE"
	}
	queryString += " ORDER BY deleted, id DESC LIMIT 1"

	return d.findOne(ctx, "find user by email", queryString, schemas.NormalizeEmail(email))
}

func (d *PostgresAccountDirectory) FindByID(ctx context.Context, id int64, excludeDeleted bool) (*schemas.User, error) {
	queryString := "SELECT " + userColumns + " FROM users WHERE id = $1"
	if excludeDeleted {
		queryString += " AND deleted = FALSE"
	}

	return d.findOne(ctx, "find user by id", queryString, id)
}

func (d *PostgresAccountDirectory) FindByActivationKey(ctx context.Context, key string) (*schemas.User, error) {
	queryString := "SELECT " + userColumns + " FROM users WHERE activation_key = $1 AND deleted = FALSE"
	return d.findOne(ctx, "find user by activation key", queryString, key)
}

func (d *PostgresAccountDirectory) FindByResetKey(ctx context.Context, key string) (*schemas.User, error) {
	queryString := "SELECT " + userColumns + " FROM users WHERE reset_key = $1 AND deleted = FALSE"
	return d.findOne(ctx, "find user by reset key", queryString, key)
}

// Update applies the partial update to a live account. The Match fields become part of the
// WHERE clause, so a consumed key makes the update affect no row and ErrNotFound is returned.
func (d *PostgresAccountDirectory) Update(ctx context.Context, id int64, update schemas.UserUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	var sets []string
	var args []interface{}
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.PasswordHash != nil {
		sets = append(sets, "password_hash = "+arg(*update.PasswordHash))
	}
	if update.FirstName != nil {
		sets = append(sets, "first_name = "+arg(*update.FirstName))
	}
	if update.LastName != nil {
		sets = append(sets, "last_name = "+arg(*update.LastName))
	}
	if update.Activated != nil {
		sets = append(sets, "activated = "+arg(*update.Activated))
	}
	if update.ActivatedDate != nil {
		sets = append(sets, "activated_date = "+arg(*update.ActivatedDate))
	}
	switch {
	case update.ClearActivationKey:
		sets = append(sets, "activation_key = NULL")
	case update.ActivationKey != nil:
		sets = append(sets, "activation_key = "+arg(*update.ActivationKey))
	}
	if update.ClearReset {
		sets = append(sets, "reset_key = NULL", "reset_date = NULL")
	} else {
		if update.ResetKey != nil {
			sets = append(sets, "reset_key = "+arg(*update.ResetKey))
		}
		if update.ResetDate != nil {
			sets = append(sets, "reset_date = "+arg(*update.ResetDate))
		}
	}
	sets = append(sets, "updated_at = now()")

	queryString := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = " + arg(id) + " AND deleted = FALSE"
	if update.MatchActivationKey != nil {
		queryString += " AND activation_key = " + arg(*update.MatchActivationKey)
	}
	if update.MatchResetKey != nil {
		queryString += " AND reset_key = " + arg(*update.MatchResetKey)
	}

	tag, err := d.pool.Exec(ctx, queryString, args...)
	if err != nil {
		return classify("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update user %d: %w", id, ErrNotFound)
	}
	return nil
}

// SoftDelete marks a live account as deleted. It reports false when no live account had the id.
func (d *PostgresAccountDirectory) SoftDelete(ctx context.Context, id int64) (bool, error) {
	queryString := "UPDATE users SET deleted = TRUE, updated_at = now() WHERE id = $1 AND deleted = FALSE"
	tag, err := d.pool.Exec(ctx, queryString, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Count returns the number of accounts ever created, deleted ones included.
func (d *PostgresAccountDirectory) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := d.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// List returns live accounts ordered by id. A non-positive limit returns all of them.
func (d *PostgresAccountDirectory) List(ctx context.Context, offset, limit int) ([]*schemas.User, error) {
	return listUsers(ctx, d.pool, offset, limit)
}

// Page returns one page of live accounts together with the number of live accounts.
// Both reads share one snapshot, so the total always matches the listed rows.
func (d *PostgresAccountDirectory) Page(ctx context.Context, offset, limit int) ([]*schemas.User, int64, error) {
	var users []*schemas.User
	var total int64

	err := utils.RunInReadTransaction(ctx, d.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE deleted = FALSE").Scan(&total); err != nil {
			return fmt.Errorf("count live users: %w", err)
		}

		var err error
		users, err = listUsers(ctx, tx, offset, limit)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func listUsers(ctx context.Context, q queryer, offset, limit int) ([]*schemas.User, error) {
	queryString := "SELECT " + userColumns + " FROM users WHERE deleted = FALSE ORDER BY id"
	args := []interface{}{}
	if limit > 0 {
		queryString += " LIMIT $1 OFFSET $2"
		args = append(args, limit, offset)
	}

	rows, err := q.Query(ctx, queryString, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*schemas.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

func (d *PostgresAccountDirectory) findOne(ctx context.Context, op, queryString string, args ...interface{}) (*schemas.User, error) {
	user, err := scanUser(d.pool.QueryRow(ctx, queryString, args...))
	if err != nil {
		return nil, classify(op, err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*schemas.User, error) {
	user := &schemas.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Activated, &user.ActivatedDate, &user.ActivationKey, &user.ResetKey, &user.ResetDate,
		&user.Deleted, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// classify maps driver errors to ErrNotFound and ErrDuplicate and wraps everything else.
func classify(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
