package managers

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"account-core/internal/interfaces"
)

// DatabaseMgr hands out the shared connection pool.
type DatabaseMgr interface {
	GetPool() interfaces.PgxPoolIface
	Healthy(ctx context.Context) error
}

// DatabaseManager wraps the pgx pool used by the directories.
type DatabaseManager struct {
	Pool interfaces.PgxPoolIface
}

// GetPool returns the connection pool managed by the DatabaseManager.
func (dbMgr *DatabaseManager) GetPool() interfaces.PgxPoolIface {
	return dbMgr.Pool
}

// Healthy pings the database.
func (dbMgr *DatabaseManager) Healthy(ctx context.Context) error {
	if err := dbMgr.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func NewDatabaseManager(pool interfaces.PgxPoolIface) DatabaseMgr {
	log.Info("Initializing database manager")
	return &DatabaseManager{Pool: pool}
}
