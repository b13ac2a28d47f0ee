package managers

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseManagerHealthy(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	dbMgr := NewDatabaseManager(mock)
	assert.Equal(t, mock, dbMgr.GetPool())

	mock.ExpectPing()
	assert.NoError(t, dbMgr.Healthy(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, dbMgr.Healthy(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}
