package monitors

import (
	"context"
	"testing"
	"time"

	"github.com/projectdesk/projectdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDatabase(t *testing.T) {
	conn := testutil.NewDB(t)

	require.NoError(t, CheckDatabase(context.Background(), conn, time.Second))

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = CheckDatabase(context.Background(), conn, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
}

func TestCheckDatabase_NilConnection(t *testing.T) {
	assert.Error(t, CheckDatabase(context.Background(), nil, 0))
}
