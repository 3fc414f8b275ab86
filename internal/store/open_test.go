package store

import (
	"testing"

	"github.com/farxc/mgnrega-goa/internal/logger"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	storage, closer, err := Open(Config{Driver: "Memory"}, logger.Discard())
	require.NoError(t, err)
	defer closer()

	require.NotNil(t, storage)
	assert.Equal(t, DriverMemory, storage.Driver)
	assert.Equal(t, types.SourceMemory, storage.Source)
}

func TestOpen_None(t *testing.T) {
	storage, closer, err := Open(Config{Driver: DriverNone}, logger.Discard())
	require.NoError(t, err)
	closer()
	assert.Nil(t, storage)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(Config{Driver: "cassandra"}, logger.Discard())
	assert.Error(t, err)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("MONGO_COLLECTION", "records")

	cfg := ConfigFromEnv()
	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, "records", cfg.MongoCollection)
	assert.Equal(t, "mgnrega", cfg.MongoDB)
	assert.Equal(t, 25, cfg.MaxOpenConns)
}

func TestOpen_PostgresUnreachable(t *testing.T) {
	storage, closer, err := Open(Config{
		Driver:       DriverPostgres,
		PostgresAddr: "postgres://admin:pw@127.0.0.1:1/mgnrega_db?sslmode=disable&connect_timeout=1",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		MaxIdleTime:  "1m",
	}, logger.Discard())
	closer()

	assert.ErrorIs(t, err, types.ErrPersistenceUnavailable)
	assert.Nil(t, storage)
}
