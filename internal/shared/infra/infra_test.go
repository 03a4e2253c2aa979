package infra

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-portal/internal/config"
	"hiring-portal/internal/shared/cache"
	"hiring-portal/internal/shared/notify"
	"hiring-portal/internal/shared/objstore"
	"hiring-portal/internal/shared/storage/repository"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
	assert.Equal(t, "data/hiring.db", sqliteDSN("sqlite://data/hiring.db"))
	assert.Equal(t, "hiring.db", sqliteDSN("sqlite:hiring.db"))
	assert.Equal(t, "file:hiring.db?cache=shared", sqliteDSN("file:hiring.db?cache=shared"))
}

func TestNewLocalDevelopment(t *testing.T) {
	cfg := config.Defaults()
	cfg.MinIO.Endpoint = ""

	i, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer i.Close()

	assert.IsType(t, &repository.Store{}, i.Storage)
	assert.IsType(t, &cache.MemoryCache{}, i.Cache)
	assert.IsType(t, &objstore.Memory{}, i.Blobs)
	assert.IsType(t, notify.LogSender{}, i.Sender)
}

func TestOpenStorageRejectsUnknownDriver(t *testing.T) {
	cfg := config.Defaults()
	cfg.DatabaseDriver = "oracle"
	_, err := OpenStorage(cfg)
	assert.Error(t, err)
}

func TestOpenBlobsRequiresEndpointInProduction(t *testing.T) {
	cfg := config.Defaults()
	cfg.Env = config.EnvProduction
	cfg.MinIO.Endpoint = ""
	_, err := OpenBlobs(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewSenderUsesRelay(t *testing.T) {
	cfg := config.Defaults()
	cfg.Notify.RelayURL = "http://relay.local"
	assert.IsType(t, &notify.RelayClient{}, NewSender(cfg))
}
