package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/persistence"
)

func TestOpenStorageSQLite(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverSQLite},
		SQLite:  config.SQLiteConfig{Path: ":memory:"},
	}
	storage, err := OpenStorage(context.Background(), cfg, zap.NewNop(), true)
	require.NoError(t, err)
	defer storage.Close()

	require.NoError(t, storage.Store.Ping(context.Background()))
	users, err := storage.Store.Repos().Users.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestOpenStorageRejectsUnknownDriver(t *testing.T) {
	_, err := OpenStorage(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: "mysql"}}, zap.NewNop(), false)
	assert.Error(t, err)
}

func TestNewAdvisorWithoutKeyIsDisabled(t *testing.T) {
	advisor := NewAdvisor(context.Background(), config.AdvisoryConfig{}, &persistence.Redis{}, zap.NewNop(), nil)
	assert.False(t, advisor.Enabled())
}
