package database

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-retreat-store/internal/config"
	"go-retreat-store/internal/model"
)

func TestConnectAndMigrateSQLite(t *testing.T) {
	cfg := &config.DB{
		Driver:     "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, m := range model.All() {
		assert.True(t, db.Migrator().HasTable(m), "%T table missing", m)
	}
	assert.True(t, db.Migrator().HasIndex(&model.TeamInventory{}, "idx_team_product"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}
