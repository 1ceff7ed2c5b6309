/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type widget struct {
	bun.BaseModel `bun:"table:widget,alias:w"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

func init() {
	RegisteredModel(NewModelAdapter((*widget)(nil), 1))
}

var managerSeq atomic.Int64

func newSQLiteManager(t *testing.T) AbstractDatabaseManager {
	t.Helper()
	cfg := DefaultConnectionConfig()
	cfg.Type = TypeSQLite
	cfg.DSN = fmt.Sprintf("file:database_%d?mode=memory&cache=shared", managerSeq.Add(1))
	cfg.HealthCheckInterval = 0
	cfg.SlowQueryTime = 0

	manager := NewDatabaseManager(cfg)
	require.NoError(t, manager.Connect(context.Background()))
	t.Cleanup(func() { _ = manager.Disconnect() })
	return manager
}

func TestManager_ConnectAndHealth(t *testing.T) {
	manager := newSQLiteManager(t)
	ctx := context.Background()

	require.NoError(t, manager.Ping(ctx))
	require.NoError(t, manager.Connect(ctx), "connect twice is a no-op")
	assert.NotNil(t, manager.GetSQLDB())

	status := manager.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
	assert.Empty(t, status.LastError)

	assert.GreaterOrEqual(t, manager.GetStats().OpenConns, 1)
}

func TestManager_UnsupportedType(t *testing.T) {
	manager := NewDatabaseManager(&ConnectionConfig{Type: "oracle"})
	err := manager.Connect(context.Background())
	assert.ErrorContains(t, err, "unsupported database type: oracle")
	assert.Error(t, manager.Ping(context.Background()))
}

func TestManager_RunMigrations(t *testing.T) {
	manager := newSQLiteManager(t)
	ctx := context.Background()
	cfg := &DataMigrateConfig{EnableMigrateOnStartup: true, EnableForeignKey: true}

	require.NoError(t, manager.RunMigrations(ctx, cfg))
	require.NoError(t, manager.RunMigrations(ctx, cfg), "applied migrations are skipped")

	db := manager.GetDB()
	_, err := db.NewInsert().Model(&widget{Name: "gear"}).Exec(ctx)
	require.NoError(t, err)
	count, err := db.NewSelect().Model((*widget)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	applied, err := NewMigrationManager(db, nil, cfg).GetAppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, "001", applied[0].Version)
	assert.Equal(t, "add_foreign_keys", applied[1].Name)
}

func TestManager_RunMigrationsWithoutConnection(t *testing.T) {
	manager := NewDatabaseManager(nil)
	assert.Error(t, manager.RunMigrations(context.Background(), &DataMigrateConfig{}))
}

func TestModelRegistry_OrdersByPriority(t *testing.T) {
	type low struct{ ID int64 }
	type high struct{ ID int64 }

	registry := newModelRegistry()
	registry.Register(NewModelAdapter((*high)(nil), 20))
	registry.Register(NewModelAdapter((*low)(nil), 10))
	registry.Register(NewModelAdapter((*high)(nil), 5))

	models := registry.Models()
	require.Len(t, models, 2)
	assert.Equal(t, 10, models[0].Priority())
	assert.IsType(t, (*high)(nil), models[1].Instance())
}

func TestFactory_CreateFromConfig(t *testing.T) {
	t.Setenv("DB_TYPE", "")
	factory := NewDatabaseFactory()

	_, err := factory.CreateFromConfig(nil)
	assert.Error(t, err)

	_, err = factory.CreateFromConfig(&ConnectionConfig{Type: "oracle"})
	assert.ErrorContains(t, err, "supported types")

	t.Setenv("DB_NAME", "override")
	cfg := &ConnectionConfig{Type: TypeSQLite, DBName: "original"}
	manager, err := factory.CreateFromConfig(cfg)
	require.NoError(t, err)
	assert.Same(t, manager, factory.GetManager())
	assert.Equal(t, "override", cfg.DBName)
	assert.Nil(t, factory.GetDB())
}
