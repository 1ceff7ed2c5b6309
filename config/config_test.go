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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/datajpa/database"
)

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "database.max_open_conns", envKey("DATAJPA_DATABASE_MAX_OPEN_CONNS"))
	assert.Equal(t, "migrate.foreign_key_file", envKey("DATAJPA_MIGRATE_FOREIGN_KEY_FILE"))
	assert.Equal(t, "app.commit", envKey("DATAJPA_APP_COMMIT"))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, database.TypeSQLite, cfg.Database.Type)
	assert.Equal(t, "datajpa", cfg.Database.Name)
	assert.True(t, cfg.Migrate.OnStartup)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.App.Commit)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DATAJPA_DATABASE_TYPE", "postgres")
	t.Setenv("DATAJPA_DATABASE_HOST", "db.internal")
	t.Setenv("DATAJPA_DATABASE_PORT", "5433")
	t.Setenv("DATAJPA_DATABASE_NAME", "members")
	t.Setenv("DATAJPA_DATABASE_MAX_OPEN_CONNS", "25")
	t.Setenv("DATAJPA_DATABASE_SLOW_QUERY_TIME", "500ms")
	t.Setenv("DATAJPA_MIGRATE_FOREIGN_KEY", "false")
	t.Setenv("DATAJPA_LOG_FORMAT", "json")
	t.Setenv("DATAJPA_APP_COMMIT", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 500*time.Millisecond, cfg.Database.SlowQueryTime)
	assert.False(t, cfg.Migrate.ForeignKey)
	assert.True(t, cfg.Migrate.OnStartup, "unset keys keep their defaults")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.App.Commit)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"DATAJPA_DATABASE_TYPE": "oracle",
		"DATAJPA_DATABASE_PORT": "70000",
		"DATAJPA_LOG_LEVEL":     "loud",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.ErrorContains(t, err, "config validation failed")
		})
	}
}

func TestValidate_NameOrDSN(t *testing.T) {
	cfg := Default()
	cfg.Database.Name = ""
	assert.Error(t, cfg.Validate())

	cfg.Database.DSN = "file::memory:"
	assert.NoError(t, cfg.Validate())
}

func TestConfigLoader(t *testing.T) {
	cfg := Default()
	cfg.Database.User = "sa"
	cfg.Database.ConnectTimeout = 0
	cfg.Migrate.ForeignKeyFile = "conf/foreign_keys.yaml"

	dbCfg := cfg.ConfigLoader()
	assert.Equal(t, database.TypeSQLite, dbCfg.ConnectionConfig.Type)
	assert.Equal(t, "sa", dbCfg.ConnectionConfig.Username)
	assert.Equal(t, "datajpa", dbCfg.ConnectionConfig.DBName)
	assert.Equal(t, database.DefaultConnectionConfig().ConnectTimeout, dbCfg.ConnectionConfig.ConnectTimeout)
	assert.True(t, dbCfg.DataMigrateConfig.EnableMigrateOnStartup)
	assert.Equal(t, "conf/foreign_keys.yaml", dbCfg.DataMigrateConfig.ForeignKeyFile)
}
