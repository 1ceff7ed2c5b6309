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
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// Supported values of ConnectionConfig.Type.
const (
	TypeMySQL    = "mysql"
	TypePostgres = "postgres"
	TypePgx      = "pgx"
	TypeSQLite   = "sqlite"
)

// AbstractDatabaseManager is one connection pool with its migrations and
// health monitor.
type AbstractDatabaseManager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Reconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	GetDB() *bun.DB
	GetSQLDB() *sql.DB
	RunMigrations(ctx context.Context, cfg *DataMigrateConfig) error
	GetStats() *DBStats
	SetLogger(logger Logger)
}

// AbstractDatabaseConfigProvider is implemented by config.Config.
type AbstractDatabaseConfigProvider interface {
	ConfigLoader() *Config
}

// HealthStatus is the outcome of the last ping.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats is a copy of sql.DBStats.
type DBStats struct {
	MaxOpenConns      int
	OpenConns         int
	InUse             int
	Idle              int
	WaitCount         int64
	WaitDuration      time.Duration
	MaxIdleClosed     int64
	MaxIdleTimeClosed int64
	MaxLifetimeClosed int64
}

// ConnectionConfig selects the driver and tunes the pool. Zero pool values
// keep the database/sql defaults.
type ConnectionConfig struct {
	Type                string // mysql, postgres, pgx, sqlite
	DSN                 string // overrides the DSN built from the fields below
	Host                string
	Port                int
	Username            string
	Password            string
	DBName              string
	SSLMode             string
	MaxIdleConns        int
	MaxOpenConns        int
	ConnMaxLifetime     time.Duration
	ConnMaxIdleTime     time.Duration
	ConnectTimeout      time.Duration
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	EnableReconnect     bool
	ReconnectInterval   time.Duration
	MaxReconnectTries   int
	HealthCheckInterval time.Duration
	EnableQueryLog      bool
	SlowQueryTime       time.Duration
}

// DataMigrateConfig controls migrations 001 (tables) and 002 (foreign keys).
type DataMigrateConfig struct {
	EnableMigrateOnStartup bool
	EnableForeignKey       bool
	ForeignKeyFile         string
}

// Config is what InitDB consumes.
type Config struct {
	ConnectionConfig  ConnectionConfig
	DataMigrateConfig DataMigrateConfig
}

// DefaultConnectionConfig leaves Type empty; callers must choose a driver.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxIdleConns:        10,
		MaxOpenConns:        100,
		ConnMaxLifetime:     time.Hour,
		ConnMaxIdleTime:     time.Minute * 30,
		ConnectTimeout:      time.Second * 10,
		ReadTimeout:         time.Second * 30,
		WriteTimeout:        time.Second * 30,
		EnableReconnect:     true,
		ReconnectInterval:   time.Second * 5,
		MaxReconnectTries:   3,
		HealthCheckInterval: time.Minute * 5,
		EnableQueryLog:      false,
		SlowQueryTime:       time.Second * 2,
	}
}
