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

// Package config loads the application configuration from DATAJPA_*
// environment variables, optionally read from a .env file.
//
// Keys nest on the first underscore after the prefix:
// DATAJPA_DATABASE_MAX_OPEN_CONNS maps to database.max_open_conns.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/tomoncle/datajpa/database"
	"github.com/tomoncle/datajpa/utils"
)

const EnvPrefix = "DATAJPA_"

type Config struct {
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Migrate  MigrateConfig  `koanf:"migrate"`
	Log      LogConfig      `koanf:"log"`
	App      AppConfig      `koanf:"app"`
}

type DatabaseConfig struct {
	Type            string        `koanf:"type" validate:"required,oneof=mysql postgres postgresql pgx sqlite sqlite3"`
	DSN             string        `koanf:"dsn"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=0,lte=65535"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name" validate:"required_without=DSN"`
	SSLMode         string        `koanf:"ssl_mode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"gte=0"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"gte=0"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout" validate:"gte=0"`
	QueryLog        bool          `koanf:"query_log"`
	SlowQueryTime   time.Duration `koanf:"slow_query_time" validate:"gte=0"`
}

type MigrateConfig struct {
	OnStartup      bool   `koanf:"on_startup"`
	ForeignKey     bool   `koanf:"foreign_key"`
	ForeignKeyFile string `koanf:"foreign_key_file"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// AppConfig holds settings of the demo command.
type AppConfig struct {
	// Commit keeps the seeded rows; they are rolled back otherwise.
	Commit bool `koanf:"commit"`
}

var _ database.AbstractDatabaseConfigProvider = (*Config)(nil)

// Default returns the configuration used for keys absent from the
// environment: a file-backed sqlite database with migrations enabled.
func Default() *Config {
	pool := database.DefaultConnectionConfig()
	return &Config{
		Database: DatabaseConfig{
			Type:            database.TypeSQLite,
			Name:            "datajpa",
			MaxOpenConns:    pool.MaxOpenConns,
			MaxIdleConns:    pool.MaxIdleConns,
			ConnMaxLifetime: pool.ConnMaxLifetime,
			ConnMaxIdleTime: pool.ConnMaxIdleTime,
			ConnectTimeout:  pool.ConnectTimeout,
			SlowQueryTime:   pool.SlowQueryTime,
		},
		Migrate: MigrateConfig{OnStartup: true, ForeignKey: true},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// envKey turns DATAJPA_DATABASE_MAX_OPEN_CONNS into database.max_open_conns.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

// Load reads the environment over Default and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// ApplyLogging configures the level and format of every named logger.
func (c *Config) ApplyLogging() {
	utils.ConfigureConsoleLogFormat(c.Log.Format)
	utils.ConfigureLogLevel(c.Log.Level)
}

// ConfigLoader converts the configuration to the database layer's form.
func (c *Config) ConfigLoader() *database.Config {
	conn := database.DefaultConnectionConfig()
	conn.Type = c.Database.Type
	conn.DSN = c.Database.DSN
	conn.Host = c.Database.Host
	conn.Port = c.Database.Port
	conn.Username = c.Database.User
	conn.Password = c.Database.Password
	conn.DBName = c.Database.Name
	conn.SSLMode = c.Database.SSLMode
	conn.MaxOpenConns = c.Database.MaxOpenConns
	conn.MaxIdleConns = c.Database.MaxIdleConns
	conn.ConnMaxLifetime = c.Database.ConnMaxLifetime
	conn.ConnMaxIdleTime = c.Database.ConnMaxIdleTime
	if c.Database.ConnectTimeout > 0 {
		conn.ConnectTimeout = c.Database.ConnectTimeout
	}
	conn.EnableQueryLog = c.Database.QueryLog
	conn.SlowQueryTime = c.Database.SlowQueryTime
	return &database.Config{
		ConnectionConfig: *conn,
		DataMigrateConfig: database.DataMigrateConfig{
			EnableMigrateOnStartup: c.Migrate.OnStartup,
			EnableForeignKey:       c.Migrate.ForeignKey,
			ForeignKeyFile:         c.Migrate.ForeignKeyFile,
		},
	}
}
