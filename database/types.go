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

// AbstractDatabaseManager defines the operations for managing a database
// connection, initializing data, and reporting health.
type AbstractDatabaseManager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Reconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	GetDB() *bun.DB
	GetSQLDB() *sql.DB
	InitData(ctx context.Context, initCfg DataInitConfig) error
	GetStats() *DBStats
	SetLogger(logger Logger)
}

// HealthStatus holds the result of a health check against the database.
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

// DBStats mirrors database/sql stats returned by the manager.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxIdleTimeClosed int64         `json:"max_idle_time_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// Query log styles accepted by ConnectionConfig.QueryLogStyle.
const (
	QueryLogBundebug = "bundebug"
	QueryLogColor    = "color"
)

// ConnectionConfig describes how to connect to a database and tune its pool.
type ConnectionConfig struct {
	Type                string        `yaml:"type" koanf:"type" validate:"required,oneof=mysql postgres postgresql sqlite sqlite3"`
	Host                string        `yaml:"host" koanf:"host"`
	Port                int           `yaml:"port" koanf:"port" validate:"gte=0,lte=65535"`
	Username            string        `yaml:"username" koanf:"username"`
	Password            string        `yaml:"password" koanf:"password"`
	DBName              string        `yaml:"dbname" koanf:"dbname" validate:"required"`
	SSLMode             string        `yaml:"sslmode" koanf:"sslmode"`
	MaxIdleConns        int           `yaml:"max_idle_conns" koanf:"max_idle_conns" validate:"gte=0"`
	MaxOpenConns        int           `yaml:"max_open_conns" koanf:"max_open_conns" validate:"gte=0"`
	ConnMaxLifetime     time.Duration `yaml:"conn_max_lifetime" koanf:"conn_max_lifetime"`
	ConnMaxIdleTime     time.Duration `yaml:"conn_max_idle_time" koanf:"conn_max_idle_time"`
	ConnectTimeout      time.Duration `yaml:"connect_timeout" koanf:"connect_timeout"`
	ReadTimeout         time.Duration `yaml:"read_timeout" koanf:"read_timeout"`
	WriteTimeout        time.Duration `yaml:"write_timeout" koanf:"write_timeout"`
	EnableReconnect     bool          `yaml:"enable_reconnect" koanf:"enable_reconnect"`
	ReconnectInterval   time.Duration `yaml:"reconnect_interval" koanf:"reconnect_interval"`
	MaxReconnectTries   int           `yaml:"max_reconnect_tries" koanf:"max_reconnect_tries"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval" koanf:"health_check_interval"`
	EnableQueryLog      bool          `yaml:"enable_query_log" koanf:"enable_query_log"`
	QueryLogStyle       string        `yaml:"query_log_style" koanf:"query_log_style" validate:"omitempty,oneof=bundebug color"`
	SlowQueryTime       time.Duration `yaml:"slow_query_time" koanf:"slow_query_time"`
}

// DataInitConfig controls SQL file based data seeding and environment selection.
type DataInitConfig struct {
	AutoInitOnStartup bool   `yaml:"auto_init_on_startup" koanf:"auto_init_on_startup"`
	Filepath          string `yaml:"filepath" koanf:"filepath"`
	Environment       string `yaml:"environment" koanf:"environment"`
}

// Config aggregates connection and data initialization settings.
type Config struct {
	ConnectionConfig ConnectionConfig `yaml:"connection" koanf:"connection" validate:"required"`
	DataInitConfig   DataInitConfig   `yaml:"data_init" koanf:"data_init"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
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
		QueryLogStyle:       QueryLogBundebug,
		SlowQueryTime:       time.Second * 2,
	}
}

// DefaultConfig returns a Config with default connection settings and the
// default SQL init location.
func DefaultConfig() *Config {
	return &Config{
		ConnectionConfig: *DefaultConnectionConfig(),
		DataInitConfig: DataInitConfig{
			Filepath:    "configs/sql",
			Environment: "prod",
		},
	}
}
