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
	"errors"
	"fmt"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(name string) *Config {
	cfg := DefaultConfig()
	cfg.ConnectionConfig.Type = "sqlite"
	cfg.ConnectionConfig.DBName = fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	cfg.ConnectionConfig.HealthCheckInterval = 0
	cfg.ConnectionConfig.SlowQueryTime = 0
	return cfg
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "explorer.db", sqliteDSN("explorer"))
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
	assert.Equal(t, "file:x?mode=memory", sqliteDSN("file:x?mode=memory"))
}

func TestOpenConnectsAndReportsHealth(t *testing.T) {
	ctx := context.Background()
	manager, err := Open(ctx, memoryConfig("open_health"), nil)
	require.NoError(t, err)
	defer func() { _ = manager.Disconnect() }()

	require.NoError(t, manager.Ping(ctx))
	status := manager.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, manager.GetStats().MaxOpenConns)
	assert.NotNil(t, manager.GetDB())
	assert.NotNil(t, manager.GetSQLDB())
}

func TestOpenRejectsUnknownType(t *testing.T) {
	cfg := memoryConfig("unknown_type")
	cfg.ConnectionConfig.Type = "oracle"
	_, err := Open(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestDisconnectTwice(t *testing.T) {
	manager, err := Open(context.Background(), memoryConfig("disconnect_twice"), nil)
	require.NoError(t, err)
	require.NoError(t, manager.Disconnect())
	require.NoError(t, manager.Disconnect())
	assert.Error(t, manager.Ping(context.Background()))
	assert.Nil(t, manager.GetDB())
}

func TestSQLInitManagerOrdersAndExecutes(t *testing.T) {
	ctx := context.Background()
	manager, err := Open(ctx, memoryConfig("sql_init_order"), nil)
	require.NoError(t, err)
	defer func() { _ = manager.Disconnect() }()

	fsys := fstest.MapFS{
		"common/010_seed.sql": {Data: []byte(
			"-- seed\nINSERT INTO notes (body) VALUES ('{{.ENVIRONMENT}}');\n",
		)},
		"common/001_schema.sql": {Data: []byte(
			"CREATE TABLE notes (\n  id INTEGER PRIMARY KEY AUTOINCREMENT,\n  body TEXT NOT NULL\n);\n",
		)},
		"common/readme.txt":               {Data: []byte("ignored")},
		"environments/test/001_extra.sql": {Data: []byte("INSERT INTO notes (body) VALUES ('extra')")},
		"environments/prod/001_never.sql": {Data: []byte("INSERT INTO notes (body) VALUES ('prod');")},
	}

	initializer := NewSQLInitManager(manager.GetDB(), "test", fsys)
	files, err := initializer.GetSQLFiles()
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "001_schema.sql", files[0].Name)
	assert.Equal(t, "010_seed.sql", files[1].Name)
	assert.Equal(t, "test", files[2].Environment)

	require.NoError(t, initializer.ExecuteInitialization(ctx))

	var bodies []string
	err = manager.GetDB().NewSelect().Table("notes").Column("body").Order("id").Scan(ctx, &bodies)
	require.NoError(t, err)
	assert.Equal(t, []string{"test", "extra"}, bodies)
}

func TestSQLInitManagerStopsOnFailure(t *testing.T) {
	ctx := context.Background()
	manager, err := Open(ctx, memoryConfig("sql_init_fail"), nil)
	require.NoError(t, err)
	defer func() { _ = manager.Disconnect() }()

	fsys := fstest.MapFS{
		"common/001_bad.sql": {Data: []byte("INSERT INTO missing_table VALUES (1);")},
	}
	err = NewSQLInitManager(manager.GetDB(), "prod", fsys).ExecuteInitialization(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_bad.sql")

	is, kind := IsSqlError(err)
	assert.True(t, is)
	assert.Equal(t, NoTableErr, kind)
}

func TestSQLInitManagerWithoutFiles(t *testing.T) {
	initializer := NewSQLInitManager(nil, "prod", fstest.MapFS{})
	files, err := initializer.GetSQLFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.NoError(t, initializer.ExecuteInitialization(context.Background()))
}

func TestSplitSQLStatements(t *testing.T) {
	content := `
-- comment
CREATE TABLE a (
  id INTEGER
);

INSERT INTO a VALUES (1);
INSERT INTO a VALUES (2)
`
	assert.Equal(t, []string{
		"CREATE TABLE a ( id INTEGER );",
		"INSERT INTO a VALUES (1);",
		"INSERT INTO a VALUES (2)",
	}, splitSQLStatements(content))
}

func TestParseFileOrder(t *testing.T) {
	assert.Equal(t, 1, parseFileOrder("001_schema.sql"))
	assert.Equal(t, 42, parseFileOrder("42_data.sql"))
	assert.Equal(t, 999, parseFileOrder("schema.sql"))
}

func TestIsSqlError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   bool
		kind SQLError
	}{
		{"nil", nil, false, UnknownErr},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true, DuplicateKeyErr},
		{"mysql unknown number", &mysql.MySQLError{Number: 9999}, true, UnknownErr},
		{"wrapped mysql", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1048}), true, NotNullViolationErr},
		{"sqlite unique", errors.New("UNIQUE constraint failed: users.email"), true, DuplicateKeyErr},
		{"sqlite not null", errors.New("NOT NULL constraint failed: users.name"), true, NotNullViolationErr},
		{"sqlite no table", errors.New("no such table: ghosts"), true, NoTableErr},
		{"postgres duplicate", errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`), true, DuplicateKeyErr},
		{"postgres missing relation", errors.New(`pq: relation "ghosts" does not exist`), true, NoTableErr},
		{"postgres fk", errors.New("ERROR: insert violates foreign key constraint (SQLSTATE 23503)"), true, ForeignKeyViolationErr},
		{"not a sql error", errors.New("boom"), false, UnknownErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is, kind := IsSqlError(tt.err)
			assert.Equal(t, tt.is, is)
			assert.Equal(t, tt.kind, kind, kind.String())
		})
	}
}

func TestToFields(t *testing.T) {
	fields := toFields([]interface{}{"a", 1, "b", "two", "dangling"})
	assert.Equal(t, 1, fields["a"])
	assert.Equal(t, "two", fields["b"])
	assert.Equal(t, "dangling", fields["extra"])
}

func TestHealthCheckRestartsAfterReconnectCycle(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig(t.Name()).ConnectionConfig
	cfg.HealthCheckInterval = 10 * time.Millisecond
	dm := NewDatabaseManager(&cfg).(*defaultDatabaseManager)
	t.Cleanup(func() { _ = dm.Disconnect() })

	lastCheck := func() time.Time {
		dm.mu.RLock()
		defer dm.mu.RUnlock()
		return dm.lastHealthCheck
	}
	checkedSince := func(since time.Time) func() bool {
		return func() bool { return lastCheck().After(since) }
	}

	require.NoError(t, dm.Connect(ctx))
	require.Eventually(t, checkedSince(time.Time{}), time.Second, 5*time.Millisecond)

	require.NoError(t, dm.Reconnect(ctx))
	afterReconnect := time.Now()
	require.Eventually(t, checkedSince(afterReconnect), time.Second, 5*time.Millisecond)

	require.NoError(t, dm.Disconnect())
	dm.mu.RLock()
	assert.Nil(t, dm.stopHealthCheck)
	dm.mu.RUnlock()

	require.NoError(t, dm.Connect(ctx))
	afterConnect := time.Now()
	require.Eventually(t, checkedSince(afterConnect), time.Second, 5*time.Millisecond)
}
