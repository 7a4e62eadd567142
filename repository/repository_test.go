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

package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/explorer/database"
	"github.com/tomoncle/explorer/types"
	"github.com/uptrace/bun"
)

const schemaSQL = `
CREATE TABLE users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL
);

CREATE TABLE accounts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL UNIQUE,
  plan TEXT
);

CREATE TABLE events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  created_at TEXT NOT NULL
);
`

const seedSQL = `
INSERT INTO users (id, name) VALUES (1, 'A');
INSERT INTO users (id, name) VALUES (2, 'B');
`

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()

	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.Type = "sqlite"
	cfg.ConnectionConfig.DBName = fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	cfg.ConnectionConfig.HealthCheckInterval = 0

	manager, err := database.Open(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Disconnect() })

	fsys := fstest.MapFS{
		"common/001_schema.sql": {Data: []byte(schemaSQL)},
		"common/002_seed.sql":   {Data: []byte(seedSQL)},
	}
	require.NoError(t, database.NewSQLInitManager(manager.GetDB(), "test", fsys).ExecuteInitialization(ctx))
	return manager.GetDB()
}

func TestUsersScenario(t *testing.T) {
	ctx := context.Background()
	users := NewEntityRepository(newTestDB(t), "users")

	rows, err := users.FindByColumn("name", "B").FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Row{{"id": int64(2), "name": "B"}}, rows)

	affected, err := users.UpdateByID(ctx, 1, Row{"name": "C"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, affected)

	row, err := users.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, Row{"id": int64(1), "name": "C"}, row)

	ok, err := users.DeleteByID(ctx, 3)
	assert.False(t, ok)
	assert.True(t, IsNotFound(err))
}

func TestFindByIDNotFound(t *testing.T) {
	users := NewEntityRepository(newTestDB(t), "users")

	row, err := users.FindByID(context.Background(), 42)
	assert.Nil(t, row)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "users", nf.Table)
	assert.Equal(t, 42, nf.ID)
	assert.Equal(t, http.StatusNotFound, nf.StatusCode())
	assert.Equal(t, "users with id 42 not found", nf.Error())
}

func TestFindByIDProjection(t *testing.T) {
	users := NewEntityRepository(newTestDB(t), "users")

	row, err := users.FindByID(context.Background(), 2, "name")
	require.NoError(t, err)
	assert.Equal(t, Row{"name": "B"}, row)
}

func TestDeleteByID(t *testing.T) {
	ctx := context.Background()
	users := NewEntityRepository(newTestDB(t), "users")

	ok, err := users.DeleteByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = users.FindByID(ctx, 1)
	assert.True(t, IsNotFound(err))

	_, err = users.DeleteByID(ctx, 1)
	assert.True(t, IsNotFound(err))
}

func TestCountArithmetic(t *testing.T) {
	ctx := context.Background()
	users := NewEntityRepository(newTestDB(t), "users")

	original, err := users.GetCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, original)

	for _, name := range []string{"D", "E", "F"} {
		res, err := users.Insert(ctx, Row{"name": name})
		require.NoError(t, err)
		assert.Equal(t, types.InsertedIdentity, res.Kind)
		assert.True(t, res.OK)
		assert.IsType(t, int64(0), res.ID)
	}
	_, err = users.DeleteByID(ctx, 1)
	require.NoError(t, err)

	count, err := users.GetCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, original+3-1, count)

	rows, err := users.FindAll("").FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, count)
}

func TestInsertReturnsIdentity(t *testing.T) {
	ctx := context.Background()
	users := NewEntityRepository(newTestDB(t), "users")

	res, err := users.Insert(ctx, Row{"name": "Z"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.ID)
	assert.Equal(t, int64(1), res.RowsAffected)

	row, err := users.FindByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Z", row["name"])
}

func TestInsertMany(t *testing.T) {
	ctx := context.Background()
	users := NewEntityRepository(newTestDB(t), "users")

	res, err := users.InsertMany(ctx, []Row{{"name": "X"}, {"name": "Y"}})
	require.NoError(t, err)
	assert.Equal(t, types.InsertedFlag, res.Kind)
	assert.True(t, res.OK)
	assert.Equal(t, int64(2), res.RowsAffected)

	res, err = users.InsertMany(ctx, nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Zero(t, res.RowsAffected)

	count, err := users.GetCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	rows, err := users.FindAll("id").FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, Row{"id": int64(4), "name": "Y"}, rows[3])
}

func TestInsertManyIsAtomic(t *testing.T) {
	ctx := context.Background()
	accounts := NewEntityRepository(newTestDB(t), "accounts")

	res, err := accounts.InsertMany(ctx, []Row{
		{"email": "a@example.com", "plan": "free"},
		{"email": "b@example.com", "plan": "pro"},
		{"email": "a@example.com", "plan": "pro"},
	})
	require.Error(t, err)
	assert.Nil(t, res)

	count, err := accounts.GetCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFindAllOrderAndProjection(t *testing.T) {
	ctx := context.Background()
	users := NewEntityRepository(newTestDB(t), "users")

	rows, err := users.FindAll("id DESC", "name").FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Row{{"name": "B"}, {"name": "A"}}, rows)

	empty, err := users.FindByColumn("name", "nobody").FetchAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	row, err := users.FindByColumn("name", "nobody").Fetch(ctx)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestSelectionIsImmutableAndRestartable(t *testing.T) {
	ctx := context.Background()
	users := NewEntityRepository(newTestDB(t), "users")

	all := users.FindAll("id")
	onlyB := all.WhereEq("name", "B")
	none := onlyB.Where("id = ?", 1)

	n, err := all.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = onlyB.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = none.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = users.Insert(ctx, Row{"name": "B"})
	require.NoError(t, err)

	n, err = onlyB.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSelectionAll(t *testing.T) {
	ctx := context.Background()
	users := NewEntityRepository(newTestDB(t), "users")

	var names []string
	for row, err := range users.FindAll("id").All(ctx) {
		require.NoError(t, err)
		names = append(names, row["name"].(string))
	}
	assert.Equal(t, []string{"A", "B"}, names)

	all, err := users.FindAll("id").FetchAll(ctx)
	require.NoError(t, err)
	var streamed []Row
	for row, err := range users.FindAll("id").All(ctx) {
		require.NoError(t, err)
		streamed = append(streamed, row)
	}
	assert.Equal(t, all, streamed)

	for row, err := range users.FindAll("", "name").Where("id = ?", 2).All(ctx) {
		require.NoError(t, err)
		assert.Equal(t, Row{"name": "B"}, row)
	}

	var first []Row
	for row, err := range users.FindAll("id").All(ctx) {
		require.NoError(t, err)
		first = append(first, row)
		break
	}
	assert.Len(t, first, 1)
}

func TestSelectionPage(t *testing.T) {
	ctx := context.Background()
	users := NewEntityRepository(newTestDB(t), "users")
	_, err := users.InsertMany(ctx, []Row{{"name": "C"}, {"name": "D"}, {"name": "E"}})
	require.NoError(t, err)

	page, err := users.Table().Page(ctx, types.NewPageRequest(2, 2, nil, []string{"id"}))
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Items[0]["id"])
	assert.Equal(t, int64(4), page.Items[1]["id"])

	filtered, err := users.Table().Page(ctx, types.NewPageRequest(1, 10, types.NewQueryFilter("name = ?", "Q"), nil))
	require.NoError(t, err)
	assert.Zero(t, filtered.Total)
	assert.Empty(t, filtered.Items)
}

func TestUpdateAllAndByColumn(t *testing.T) {
	ctx := context.Background()
	users := NewEntityRepository(newTestDB(t), "users")

	n, err := users.UpdateByColumn(ctx, "name = ?", []any{"A"}, Row{"name": "AA"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = users.UpdateByColumn(ctx, "name = ?", []any{"nobody"}, Row{"name": "X"})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = users.UpdateAll(ctx, Row{"name": "same"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := users.FindByColumn("name", "same").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	affected, err := users.UpdateByID(ctx, 99, Row{"name": "ghost"})
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, affected)
}

func TestDeleteByColumn(t *testing.T) {
	ctx := context.Background()
	users := NewEntityRepository(newTestDB(t), "users")

	n, err := users.DeleteByColumn(ctx, "name", "nobody")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = users.DeleteByColumn(ctx, "name", "A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestBackendErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	accounts := NewEntityRepository(newTestDB(t), "accounts")

	_, err := accounts.Insert(ctx, Row{"email": "a@example.com"})
	require.NoError(t, err)

	_, err = accounts.Insert(ctx, Row{"email": "a@example.com"})
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	is, kind := database.IsSqlError(err)
	assert.True(t, is)
	assert.Equal(t, database.DuplicateKeyErr, kind)

	ghosts := NewEntityRepository(accounts.DB(), "ghosts")
	_, err = ghosts.FindByID(ctx, 1)
	require.Error(t, err)
	assert.False(t, IsNotFound(err))

	_, err = ghosts.DeleteByID(ctx, 1)
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}

// serverToday reads the start of the current day from the SQLite clock that
// FindTodayRows compares against.
func serverToday(t *testing.T, ctx context.Context, db *bun.DB) time.Time {
	t.Helper()
	var day string
	require.NoError(t, db.NewRaw("SELECT date('now')").Scan(ctx, &day))
	today, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	return today
}

func TestFindTodayRowsBounds(t *testing.T) {
	ctx := context.Background()
	events := NewEntityRepository(newTestDB(t), "events")

	const layout = "2006-01-02 15:04:05"
	// A run that straddles midnight on the server clock is repeated.
	for attempt := 0; attempt < 2; attempt++ {
		_, err := events.DB().NewDelete().TableExpr("events").Where("1 = 1").Exec(ctx)
		require.NoError(t, err)

		today := serverToday(t, ctx, events.DB())
		seed := []Row{
			{"title": "yesterday", "created_at": today.Add(-time.Second).Format(layout)},
			{"title": "today-start", "created_at": today.Format(layout)},
			{"title": "today-noon", "created_at": today.Add(12 * time.Hour).Format(layout)},
			{"title": "tomorrow-start", "created_at": today.Add(24 * time.Hour).Format(layout)},
		}
		_, err = events.InsertMany(ctx, seed)
		require.NoError(t, err)

		rows, err := events.FindTodayRows("created_at").Order("id").FetchAll(ctx)
		require.NoError(t, err)
		if !serverToday(t, ctx, events.DB()).Equal(today) {
			continue
		}

		var titles []any
		for _, row := range rows {
			titles = append(titles, row["title"])
		}
		assert.Equal(t, []any{"today-start", "today-noon"}, titles)
		return
	}
	t.Fatal("server day kept changing")
}

func TestGenerateMap(t *testing.T) {
	rows := []Row{
		{"id": int64(1), "name": "A"},
		{"id": int64(2), "name": "B"},
		{"id": int64(1), "name": "A2"},
		{"id": []byte("x"), "name": "bytes"},
	}

	byID := GenerateMap(rows, "id")
	assert.Len(t, byID, 3)
	assert.Equal(t, "A2", byID[int64(1)]["name"])
	assert.Equal(t, "B", byID[int64(2)]["name"])
	assert.Equal(t, "bytes", byID["x"]["name"])

	names := GenerateColumnMap(rows, "id", "name")
	assert.Equal(t, map[any]any{int64(1): "A2", int64(2): "B", "x": "bytes"}, names)

	assert.Empty(t, GenerateMap(nil, "id"))
}

func TestEntityTableDefaults(t *testing.T) {
	db := newTestDB(t)
	repo := NewEntityRepositoryFor(db, EntityTable{Name: "users"})
	assert.Equal(t, "id", repo.EntityTable().PrimaryKey)
	assert.Same(t, db, repo.DB())
	assert.Equal(t, "users", repo.Table().TableName())
	assert.IsType(t, sqliteAdapter{}, repo.adapter)
	assert.Contains(t, repo.FindTodayRows("created_at").String(), "start of day")
}

func TestTodayConditionPerDialect(t *testing.T) {
	q, args := mysqlAdapter{}.todayCondition("ts")
	assert.Contains(t, q, "CURDATE()")
	assert.Len(t, args, 2)

	q, _ = postgresAdapter{}.todayCondition("ts")
	assert.Contains(t, q, "CURRENT_DATE")

	q, _ = sqliteAdapter{}.todayCondition("ts")
	assert.Contains(t, q, "'+1 day'")
}
