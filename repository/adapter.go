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
	"database/sql"

	"github.com/tomoncle/explorer/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/feature"
)

// adapter isolates the statements whose shape differs between engines.
type adapter interface {
	// todayCondition returns a WHERE fragment bounding column to
	// [today 00:00, tomorrow 00:00) on the server clock.
	todayCondition(column string) (string, []any)
	insert(ctx context.Context, db *bun.DB, table string, row Row) (*types.InsertResult, error)
}

func adapterFor(db *bun.DB) adapter {
	switch db.Dialect().Name() {
	case dialect.PG:
		return postgresAdapter{}
	case dialect.MySQL:
		return mysqlAdapter{}
	case dialect.SQLite:
		return sqliteAdapter{}
	}
	if db.HasFeature(feature.InsertReturning) {
		return postgresAdapter{}
	}
	return mysqlAdapter{}
}

type mysqlAdapter struct{}

func (mysqlAdapter) todayCondition(column string) (string, []any) {
	return "? >= CURDATE() AND ? < CURDATE() + INTERVAL 1 DAY", []any{bun.Ident(column), bun.Ident(column)}
}

func (mysqlAdapter) insert(ctx context.Context, db *bun.DB, table string, row Row) (*types.InsertResult, error) {
	return insertIdentity(ctx, db, table, row)
}

type sqliteAdapter struct{}

// SQLite compares the stored text, so values must be written in UTC; a
// value carrying another offset is bucketed by its local wall clock date.

func (sqliteAdapter) todayCondition(column string) (string, []any) {
	return "? >= datetime('now', 'start of day') AND ? < datetime('now', 'start of day', '+1 day')",
		[]any{bun.Ident(column), bun.Ident(column)}
}

func (sqliteAdapter) insert(ctx context.Context, db *bun.DB, table string, row Row) (*types.InsertResult, error) {
	return insertIdentity(ctx, db, table, row)
}

type postgresAdapter struct{}

func (postgresAdapter) todayCondition(column string) (string, []any) {
	return "? >= CURRENT_DATE AND ? < CURRENT_DATE + INTERVAL '1 day'", []any{bun.Ident(column), bun.Ident(column)}
}

// insert returns the stored record, defaults and generated keys included.
func (postgresAdapter) insert(ctx context.Context, db *bun.DB, table string, row Row) (*types.InsertResult, error) {
	values := map[string]interface{}(row)
	record := map[string]interface{}{}
	err := db.NewInsert().
		Model(&values).
		TableExpr("?", bun.Ident(table)).
		Returning("*").
		Scan(ctx, &record)
	if err != nil {
		return nil, err
	}
	return &types.InsertResult{
		Kind:         types.InsertedRecord,
		OK:           true,
		Record:       normalizeRow(record),
		RowsAffected: 1,
	}, nil
}

func insertRow(ctx context.Context, db bun.IDB, table string, row Row) (sql.Result, error) {
	values := map[string]interface{}(row)
	return db.NewInsert().
		Model(&values).
		TableExpr("?", bun.Ident(table)).
		Exec(ctx)
}

func insertIdentity(ctx context.Context, db *bun.DB, table string, row Row) (*types.InsertResult, error) {
	res, err := insertRow(ctx, db, table, row)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	n, _ := res.RowsAffected()
	return &types.InsertResult{
		Kind:         types.InsertedIdentity,
		ID:           id,
		OK:           true,
		RowsAffected: n,
	}, nil
}
