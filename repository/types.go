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

	"github.com/tomoncle/explorer/types"
	"github.com/uptrace/bun"
)

// Row is one persisted record keyed by column name.
type Row = types.Row

// EntityTable identifies the table a repository works on.
type EntityTable struct {
	Name       string
	PrimaryKey string
}

// NewEntityTable describes table name with primary key "id".
func NewEntityTable(name string) EntityTable {
	return EntityTable{Name: name, PrimaryKey: "id"}
}

func (t EntityTable) primaryKey() string {
	if t.PrimaryKey == "" {
		return "id"
	}
	return t.PrimaryKey
}

// QueryRepository defines the read side of a table repository.
type QueryRepository interface {
	FindAll(order string, columns ...string) *Selection
	FindTodayRows(timeColumn string) *Selection
	FindByColumn(column string, value any, columns ...string) *Selection
	FindByID(ctx context.Context, id any, columns ...string) (Row, error)
	GetCount(ctx context.Context) (int, error)
}

// CommandRepository defines the write side of a table repository.
type CommandRepository interface {
	Insert(ctx context.Context, row Row) (*types.InsertResult, error)
	InsertMany(ctx context.Context, rows []Row) (*types.InsertResult, error)
	UpdateAll(ctx context.Context, patch Row) (int64, error)
	UpdateByColumn(ctx context.Context, condition string, params []any, patch Row) (int64, error)
	UpdateByID(ctx context.Context, id any, patch Row) ([]int64, error)
	DeleteByID(ctx context.Context, id any) (bool, error)
	DeleteByColumn(ctx context.Context, column string, value any) (int64, error)
}

// Repository combines both sides and exposes the table and Bun handle for
// queries the facade does not cover.
type Repository interface {
	QueryRepository
	CommandRepository
	Table() *Selection
	EntityTable() EntityTable
	DB() *bun.DB
}
