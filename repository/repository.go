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

// EntityRepository is the CRUD facade over one table. It holds no state
// besides the Bun handle and the table descriptor; every call is a single
// statement.
type EntityRepository struct {
	db      *bun.DB
	table   EntityTable
	adapter adapter
}

var _ Repository = (*EntityRepository)(nil)

// NewEntityRepository returns a repository for table name with primary key
// "id".
func NewEntityRepository(db *bun.DB, name string) *EntityRepository {
	return NewEntityRepositoryFor(db, NewEntityTable(name))
}

func NewEntityRepositoryFor(db *bun.DB, table EntityTable) *EntityRepository {
	if table.PrimaryKey == "" {
		table.PrimaryKey = "id"
	}
	return &EntityRepository{db: db, table: table, adapter: adapterFor(db)}
}

func (r *EntityRepository) DB() *bun.DB { return r.db }

func (r *EntityRepository) EntityTable() EntityTable { return r.table }

// Table returns an unfiltered Selection over the whole table.
func (r *EntityRepository) Table() *Selection {
	return newSelection(r.db, r.table)
}

// FindAll selects every row, ordered by order when it is not empty and
// projected to columns when any are given.
func (r *EntityRepository) FindAll(order string, columns ...string) *Selection {
	return r.Table().Select(columns...).Order(order)
}

// FindTodayRows selects rows whose timeColumn lies in the current day of the
// database server.
func (r *EntityRepository) FindTodayRows(timeColumn string) *Selection {
	query, args := r.adapter.todayCondition(timeColumn)
	return r.FindAll("").Where(query, args...)
}

func (r *EntityRepository) FindByColumn(column string, value any, columns ...string) *Selection {
	return r.FindAll("", columns...).WhereEq(column, value)
}

// FindByID returns the row with primary key id, or a *NotFoundError.
func (r *EntityRepository) FindByID(ctx context.Context, id any, columns ...string) (Row, error) {
	row, err := r.FindAll("", columns...).WherePrimary(id).Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, newNotFoundError(r.table.Name, id)
	}
	return row, nil
}

// Insert stores one row. The result shape depends on the engine: the new
// identity on MySQL and SQLite, the stored record on PostgreSQL.
func (r *EntityRepository) Insert(ctx context.Context, row Row) (*types.InsertResult, error) {
	return r.adapter.insert(ctx, r.db, r.table.Name, row)
}

// InsertMany stores rows in one transaction: either all of them are stored
// or none is.
func (r *EntityRepository) InsertMany(ctx context.Context, rows []Row) (*types.InsertResult, error) {
	if len(rows) == 0 {
		return &types.InsertResult{Kind: types.InsertedFlag, OK: true}, nil
	}

	var affected int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, row := range rows {
			res, err := insertRow(ctx, tx, r.table.Name, row)
			if err != nil {
				return err
			}
			n, _ := res.RowsAffected()
			affected += n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &types.InsertResult{Kind: types.InsertedFlag, OK: true, RowsAffected: affected}, nil
}

// UpdateAll applies patch to every row of the table.
func (r *EntityRepository) UpdateAll(ctx context.Context, patch Row) (int64, error) {
	return r.update(ctx, patch, "1 = 1")
}

// UpdateByColumn applies patch to the rows matching condition, a raw
// expression with positional "?" parameters.
func (r *EntityRepository) UpdateByColumn(ctx context.Context, condition string, params []any, patch Row) (int64, error) {
	return r.update(ctx, patch, condition, params...)
}

// UpdateByID applies patch to the row with primary key id. The single
// element is the number of rows changed, 0 or 1.
func (r *EntityRepository) UpdateByID(ctx context.Context, id any, patch Row) ([]int64, error) {
	n, err := r.update(ctx, patch, "? = ?", bun.Ident(r.table.PrimaryKey), id)
	if err != nil {
		return nil, err
	}
	return []int64{n}, nil
}

func (r *EntityRepository) update(ctx context.Context, patch Row, where string, args ...any) (int64, error) {
	values := map[string]interface{}(patch)
	res, err := r.db.NewUpdate().
		Model(&values).
		TableExpr("?", bun.Ident(r.table.Name)).
		Where(where, args...).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByID removes the row with primary key id. Deleting nothing is
// reported as a *NotFoundError.
func (r *EntityRepository) DeleteByID(ctx context.Context, id any) (bool, error) {
	n, err := r.delete(ctx, r.table.PrimaryKey, id)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, newNotFoundError(r.table.Name, id)
	}
	return true, nil
}

// DeleteByColumn removes every row where column equals value and returns
// how many were removed.
func (r *EntityRepository) DeleteByColumn(ctx context.Context, column string, value any) (int64, error) {
	return r.delete(ctx, column, value)
}

func (r *EntityRepository) delete(ctx context.Context, column string, value any) (int64, error) {
	q := r.db.NewDelete().TableExpr("?", bun.Ident(r.table.Name))
	if value == nil {
		q = q.Where("? IS NULL", bun.Ident(column))
	} else {
		q = q.Where("? = ?", bun.Ident(column), value)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetCount returns the number of rows in the table.
func (r *EntityRepository) GetCount(ctx context.Context) (int, error) {
	return r.Table().Count(ctx)
}
