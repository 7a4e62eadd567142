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
	"errors"
	"iter"
	"slices"

	"github.com/tomoncle/explorer/types"
	"github.com/uptrace/bun"
)

type condition struct {
	query string
	args  []any
}

// Selection is a lazy query over one table. Chaining methods return a new
// Selection and leave the receiver untouched, so a Selection can be shared
// and executed any number of times; each execution hits the database again.
type Selection struct {
	db         *bun.DB
	table      EntityTable
	columns    []string
	conditions []condition
	orders     []string
	limit      int
	offset     int
}

func newSelection(db *bun.DB, table EntityTable) *Selection {
	return &Selection{db: db, table: table}
}

func (s *Selection) clone() *Selection {
	c := *s
	c.columns = slices.Clone(s.columns)
	c.conditions = slices.Clone(s.conditions)
	c.orders = slices.Clone(s.orders)
	return &c
}

// Where adds a raw condition with positional "?" parameters. Conditions are
// joined with AND.
func (s *Selection) Where(query string, args ...any) *Selection {
	c := s.clone()
	c.conditions = append(c.conditions, condition{query: query, args: args})
	return c
}

// WhereEq adds column = value, or column IS NULL for a nil value.
func (s *Selection) WhereEq(column string, value any) *Selection {
	if value == nil {
		return s.Where("? IS NULL", bun.Ident(column))
	}
	return s.Where("? = ?", bun.Ident(column), value)
}

func (s *Selection) WherePrimary(id any) *Selection {
	return s.WhereEq(s.table.primaryKey(), id)
}

// Filter adds filter as a raw condition. A nil filter is ignored.
func (s *Selection) Filter(filter *types.QueryFilter) *Selection {
	if filter == nil || filter.Schema == "" {
		return s
	}
	return s.Where(filter.Schema, filter.Args...)
}

// Select replaces the projected columns. No columns means all of them.
func (s *Selection) Select(columns ...string) *Selection {
	c := s.clone()
	c.columns = slices.Clone(columns)
	return c
}

// Order appends an ORDER BY expression as given, e.g. "created_at DESC".
func (s *Selection) Order(expr string) *Selection {
	if expr == "" {
		return s
	}
	c := s.clone()
	c.orders = append(c.orders, expr)
	return c
}

func (s *Selection) Limit(n int) *Selection {
	c := s.clone()
	c.limit = n
	return c
}

func (s *Selection) Offset(n int) *Selection {
	c := s.clone()
	c.offset = n
	return c
}

func (s *Selection) TableName() string { return s.table.Name }

func (s *Selection) baseQuery() *bun.SelectQuery {
	q := s.db.NewSelect().TableExpr("?", bun.Ident(s.table.Name))
	for _, cond := range s.conditions {
		q = q.Where(cond.query, cond.args...)
	}
	return q
}

func (s *Selection) query() *bun.SelectQuery {
	q := s.baseQuery()
	if len(s.columns) == 0 {
		q = q.ColumnExpr("*")
	}
	for _, col := range s.columns {
		q = q.ColumnExpr("?", bun.Ident(col))
	}
	for _, order := range s.orders {
		q = q.OrderExpr(order)
	}
	if s.limit > 0 {
		q = q.Limit(s.limit)
	}
	if s.offset > 0 {
		q = q.Offset(s.offset)
	}
	return q
}

// String renders the SELECT statement the Selection would run.
func (s *Selection) String() string {
	return s.query().String()
}

// Fetch returns the first matching row, or nil without error when nothing
// matches.
func (s *Selection) Fetch(ctx context.Context) (Row, error) {
	row := map[string]interface{}{}
	err := s.Limit(1).query().Scan(ctx, &row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return nil, nil
	}
	return normalizeRow(row), nil
}

// FetchAll runs the query and returns every matching row. An empty result
// is an empty, non-nil slice.
func (s *Selection) FetchAll(ctx context.Context) ([]Row, error) {
	var maps []map[string]interface{}
	if err := s.query().Scan(ctx, &maps); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	rows := make([]Row, 0, len(maps))
	for _, m := range maps {
		rows = append(rows, normalizeRow(m))
	}
	return rows, nil
}

// All streams matching rows. The underlying connection stays busy until the
// loop ends, so the loop body must not issue queries on a pool limited to
// one connection.
func (s *Selection) All(ctx context.Context) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		rows, err := s.query().Rows(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		defer func() { _ = rows.Close() }()

		columns, err := rows.Columns()
		if err != nil {
			yield(nil, err)
			return
		}
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}

		for rows.Next() {
			if err := rows.Scan(dest...); err != nil {
				yield(nil, err)
				return
			}
			m := make(map[string]interface{}, len(columns))
			for i, column := range columns {
				m[column] = values[i]
			}
			if !yield(normalizeRow(m), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Count returns the number of rows matching the conditions. Projection,
// ordering and paging are ignored.
func (s *Selection) Count(ctx context.Context) (int, error) {
	return s.baseQuery().Count(ctx)
}

// Page returns one page of the selection. The request's filter and orders
// are applied on top of the Selection's own.
func (s *Selection) Page(ctx context.Context, req *types.PageRequest) (*types.Pagination[Row], error) {
	if req == nil {
		req = types.NewDefaultPageRequest(1, 10)
	}
	sel := s.Filter(req.GetFilter())
	for _, order := range req.GetOrders() {
		sel = sel.Order(order)
	}

	pagination := types.NewDefaultPagination[Row](req.GetPage(), req.GetPageSize())
	total, err := sel.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}

	items, err := sel.Offset(req.GetOffset()).Limit(req.GetPageSize()).FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = items
	return pagination, nil
}

// normalizeRow converts driver byte slices to strings so rows compare and
// serialize predictably across engines.
func normalizeRow(m map[string]interface{}) Row {
	row := make(Row, len(m))
	for k, v := range m {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row[k] = v
	}
	return row
}
