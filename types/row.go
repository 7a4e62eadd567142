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

package types

// Row is one persisted record as a column name to value mapping.
// Values are whatever the driver scanned; []byte values are stored as string.
type Row map[string]interface{}

// Get returns the value of column, or nil when the column is absent.
func (r Row) Get(column string) interface{} {
	if r == nil {
		return nil
	}
	return r[column]
}

// Has reports whether the row carries column, even when its value is NULL.
func (r Row) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// Columns returns the column names present in the row.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		cols = append(cols, k)
	}
	return cols
}

// InsertResult is the outcome of an insert. Kind says which field is set.
type InsertResult struct {
	Kind         InsertKind
	ID           interface{}
	OK           bool
	Record       Row
	RowsAffected int64
}
