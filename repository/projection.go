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
	"fmt"
	"reflect"
)

// GenerateMap indexes rows by the value of keyColumn. When several rows
// share a key the last one wins.
func GenerateMap(rows []Row, keyColumn string) map[any]Row {
	out := make(map[any]Row, len(rows))
	for _, row := range rows {
		out[mapKey(row[keyColumn])] = row
	}
	return out
}

// GenerateColumnMap maps the value of keyColumn to the value of valueColumn
// for every row. When several rows share a key the last one wins.
func GenerateColumnMap(rows []Row, keyColumn, valueColumn string) map[any]any {
	out := make(map[any]any, len(rows))
	for _, row := range rows {
		out[mapKey(row[keyColumn])] = row[valueColumn]
	}
	return out
}

// mapKey makes v usable as a map key. Byte slices become strings and other
// non-comparable values fall back to their printed form.
func mapKey(v any) any {
	switch k := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(k)
	}
	if !reflect.TypeOf(v).Comparable() {
		return fmt.Sprint(v)
	}
	return v
}
