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
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("entity not found")

// NotFoundError reports that no row carries the requested primary key.
type NotFoundError struct {
	Table  string
	ID     any
	Status int
}

func newNotFoundError(table string, id any) *NotFoundError {
	return &NotFoundError{Table: table, ID: id, Status: http.StatusNotFound}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %v not found", e.Table, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StatusCode is the HTTP status a handler should answer with.
func (e *NotFoundError) StatusCode() int {
	if e.Status == 0 {
		return http.StatusNotFound
	}
	return e.Status
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
