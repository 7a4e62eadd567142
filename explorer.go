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

// Package explorer gives table level access to a database: one
// EntityRepository per table, created on first use and shared afterwards.
package explorer

import (
	"sync"

	"github.com/tomoncle/explorer/database"
	"github.com/tomoncle/explorer/repository"
	"github.com/uptrace/bun"
)

type Explorer struct {
	source func() *bun.DB
	mu     sync.RWMutex
	last   *bun.DB
	tables map[string]repository.EntityTable
	repos  map[string]*repository.EntityRepository
}

// New binds an Explorer to a fixed handle.
func New(db *bun.DB) *Explorer {
	return NewWithSource(func() *bun.DB { return db })
}

// NewFromManager follows the manager's current handle, so repositories keep
// working after the manager reconnects.
func NewFromManager(manager database.AbstractDatabaseManager) *Explorer {
	return NewWithSource(manager.GetDB)
}

// NewWithSource asks source for the handle on every lookup. Repositories
// built on a handle source no longer returns are rebuilt.
func NewWithSource(source func() *bun.DB) *Explorer {
	return &Explorer{
		source: source,
		tables: map[string]repository.EntityTable{},
		repos:  map[string]*repository.EntityRepository{},
	}
}

// DB returns the current handle. While the source has none, as in the
// middle of a reconnect, the last handle seen is returned.
func (e *Explorer) DB() *bun.DB {
	db := e.source()
	e.mu.Lock()
	defer e.mu.Unlock()
	if db == nil {
		return e.last
	}
	e.last = db
	return db
}

// Repository returns the repository of table, keyed on primary key "id"
// unless Register said otherwise.
func (e *Explorer) Repository(table string) *repository.EntityRepository {
	db := e.DB()

	e.mu.RLock()
	repo, ok := e.repos[table]
	e.mu.RUnlock()
	if ok && repo.DB() == db {
		return repo
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if repo, ok = e.repos[table]; !ok || repo.DB() != db {
		entity, known := e.tables[table]
		if !known {
			entity = repository.NewEntityTable(table)
		}
		repo = repository.NewEntityRepositoryFor(db, entity)
		e.repos[table] = repo
	}
	return repo
}

// Register installs a repository for a table whose primary key is not "id".
func (e *Explorer) Register(table repository.EntityTable) *repository.EntityRepository {
	repo := repository.NewEntityRepositoryFor(e.DB(), table)
	e.mu.Lock()
	e.tables[table.Name] = repo.EntityTable()
	e.repos[table.Name] = repo
	e.mu.Unlock()
	return repo
}

// Table starts an ad hoc selection over name.
func (e *Explorer) Table(name string) *repository.Selection {
	return e.Repository(name).Table()
}
