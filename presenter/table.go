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

package presenter

import (
	"net/http"
	"regexp"
	"slices"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tomoncle/explorer/repository"
	"github.com/tomoncle/explorer/types"
)

var orderPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*( (?i:asc|desc))?$`)

// RepositoryProvider hands out the repository of a table.
type RepositoryProvider interface {
	Repository(table string) *repository.EntityRepository
}

// TablePresenter exposes rows of the allowed tables as JSON.
type TablePresenter struct {
	Provider RepositoryProvider
	Tables   []string
}

func (p *TablePresenter) repository(c echo.Context) (*repository.EntityRepository, error) {
	table := c.Param("table")
	if !slices.Contains(p.Tables, table) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "unknown table "+table)
	}
	return p.Provider.Repository(table), nil
}

// List answers one page of rows. Query parameters: page, size, order.
// Without order, rows come in primary key order.
func (p *TablePresenter) List(c echo.Context) error {
	repo, err := p.repository(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	var orders []string
	if order := c.QueryParam("order"); order != "" {
		if !orderPattern.MatchString(order) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid order "+order)
		}
		orders = append(orders, order)
	} else {
		orders = append(orders, repo.EntityTable().PrimaryKey)
	}

	result, err := repo.Table().Page(c.Request().Context(), types.NewPageRequest(page, size, nil, orders))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Detail answers the row with the primary key given in the path.
func (p *TablePresenter) Detail(c echo.Context) error {
	repo, err := p.repository(c)
	if err != nil {
		return err
	}

	row, err := repo.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, row)
}

func (p *TablePresenter) Actions() map[string]echo.HandlerFunc {
	return map[string]echo.HandlerFunc{"list": p.List, "detail": p.Detail}
}
