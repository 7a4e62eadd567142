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

package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/explorer/repository"
)

type fakeDispatcher map[string]echo.HandlerFunc

func (d fakeDispatcher) Resolve(module, presenter, action string) (echo.HandlerFunc, error) {
	key := module + ":" + presenter + ":" + action
	if h, ok := d[key]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("no handler for %s", key)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestCreateWebRouter(t *testing.T) {
	routes := CreateWebRouter().Flatten()
	require.Len(t, routes, 1)
	assert.Equal(t, ResolvedRoute{Path: "/", Module: "Web:Front", Presenter: "Main", Action: "home"}, routes[0])
	assert.Equal(t, "Web:Front:Main:home", routes[0].Target())

	assert.Equal(t, routes, CreateWebRouter().Flatten(), "repeated calls build the same list")
}

func TestCreateApiRouter(t *testing.T) {
	routes := CreateApiRouter().Flatten()
	require.Len(t, routes, 2)
	assert.Equal(t, "/api/:table", routes[0].Path)
	assert.Equal(t, "list", routes[0].Action)
	assert.Equal(t, "/api/:table/:id", routes[1].Path)
	assert.Equal(t, "Api", routes[1].Module)
}

func TestRouteListNesting(t *testing.T) {
	root := NewRouteList()
	admin := root.WithPath("/admin/").WithModule("Admin")
	admin.AddRoute("users/<id>", "User:edit")
	admin.WithModule("Stats").AddRoute("", "Report")
	root.AddRoute("about", "Page:about")

	routes := root.Flatten()
	require.Len(t, routes, 3)
	assert.Equal(t, ResolvedRoute{Path: "/about", Presenter: "Page", Action: "about"}, routes[0])
	assert.Equal(t, ResolvedRoute{Path: "/admin/users/:id", Module: "Admin", Presenter: "User", Action: "edit"}, routes[1])
	assert.Equal(t, ResolvedRoute{Path: "/admin", Module: "Admin:Stats", Presenter: "Report", Action: "default"}, routes[2])
}

func TestMount(t *testing.T) {
	e := echo.New()
	d := fakeDispatcher{
		"Web:Front:Main:home": func(c echo.Context) error { return c.String(http.StatusOK, "home") },
	}
	routes, err := Mount(e, CreateWebRouter(), d)
	require.NoError(t, err)
	require.Len(t, routes, 1)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "home", rec.Body.String())
}

func TestMountUnknownPresenter(t *testing.T) {
	e := echo.New()
	_, err := Mount(e, CreateWebRouter(), fakeDispatcher{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Web:Front:Main:home")
	assert.Empty(t, e.Routes())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", &repository.NotFoundError{Table: "users", ID: 1}, http.StatusNotFound, "not_found"},
		{"wrapped not found", fmt.Errorf("load: %w", repository.ErrNotFound), http.StatusNotFound, "not_found"},
		{"duplicate", &mysql.MySQLError{Number: 1062}, http.StatusConflict, "duplicate_key"},
		{"not null", errors.New("NOT NULL constraint failed: users.name"), http.StatusBadRequest, "not_null_violation"},
		{"missing table", errors.New("no such table: ghosts"), http.StatusInternalServerError, "database_error"},
		{"echo", echo.NewHTTPError(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed, "method_not_allowed"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := StatusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(quietLogger())
	e.GET("/missing", func(c echo.Context) error {
		return &repository.NotFoundError{Table: "users", ID: 7}
	})
	e.GET("/broken", func(c echo.Context) error {
		return errors.New("secret detail")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrorResponse{Status: 404, Code: "not_found", Message: "users with id 7 not found"}, body)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	var entries []*logrus.Entry
	logger.AddHook(hookFunc(func(e *logrus.Entry) { entries = append(entries, e) }))

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(quietLogger())
	e.Use(RequestLogger(logger))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/gone", func(c echo.Context) error { return repository.ErrNotFound })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/gone", nil))

	require.Len(t, entries, 2)
	assert.Equal(t, http.StatusNoContent, entries[0].Data["status_code"])
	assert.Equal(t, "/ok", entries[0].Data["req_uri"])
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, http.StatusNotFound, entries[1].Data["status_code"])
	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
}

type hookFunc func(*logrus.Entry)

func (h hookFunc) Levels() []logrus.Level { return logrus.AllLevels }

func (h hookFunc) Fire(e *logrus.Entry) error {
	h(e)
	return nil
}
