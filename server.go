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

package explorer

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/explorer/config"
	"github.com/tomoncle/explorer/presenter"
	"github.com/tomoncle/explorer/router"
)

// NewWebServer assembles the echo instance: renderer, error handler,
// request logging and the web and API routes.
func NewWebServer(cfg config.WebConfig, ex *Explorer, logger *logrus.Logger) (*echo.Echo, error) {
	renderer, err := presenter.LoadTemplateRenderer(cfg.TemplateDir)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = router.ErrorHandler(logger)
	e.Use(router.RequestLogger(logger))

	registry := presenter.NewRegistry()
	home := &presenter.MainPresenter{Title: cfg.Title, TemplateCommon: cfg.TemplateCommon}
	registry.Register(router.WebModule+":Front", "Main", home.Actions())

	if _, err := router.Mount(e, router.CreateWebRouter(), registry); err != nil {
		return nil, err
	}

	if len(cfg.ApiTables) > 0 {
		tables := &presenter.TablePresenter{Provider: ex, Tables: cfg.ApiTables}
		registry.Register(router.ApiModule, "Table", tables.Actions())
		if _, err := router.Mount(e, router.CreateApiRouter(), registry); err != nil {
			return nil, fmt.Errorf("failed to mount api: %w", err)
		}
	}
	return e, nil
}
