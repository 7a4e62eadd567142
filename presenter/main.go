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

	"github.com/labstack/echo/v4"
)

// HomeData is passed to the "home" template.
type HomeData struct {
	Title          string
	TemplateCommon string
}

// MainPresenter serves the front page.
type MainPresenter struct {
	Title          string
	TemplateCommon string
}

func (p *MainPresenter) Home(c echo.Context) error {
	return c.Render(http.StatusOK, "home", HomeData{
		Title:          p.Title,
		TemplateCommon: p.TemplateCommon,
	})
}

// Actions lists the handlers by action name.
func (p *MainPresenter) Actions() map[string]echo.HandlerFunc {
	return map[string]echo.HandlerFunc{"home": p.Home}
}
