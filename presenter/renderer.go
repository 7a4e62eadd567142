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

// Package presenter holds the echo handlers behind the declared routes and
// the html/template renderer they use.
package presenter

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

// TemplateRenderer is an echo.Renderer backed by html/template.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses the *.html files of fsys.
func NewTemplateRenderer(fsys fs.FS) (*TemplateRenderer, error) {
	tmpl, err := template.New("").ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &TemplateRenderer{templates: tmpl}, nil
}

// LoadTemplateRenderer parses the templates in dir, falling back to the
// built-in templates when dir does not exist.
func LoadTemplateRenderer(dir string) (*TemplateRenderer, error) {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return NewTemplateRenderer(os.DirFS(dir))
	}
	sub, err := fs.Sub(defaultTemplates, "templates")
	if err != nil {
		return nil, err
	}
	return NewTemplateRenderer(sub)
}

// Render executes the template called name, or "name.html" when no
// template defines name.
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	if t.templates.Lookup(name) == nil && t.templates.Lookup(name+".html") != nil {
		name += ".html"
	}
	return t.templates.ExecuteTemplate(w, name, data)
}
