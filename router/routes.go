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

// Package router declares the application's route lists and mounts them on
// echo. A route maps a path mask to a "Presenter:action" target inside a
// module; nested lists prefix both the path and the module name.
package router

import (
	"fmt"
	"strings"
)

// Route is one declared mapping from Mask to Presenter and Action.
type Route struct {
	Mask      string
	Presenter string
	Action    string
}

// RouteList is a tree of routes. Children inherit the path prefix and the
// module name of their parent.
type RouteList struct {
	path     string
	module   string
	routes   []Route
	children []*RouteList
}

func NewRouteList() *RouteList {
	return &RouteList{}
}

// WithPath adds a child list whose routes live under path.
func (l *RouteList) WithPath(path string) *RouteList {
	child := &RouteList{path: strings.Trim(path, "/")}
	l.children = append(l.children, child)
	return child
}

// WithModule adds a child list whose presenters belong to module.
func (l *RouteList) WithModule(module string) *RouteList {
	child := &RouteList{module: module}
	l.children = append(l.children, child)
	return child
}

// AddRoute declares mask -> target, where target is "Presenter:action".
// A target without an action uses "default".
func (l *RouteList) AddRoute(mask, target string) *RouteList {
	presenter, action, ok := strings.Cut(target, ":")
	if !ok || action == "" {
		action = "default"
	}
	l.routes = append(l.routes, Route{
		Mask:      strings.Trim(mask, "/"),
		Presenter: presenter,
		Action:    action,
	})
	return l
}

func (l *RouteList) Path() string { return l.path }

func (l *RouteList) Module() string { return l.module }

func (l *RouteList) Routes() []Route { return append([]Route(nil), l.routes...) }

func (l *RouteList) Children() []*RouteList { return append([]*RouteList(nil), l.children...) }

// ResolvedRoute is a Route with its inherited path and module applied.
type ResolvedRoute struct {
	Path      string
	Module    string
	Presenter string
	Action    string
}

// Target is the fully qualified "Module:Presenter:action" name.
func (r ResolvedRoute) Target() string {
	if r.Module == "" {
		return r.Presenter + ":" + r.Action
	}
	return r.Module + ":" + r.Presenter + ":" + r.Action
}

func (r ResolvedRoute) String() string {
	return fmt.Sprintf("%s -> %s", r.Path, r.Target())
}

// Flatten walks the tree depth first and returns every route with its echo
// path. Mask parameters written as <name> become :name.
func (l *RouteList) Flatten() []ResolvedRoute {
	var out []ResolvedRoute
	l.flatten(nil, nil, &out)
	return out
}

func (l *RouteList) flatten(paths, modules []string, out *[]ResolvedRoute) {
	if l.path != "" {
		paths = append(paths[:len(paths):len(paths)], l.path)
	}
	if l.module != "" {
		modules = append(modules[:len(modules):len(modules)], l.module)
	}

	for _, r := range l.routes {
		segments := paths
		if r.Mask != "" {
			segments = append(segments[:len(segments):len(segments)], r.Mask)
		}
		*out = append(*out, ResolvedRoute{
			Path:      "/" + maskToPath(strings.Join(segments, "/")),
			Module:    strings.Join(modules, ":"),
			Presenter: r.Presenter,
			Action:    r.Action,
		})
	}
	for _, child := range l.children {
		child.flatten(paths, modules, out)
	}
}

func maskToPath(mask string) string {
	parts := strings.Split(mask, "/")
	for i, p := range parts {
		if strings.HasPrefix(p, "<") && strings.HasSuffix(p, ">") {
			parts[i] = ":" + strings.TrimSuffix(strings.TrimPrefix(p, "<"), ">")
		}
	}
	return strings.Join(parts, "/")
}
