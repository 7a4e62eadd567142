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

const (
	// WebModule is the top level module of the HTML front end.
	WebModule = "Web"
	// WebPrefix is the path prefix of the HTML front end.
	WebPrefix = ""
)

// CreateWebRouter returns the route list of the HTML front end: the empty
// path served by Main:home of the Web:Front module. It has no side effects
// and may be called any number of times.
func CreateWebRouter() *RouteList {
	root := NewRouteList()
	web := root.WithPath(WebPrefix).WithModule(WebModule)
	web.WithModule("Front").AddRoute("", "Main:home")
	return root
}

const (
	ApiModule = "Api"
	ApiPrefix = "api"
)

// CreateApiRouter returns the JSON route list: row listing and primary key
// lookup for one table.
func CreateApiRouter() *RouteList {
	root := NewRouteList()
	api := root.WithPath(ApiPrefix).WithModule(ApiModule)
	api.AddRoute("<table>", "Table:list")
	api.AddRoute("<table>/<id>", "Table:detail")
	return root
}
