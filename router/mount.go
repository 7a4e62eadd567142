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
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Dispatcher resolves a presenter action to its handler.
type Dispatcher interface {
	Resolve(module, presenter, action string) (echo.HandlerFunc, error)
}

// Mount registers every route of list as a GET handler on e. It fails on
// the first route the dispatcher cannot resolve and registers nothing in
// that case.
func Mount(e *echo.Echo, list *RouteList, dispatcher Dispatcher) ([]ResolvedRoute, error) {
	routes := list.Flatten()
	handlers := make([]echo.HandlerFunc, len(routes))
	for i, r := range routes {
		h, err := dispatcher.Resolve(r.Module, r.Presenter, r.Action)
		if err != nil {
			return nil, fmt.Errorf("failed to mount %s: %w", r, err)
		}
		handlers[i] = h
	}

	for i, r := range routes {
		e.GET(r.Path, handlers[i]).Name = r.Target()
	}
	return routes, nil
}

// RequestLogger logs one line per request with the fields the JSON log
// formatter lifts to top-level keys.
func RequestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			entry := logger.WithFields(logrus.Fields{
				"req_method":   req.Method,
				"req_uri":      req.RequestURI,
				"status_code":  status,
				"latency_time": time.Since(start).String(),
				"client_ip":    c.RealIP(),
			})
			switch {
			case status >= http.StatusInternalServerError:
				entry.Error("request failed")
			case status >= http.StatusBadRequest:
				entry.Warn("request rejected")
			default:
				entry.Info("request served")
			}
			return nil
		}
	}
}
