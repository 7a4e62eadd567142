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
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/explorer/database"
	"github.com/tomoncle/explorer/repository"
)

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

var sqlErrorStatus = map[database.SQLError]int{
	database.DuplicateKeyErr:             http.StatusConflict,
	database.NotNullViolationErr:         http.StatusBadRequest,
	database.ForeignKeyViolationErr:      http.StatusBadRequest,
	database.CheckConstraintViolationErr: http.StatusBadRequest,
	database.DataTruncatedErr:            http.StatusBadRequest,
	database.InvalidTypeCastErr:          http.StatusBadRequest,
}

// StatusFor picks the HTTP status and machine readable code for err.
func StatusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, codeFromStatus(he.Code)
	}
	if repository.IsNotFound(err) {
		return http.StatusNotFound, "not_found"
	}
	if is, kind := database.IsSqlError(err); is {
		if status, ok := sqlErrorStatus[kind]; ok {
			return status, kind.String()
		}
		return http.StatusInternalServerError, "database_error"
	}
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode(), codeFromStatus(sc.StatusCode())
	}
	return http.StatusInternalServerError, "internal_error"
}

func codeFromStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusConflict:
		return "conflict"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		if status >= http.StatusInternalServerError {
			return "internal_error"
		}
		return "error"
	}
}

// ErrorHandler returns an echo.HTTPErrorHandler answering with an
// ErrorResponse. Server side failures are logged and their message hidden.
func ErrorHandler(logger *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, code := StatusFor(err)
		message := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			if m, ok := he.Message.(string); ok {
				message = m
			}
		}
		if status >= http.StatusInternalServerError {
			logger.WithError(err).WithField("req_uri", c.Request().RequestURI).Error("request error")
			message = http.StatusText(status)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, ErrorResponse{Status: status, Code: code, Message: message})
		}
		if werr != nil {
			logger.WithError(werr).Warn("failed to write error response")
		}
	}
}
