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

package database

import (
	"context"
	"errors"
	"fmt"
)

// Open builds a manager for cfg, connects it and, when
// DataInitConfig.AutoInitOnStartup is set, runs the SQL initializer. A nil
// logger keeps the package default. The caller owns the returned manager and
// must Disconnect it.
func Open(ctx context.Context, cfg *Config, logger Logger) (AbstractDatabaseManager, error) {
	if cfg == nil {
		return nil, errors.New("database config is required")
	}

	conn := cfg.ConnectionConfig
	manager := NewDatabaseManager(&conn)
	manager.SetLogger(logger)

	if err := manager.Connect(ctx); err != nil {
		return nil, err
	}

	if cfg.DataInitConfig.AutoInitOnStartup {
		if err := manager.InitData(ctx, cfg.DataInitConfig); err != nil {
			_ = manager.Disconnect()
			return nil, fmt.Errorf("failed to initialize data: %w", err)
		}
	}
	return manager, nil
}
