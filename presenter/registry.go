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
	"fmt"
	"sync"

	"github.com/labstack/echo/v4"
)

// Registry maps "Module:Presenter" names to their actions. It implements
// router.Dispatcher.
type Registry struct {
	mu         sync.RWMutex
	presenters map[string]map[string]echo.HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{presenters: map[string]map[string]echo.HandlerFunc{}}
}

// Register adds the actions of the presenter called name in module.
func (r *Registry) Register(module, name string, actions map[string]echo.HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := qualify(module, name)
	if r.presenters[key] == nil {
		r.presenters[key] = map[string]echo.HandlerFunc{}
	}
	for action, h := range actions {
		r.presenters[key][action] = h
	}
}

func (r *Registry) Resolve(module, presenter, action string) (echo.HandlerFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	actions, ok := r.presenters[qualify(module, presenter)]
	if !ok {
		return nil, fmt.Errorf("presenter %s not found", qualify(module, presenter))
	}
	h, ok := actions[action]
	if !ok {
		return nil, fmt.Errorf("action %s of presenter %s not found", action, qualify(module, presenter))
	}
	return h, nil
}

func qualify(module, name string) string {
	if module == "" {
		return name
	}
	return module + ":" + name
}
