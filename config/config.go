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

// Package config loads the application configuration. Values come from
// defaults, an optional YAML file, a .env file and EXPLORER_ prefixed
// environment variables, in that order, and are validated before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/tomoncle/explorer/database"
	"gopkg.in/yaml.v3"
)

// EnvPrefix marks the environment variables read into Config. A double
// underscore separates nesting levels:
// EXPLORER_DATABASE__CONNECTION__HOST sets database.connection.host.
const EnvPrefix = "EXPLORER_"

type Config struct {
	Database database.Config `yaml:"database" koanf:"database" validate:"required"`
	Web      WebConfig       `yaml:"web" koanf:"web" validate:"required"`
	Log      LogConfig       `yaml:"log" koanf:"log"`
}

// WebConfig holds the HTTP server and routing settings. TemplateCommon is
// the shared asset directory exposed to every template.
type WebConfig struct {
	Listen         string `yaml:"listen" koanf:"listen" validate:"required"`
	TemplateDir    string `yaml:"template_dir" koanf:"template_dir" validate:"required"`
	TemplateCommon string `yaml:"template_common" koanf:"template_common"`
	Title          string `yaml:"title" koanf:"title"`
	// ApiTables lists the tables served under /api. Empty disables the API.
	ApiTables []string `yaml:"api_tables" koanf:"api_tables"`
}

type LogConfig struct {
	Level  string `yaml:"level" koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	Format string `yaml:"format" koanf:"format" validate:"omitempty,oneof=text json"`
}

// Default returns a configuration serving a local SQLite database.
func Default() *Config {
	db := database.DefaultConfig()
	db.ConnectionConfig.Type = "sqlite"
	db.ConnectionConfig.DBName = "explorer"

	return &Config{
		Database: *db,
		Web: WebConfig{
			Listen:         ":8080",
			TemplateDir:    "templates",
			TemplateCommon: "templates/@common",
			Title:          "Explorer",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := loadEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// envKey maps EXPLORER_WEB__LISTEN to web.listen.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func loadEnv(cfg *Config) error {
	k := koanf.New(".")
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	if len(k.Keys()) == 0 {
		return nil
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("failed to decode environment: %w", err)
	}
	return nil
}

// Validate checks struct tags and reports every failing field.
func Validate(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
