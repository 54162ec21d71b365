// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/consensys/go-conjecture/pkg/protocol"
	"github.com/consensys/go-conjecture/pkg/search"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Search SearchConfig `yaml:"search"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
}

// EngineConfig determines how the expressions process is run.
type EngineConfig struct {
	Path string `yaml:"path" validate:"required"`
	Dir  string `yaml:"dir"`
	// Grace period beyond the time limit before the process is killed (0
	// means never kill).
	Grace time.Duration `yaml:"grace" validate:"gte=0"`
}

// SearchConfig holds defaults for each search.
type SearchConfig struct {
	Time     uint   `yaml:"time" validate:"gte=1"`
	Variable string `yaml:"variable" validate:"required"`
	Workers  uint   `yaml:"workers"`
}

// CacheConfig locates the store of precomputed values.
type CacheConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// DefaultGrace is the default period beyond the time limit after which the
// expressions process is killed.
const DefaultGrace = 30 * time.Second

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{Path: protocol.DefaultPath, Grace: DefaultGrace},
		Search: SearchConfig{Time: search.DefaultTimeLimit, Variable: search.DefaultVariable},
		Log:    LogConfig{Level: "warn", Format: "text"},
	}
}

// Load configuration from a file, with anything not given taking its default
// value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	//
	cfg := Default()
	//
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}
	//
	return cfg, nil
}

// LoadOrDefault loads configuration from a file, or returns the default when
// no file is given.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	//
	return Load(path)
}

// Validate checks every field of the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	//
	return nil
}

// Apply sets the level and format of a logger.
func (c *LogConfig) Apply(logger *log.Logger) error {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	//
	logger.SetLevel(level)
	//
	if c.Format == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{})
	}
	//
	return nil
}
