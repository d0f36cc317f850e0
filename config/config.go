/*
   Copyright The Arcbox Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigPath is the default filesystem path for the configuration file.
const DefaultConfigPath = "/etc/arcbox/rootfs.toml"

type Config struct {
	// RootPath is the cache root directory. Empty means the per-user
	// default location is used.
	RootPath string `toml:"root_path"`

	// Mirror selects the image index mirror: a preset name
	// (official, tuna, ustc, bfsu) or a custom base URL.
	Mirror string `toml:"mirror"`

	// KeepLatest is the number of entries per distribution that prune keeps.
	KeepLatest int `toml:"keep_latest"`

	// Quiet disables progress output.
	Quiet bool `toml:"quiet"`

	RetryableHTTPClientConfig `toml:"http"`
}

type configParser func(*Config) error

var parsers = []configParser{parseHTTPConfig, parseRetentionConfig}

// NewConfig returns an initialized Config with default values set.
func NewConfig() *Config {
	cfg := &Config{}
	for _, p := range parsers {
		p(cfg)
	}
	return cfg
}

// NewConfigFromToml loads a Config from a TOML file, overlaying defaults.
// A missing file at the default path is not an error.
func NewConfigFromToml(cfgPath string) (*Config, error) {
	f, err := os.Open(cfgPath)
	if err != nil {
		if os.IsNotExist(err) && cfgPath == DefaultConfigPath {
			return NewConfig(), nil
		}
		return nil, fmt.Errorf("failed to open config file %q: %w", cfgPath, err)
	}
	defer f.Close()

	cfg := &Config{}
	if err = toml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config file %q: %w", cfgPath, err)
	}
	for _, p := range parsers {
		p(cfg)
	}
	return cfg, nil
}

func parseRetentionConfig(cfg *Config) error {
	if cfg.Mirror == "" {
		cfg.Mirror = defaultMirror
	}
	if cfg.KeepLatest == 0 {
		cfg.KeepLatest = defaultKeepLatest
	}
	return nil
}
