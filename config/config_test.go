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
	"os"
	"path/filepath"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	tests := []struct {
		name     string
		actual   any
		expected any
	}{
		{"mirror", cfg.Mirror, "official"},
		{"keep latest", cfg.KeepLatest, defaultKeepLatest},
		{"quiet", cfg.Quiet, false},
		{"dial timeout", cfg.DialTimeoutMsec, int64(defaultDialTimeoutMsec)},
		{"response header timeout", cfg.ResponseHeaderTimeoutMsec, int64(defaultResponseHeaderTimeoutMsec)},
		{"request timeout", cfg.RequestTimeoutMsec, int64(0)},
		{"max retries", cfg.MaxRetries, 0},
		{"min wait", cfg.MinWaitMsec, int64(defaultMinWaitMsec)},
		{"max wait", cfg.MaxWaitMsec, int64(defaultMaxWaitMsec)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Fatalf("default %s = %v, expected %v", tt.name, tt.actual, tt.expected)
			}
		})
	}
}

func TestNewConfigFromToml(t *testing.T) {
	content := `
root_path = "/var/lib/arcbox/rootfs"
mirror = "tuna"
keep_latest = 5
quiet = true

[http.retry]
max_retries = 3
min_wait_msec = 100

[http.timeout]
dial_timeout_msec = 5000
`
	cfgPath := filepath.Join(t.TempDir(), "rootfs.toml")
	if err := os.WriteFile(cfgPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewConfigFromToml(cfgPath)
	if err != nil {
		t.Fatalf("NewConfigFromToml returned unexpected error %v", err)
	}

	if cfg.RootPath != "/var/lib/arcbox/rootfs" {
		t.Fatalf("root path = %q", cfg.RootPath)
	}
	if cfg.Mirror != "tuna" {
		t.Fatalf("mirror = %q", cfg.Mirror)
	}
	if cfg.KeepLatest != 5 {
		t.Fatalf("keep latest = %d", cfg.KeepLatest)
	}
	if !cfg.Quiet {
		t.Fatal("quiet not set")
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("max retries = %d", cfg.MaxRetries)
	}
	if cfg.MinWaitMsec != 100 {
		t.Fatalf("min wait = %d", cfg.MinWaitMsec)
	}
	if cfg.DialTimeoutMsec != 5000 {
		t.Fatalf("dial timeout = %d", cfg.DialTimeoutMsec)
	}
	// Unset values still pick up defaults.
	if cfg.ResponseHeaderTimeoutMsec != defaultResponseHeaderTimeoutMsec {
		t.Fatalf("response header timeout = %d", cfg.ResponseHeaderTimeoutMsec)
	}
	if cfg.MaxWaitMsec != defaultMaxWaitMsec {
		t.Fatalf("max wait = %d", cfg.MaxWaitMsec)
	}
}

func TestNewConfigFromTomlMissingDefaultPath(t *testing.T) {
	cfg, err := NewConfigFromToml(DefaultConfigPath)
	if err != nil {
		t.Fatalf("missing default config should not error, got %v", err)
	}
	if cfg.Mirror != "official" {
		t.Fatalf("mirror = %q, expected defaults", cfg.Mirror)
	}
}

func TestNewConfigFromTomlMissingExplicitPath(t *testing.T) {
	if _, err := NewConfigFromToml(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("missing explicit config path should error")
	}
}
