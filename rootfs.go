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

// Package rootfs resolves, downloads, verifies and caches Linux
// distribution rootfs archives.
//
// The Manager ties the pieces together: the unified image index (or the
// distribution's official server) resolves an archive, the fetch pipeline
// downloads and verifies it, and the cache keeps it on disk keyed by
// distro/version/architecture for later extraction.
package rootfs

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/containerd/log"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/arcbox/rootfs/cache"
	"github.com/arcbox/rootfs/config"
	"github.com/arcbox/rootfs/distro"
	"github.com/arcbox/rootfs/fetch"
	"github.com/arcbox/rootfs/simplestreams"
	rhttp "github.com/arcbox/rootfs/util/http"
)

// Manager manages rootfs downloads, caching and extraction under a single
// cache root directory.
type Manager struct {
	root       string
	httpClient *http.Client
	fetcher    *fetch.Fetcher

	// ensureGroup deduplicates concurrent Ensure calls for the same
	// distro/version/arch so an archive is downloaded at most once.
	ensureGroup singleflight.Group
}

// Opt is an option for New.
type Opt func(*Manager)

// WithHTTPClient attaches a http.Client to the Manager that will be used
// for index and archive requests.
func WithHTTPClient(client *http.Client) Opt {
	return func(m *Manager) {
		m.httpClient = client
	}
}

// New creates a Manager rooted at the given cache directory, creating it
// if needed.
func New(root string, opts ...Opt) (*Manager, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache root %q: %w", root, err)
	}
	m := &Manager{root: root}
	for _, opt := range opts {
		opt(m)
	}
	if m.httpClient == nil {
		m.httpClient = rhttp.NewRetryableClient(config.NewConfig().RetryableHTTPClientConfig)
	}
	m.fetcher = fetch.NewFetcher(m.httpClient)
	return m, nil
}

// Root returns the cache root directory.
func (m *Manager) Root() string {
	return m.root
}

// Ensure returns a verified cache entry for the given distribution,
// downloading through the image index of the given mirror when the cache
// has no usable entry. Concurrent calls for the same entry share one
// download.
func (m *Manager) Ensure(ctx context.Context, d distro.Distro, version distro.Version, arch distro.Arch, mirror simplestreams.Mirror, progress fetch.Progress) (*cache.Entry, error) {
	return m.ensure(ctx, d, version, arch, func(ctx context.Context) (*fetch.Result, error) {
		client := simplestreams.NewClient(mirror, m.httpClient)
		return m.fetcher.FromIndex(ctx, client, d, version, arch, progress)
	})
}

// EnsureOfficial is Ensure through the distribution's official download
// server, verified against its published checksum file. Only distributions
// with an official provider are supported.
func (m *Manager) EnsureOfficial(ctx context.Context, d distro.Distro, version distro.Version, arch distro.Arch, progress fetch.Progress) (*cache.Entry, error) {
	return m.ensure(ctx, d, version, arch, func(ctx context.Context) (*fetch.Result, error) {
		return m.fetcher.FromOfficial(ctx, d, version, arch, progress)
	})
}

func (m *Manager) ensure(ctx context.Context, d distro.Distro, version distro.Version, arch distro.Arch, download func(context.Context) (*fetch.Result, error)) (*cache.Entry, error) {
	entryDir := m.entryDir(d, version, arch)

	// Deduplicated callers share the first caller's download, including its
	// ctx: a later caller's cancellation does not stop the flight, and a
	// cancellation error it receives may originate from the first caller.
	v, err, _ := m.ensureGroup.Do(entryDir, func() (interface{}, error) {
		cached, err := cache.Load(ctx, entryDir)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			log.G(ctx).WithFields(logrus.Fields{
				"distro":  d.String(),
				"version": version.String(),
				"arch":    arch.String(),
			}).Info("using cached rootfs")
			return cached, nil
		}

		result, err := download(ctx)
		if err != nil {
			return nil, err
		}

		entry, err := cache.Store(entryDir, result)
		if err != nil {
			return nil, err
		}
		log.G(ctx).WithField("path", entry.ArchivePath).Debug("rootfs cached")
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cache.Entry), nil
}

// List returns all cached rootfs entries.
func (m *Manager) List() ([]*cache.Entry, error) {
	return cache.List(m.root)
}

// Prune removes cached entries, keeping only the keepLatest most recent
// per distribution. It returns the number of bytes freed.
func (m *Manager) Prune(ctx context.Context, keepLatest int) (int64, error) {
	return cache.Prune(ctx, m.root, keepLatest)
}

func (m *Manager) entryDir(d distro.Distro, version distro.Version, arch distro.Arch) string {
	return filepath.Join(m.root, d.String(), version.String(), arch.LinuxName())
}

// DefaultRootPath returns the default per-user cache root
// (`$XDG_DATA_HOME/arcbox/rootfs`, falling back to `~/.local/share`).
func DefaultRootPath() string {
	return filepath.Join(dataDir(), "arcbox", "rootfs")
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "share")
	}
	return os.TempDir()
}
