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

// Package cache stores downloaded rootfs archives on disk.
//
// The layout is `<root>/<distro>/<version>/<arch>/` with a metadata.json
// and the archive file per entry; the directory triple is the only index.
// Entries are re-verified on load and evicted when the archive no longer
// matches its recorded digest, so a corrupted cache heals itself by
// triggering a fresh download.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/containerd/log"
	"github.com/opencontainers/go-digest"
	"github.com/sirupsen/logrus"

	"github.com/arcbox/rootfs/fetch"
	"github.com/arcbox/rootfs/internal/archive"
)

const metadataFilename = "metadata.json"

// Metadata is stored alongside a cached rootfs archive.
type Metadata struct {
	// Distro is the distribution slug (e.g. "alpine").
	Distro string `json:"distro"`
	// Version is the version string (e.g. "3.21").
	Version string `json:"version"`
	// Arch is the architecture (e.g. "aarch64").
	Arch string `json:"arch"`
	// SHA256 is the lowercase hex digest of the archive file.
	SHA256 string `json:"sha256"`
	// Filename is the archive filename on disk (e.g. "rootfs.tar.xz").
	Filename string `json:"filename"`
	// Size is the archive size in bytes.
	Size int64 `json:"size"`
	// DownloadedAt is the decimal Unix timestamp (seconds) of the download.
	DownloadedAt string `json:"downloaded_at"`
}

// downloadTime parses DownloadedAt for ordering. Unparseable timestamps
// sort as oldest.
func (m Metadata) downloadTime() int64 {
	ts, err := strconv.ParseInt(m.DownloadedAt, 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// Entry is a handle to a cached rootfs archive on disk.
type Entry struct {
	// ArchivePath is the absolute path to the archive file.
	ArchivePath string
	// Metadata is the entry's recorded metadata.
	Metadata Metadata
}

// ExtractTo unpacks the cached archive into the target directory.
func (e *Entry) ExtractTo(target string) error {
	format, err := archive.DetectFormat(e.ArchivePath)
	if err != nil {
		return err
	}
	return archive.Extract(e.ArchivePath, target, format)
}

// Verify recomputes the archive's SHA-256 with streaming I/O (8 KiB chunks)
// and compares it against the recorded metadata.
func (e *Entry) Verify() (bool, error) {
	f, err := os.Open(e.ArchivePath)
	if err != nil {
		return false, err
	}
	defer f.Close()

	digester := digest.SHA256.Digester()
	buf := make([]byte, 8192)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if _, werr := digester.Hash().Write(buf[:n]); werr != nil {
				return false, werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return false, err
		}
	}
	return digester.Digest().Encoded() == e.Metadata.SHA256, nil
}

// Load returns the verified entry under entryDir, or nil when the directory
// holds no usable entry. A corrupted archive is removed together with its
// metadata so the caller falls through to a fresh download.
func Load(ctx context.Context, entryDir string) (*Entry, error) {
	entry, err := loadEntry(entryDir)
	if err != nil || entry == nil {
		return entry, err
	}

	ok, err := entry.Verify()
	if err != nil {
		return nil, err
	}
	if !ok {
		log.G(ctx).WithFields(logrus.Fields{
			"path":     entry.ArchivePath,
			"expected": entry.Metadata.SHA256,
		}).Warn("cached rootfs integrity check failed, removing corrupted entry")
		os.RemoveAll(entryDir)
		return nil, nil
	}
	return entry, nil
}

// loadEntry reads an entry without verifying the archive. List and Prune
// use it directly to avoid hashing every archive when only metadata is
// needed.
func loadEntry(entryDir string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(entryDir, metadataFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("failed to parse cache metadata in %q: %w", entryDir, err)
	}

	archivePath := filepath.Join(entryDir, md.Filename)
	if _, err := os.Stat(archivePath); err != nil {
		if os.IsNotExist(err) {
			// Metadata exists but the archive is missing. Treat as uncached.
			return nil, nil
		}
		return nil, err
	}

	return &Entry{ArchivePath: archivePath, Metadata: md}, nil
}

// Store writes a download result into the cache entry directory. The
// distro, version and arch fields of the metadata are derived from the
// last three directory segments.
func Store(entryDir string, res *fetch.Result) (*Entry, error) {
	if err := os.MkdirAll(entryDir, 0755); err != nil {
		return nil, err
	}

	archivePath := filepath.Join(entryDir, res.Filename)
	if err := os.WriteFile(archivePath, res.Data, 0644); err != nil {
		return nil, err
	}

	versionDir := filepath.Dir(entryDir)
	md := Metadata{
		Distro:       filepath.Base(filepath.Dir(versionDir)),
		Version:      filepath.Base(versionDir),
		Arch:         filepath.Base(entryDir),
		SHA256:       res.SHA256,
		Filename:     res.Filename,
		Size:         int64(len(res.Data)),
		DownloadedAt: strconv.FormatInt(time.Now().Unix(), 10),
	}

	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(entryDir, metadataFilename), data, 0644); err != nil {
		return nil, err
	}

	return &Entry{ArchivePath: archivePath, Metadata: md}, nil
}

// List returns all cache entries under root. A missing root is an empty
// cache, not an error.
func List(root string) ([]*Entry, error) {
	var entries []*Entry

	distros, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, err
	}

	for _, d := range distros {
		if !d.IsDir() {
			continue
		}
		distroDir := filepath.Join(root, d.Name())
		versions, err := os.ReadDir(distroDir)
		if err != nil {
			return nil, err
		}
		for _, v := range versions {
			if !v.IsDir() {
				continue
			}
			versionDir := filepath.Join(distroDir, v.Name())
			arches, err := os.ReadDir(versionDir)
			if err != nil {
				return nil, err
			}
			for _, a := range arches {
				if !a.IsDir() {
					continue
				}
				entry, err := loadEntry(filepath.Join(versionDir, a.Name()))
				if err != nil {
					return nil, err
				}
				if entry != nil {
					entries = append(entries, entry)
				}
			}
		}
	}

	return entries, nil
}

// Prune removes old entries, keeping at most keepLatest per distribution.
// It returns the number of bytes freed; only successfully removed entries
// are counted.
func Prune(ctx context.Context, root string, keepLatest int) (int64, error) {
	// A negative retention behaves like 0: keep nothing.
	if keepLatest < 0 {
		keepLatest = 0
	}
	all, err := List(root)
	if err != nil {
		return 0, err
	}

	byDistro := make(map[string][]*Entry)
	for _, entry := range all {
		byDistro[entry.Metadata.Distro] = append(byDistro[entry.Metadata.Distro], entry)
	}

	var freed int64
	for _, entries := range byDistro {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Metadata.downloadTime() > entries[j].Metadata.downloadTime()
		})
		if len(entries) <= keepLatest {
			continue
		}
		for _, old := range entries[keepLatest:] {
			entryDir := filepath.Dir(old.ArchivePath)
			if err := os.RemoveAll(entryDir); err != nil {
				log.G(ctx).WithError(err).WithField("path", entryDir).Warn("failed to remove cache entry")
				continue
			}
			freed += old.Metadata.Size
		}
	}

	return freed, nil
}
