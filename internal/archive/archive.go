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

// Package archive detects and unpacks compressed rootfs tarballs.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Format identifies the compression of a rootfs tarball.
type Format string

const (
	// FormatTarGz is a gzip-compressed tar archive (`.tar.gz` / `.tgz`).
	FormatTarGz Format = "tar.gz"
	// FormatTarXz is an xz-compressed tar archive (`.tar.xz` / `.txz`).
	FormatTarXz Format = "tar.xz"
)

// ErrUnsupportedFormat is returned when a filename matches no known
// archive format.
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// DetectFormat detects the archive format from the file extension.
func DetectFormat(path string) (Format, error) {
	name := filepath.Base(path)
	switch {
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		return FormatTarGz, nil
	case strings.HasSuffix(name, ".tar.xz") || strings.HasSuffix(name, ".txz"):
		return FormatTarXz, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// Extract unpacks an archive into the target directory, creating it if
// needed. Entry names that would escape the target are rejected.
func Extract(archivePath, target string, format Format) error {
	if err := os.MkdirAll(target, 0755); err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var decompressed io.Reader
	switch format {
	case FormatTarGz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to read gzip stream: %w", err)
		}
		defer gz.Close()
		decompressed = gz
	case FormatTarXz:
		xzr, err := xz.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to read xz stream: %w", err)
		}
		decompressed = xzr
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return untar(tar.NewReader(decompressed), target)
}

func untar(tr *tar.Reader, target string) error {
	// Escape checks compare against the resolved target so that a target
	// reached through a symlink (e.g. /tmp on macOS) still validates.
	realTarget, err := filepath.EvalSymlinks(target)
	if err != nil {
		return err
	}

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}

		path, err := entryPath(target, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			// A "./" entry is the target itself.
			if path == target {
				continue
			}
			if err := mkdirParent(realTarget, path, hdr.Name); err != nil {
				return err
			}
			if err := os.MkdirAll(path, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := mkdirParent(realTarget, path, hdr.Name); err != nil {
				return err
			}
			if err := writeFile(path, tr, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := checkLinkTarget(target, path, hdr.Name, hdr.Linkname); err != nil {
				return err
			}
			if err := mkdirParent(realTarget, path, hdr.Name); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, path); err != nil {
				if !os.IsExist(err) {
					return err
				}
			}
		case tar.TypeLink:
			linkTarget, err := entryPath(target, hdr.Linkname)
			if err != nil {
				return err
			}
			if err := mkdirParent(realTarget, path, hdr.Name); err != nil {
				return err
			}
			if err := os.Link(linkTarget, path); err != nil {
				return err
			}
		default:
			// Device nodes and the like need privileges the extractor
			// does not assume it has.
			continue
		}
	}
}

// entryPath joins an archive entry name onto the target directory,
// rejecting names that resolve outside of it.
func entryPath(target, name string) (string, error) {
	path := filepath.Join(target, name)
	if path != target && !strings.HasPrefix(path, target+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return path, nil
}

// checkLinkTarget rejects symlink entries whose target points outside the
// extraction directory. Absolute targets are rejected outright; relative
// targets are resolved against the link's own directory.
func checkLinkTarget(target, path, name, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("archive entry %q links to absolute path %q", name, linkname)
	}
	resolved := filepath.Join(filepath.Dir(path), linkname)
	if resolved != target && !strings.HasPrefix(resolved, target+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %q links outside extraction directory", name)
	}
	return nil
}

// mkdirParent creates the parent directory of path and verifies that it
// resolves inside the extraction directory, so a symlink planted by an
// earlier entry cannot redirect a write outside of it.
func mkdirParent(realTarget, path, name string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}
	if real != realTarget && !strings.HasPrefix(real, realTarget+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return nil
}

func writeFile(path string, r io.Reader, mode os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
