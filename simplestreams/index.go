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

package simplestreams

import "fmt"

// Index is the top-level structure of the image index (`images.json`).
type Index struct {
	// Products maps a product key (e.g. "alpine:3.21:amd64:default")
	// to the product it describes.
	Products map[string]Product `json:"products"`
}

// Product is a single distribution release for one architecture and variant.
type Product struct {
	// Arch is the architecture string (e.g. "amd64").
	Arch string `json:"arch"`
	// OS is the OS name (e.g. "Alpine").
	OS string `json:"os"`
	// Release is the release identifier (e.g. "3.21", "noble").
	Release string `json:"release"`
	// ReleaseTitle is the human-readable release title (e.g. "24.04 LTS").
	ReleaseTitle string `json:"release_title"`
	// Variant is the image variant (e.g. "default", "cloud").
	Variant string `json:"variant"`
	// Versions maps a build ID (e.g. "20260218_07:42") to its build.
	Versions map[BuildID]Build `json:"versions"`
}

// Build is a specific build of a product.
type Build struct {
	// Items maps an item key (e.g. "root.tar.xz") to a downloadable file.
	Items map[string]Item `json:"items"`
}

// Item is a downloadable file within a build.
type Item struct {
	// FType is the file type identifier (e.g. "root.tar.xz", "lxd.tar.xz").
	FType string `json:"ftype"`
	// SHA256 is the hex digest of the file.
	SHA256 string `json:"sha256"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
	// Path is the path relative to the mirror base URL.
	Path string `json:"path"`
}

// BuildID is an index build identifier, a zero-padded UTC timestamp like
// "20260218_07:42". The padding makes the lexicographic order the
// chronological order.
type BuildID string

// Less reports whether b was built before other.
func (b BuildID) Less(other BuildID) bool { return b < other }

// latestBuild returns the most recent build ID of a product, or "" when the
// product has no builds.
func latestBuild(p Product) BuildID {
	var latest BuildID
	for id := range p.Versions {
		if latest.Less(id) {
			latest = id
		}
	}
	return latest
}

// ProductNotFoundError is returned when the index has no product for the
// requested distribution, version and architecture in any variant.
type ProductNotFoundError struct {
	Distro  string
	Version string
	Arch    string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("no image index product for %s %s (%s)", e.Distro, e.Version, e.Arch)
}

// RootfsNotFoundError is returned when a product exists but none of its
// items is a rootfs archive.
type RootfsNotFoundError struct {
	ProductKey string
}

func (e *RootfsNotFoundError) Error() string {
	return fmt.Sprintf("no rootfs archive in index product %q", e.ProductKey)
}
