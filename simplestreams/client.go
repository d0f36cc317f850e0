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

// Package simplestreams resolves rootfs archives through the unified image
// index published by images.linuxcontainers.org and compatible mirrors.
// The index is a static JSON document listing every available product with
// its download path and SHA-256 checksum, which gives one resolution path
// for all supported distributions.
package simplestreams

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/containerd/log"

	"github.com/arcbox/rootfs/config"
	"github.com/arcbox/rootfs/distro"
	rhttp "github.com/arcbox/rootfs/util/http"
)

// VariantPriority is the order in which product variants are tried.
var VariantPriority = []string{"default", "cloud"}

// ResolvedImage is a rootfs archive resolved from the image index.
type ResolvedImage struct {
	// URL is the full download URL.
	URL string
	// SHA256 is the expected hex digest of the file, lowercased.
	SHA256 string
	// Size is the file size in bytes.
	Size int64
	// Filename is the archive filename (e.g. "rootfs.tar.xz").
	Filename string
}

// Client fetches and resolves the image index of a mirror.
type Client struct {
	mirror     Mirror
	httpClient *http.Client
}

// NewClient creates a client backed by the given mirror. A nil httpClient
// falls back to a retryable client built from default config.
func NewClient(mirror Mirror, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = rhttp.NewRetryableClient(config.NewConfig().RetryableHTTPClientConfig)
	}
	return &Client{mirror: mirror, httpClient: httpClient}
}

// Mirror returns the mirror this client resolves against.
func (c *Client) Mirror() Mirror {
	return c.mirror
}

// Resolve fetches the index and resolves the download URL and checksum
// for a rootfs archive.
func (c *Client) Resolve(ctx context.Context, d distro.Distro, version distro.Version, arch distro.Arch) (*ResolvedImage, error) {
	index, err := c.FetchIndex(ctx)
	if err != nil {
		return nil, err
	}
	return c.ResolveFromIndex(index, d, version, arch)
}

// FetchIndex fetches and parses the image index of the mirror.
func (c *Client) FetchIndex(ctx context.Context) (*Index, error) {
	url := c.mirror.StreamsURL()
	log.G(ctx).WithField("mirror", c.mirror.String()).WithField("url", url).Info("fetching image index")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image index: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image index: unexpected status %s", resp.Status)
	}

	var index Index
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, fmt.Errorf("failed to decode image index: %w", err)
	}

	log.G(ctx).WithField("products", len(index.Products)).Debug("index loaded")
	return &index, nil
}

// ResolveFromIndex resolves an image from a pre-fetched index.
func (c *Client) ResolveFromIndex(index *Index, d distro.Distro, version distro.Version, arch distro.Arch) (*ResolvedImage, error) {
	indexDistro := d.IndexName()
	indexRelease := d.ReleaseName(version)
	indexArch := arch.IndexName()

	var (
		product Product
		key     string
		found   bool
	)
	for _, variant := range VariantPriority {
		k := fmt.Sprintf("%s:%s:%s:%s", indexDistro, indexRelease, indexArch, variant)
		if p, ok := index.Products[k]; ok {
			product, key, found = p, k, true
			break
		}
	}
	if !found {
		return nil, &ProductNotFoundError{
			Distro:  d.String(),
			Version: version.String(),
			Arch:    indexArch,
		}
	}

	latest := latestBuild(product)
	if latest == "" {
		return nil, &RootfsNotFoundError{ProductKey: key}
	}
	build := product.Versions[latest]

	item, ok := rootfsItem(build)
	if !ok {
		return nil, &RootfsNotFoundError{ProductKey: key}
	}

	filename := "rootfs.tar.xz"
	if i := strings.LastIndexByte(item.Path, '/'); i >= 0 && i+1 < len(item.Path) {
		filename = item.Path[i+1:]
	}

	return &ResolvedImage{
		URL:      c.mirror.ImageURL(item.Path),
		SHA256:   strings.ToLower(item.SHA256),
		Size:     item.Size,
		Filename: filename,
	}, nil
}

// rootfsItem finds the rootfs archive among the items of a build. The
// canonical ftype is "root.tar.xz"; some mirrors only mark the item by its
// path suffix.
func rootfsItem(build Build) (Item, bool) {
	for _, item := range build.Items {
		if item.FType == "root.tar.xz" {
			return item, true
		}
	}
	for _, item := range build.Items {
		if strings.HasSuffix(item.Path, "rootfs.tar.xz") {
			return item, true
		}
	}
	return Item{}, false
}
