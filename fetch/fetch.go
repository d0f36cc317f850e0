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

// Package fetch downloads rootfs archives and verifies their digests.
// It offers the two resolution paths: the unified image index, which covers
// every supported distribution, and the official distribution servers,
// which are template based and verify against a published checksum file.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/containerd/log"
	"github.com/opencontainers/go-digest"
	"github.com/sirupsen/logrus"

	"github.com/arcbox/rootfs/config"
	"github.com/arcbox/rootfs/distro"
	"github.com/arcbox/rootfs/provider"
	"github.com/arcbox/rootfs/simplestreams"
	rhttp "github.com/arcbox/rootfs/util/http"
	"github.com/arcbox/rootfs/util/ioutils"
)

// Progress receives the cumulative number of bytes downloaded and the
// expected total. Total is 0 when the server does not announce a length.
type Progress func(downloaded, total int64)

// Result is a successfully downloaded archive.
type Result struct {
	// Data is the raw archive bytes.
	Data []byte
	// SHA256 is the lowercase hex digest of Data, always computed.
	SHA256 string
	// Filename is the archive filename derived from the download URL.
	Filename string
}

// SHA512 computes the SHA-512 hex digest of the data. Unlike SHA256 it is
// not computed during download, only when a provider verifies with it.
func (r *Result) SHA512() string {
	return digest.SHA512.FromBytes(r.Data).Encoded()
}

func (r *Result) hash(alg digest.Algorithm) string {
	if alg == digest.SHA512 {
		return r.SHA512()
	}
	return r.SHA256
}

// Fetcher runs the download pipeline over a shared HTTP client.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a Fetcher. A nil httpClient falls back to a retryable
// client built from default config.
func NewFetcher(httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = rhttp.NewRetryableClient(config.NewConfig().RetryableHTTPClientConfig)
	}
	return &Fetcher{httpClient: httpClient}
}

// Download streams the body of url into memory, feeding a SHA-256 digester
// and the progress callback as chunks arrive.
func (f *Fetcher) Download(ctx context.Context, url string, progress Progress) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %q: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %q: unexpected status %s", url, resp.Status)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}
	digester := digest.SHA256.Digester()
	body := ioutils.NewProgressReader(resp.Body, total, progress)
	if _, err := io.Copy(&buf, io.TeeReader(body, digester.Hash())); err != nil {
		return nil, fmt.Errorf("failed to download %q: %w", url, err)
	}

	res := &Result{
		Data:     buf.Bytes(),
		SHA256:   digester.Digest().Encoded(),
		Filename: filenameFromURL(url),
	}
	log.G(ctx).WithFields(logrus.Fields{
		"url":    url,
		"size":   len(res.Data),
		"sha256": res.SHA256,
	}).Debug("download complete")
	return res, nil
}

// FromIndex resolves an archive through the image index of the client's
// mirror, downloads it and verifies the index digest.
func (f *Fetcher) FromIndex(ctx context.Context, client *simplestreams.Client, d distro.Distro, version distro.Version, arch distro.Arch, progress Progress) (*Result, error) {
	resolved, err := client.Resolve(ctx, d, version, arch)
	if err != nil {
		return nil, err
	}

	log.G(ctx).WithFields(logrus.Fields{
		"distro":  d.String(),
		"version": version.String(),
		"arch":    arch.String(),
		"mirror":  client.Mirror().String(),
		"url":     resolved.URL,
	}).Info("downloading from image index")

	res, err := f.Download(ctx, resolved.URL, progress)
	if err != nil {
		return nil, err
	}
	res.Filename = resolved.Filename

	if err := VerifyIndex(res, resolved.SHA256); err != nil {
		return nil, err
	}
	log.G(ctx).Debug("sha256 digest verified against index")
	return res, nil
}

// FromOfficial downloads an archive from the distribution's official server
// and verifies it against the published checksum file. Only distributions
// with an official provider are supported.
func (f *Fetcher) FromOfficial(ctx context.Context, d distro.Distro, version distro.Version, arch distro.Arch, progress Progress) (*Result, error) {
	p, err := provider.Official(d)
	if err != nil {
		return nil, err
	}

	url := p.RootfsURL(version, arch)
	log.G(ctx).WithFields(logrus.Fields{
		"distro":  d.String(),
		"version": version.String(),
		"arch":    arch.String(),
		"url":     url,
	}).Info("downloading from official server")

	res, err := f.Download(ctx, url, progress)
	if err != nil {
		return nil, err
	}

	checksumURL := p.ChecksumURL(version, arch)
	if checksumURL == "" {
		return res, nil
	}

	log.G(ctx).WithField("url", checksumURL).Info("fetching checksum file")
	checksums, err := f.Download(ctx, checksumURL, nil)
	if err != nil {
		return nil, err
	}
	expected, err := p.ParseChecksum(string(checksums.Data), res.Filename)
	if err != nil {
		return nil, err
	}

	alg := p.HashAlgorithm()
	if err := VerifyChecksum(res, expected, alg); err != nil {
		return nil, err
	}
	log.G(ctx).WithField("algorithm", alg.String()).Debug("checksum verified")
	return res, nil
}

func filenameFromURL(url string) string {
	name := url
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		name = url[i+1:]
	}
	if name == "" {
		return "rootfs.tar.xz"
	}
	return name
}
