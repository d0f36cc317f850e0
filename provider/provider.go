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

// Package provider resolves official download URLs for distributions that
// publish rootfs archives through their own mirrors.
//
// Every distribution shares one TemplateProvider driven by a static Spec
// record; adding a distribution is a data addition, never a new code path.
// Distributions without a Spec must be resolved through the unified image
// index instead.
package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/arcbox/rootfs/distro"
)

// ErrNoOfficialProvider is returned for distributions that do not publish
// official rootfs archive templates.
var ErrNoOfficialProvider = errors.New("no official provider for distribution")

// ArchNaming selects how the architecture is rendered inside URLs.
type ArchNaming string

const (
	// ArchNamingLinux renders kernel-style names: aarch64 / x86_64.
	ArchNamingLinux ArchNaming = "linux"
	// ArchNamingDebian renders Debian-style names: arm64 / amd64.
	ArchNamingDebian ArchNaming = "debian"
)

func (n ArchNaming) resolve(arch distro.Arch) string {
	if n == ArchNamingDebian {
		return arch.DebName()
	}
	return arch.LinuxName()
}

// VersionTransform selects how the raw version string is transformed before
// substitution into the {major_minor} placeholder.
type VersionTransform string

const (
	// TransformIdentity passes the version through unchanged.
	TransformIdentity VersionTransform = "identity"
	// TransformMajorMinor truncates to the first two dot-delimited segments
	// ("3.21.3" becomes "3.21"; "3.21" is already in that form).
	TransformMajorMinor VersionTransform = "major-minor"
)

// Spec statically describes how to download and verify one distribution's
// rootfs archive from its official source.
//
// URL templates support the placeholders {version}, {arch}, {codename} and
// {major_minor}. Substitution is literal string replacement; placeholder
// text must not appear as literal content elsewhere in a template.
type Spec struct {
	// RootfsURL is the URL template for the rootfs archive.
	RootfsURL string

	// ChecksumURL is the URL template for the checksum file. Empty when the
	// source publishes no checksum file.
	ChecksumURL string

	// ChecksumFormat is the grammar of the checksum file.
	ChecksumFormat ChecksumFormat

	// HashAlgorithm is the digest algorithm the checksum file carries.
	HashAlgorithm digest.Algorithm

	// ArchNaming selects the architecture rendering for {arch}.
	ArchNaming ArchNaming

	// Codenames maps versions to the release codenames used in URLs.
	Codenames map[distro.Version]string

	// DefaultCodename is substituted when the version is absent from
	// Codenames, keeping {codename} substitution total.
	DefaultCodename string

	// VersionTransform derives {major_minor} from the version string.
	VersionTransform VersionTransform
}

// TemplateProvider resolves URLs and checksums for one distribution from its
// static Spec.
type TemplateProvider struct {
	spec *Spec
}

// NewTemplateProvider returns a provider driven by the given spec.
func NewTemplateProvider(spec *Spec) *TemplateProvider {
	return &TemplateProvider{spec: spec}
}

// RootfsURL returns the resolved rootfs download URL.
func (p *TemplateProvider) RootfsURL(version distro.Version, arch distro.Arch) string {
	return p.resolveURL(p.spec.RootfsURL, version, arch)
}

// ChecksumURL returns the resolved checksum file URL, or "" when the
// distribution publishes none.
func (p *TemplateProvider) ChecksumURL(version distro.Version, arch distro.Arch) string {
	if p.spec.ChecksumURL == "" {
		return ""
	}
	return p.resolveURL(p.spec.ChecksumURL, version, arch)
}

// ParseChecksum extracts the expected hash for filename from checksum file
// content, using the spec's grammar.
func (p *TemplateProvider) ParseChecksum(content, filename string) (string, error) {
	return ParseChecksum(p.spec.ChecksumFormat, content, filename)
}

// HashAlgorithm returns the digest algorithm the checksum file carries.
func (p *TemplateProvider) HashAlgorithm() digest.Algorithm {
	return p.spec.HashAlgorithm
}

func (p *TemplateProvider) resolveURL(template string, version distro.Version, arch distro.Arch) string {
	r := strings.NewReplacer(
		"{version}", string(version),
		"{arch}", p.spec.ArchNaming.resolve(arch),
		"{codename}", p.codename(version),
		"{major_minor}", p.majorMinor(version),
	)
	return r.Replace(template)
}

func (p *TemplateProvider) codename(version distro.Version) string {
	if name, ok := p.spec.Codenames[version]; ok {
		return name
	}
	return p.spec.DefaultCodename
}

func (p *TemplateProvider) majorMinor(version distro.Version) string {
	if p.spec.VersionTransform != TransformMajorMinor {
		return string(version)
	}
	v := string(version)
	first := strings.Index(v, ".")
	if first < 0 {
		return v
	}
	second := strings.Index(v[first+1:], ".")
	if second < 0 {
		return v
	}
	return v[:first+1+second]
}

// Official returns the official template provider for a distribution.
// Only Alpine, Ubuntu, Debian, and Fedora publish official templates; other
// distributions fail with ErrNoOfficialProvider and must use the unified
// image index.
func Official(d distro.Distro) (*TemplateProvider, error) {
	spec, ok := specs[d]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoOfficialProvider, d)
	}
	return NewTemplateProvider(spec), nil
}
