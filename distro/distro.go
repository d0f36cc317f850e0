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

// Package distro enumerates the supported Linux distributions and the
// identifiers they use across download sources: the canonical slug used in
// cache paths, the name used by the unified image index, and the release
// name (codename) substituted for raw version strings where a source
// requires it.
package distro

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedDistro is returned when a distribution name is not recognized.
var ErrUnsupportedDistro = errors.New("unsupported distribution")

// UnsupportedVersionError reports that a version is not available for a
// distribution. Resolution paths treat version strings as opaque, so today
// this is only produced by callers that maintain their own closed version
// sets; it is part of the error taxonomy so they have a typed error to use.
type UnsupportedVersionError struct {
	Distro  Distro
	Version Version
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported version %s for %s", e.Version, e.Distro)
}

// Distro identifies a supported Linux distribution. The value is the
// canonical slug used in cache directory paths.
type Distro string

const (
	Alma      Distro = "alma"
	Alpine    Distro = "alpine"
	ArchLinux Distro = "arch"
	CentOS    Distro = "centos"
	Debian    Distro = "debian"
	Devuan    Distro = "devuan"
	Fedora    Distro = "fedora"
	Gentoo    Distro = "gentoo"
	Kali      Distro = "kali"
	NixOS     Distro = "nixos"
	OpenEuler Distro = "openeuler"
	OpenSuse  Distro = "opensuse"
	Oracle    Distro = "oracle"
	Rocky     Distro = "rocky"
	Ubuntu    Distro = "ubuntu"
	Void      Distro = "void"
)

// Version is a distribution version string (e.g. "3.21", "24.04",
// "bookworm"). It is opaque to everything except the per-distribution
// transform and codename logic that interprets it.
type Version string

func (v Version) String() string { return string(v) }

func (d Distro) String() string { return string(d) }

// IndexName returns the distribution name used by the unified image index.
// Most slugs are used as-is; a few distributions publish under a longer name.
func (d Distro) IndexName() string {
	switch d {
	case Alma:
		return "almalinux"
	case ArchLinux:
		return "archlinux"
	case Rocky:
		return "rockylinux"
	case Void:
		return "voidlinux"
	default:
		return string(d)
	}
}

// DefaultVersion returns the version used when the caller does not supply one.
func (d Distro) DefaultVersion() Version {
	switch d {
	case Alma:
		return "9"
	case Alpine:
		return "3.21"
	case ArchLinux:
		return "current"
	case CentOS:
		return "9-Stream"
	case Debian:
		return "12"
	case Devuan:
		return "daedalus"
	case Fedora:
		return "41"
	case Gentoo:
		return "current"
	case Kali:
		return "current"
	case NixOS:
		return "25.05"
	case OpenEuler:
		return "24.03"
	case OpenSuse:
		return "tumbleweed"
	case Oracle:
		return "9"
	case Rocky:
		return "9"
	case Ubuntu:
		return "24.04"
	case Void:
		return "current"
	default:
		return ""
	}
}

// releaseNames maps numeric versions to the release names the unified image
// index files products under. Versions not present pass through unchanged.
var releaseNames = map[Distro]map[Version]string{
	Ubuntu: {
		"20.04": "focal",
		"22.04": "jammy",
		"24.04": "noble",
		"24.10": "oracular",
		"25.04": "plucky",
	},
	Debian: {
		"10": "buster",
		"11": "bullseye",
		"12": "bookworm",
		"13": "trixie",
	},
	Devuan: {
		"4": "chimaera",
		"5": "daedalus",
		"6": "excalibur",
	},
}

// ReleaseName maps a user-facing version to the release name used by the
// unified image index. This mapping is independent of the codename tables
// carried by the template providers.
func (d Distro) ReleaseName(v Version) string {
	if table, ok := releaseNames[d]; ok {
		if name, ok := table[v]; ok {
			return name
		}
	}
	return string(v)
}

// All returns every supported distribution.
func All() []Distro {
	return []Distro{
		Alma, Alpine, ArchLinux, CentOS, Debian, Devuan, Fedora, Gentoo,
		Kali, NixOS, OpenEuler, OpenSuse, Oracle, Rocky, Ubuntu, Void,
	}
}

// aliases maps alternate user-facing names to their canonical slug.
var aliases = map[string]Distro{
	"almalinux":  Alma,
	"archlinux":  ArchLinux,
	"rockylinux": Rocky,
	"voidlinux":  Void,
}

// Parse parses a distribution request like "alpine:3.20" or "ubuntu". When
// no version is given the distribution's default version is used. Alternate
// names (e.g. "almalinux") are accepted.
func Parse(s string) (Distro, Version, error) {
	name, ver, hasVersion := strings.Cut(s, ":")
	name = strings.ToLower(name)

	d, ok := aliases[name]
	if !ok {
		d = Distro(name)
		found := false
		for _, known := range All() {
			if known == d {
				found = true
				break
			}
		}
		if !found {
			return "", "", fmt.Errorf("%w: %s", ErrUnsupportedDistro, name)
		}
	}

	if !hasVersion || ver == "" {
		return d, d.DefaultVersion(), nil
	}
	return d, Version(ver), nil
}
