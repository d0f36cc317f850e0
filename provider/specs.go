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

package provider

import (
	"github.com/opencontainers/go-digest"

	"github.com/arcbox/rootfs/distro"
)

var alpineSpec = Spec{
	RootfsURL:        "https://dl-cdn.alpinelinux.org/alpine/v{major_minor}/releases/{arch}/alpine-minirootfs-{version}-{arch}.tar.gz",
	ChecksumURL:      "https://dl-cdn.alpinelinux.org/alpine/v{major_minor}/releases/{arch}/alpine-minirootfs-{version}-{arch}.tar.gz.sha256",
	ChecksumFormat:   ChecksumSingleEntry,
	HashAlgorithm:    digest.SHA256,
	ArchNaming:       ArchNamingLinux,
	VersionTransform: TransformMajorMinor,
}

var ubuntuSpec = Spec{
	RootfsURL:      "https://cloud-images.ubuntu.com/{codename}/current/{codename}-server-cloudimg-{arch}-root.tar.xz",
	ChecksumURL:    "https://cloud-images.ubuntu.com/{codename}/current/SHA256SUMS",
	ChecksumFormat: ChecksumGNUCoreutils,
	HashAlgorithm:  digest.SHA256,
	ArchNaming:     ArchNamingDebian,
	Codenames: map[distro.Version]string{
		"20.04": "focal",
		"22.04": "jammy",
		"24.04": "noble",
		"24.10": "oracular",
		"25.04": "plucky",
	},
	DefaultCodename:  "noble",
	VersionTransform: TransformIdentity,
}

var debianSpec = Spec{
	RootfsURL:      "https://cloud.debian.org/images/cloud/{codename}/latest/debian-{version}-nocloud-{arch}.tar.xz",
	ChecksumURL:    "https://cloud.debian.org/images/cloud/{codename}/latest/SHA512SUMS",
	ChecksumFormat: ChecksumGNUCoreutils,
	HashAlgorithm:  digest.SHA512,
	ArchNaming:     ArchNamingDebian,
	Codenames: map[distro.Version]string{
		"10": "buster",
		"11": "bullseye",
		"12": "bookworm",
		"13": "trixie",
	},
	DefaultCodename:  "bookworm",
	VersionTransform: TransformIdentity,
}

var fedoraSpec = Spec{
	RootfsURL:        "https://download.fedoraproject.org/pub/fedora/linux/releases/{version}/Cloud/{arch}/images/Fedora-Cloud-Base-{version}-1.2.{arch}.raw.xz",
	ChecksumURL:      "https://download.fedoraproject.org/pub/fedora/linux/releases/{version}/Cloud/{arch}/images/Fedora-Cloud-{version}-1.2-{arch}-CHECKSUM",
	ChecksumFormat:   ChecksumBSD,
	HashAlgorithm:    digest.SHA256,
	ArchNaming:       ArchNamingLinux,
	VersionTransform: TransformIdentity,
}

var specs = map[distro.Distro]*Spec{
	distro.Alpine: &alpineSpec,
	distro.Ubuntu: &ubuntuSpec,
	distro.Debian: &debianSpec,
	distro.Fedora: &fedoraSpec,
}
