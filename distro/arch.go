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

package distro

import (
	"fmt"
	"runtime"
)

// Arch is a target CPU architecture for rootfs images.
type Arch string

const (
	// Aarch64 is 64-bit ARM (Apple Silicon, AWS Graviton, etc.).
	Aarch64 Arch = "aarch64"
	// X8664 is 64-bit x86 (Intel / AMD).
	X8664 Arch = "x86_64"
)

// CurrentArch returns the architecture of the running host. Hosts that are
// neither arm64 nor amd64 fall back to X8664; the closed set above is the
// supported surface.
func CurrentArch() Arch {
	if runtime.GOARCH == "arm64" {
		return Aarch64
	}
	return X8664
}

// ParseArch parses an architecture name, accepting both the kernel-style
// and the Debian-style spellings. An empty name means the current host.
func ParseArch(s string) (Arch, error) {
	switch s {
	case "":
		return CurrentArch(), nil
	case "aarch64", "arm64":
		return Aarch64, nil
	case "x86_64", "amd64":
		return X8664, nil
	default:
		return "", fmt.Errorf("unsupported architecture %q", s)
	}
}

// LinuxName returns the kernel-style name (aarch64 / x86_64) used by most
// distribution download URLs and by cache directory paths.
func (a Arch) LinuxName() string { return string(a) }

// DebName returns the Debian-style name (arm64 / amd64).
func (a Arch) DebName() string {
	if a == Aarch64 {
		return "arm64"
	}
	return "amd64"
}

// IndexName returns the name used by the unified image index, which follows
// the Debian convention.
func (a Arch) IndexName() string { return a.DebName() }

func (a Arch) String() string { return a.LinuxName() }
