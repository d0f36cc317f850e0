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

package rootfs

import (
	"github.com/arcbox/rootfs/distro"
	"github.com/arcbox/rootfs/fetch"
	"github.com/arcbox/rootfs/provider"
	"github.com/arcbox/rootfs/simplestreams"
)

// Sentinel errors of the subpackages, re-exported so callers that only
// import the root package can match them with errors.Is.
var (
	// ErrUnsupportedDistro is returned when a distribution name is not recognized.
	ErrUnsupportedDistro = distro.ErrUnsupportedDistro
	// ErrNoOfficialProvider is returned by the official download path for
	// distributions that only resolve through the image index.
	ErrNoOfficialProvider = provider.ErrNoOfficialProvider
	// ErrChecksumParse is returned when a checksum file has no usable entry
	// for the downloaded archive.
	ErrChecksumParse = provider.ErrChecksumParse
)

// Error types of the subpackages, re-exported for errors.As matching.
type (
	// UnsupportedVersionError reports a version not available for a
	// distribution.
	UnsupportedVersionError = distro.UnsupportedVersionError
	// ChecksumMismatchError reports a digest verification failure.
	ChecksumMismatchError = fetch.ChecksumMismatchError
	// ProductNotFoundError reports that the image index has no product for
	// a distribution/version/architecture.
	ProductNotFoundError = simplestreams.ProductNotFoundError
	// RootfsNotFoundError reports an index product without a rootfs archive.
	RootfsNotFoundError = simplestreams.RootfsNotFoundError
)
