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

package fetch

import (
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"
)

// ChecksumMismatchError is returned when a downloaded archive does not match
// its expected digest. It is a hard failure; the download is not retried.
type ChecksumMismatchError struct {
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// VerifyIndex checks a result against the SHA-256 digest published in the
// image index.
func VerifyIndex(res *Result, expectedSHA256 string) error {
	return VerifyChecksum(res, expectedSHA256, digest.SHA256)
}

// VerifyChecksum checks a result against an expected digest of the given
// algorithm. The SHA-512 digest is computed only when alg requires it.
func VerifyChecksum(res *Result, expected string, alg digest.Algorithm) error {
	actual := res.hash(alg)
	if actual != strings.ToLower(expected) {
		return &ChecksumMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}
