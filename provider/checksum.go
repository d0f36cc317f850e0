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
	"errors"
	"fmt"
	"strings"
)

// ErrChecksumParse is returned when a checksum file cannot be parsed or does
// not contain an entry for the requested filename.
var ErrChecksumParse = errors.New("failed to parse checksum file")

// ChecksumFormat describes how a distribution's checksum file is laid out.
type ChecksumFormat string

const (
	// ChecksumSingleEntry is a file with exactly one entry; the first
	// whitespace-delimited token of the first line is the hash. Used by
	// Alpine ("<hash>  <filename>\n").
	ChecksumSingleEntry ChecksumFormat = "single-entry"

	// ChecksumGNUCoreutils is the GNU coreutils multi-file list:
	// "<hash> *<filename>" or "<hash>  <filename>", one entry per line,
	// matched by exact filename. Used by Ubuntu and Debian.
	ChecksumGNUCoreutils ChecksumFormat = "gnu-coreutils"

	// ChecksumBSD is the BSD list: "SHA256 (<filename>) = <hash>", one entry
	// per line, matched by exact filename. Used by Fedora.
	ChecksumBSD ChecksumFormat = "bsd"
)

// ParseChecksum extracts the expected hash for filename from a checksum
// file's content according to the given format. Returned hashes are
// lowercased so comparisons against computed digests are stable.
func ParseChecksum(format ChecksumFormat, content, filename string) (string, error) {
	switch format {
	case ChecksumSingleEntry:
		return parseSingleEntry(content)
	case ChecksumGNUCoreutils:
		return parseGNUCoreutils(content, filename)
	case ChecksumBSD:
		return parseBSD(content, filename)
	default:
		return "", fmt.Errorf("%w: unknown format %q", ErrChecksumParse, format)
	}
}

func parseSingleEntry(content string) (string, error) {
	line, _, _ := strings.Cut(content, "\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ErrChecksumParse
	}
	return strings.ToLower(fields[0]), nil
}

func parseGNUCoreutils(content, filename string) (string, error) {
	for _, line := range strings.Split(content, "\n") {
		idx := strings.IndexAny(line, " \t")
		if idx <= 0 {
			continue
		}
		hash, rest := line[:idx], line[idx+1:]
		// Strip the optional binary-mode marker '*' after the whitespace run.
		name := strings.TrimPrefix(strings.TrimLeft(rest, " \t"), "*")
		if name == filename {
			return strings.ToLower(hash), nil
		}
	}
	return "", fmt.Errorf("%w: no entry for %q", ErrChecksumParse, filename)
}

func parseBSD(content, filename string) (string, error) {
	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(line, "SHA") {
			continue
		}
		start := strings.Index(line, "(")
		end := strings.Index(line, ")")
		if start < 0 || end < start {
			continue
		}
		if line[start+1:end] != filename {
			continue
		}
		idx := strings.LastIndex(line, "=")
		if idx < 0 {
			return "", fmt.Errorf("%w: malformed entry for %q", ErrChecksumParse, filename)
		}
		return strings.ToLower(strings.TrimSpace(line[idx+1:])), nil
	}
	return "", fmt.Errorf("%w: no entry for %q", ErrChecksumParse, filename)
}
