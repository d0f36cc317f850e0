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

import "strings"

// Mirror selects the server the image index and archives are fetched from.
// Preset names resolve to well-known mirrors; any other value is treated
// as a custom base URL. All mirrors serve the same index schema and files.
type Mirror string

const (
	// MirrorOfficial is images.linuxcontainers.org (Canada, GeoIP DNS).
	MirrorOfficial Mirror = "official"
	// MirrorTuna is the Tsinghua University TUNA mirror.
	MirrorTuna Mirror = "tuna"
	// MirrorUstc is the University of Science and Technology of China mirror.
	MirrorUstc Mirror = "ustc"
	// MirrorBfsu is the Beijing Foreign Studies University mirror.
	MirrorBfsu Mirror = "bfsu"
)

var presetBaseURLs = map[Mirror]string{
	MirrorOfficial: "https://images.linuxcontainers.org",
	MirrorTuna:     "https://mirrors.tuna.tsinghua.edu.cn/lxc-images",
	MirrorUstc:     "https://mirrors.ustc.edu.cn/lxc-images",
	MirrorBfsu:     "https://mirrors.bfsu.edu.cn/lxc-images",
}

// Presets returns the named mirrors.
func Presets() []Mirror {
	return []Mirror{MirrorOfficial, MirrorTuna, MirrorUstc, MirrorBfsu}
}

// BaseURL returns the mirror base URL without a trailing slash.
func (m Mirror) BaseURL() string {
	if url, ok := presetBaseURLs[m]; ok {
		return url
	}
	return strings.TrimRight(string(m), "/")
}

// StreamsURL returns the image index URL for this mirror.
func (m Mirror) StreamsURL() string {
	return m.BaseURL() + "/streams/v1/images.json"
}

// ImageURL returns the full download URL for an image path from the index.
func (m Mirror) ImageURL(path string) string {
	return m.BaseURL() + "/" + path
}

func (m Mirror) String() string {
	if _, ok := presetBaseURLs[m]; ok {
		return string(m)
	}
	return "custom(" + string(m) + ")"
}
