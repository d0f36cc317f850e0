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

package ioutils

import (
	"io"
)

// ProgressReader is an `io.Reader` that tracks the current read position
// in an underlying `io.Reader` and reports it through a callback.
type ProgressReader struct {
	r     io.Reader
	pos   int64
	total int64
	fn    func(pos, total int64)
}

// NewProgressReader creates a new ProgressReader with the initial position
// set to 0. total is the expected number of bytes, 0 when unknown. fn may
// be nil, in which case the reader only tracks its position.
func NewProgressReader(r io.Reader, total int64, fn func(pos, total int64)) *ProgressReader {
	return &ProgressReader{r: r, total: total, fn: fn}
}

// Read reads from the ProgressReader into the provided byte slice. The
// position of the ProgressReader is advanced by the number of bytes read
// and the callback is invoked with the new position.
func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.pos += int64(n)
	if p.fn != nil && n > 0 {
		p.fn(p.pos, p.total)
	}
	return n, err
}

// CurrentPos is the current position of the ProgressReader
func (p *ProgressReader) CurrentPos() int64 {
	return p.pos
}
