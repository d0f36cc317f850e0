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

package http

import (
	"errors"
	"net/url"
)

// RedactQueryValues redacts HTTP query values from a URL. Custom mirrors may
// carry signed query parameters (e.g. presigned CDN URLs) that must not leak
// into logs or error messages.
func RedactQueryValues(u *url.URL) {
	if u == nil {
		return
	}
	if query := u.Query(); len(query) > 0 {
		for k := range query {
			query.Set(k, "redacted")
		}
		u.RawQuery = query.Encode()
	}
}

// RedactQueryValuesFromError parses an error as a URL error and redacts the
// HTTP query values from the URL it carries.
func RedactQueryValuesFromError(err error) error {
	var urlErr *url.Error

	if err != nil && errors.As(err, &urlErr) {
		u, parseErr := url.Parse(urlErr.URL)
		if parseErr == nil {
			RedactQueryValues(u)
			urlErr.URL = u.Redacted()
			return urlErr
		}
	}

	return err
}
