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

package config

// RetryConfig represents the settings for retries in a retryable http client.
type RetryConfig struct {
	// MaxRetries is the maximum number of retries before giving up on a retryable request.
	// This does not include the initial request so the total number of attempts will be MaxRetries + 1.
	// Zero disables automatic retry entirely.
	MaxRetries int `toml:"max_retries"`
	// MinWaitMsec is the minimum wait time between attempts in milliseconds. The actual wait time
	// is governed by the backoff strategy, but it will never be shorter than this duration.
	MinWaitMsec int64 `toml:"min_wait_msec"`
	// MaxWaitMsec is the maximum wait time between attempts in milliseconds. The actual wait time
	// is governed by the backoff strategy, but it will never be longer than this duration.
	MaxWaitMsec int64 `toml:"max_wait_msec"`
}

// TimeoutConfig represents the settings for timeouts at various points in a
// request lifecycle in a retryable http client.
type TimeoutConfig struct {
	// DialTimeoutMsec is the maximum duration that connection can take before a request attempt is timed out.
	DialTimeoutMsec int64 `toml:"dial_timeout_msec"`
	// ResponseHeaderTimeoutMsec is the maximum duration waiting for response headers before a request
	// attempt is timed out. It does not include reading the body.
	ResponseHeaderTimeoutMsec int64 `toml:"response_header_timeout_msec"`
	// RequestTimeoutMsec is the maximum duration before the entire request attempt is timed out,
	// including reading the response body. Zero means no overall deadline, which is the default
	// since a rootfs archive download can legitimately take minutes.
	RequestTimeoutMsec int64 `toml:"request_timeout_msec"`
}

// RetryableHTTPClientConfig is the complete config for a retryable http client.
type RetryableHTTPClientConfig struct {
	TimeoutConfig `toml:"timeout"`
	RetryConfig   `toml:"retry"`
}

func parseHTTPConfig(cfg *Config) error {
	if cfg.DialTimeoutMsec == 0 {
		cfg.DialTimeoutMsec = defaultDialTimeoutMsec
	}
	if cfg.ResponseHeaderTimeoutMsec == 0 {
		cfg.ResponseHeaderTimeoutMsec = defaultResponseHeaderTimeoutMsec
	}
	if cfg.MinWaitMsec == 0 {
		cfg.MinWaitMsec = defaultMinWaitMsec
	}
	if cfg.MaxWaitMsec == 0 {
		cfg.MaxWaitMsec = defaultMaxWaitMsec
	}
	return nil
}
