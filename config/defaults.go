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

const (
	// defaultMirror is the image index mirror used when none is configured.
	defaultMirror = "official"
	// defaultKeepLatest is the number of entries per distribution that prune keeps.
	defaultKeepLatest = 2

	// defaultDialTimeoutMsec is the default number of milliseconds before timeout while connecting to a remote endpoint. See `TimeoutConfig.DialTimeoutMsec`.
	defaultDialTimeoutMsec = 3000
	// defaultResponseHeaderTimeoutMsec is the default number of milliseconds before timeout while waiting for response header from a remote endpoint. See `TimeoutConfig.ResponseHeaderTimeoutMsec`.
	defaultResponseHeaderTimeoutMsec = 3000

	// defaultMinWaitMsec is the default minimum number of milliseconds between attempts. See `RetryConfig.MinWaitMsec`.
	defaultMinWaitMsec = 30
	// defaultMaxWaitMsec is the default maximum number of milliseconds between attempts. See `RetryConfig.MaxWaitMsec`.
	defaultMaxWaitMsec = 300_000
)
