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
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/arcbox/rootfs/config"
)

func TestZeroRetriesMakesSingleAttempt(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewRetryableClient(config.NewConfig().RetryableHTTPClientConfig)
	resp, err := client.Get(server.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected error after exhausting attempts")
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("server saw %d attempts, expected exactly 1", got)
	}
}

func TestConfiguredRetriesAreHonored(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, "ok")
	}))
	defer server.Close()

	cfg := config.NewConfig().RetryableHTTPClientConfig
	cfg.MaxRetries = 3
	cfg.MinWaitMsec = 10
	cfg.MaxWaitMsec = 20

	client := NewRetryableClient(cfg)
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("server saw %d attempts, expected 3", got)
	}
}

func TestHandleHTTPErrorRedactsQueryValues(t *testing.T) {
	reqURL, err := url.Parse("https://images.example.com/streams/v1/images.json?token=secret")
	if err != nil {
		t.Fatal(err)
	}
	resp := &http.Response{
		Body: io.NopCloser(strings.NewReader("")),
		Request: &http.Request{
			Method: "GET",
			URL:    reqURL,
		},
	}

	_, handled := HandleHTTPError(resp, errors.New("connection reset"), 1)
	if handled == nil {
		t.Fatal("expected wrapped error")
	}
	if strings.Contains(handled.Error(), "secret") {
		t.Fatalf("query value leaked into error: %v", handled)
	}
	if !strings.Contains(handled.Error(), "token=redacted") {
		t.Fatalf("query key missing from redacted error: %v", handled)
	}
	if !strings.Contains(handled.Error(), "giving up request after 1 attempt(s)") {
		t.Fatalf("unexpected error format: %v", handled)
	}
}

func TestHandleHTTPErrorClosesBody(t *testing.T) {
	body := &trackingBody{}
	resp := &http.Response{Body: body}

	_, _ = HandleHTTPError(resp, errors.New("connection refused"), 0)

	if !body.read {
		t.Fatal("response body was not drained")
	}
	if !body.closed {
		t.Fatal("response body was not closed")
	}
}

func TestRedactQueryValuesFromError(t *testing.T) {
	urlErr := &url.Error{
		Op:  "GET",
		URL: "https://example.com/images.json?signature=abc123",
		Err: errors.New("connection refused"),
	}

	redacted := RedactQueryValuesFromError(urlErr)
	if strings.Contains(redacted.Error(), "abc123") {
		t.Fatalf("signature leaked: %v", redacted)
	}

	// Non-URL errors pass through untouched.
	plain := errors.New("plain failure")
	if got := RedactQueryValuesFromError(plain); got != plain {
		t.Fatalf("plain error was rewritten: %v", got)
	}
	if got := RedactQueryValuesFromError(nil); got != nil {
		t.Fatalf("nil error became %v", got)
	}
}

type trackingBody struct {
	read   bool
	closed bool
}

func (b *trackingBody) Read(_ []byte) (int, error) {
	b.read = true
	return 0, io.EOF
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}
