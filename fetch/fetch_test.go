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
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"

	"github.com/arcbox/rootfs/distro"
	"github.com/arcbox/rootfs/simplestreams"
)

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestDownloadStreamsAndDigests(t *testing.T) {
	payload := []byte("fake rootfs archive contents")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	var lastDownloaded, lastTotal int64
	f := NewFetcher(nil)
	res, err := f.Download(context.Background(), server.URL+"/images/rootfs.tar.gz", func(downloaded, total int64) {
		lastDownloaded, lastTotal = downloaded, total
	})
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}

	if string(res.Data) != string(payload) {
		t.Fatal("downloaded data does not match served payload")
	}
	if res.SHA256 != sha256Hex(payload) {
		t.Fatalf("sha256 = %q, expected %q", res.SHA256, sha256Hex(payload))
	}
	if res.Filename != "rootfs.tar.gz" {
		t.Fatalf("filename = %q", res.Filename)
	}
	if lastDownloaded != int64(len(payload)) {
		t.Fatalf("final progress = %d, expected %d", lastDownloaded, len(payload))
	}
	if lastTotal != int64(len(payload)) {
		t.Fatalf("progress total = %d, expected %d", lastTotal, len(payload))
	}
}

func TestDownloadUnknownContentLength(t *testing.T) {
	payload := []byte("streamed without a length header")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flush the header before the body so the response is chunked.
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		w.Write(payload)
	}))
	defer server.Close()

	var sawTotal int64 = -1
	f := NewFetcher(nil)
	res, err := f.Download(context.Background(), server.URL+"/rootfs.tar.xz", func(downloaded, total int64) {
		sawTotal = total
	})
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if string(res.Data) != string(payload) {
		t.Fatal("downloaded data does not match served payload")
	}
	if sawTotal != 0 {
		t.Fatalf("progress total = %d, expected 0 for unknown length", sawTotal)
	}
}

func TestDownloadHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := NewFetcher(nil)
	if _, err := f.Download(context.Background(), server.URL+"/missing.tar.xz", nil); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestResultSHA512(t *testing.T) {
	data := []byte("hello world")
	sum := sha512.Sum512(data)
	res := &Result{Data: data, SHA256: sha256Hex(data)}

	if res.SHA512() != hex.EncodeToString(sum[:]) {
		t.Fatalf("sha512 = %q", res.SHA512())
	}
	if res.SHA512() == res.SHA256 {
		t.Fatal("sha512 and sha256 must differ")
	}
}

func TestVerifyChecksum(t *testing.T) {
	data := []byte("verify me")
	res := &Result{Data: data, SHA256: sha256Hex(data)}
	sum512 := sha512.Sum512(data)

	if err := VerifyChecksum(res, res.SHA256, digest.SHA256); err != nil {
		t.Fatalf("sha256 verify failed: %v", err)
	}
	if err := VerifyChecksum(res, hex.EncodeToString(sum512[:]), digest.SHA512); err != nil {
		t.Fatalf("sha512 verify failed: %v", err)
	}
	// Uppercase expected values are normalized before comparison.
	if err := VerifyChecksum(res, strings.ToUpper(res.SHA256), digest.SHA256); err != nil {
		t.Fatalf("uppercase expected should verify: %v", err)
	}

	err := VerifyChecksum(res, "deadbeef", digest.SHA256)
	var mismatch *ChecksumMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error = %v, expected ChecksumMismatchError", err)
	}
	if mismatch.Expected != "deadbeef" || mismatch.Actual != res.SHA256 {
		t.Fatalf("mismatch fields = %+v", mismatch)
	}
}

func TestFromIndexVerifiesDigest(t *testing.T) {
	payload := []byte("alpine minirootfs bytes")
	makeServer := func(indexSHA string) *httptest.Server {
		mux := http.NewServeMux()
		mux.HandleFunc("/streams/v1/images.json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{
				"products": {
					"alpine:3.21:amd64:default": {
						"arch": "amd64",
						"os": "Alpine",
						"release": "3.21",
						"variant": "default",
						"versions": {
							"20260218_13:00": {
								"items": {
									"root.tar.xz": {
										"ftype": "root.tar.xz",
										"sha256": %q,
										"size": %d,
										"path": "images/alpine/rootfs.tar.xz"
									}
								}
							}
						}
					}
				}
			}`, indexSHA, len(payload))
		})
		mux.HandleFunc("/images/alpine/rootfs.tar.xz", func(w http.ResponseWriter, r *http.Request) {
			w.Write(payload)
		})
		return httptest.NewServer(mux)
	}

	t.Run("digest matches", func(t *testing.T) {
		server := makeServer(sha256Hex(payload))
		defer server.Close()

		f := NewFetcher(nil)
		client := simplestreams.NewClient(simplestreams.Mirror(server.URL), nil)
		res, err := f.FromIndex(context.Background(), client, distro.Alpine, "3.21", distro.X8664, nil)
		if err != nil {
			t.Fatalf("FromIndex failed: %v", err)
		}
		if res.Filename != "rootfs.tar.xz" {
			t.Fatalf("filename = %q", res.Filename)
		}
		if res.SHA256 != sha256Hex(payload) {
			t.Fatalf("sha256 = %q", res.SHA256)
		}
	})

	t.Run("digest mismatch", func(t *testing.T) {
		server := makeServer("0000000000000000000000000000000000000000000000000000000000000000")
		defer server.Close()

		f := NewFetcher(nil)
		client := simplestreams.NewClient(simplestreams.Mirror(server.URL), nil)
		_, err := f.FromIndex(context.Background(), client, distro.Alpine, "3.21", distro.X8664, nil)

		var mismatch *ChecksumMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("error = %v, expected ChecksumMismatchError", err)
		}
	})
}
