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

package cache

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/arcbox/rootfs/fetch"
)

func makeResult(t *testing.T, content []byte, filename string) *fetch.Result {
	t.Helper()
	sum := sha256.Sum256(content)
	return &fetch.Result{
		Data:     content,
		SHA256:   hex.EncodeToString(sum[:]),
		Filename: filename,
	}
}

func entryDir(root string, parts ...string) string {
	return filepath.Join(append([]string{root}, parts...)...)
}

func setTimestamp(t *testing.T, dir string, ts int64) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, metadataFilename))
	if err != nil {
		t.Fatal(err)
	}
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		t.Fatal(err)
	}
	md.DownloadedAt = strconv.FormatInt(ts, 10)
	data, err = json.MarshalIndent(md, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFilename), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestStoreAndLoad(t *testing.T) {
	root := t.TempDir()
	dir := entryDir(root, "alpine", "3.21", "aarch64")

	result := makeResult(t, []byte("fake rootfs data"), "rootfs.tar.gz")
	stored, err := Store(dir, result)
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}

	if stored.Metadata.SHA256 != result.SHA256 {
		t.Fatalf("sha256 = %q", stored.Metadata.SHA256)
	}
	if stored.Metadata.Distro != "alpine" || stored.Metadata.Version != "3.21" || stored.Metadata.Arch != "aarch64" {
		t.Fatalf("path-derived metadata = %+v", stored.Metadata)
	}
	if stored.Metadata.Filename != "rootfs.tar.gz" {
		t.Fatalf("filename = %q", stored.Metadata.Filename)
	}
	if stored.Metadata.Size != int64(len(result.Data)) {
		t.Fatalf("size = %d", stored.Metadata.Size)
	}
	if _, err := os.Stat(stored.ArchivePath); err != nil {
		t.Fatalf("archive not on disk: %v", err)
	}

	loaded, err := Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected cached entry")
	}
	if loaded.Metadata.SHA256 != result.SHA256 {
		t.Fatalf("loaded sha256 = %q", loaded.Metadata.SHA256)
	}
}

func TestLoadMissingMetadata(t *testing.T) {
	root := t.TempDir()
	dir := entryDir(root, "alpine", "3.21", "x86_64")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	entry, err := Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if entry != nil {
		t.Fatal("expected no entry for missing metadata")
	}
}

func TestLoadMissingArchive(t *testing.T) {
	root := t.TempDir()
	dir := entryDir(root, "debian", "12", "amd64")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	md := Metadata{
		Distro:       "debian",
		Version:      "12",
		Arch:         "amd64",
		SHA256:       "deadbeef",
		Filename:     "rootfs.tar.xz",
		Size:         100,
		DownloadedAt: "0",
	}
	data, err := json.Marshal(md)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFilename), data, 0644); err != nil {
		t.Fatal(err)
	}

	entry, err := Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if entry != nil {
		t.Fatal("expected no entry for missing archive")
	}
}

func TestLoadCorruptedArchiveEvictsEntry(t *testing.T) {
	root := t.TempDir()
	dir := entryDir(root, "ubuntu", "24.04", "arm64")

	result := makeResult(t, []byte("original data"), "rootfs.tar.xz")
	if _, err := Store(dir, result); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "rootfs.tar.xz"), []byte("corrupted"), 0644); err != nil {
		t.Fatal(err)
	}

	entry, err := Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if entry != nil {
		t.Fatal("corrupted entry should not be returned")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("corrupted entry directory should have been removed")
	}
}

func TestVerify(t *testing.T) {
	root := t.TempDir()
	dir := entryDir(root, "alpine", "3.21", "aarch64")

	result := makeResult(t, []byte("valid content"), "rootfs.tar.gz")
	entry, err := Store(dir, result)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := entry.Verify()
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !ok {
		t.Fatal("freshly stored entry should verify")
	}

	if err := os.WriteFile(entry.ArchivePath, []byte("tampered"), 0644); err != nil {
		t.Fatal(err)
	}
	ok, err = entry.Verify()
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if ok {
		t.Fatal("tampered archive should not verify")
	}
}

func TestListEmpty(t *testing.T) {
	entries, err := List(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d entries", len(entries))
	}
}

func TestListWithEntries(t *testing.T) {
	root := t.TempDir()
	for _, tc := range []struct{ distro, version string }{
		{"alpine", "3.21"},
		{"debian", "12"},
	} {
		dir := entryDir(root, tc.distro, tc.version, "aarch64")
		result := makeResult(t, []byte("data-"+tc.distro), "rootfs.tar.gz")
		if _, err := Store(dir, result); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := List(root)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, expected 2", len(entries))
	}
}

func TestPruneKeepsLatest(t *testing.T) {
	root := t.TempDir()
	for i, ver := range []string{"1", "2", "3"} {
		dir := entryDir(root, "alpine", ver, "aarch64")
		result := makeResult(t, []byte("data-"+ver), "rootfs.tar.gz")
		if _, err := Store(dir, result); err != nil {
			t.Fatal(err)
		}
		setTimestamp(t, dir, int64(1000+i))
	}

	freed, err := Prune(context.Background(), root, 1)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if freed == 0 {
		t.Fatal("expected freed bytes")
	}

	remaining, err := List(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 {
		t.Fatalf("got %d remaining entries, expected 1", len(remaining))
	}
	if remaining[0].Metadata.Version != "3" {
		t.Fatalf("kept version %q, expected the newest", remaining[0].Metadata.Version)
	}
}

func TestPruneCountsFreedBytes(t *testing.T) {
	root := t.TempDir()
	for i, ver := range []string{"1", "2"} {
		dir := entryDir(root, "fedora", ver, "x86_64")
		result := makeResult(t, []byte("data"), "rootfs.tar.gz")
		if _, err := Store(dir, result); err != nil {
			t.Fatal(err)
		}
		setTimestamp(t, dir, int64(1000*(i+1)))
	}

	freed, err := Prune(context.Background(), root, 1)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if freed != 4 {
		t.Fatalf("freed = %d, expected the deleted entry's 4 bytes", freed)
	}
}

func TestPruneNegativeKeepRemovesAll(t *testing.T) {
	root := t.TempDir()
	dir := entryDir(root, "alpine", "3.21", "aarch64")
	if _, err := Store(dir, makeResult(t, []byte("data"), "rootfs.tar.gz")); err != nil {
		t.Fatal(err)
	}

	freed, err := Prune(context.Background(), root, -1)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if freed != 4 {
		t.Fatalf("freed = %d, expected 4", freed)
	}
	remaining, err := List(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Fatalf("got %d remaining entries, expected none", len(remaining))
	}
}

func TestPruneExcludesFailedRemovalsFromFreed(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission-based removal failure does not apply to root")
	}

	root := t.TempDir()
	for i, ver := range []string{"1", "2"} {
		dir := entryDir(root, "fedora", ver, "x86_64")
		if _, err := Store(dir, makeResult(t, []byte("data"), "rootfs.tar.gz")); err != nil {
			t.Fatal(err)
		}
		setTimestamp(t, dir, int64(1000*(i+1)))
	}

	// Removing the old entry's directory requires write permission on its
	// parent; withdraw it so the removal fails.
	versionDir := entryDir(root, "fedora", "1")
	if err := os.Chmod(versionDir, 0555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(versionDir, 0755) })

	freed, err := Prune(context.Background(), root, 1)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if freed != 0 {
		t.Fatalf("freed = %d, expected 0 for a failed removal", freed)
	}
}

func TestPruneGroupsByDistro(t *testing.T) {
	root := t.TempDir()
	for _, tc := range []struct{ distro, version string }{
		{"alpine", "3.20"},
		{"alpine", "3.21"},
		{"debian", "12"},
	} {
		dir := entryDir(root, tc.distro, tc.version, "aarch64")
		result := makeResult(t, []byte("data"), "rootfs.tar.gz")
		if _, err := Store(dir, result); err != nil {
			t.Fatal(err)
		}
	}

	// keep 1 per distro: one alpine entry goes, debian stays.
	if _, err := Prune(context.Background(), root, 1); err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	remaining, err := List(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 2 {
		t.Fatalf("got %d remaining entries, expected 2", len(remaining))
	}
	distros := map[string]bool{}
	for _, e := range remaining {
		distros[e.Metadata.Distro] = true
	}
	if !distros["alpine"] || !distros["debian"] {
		t.Fatalf("remaining distros = %v", distros)
	}
}

func TestExtractTo(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	content := "ID=alpine\n"
	if err := tw.WriteHeader(&tar.Header{
		Name: "etc/os-release",
		Mode: 0644,
		Size: int64(len(content)),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(tw, content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	dir := entryDir(root, "alpine", "3.21", "aarch64")
	entry, err := Store(dir, makeResult(t, buf.Bytes(), "rootfs.tar.gz"))
	if err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(root, "extracted")
	if err := entry.ExtractTo(target); err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(target, "etc/os-release"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Fatalf("extracted content = %q", data)
	}
}
