// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// writeTestJar builds a jar at dir/name containing the given entries
// (path -> contents), returning the jar's full path.
func writeTestJar(t *testing.T, dir, name string, entries map[string][]byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("os.Create: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for entryName, data := range entries {
		w, err := zw.Create(entryName)
		if err != nil {
			t.Fatalf("zw.Create(%q): %v", entryName, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write %q: %v", entryName, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zw.Close: %v", err)
	}
	return path
}

func TestOpenArchiveManifestClassPath(t *testing.T) {
	dir := t.TempDir()
	manifest := "Manifest-Version: 1.0\r\nClass-Path: lib/a.jar lib/b.jar\r\n\r\n"
	path := writeTestJar(t, dir, "app.jar", map[string][]byte{
		"META-INF/MANIFEST.MF": []byte(manifest),
		"Answer.class":         buildHelloWorldClass(t),
	})

	ar, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer ar.Close()

	want := []string{"lib/a.jar", "lib/b.jar"}
	if len(ar.ClassPath) != 2 || ar.ClassPath[0] != want[0] || ar.ClassPath[1] != want[1] {
		t.Fatalf("ClassPath = %v; want %v", ar.ClassPath, want)
	}
}

func TestArchiveEntriesParsesEachClass(t *testing.T) {
	dir := t.TempDir()
	path := writeTestJar(t, dir, "app.jar", map[string][]byte{
		"Answer.class":       buildHelloWorldClass(t),
		"pkg/Broken.class":   {0xDE, 0xAD, 0xBE, 0xEF},
		"META-INF/ignore.txt": []byte("not a class"),
	})

	ar, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer ar.Close()

	entries := ar.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d; want 2 (only .class members)", len(entries))
	}

	var gotAnswer, gotBroken bool
	for _, e := range entries {
		switch e.Name {
		case "Answer.class":
			gotAnswer = true
			if e.Err != nil || e.Class == nil {
				t.Fatalf("Answer.class entry: err=%v class=%v", e.Err, e.Class)
			}
		case "pkg/Broken.class":
			gotBroken = true
			// Per-entry failures surface in Err without aborting the
			// remaining entries.
			if e.Err == nil {
				t.Fatal("expected a parse error for the malformed entry")
			}
		}
	}
	if !gotAnswer || !gotBroken {
		t.Fatalf("missing expected entries, got %+v", entries)
	}
}

func TestOpenArchiveMissingManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeTestJar(t, dir, "nomanifest.jar", map[string][]byte{
		"Answer.class": buildHelloWorldClass(t),
	})

	ar, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer ar.Close()
	if ar.ClassPath != nil {
		t.Fatalf("ClassPath = %v; want nil", ar.ClassPath)
	}
}

func TestOpenArchiveBadPath(t *testing.T) {
	if _, err := OpenArchive(filepath.Join(t.TempDir(), "missing.jar")); err != ErrBadArchive {
		t.Fatalf("OpenArchive = %v; want ErrBadArchive", err)
	}
}
