// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"archive/zip"
	"io"
	"strings"
)

// ArchiveEntry is one .class member of a jar, plus the outcome of parsing
// it. A per-entry parse failure is carried in Err, not raised as a fatal
// archive error: Archive.Entries keeps reading the remaining entries.
type ArchiveEntry struct {
	Name  string
	Class *ClassFile
	Err   error
}

// Archive is an open jar (ZIP) file.
type Archive struct {
	zr   *zip.ReadCloser
	Path string

	// ClassPath holds the sibling jar paths from the manifest's
	// Class-Path: header, if present.
	ClassPath []string
}

// OpenArchive opens path as a jar and reads its manifest, if present.
func OpenArchive(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, ErrBadArchive
	}
	a := &Archive{zr: zr, Path: path}
	for _, f := range zr.File {
		if f.Name == "META-INF/MANIFEST.MF" {
			rc, err := f.Open()
			if err != nil {
				break
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				break
			}
			a.ClassPath = parseManifestClassPath(data)
			break
		}
	}
	return a, nil
}

// Close releases the underlying ZIP handle.
func (a *Archive) Close() error { return a.zr.Close() }

// Entries parses every .class member of the archive.
func (a *Archive) Entries() []ArchiveEntry {
	var out []ArchiveEntry
	for _, f := range a.zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".class") {
			continue
		}
		entry := ArchiveEntry{Name: f.Name}
		rc, err := f.Open()
		if err != nil {
			entry.Err = err
			out = append(out, entry)
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			entry.Err = err
			out = append(out, entry)
			continue
		}
		cf, err := Parse(data)
		entry.Class = cf
		entry.Err = err
		out = append(out, entry)
	}
	return out
}

// parseManifestClassPath decodes a MANIFEST.MF's continuation-joined
// RFC-822-like headers far enough to extract the Class-Path: value, then
// splits it on spaces into relative sibling-jar paths.
func parseManifestClassPath(data []byte) []string {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	var headers []string
	for _, line := range lines {
		if len(headers) > 0 && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			headers[len(headers)-1] += strings.TrimPrefix(strings.TrimPrefix(line, " "), "\t")
			continue
		}
		headers = append(headers, line)
	}

	for _, h := range headers {
		const prefix = "Class-Path:"
		if strings.HasPrefix(h, prefix) {
			value := strings.TrimSpace(strings.TrimPrefix(h, prefix))
			if value == "" {
				return nil
			}
			return strings.Fields(value)
		}
	}
	return nil
}
